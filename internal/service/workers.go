package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"market/analyzer/internal/domain"
	"market/analyzer/internal/domain/task"
	"market/analyzer/internal/queue"
	"market/analyzer/internal/repository"
	"market/analyzer/internal/state"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	readerConsumer = "mirror-reader"
	laneBuffer     = 16
	applyAttempts  = 3
)

// errMalformedTask marks tasks that can never be applied. They are acknowledged
// and dropped instead of being re-delivered.
var errMalformedTask = errors.New("malformed mirror task")

// MirrorWorkers drain the mirror stream into the durable store. One consumer
// reads the stream and routes every task to a lane chosen by its item id, so
// tasks of the same item are applied in stream order whatever the number of
// lanes. A failing task is retried in place; once the attempts are spent it is
// left unacknowledged for the auto-claimer.
type MirrorWorkers struct {
	queue        queue.Queue
	store        Mirror
	stateManager state.StateManager
	minIdleTime  time.Duration
	retryBackoff time.Duration
}

func NewMirrorWorkers(q queue.Queue, store Mirror, stateManager state.StateManager, minIdleTime int) *MirrorWorkers {
	if minIdleTime <= 0 {
		minIdleTime = 60
	}
	return &MirrorWorkers{
		queue:        q,
		store:        store,
		stateManager: stateManager,
		minIdleTime:  time.Duration(minIdleTime) * time.Second,
		retryBackoff: 500 * time.Millisecond,
	}
}

// Run applies tasks on numWorkers lanes until ctx is done.
func (w *MirrorWorkers) Run(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}

	lanes := make([]chan redis.XMessage, numWorkers)
	var workers sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan redis.XMessage, laneBuffer)
		workers.Add(1)
		go func(workerID int, in <-chan redis.XMessage) {
			defer workers.Done()
			log.Infof("🚀 Starting mirror worker %d", workerID)
			for msg := range in {
				if err := w.processMessage(ctx, &msg); err != nil {
					log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
				}
			}
			log.Infof("🛑 Mirror worker %d stopping", workerID)
		}(i+1, lanes[i])
	}

	var producers sync.WaitGroup
	producers.Add(2)
	go func() {
		defer producers.Done()
		w.read(ctx, lanes)
	}()
	go func() {
		defer producers.Done()
		w.autoClaim(ctx, lanes)
	}()

	producers.Wait()
	for _, lane := range lanes {
		close(lane)
	}
	workers.Wait()
	return nil
}

func (w *MirrorWorkers) read(ctx context.Context, lanes []chan redis.XMessage) {
	log.Infof("🚀 Reading %s as %s in group %s", queue.MirrorStream, readerConsumer, w.queue.Group())
	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := w.queue.GetTask(ctx, readerConsumer)
			if err != nil {
				if ctx.Err() == nil {
					log.Errorf("❌ Failed to get mirror task: %v", err)
				}
				continue
			}
			if msg != nil && !dispatch(ctx, lanes, *msg) {
				return
			}
		}
	}
}

func (w *MirrorWorkers) autoClaim(ctx context.Context, lanes []chan redis.XMessage) {
	ticker := time.NewTicker(w.minIdleTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			consumer := fmt.Sprintf("autoclaimer-%d", time.Now().UnixNano())
			claimedMessages, err := w.queue.AutoClaim(ctx, consumer, w.minIdleTime)
			if err != nil {
				log.Errorf("❌ Failed to auto-claim mirror tasks: %v", err)
				continue
			}
			if len(claimedMessages) > 0 {
				log.Infof("🔄 Auto-claimed %d mirror tasks", len(claimedMessages))
			}
			for _, msg := range claimedMessages {
				if !dispatch(ctx, lanes, msg) {
					return
				}
			}
		}
	}
}

// dispatch hands msg to the lane owning its item. It returns false once ctx is done.
func dispatch(ctx context.Context, lanes []chan redis.XMessage, msg redis.XMessage) bool {
	select {
	case lanes[laneOf(msg, len(lanes))] <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// laneOf hashes the item id carried by every mirror task. Messages without a
// readable id go to lane 0, where they are dropped as malformed.
func laneOf(msg redis.XMessage, n int) int {
	data, _ := msg.Values["task_data"].(string)
	var ref struct {
		ID uuid.UUID `json:"id"`
	}
	if n == 1 || json.Unmarshal([]byte(data), &ref) != nil {
		return 0
	}
	return int(xxhash.Sum64(ref.ID[:]) % uint64(n))
}

func (w *MirrorWorkers) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, _ := msg.Values["task_type"].(string)
	taskData, ok := msg.Values["task_data"].(string)

	var err error
	if !ok {
		err = fmt.Errorf("%w: no task data in message %s", errMalformedTask, msg.ID)
	} else {
		err = w.applyWithRetry(ctx, taskType, []byte(taskData))
	}
	if err != nil {
		mirrorErrorsTotal.WithLabelValues(taskType).Inc()
		if permanent(err) {
			if ackErr := w.queue.AckTask(ctx, msg.ID); ackErr != nil {
				log.Warnf("⚠️ Failed to ack dropped message %s: %v", msg.ID, ackErr)
			}
		}
		return err
	}
	mirrorTasksTotal.WithLabelValues(taskType).Inc()

	if err := w.queue.AckTask(ctx, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	if w.stateManager != nil {
		if err := w.stateManager.SetMirrorProgress(ctx, msg.ID, time.Now()); err != nil {
			log.Warnf("⚠️ Failed to record mirror progress: %v", err)
		}
	}

	return nil
}

// permanent reports errors that no retry can fix.
func permanent(err error) bool {
	return errors.Is(err, errMalformedTask) || errors.Is(err, repository.ErrItemNotMirrored)
}

func (w *MirrorWorkers) applyWithRetry(ctx context.Context, taskType string, data []byte) error {
	var err error
	for attempt := 1; attempt <= applyAttempts; attempt++ {
		err = w.apply(ctx, taskType, data)
		if err == nil || permanent(err) || attempt == applyAttempts {
			return err
		}
		log.Warnf("⚠️ Mirror task %s failed (attempt %d/%d): %v", taskType, attempt, applyAttempts, err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * w.retryBackoff):
		}
	}
	return err
}

func (w *MirrorWorkers) apply(ctx context.Context, taskType string, data []byte) error {
	switch taskType {
	case task.TypeUpsertItem:
		t, err := task.UnmarshalTask[*task.UpsertItemTask](data)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformedTask, err)
		}
		return w.store.UpsertItem(ctx, domain.ShopUnitImport{
			ID:       t.ID,
			Name:     t.Name,
			ParentID: t.ParentID,
			Type:     t.Type,
		})

	case task.TypeAddPrice:
		t, err := task.UnmarshalTask[*task.AddPriceTask](data)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformedTask, err)
		}
		return w.store.AddPrice(ctx, t.ID, t.Date, t.Price)

	case task.TypeDeleteItem:
		t, err := task.UnmarshalTask[*task.DeleteItemTask](data)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformedTask, err)
		}
		return w.store.DeleteItem(ctx, t.ID)

	default:
		return fmt.Errorf("%w: unknown task type %q", errMalformedTask, taskType)
	}
}
