package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"market/analyzer/internal/domain"
	"market/analyzer/internal/domain/task"
	"market/analyzer/internal/state"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type mirrorCall struct {
	op    string
	id    uuid.UUID
	price int64
}

type fakeMirror struct {
	mu    sync.Mutex
	calls []mirrorCall
	fail  bool

	// failWith, when set, is returned by every call instead of a generic error.
	failWith error
	// failFirst makes the first n calls fail before the store recovers.
	failFirst   int
	upsertDelay time.Duration
}

func (m *fakeMirror) record(c mirrorCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	switch {
	case m.failWith != nil:
		return m.failWith
	case m.fail:
		return errors.New("mirror unavailable")
	case m.failFirst > 0:
		m.failFirst--
		return errors.New("mirror briefly unavailable")
	}
	return nil
}

func (m *fakeMirror) UpsertItem(_ context.Context, item domain.ShopUnitImport) error {
	if m.upsertDelay > 0 {
		time.Sleep(m.upsertDelay)
	}
	return m.record(mirrorCall{op: "upsert", id: item.ID})
}

func (m *fakeMirror) AddPrice(_ context.Context, id uuid.UUID, _ time.Time, price int64) error {
	return m.record(mirrorCall{op: "price", id: id, price: price})
}

func (m *fakeMirror) DeleteItem(_ context.Context, id uuid.UUID) error {
	return m.record(mirrorCall{op: "delete", id: id})
}

func (m *fakeMirror) ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.op)
	}
	return out
}

// opsFor lists the operations applied to one item, in order.
func (m *fakeMirror) opsFor(id uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.id == id {
			out = append(out, c.op)
		}
	}
	return out
}

type fakeQueue struct {
	mu      sync.Mutex
	added   []task.Task
	pending []redis.XMessage
	acked   []string
	claimed []redis.XMessage
}

func (q *fakeQueue) AddTask(_ context.Context, t task.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.added = append(q.added, t)
	return "1-0", nil
}

func (q *fakeQueue) GetTask(ctx context.Context, _ string) (*redis.XMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		time.Sleep(time.Millisecond)
		return nil, nil
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]
	return &msg, nil
}

func (q *fakeQueue) AckTask(_ context.Context, msgID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, msgID)
	return nil
}

func (q *fakeQueue) AutoClaim(context.Context, string, time.Duration) ([]redis.XMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.claimed
	q.claimed = nil
	return out, nil
}

func (q *fakeQueue) Group() string {
	return "test"
}

func (q *fakeQueue) ackedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.acked...)
}

type fakeState struct {
	mu       sync.Mutex
	progress *state.MirrorProgress
}

func (s *fakeState) GetMirrorProgress(context.Context) (*state.MirrorProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress, nil
}

func (s *fakeState) SetMirrorProgress(_ context.Context, messageID string, appliedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = &state.MirrorProgress{MessageID: messageID, AppliedAt: appliedAt}
	return nil
}

func message(t *testing.T, id string, tk task.Task) redis.XMessage {
	t.Helper()
	data, err := tk.TaskValue()
	if err != nil {
		t.Fatal(err)
	}
	return redis.XMessage{ID: id, Values: map[string]interface{}{
		"task_type": tk.TaskType(),
		"task_data": string(data),
	}}
}
