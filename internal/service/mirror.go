package service

import (
	"context"
	"time"

	"market/analyzer/internal/domain"
	"market/analyzer/internal/domain/task"
	"market/analyzer/internal/queue"

	"github.com/google/uuid"
)

// Mirror receives write-only notifications of catalog changes. The catalog never
// reads them back.
type Mirror interface {
	UpsertItem(ctx context.Context, item domain.ShopUnitImport) error
	AddPrice(ctx context.Context, id uuid.UUID, date time.Time, price int64) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type nopMirror struct{}

func NewNopMirror() Mirror {
	return nopMirror{}
}

func (nopMirror) UpsertItem(context.Context, domain.ShopUnitImport) error { return nil }
func (nopMirror) AddPrice(context.Context, uuid.UUID, time.Time, int64) error { return nil }
func (nopMirror) DeleteItem(context.Context, uuid.UUID) error { return nil }

// queueMirror turns notifications into tasks for the mirror workers.
type queueMirror struct {
	queue queue.Queue
}

func NewQueueMirror(q queue.Queue) Mirror {
	return &queueMirror{queue: q}
}

func (m *queueMirror) UpsertItem(ctx context.Context, item domain.ShopUnitImport) error {
	_, err := m.queue.AddTask(ctx, &task.UpsertItemTask{
		ID:       item.ID,
		Name:     item.Name,
		Type:     item.Type,
		ParentID: item.ParentID,
	})
	return err
}

func (m *queueMirror) AddPrice(ctx context.Context, id uuid.UUID, date time.Time, price int64) error {
	_, err := m.queue.AddTask(ctx, &task.AddPriceTask{ID: id, Date: date, Price: price})
	return err
}

func (m *queueMirror) DeleteItem(ctx context.Context, id uuid.UUID) error {
	_, err := m.queue.AddTask(ctx, &task.DeleteItemTask{ID: id})
	return err
}
