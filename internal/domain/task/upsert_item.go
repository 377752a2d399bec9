package task

import (
	"market/analyzer/internal/domain"

	"github.com/google/uuid"
)

type UpsertItemTask struct {
	ID       uuid.UUID           `json:"id"`
	Name     string              `json:"name"`
	Type     domain.ShopUnitType `json:"type"`
	ParentID *uuid.UUID          `json:"parent_id,omitempty"`
}

func (t *UpsertItemTask) TaskType() string {
	return TypeUpsertItem
}

func (t *UpsertItemTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
