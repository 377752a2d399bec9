package task

import "github.com/google/uuid"

type DeleteItemTask struct {
	ID uuid.UUID `json:"id"`
}

func (t *DeleteItemTask) TaskType() string {
	return TypeDeleteItem
}

func (t *DeleteItemTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
