package task

import (
	"time"

	"github.com/google/uuid"
)

type AddPriceTask struct {
	ID    uuid.UUID `json:"id"`
	Date  time.Time `json:"date"`
	Price int64     `json:"price"`
}

func (t *AddPriceTask) TaskType() string {
	return TypeAddPrice
}

func (t *AddPriceTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
