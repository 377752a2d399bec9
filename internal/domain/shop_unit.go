package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of every date rendered by the API.
const DateLayout = "2006-01-02T15:04:05Z"

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

type ShopUnitImport struct {
	ID       uuid.UUID    `json:"id" binding:"required"`
	Name     string       `json:"name" binding:"required"`
	ParentID *uuid.UUID   `json:"parentId"`
	Type     ShopUnitType `json:"type" binding:"required,shopunit_type"`
	Price    *int64       `json:"price" binding:"omitempty,min=1"`
}

type ShopUnitImportRequest struct {
	Items      []ShopUnitImport `json:"items" binding:"required,dive"`
	UpdateDate time.Time        `json:"updateDate" binding:"required"`
}

// ShopUnit is the recursively aggregated view of a node. Children is nil for offers
// and a non-nil (possibly empty) slice for categories.
type ShopUnit struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Date     string       `json:"date"`
	ParentID *uuid.UUID   `json:"parentId"`
	Type     ShopUnitType `json:"type"`
	Price    *int64       `json:"price"`
	Children []ShopUnit   `json:"children"`
}

// ShopUnitStatisticUnit is one history point of an offer or category.
type ShopUnitStatisticUnit struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	ParentID *uuid.UUID   `json:"parentId"`
	Type     ShopUnitType `json:"type"`
	Price    *int64       `json:"price"`
	Date     string       `json:"date"`
}

type ShopUnitStatisticResponse struct {
	Items []ShopUnitStatisticUnit `json:"items"`
}
