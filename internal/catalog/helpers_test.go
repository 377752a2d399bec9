package catalog

import (
	"time"

	"market/analyzer/internal/domain"

	"github.com/google/uuid"
)

var baseDate = time.Date(2022, 2, 1, 12, 0, 0, 0, time.UTC)

func category(id uuid.UUID, name string, parent *uuid.UUID) domain.ShopUnitImport {
	return domain.ShopUnitImport{ID: id, Name: name, ParentID: parent, Type: domain.ShopUnitTypeCategory}
}

func offer(id uuid.UUID, name string, parent *uuid.UUID, price int64) domain.ShopUnitImport {
	return domain.ShopUnitImport{ID: id, Name: name, ParentID: parent, Type: domain.ShopUnitTypeOffer, Price: &price}
}

func ref(id uuid.UUID) *uuid.UUID {
	return &id
}

func at(hours int) time.Time {
	return baseDate.Add(time.Duration(hours) * time.Hour)
}
