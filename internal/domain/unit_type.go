package domain

import "fmt"

type ShopUnitType string

func (t ShopUnitType) String() string {
	return string(t)
}

const (
	ShopUnitTypeOffer    ShopUnitType = "OFFER"    // Leaf item with a concrete price
	ShopUnitTypeCategory ShopUnitType = "CATEGORY" // Interior node aggregating its offers
)

var ShopUnitTypes = []ShopUnitType{
	ShopUnitTypeOffer,
	ShopUnitTypeCategory,
}

func (t ShopUnitType) IsValid() bool {
	switch t {
	case ShopUnitTypeOffer, ShopUnitTypeCategory:
		return true
	default:
		return false
	}
}

func ParseShopUnitType(s string) (ShopUnitType, error) {
	t := ShopUnitType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown unit type %q, want one of %v", ErrValidationFailed, s, ShopUnitTypes)
	}
	return t, nil
}
