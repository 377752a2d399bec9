package catalog

import (
	"bytes"
	"slices"
	"time"

	"market/analyzer/internal/domain"

	"github.com/google/uuid"
)

// Node is one offer or category stored in the tree. The children set is nil
// for offers and non-nil for categories.
type Node struct {
	ID       uuid.UUID
	Name     string
	ParentID *uuid.UUID
	Type     domain.ShopUnitType
	Price    *int64
	Date     time.Time

	children map[uuid.UUID]struct{}
}

// IsOffer reports whether the node is a priced leaf.
func (n *Node) IsOffer() bool {
	return n.Type == domain.ShopUnitTypeOffer
}

// IsCategory reports whether the node can hold children.
func (n *Node) IsCategory() bool {
	return n.Type == domain.ShopUnitTypeCategory
}

// Children returns child ids ordered by id, or nil for an offer.
func (n *Node) Children() []uuid.UUID {
	if n.children == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(n.children))
	for id := range n.children {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

// HasChild reports whether id is registered as a direct child.
func (n *Node) HasChild(id uuid.UUID) bool {
	_, ok := n.children[id]
	return ok
}

func (n *Node) clone() Node {
	c := *n
	c.ParentID = copyID(n.ParentID)
	c.Price = copyPrice(n.Price)
	if n.children != nil {
		c.children = make(map[uuid.UUID]struct{}, len(n.children))
		for id := range n.children {
			c.children[id] = struct{}{}
		}
	}
	return c
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func copyPrice(p *int64) *int64 {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
