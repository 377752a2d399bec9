package catalog

import (
	"fmt"
	"time"

	"market/analyzer/internal/domain"

	"github.com/google/uuid"
)

// Tree maps identifiers to nodes and keeps parent/children links in sync.
// It is not safe for concurrent use; Service serializes access.
type Tree struct {
	nodes map[uuid.UUID]*Node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes: make(map[uuid.UUID]*Node),
	}
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get returns the stored node itself; callers outside the package get copies via Service.
func (t *Tree) Get(id uuid.UUID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Upsert inserts a node or replaces the fields of an existing one. An existing
// node keeps its children. Writing a category adopts every node that already
// names it as parent, and the named parent category gains the node as a child.
func (t *Tree) Upsert(unit domain.ShopUnitImport, date time.Time) error {
	if err := t.checkUpsert(unit); err != nil {
		return err
	}

	node := &Node{
		ID:       unit.ID,
		Name:     unit.Name,
		ParentID: copyID(unit.ParentID),
		Type:     unit.Type,
		Date:     date,
	}
	if unit.Type == domain.ShopUnitTypeOffer {
		node.Price = copyPrice(unit.Price)
	}

	existing, ok := t.nodes[unit.ID]
	switch {
	case ok:
		node.children = existing.children
		if !sameParent(existing.ParentID, unit.ParentID) {
			t.detach(existing)
		}
	case node.IsCategory():
		node.children = make(map[uuid.UUID]struct{})
	}
	t.nodes[unit.ID] = node

	if node.IsCategory() {
		for id, other := range t.nodes {
			if id != node.ID && other.ParentID != nil && *other.ParentID == node.ID {
				node.children[id] = struct{}{}
			}
		}
	}

	if node.ParentID != nil {
		if parent, ok := t.nodes[*node.ParentID]; ok && parent.IsCategory() {
			parent.children[node.ID] = struct{}{}
		}
	}

	return nil
}

// Delete removes a single node and unlinks it from its parent. Descendants of a
// removed category are kept as orphans.
func (t *Tree) Delete(id uuid.UUID) (Node, error) {
	node, ok := t.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	t.detach(node)
	delete(t.nodes, id)
	return node.clone(), nil
}

func (t *Tree) detach(node *Node) {
	if node.ParentID == nil {
		return
	}
	if parent, ok := t.nodes[*node.ParentID]; ok && parent.children != nil {
		delete(parent.children, node.ID)
	}
}

func (t *Tree) checkUpsert(unit domain.ShopUnitImport) error {
	if !unit.Type.IsValid() {
		return fmt.Errorf("%w: unknown unit type %q", domain.ErrValidationFailed, unit.Type)
	}

	if existing, ok := t.nodes[unit.ID]; ok && existing.Type != unit.Type {
		return fmt.Errorf("%w: %s cannot change type from %s to %s",
			domain.ErrValidationFailed, unit.ID, existing.Type, unit.Type)
	}

	if unit.ParentID == nil {
		return nil
	}

	if parent, ok := t.nodes[*unit.ParentID]; ok && parent.IsOffer() {
		return fmt.Errorf("%w: parent %s is an offer", domain.ErrValidationFailed, parent.ID)
	}

	if t.reaches(*unit.ParentID, unit.ID) {
		return fmt.Errorf("%w: parent %s would create a cycle through %s",
			domain.ErrValidationFailed, *unit.ParentID, unit.ID)
	}

	return nil
}

// reaches walks parent links from start and reports whether target is met.
// Links to missing nodes end the walk.
func (t *Tree) reaches(start, target uuid.UUID) bool {
	cur := start
	for steps := 0; steps <= len(t.nodes); steps++ {
		if cur == target {
			return true
		}
		n, ok := t.nodes[cur]
		if !ok || n.ParentID == nil {
			return false
		}
		cur = *n.ParentID
	}
	return false
}
