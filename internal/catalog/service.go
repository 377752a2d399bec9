// Package catalog keeps the in-memory shop unit tree together with the price
// history of every offer, and answers subtree aggregate and history queries.
package catalog

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"market/analyzer/internal/domain"

	"github.com/google/uuid"
)

const salesWindowDays = 1

// Service owns the Tree and the Ledger. Every mutation goes through Upsert or
// DeleteByID so that both stay correlated. Writers hold the lock exclusively and
// readers share it, so each read sees a consistent snapshot.
type Service struct {
	mu     sync.RWMutex
	tree   *Tree
	ledger *Ledger
}

func NewService() *Service {
	return &Service{
		tree:   NewTree(),
		ledger: NewLedger(),
	}
}

// Upsert writes a node and, for an offer carrying a price, records the price.
func (s *Service) Upsert(unit domain.ShopUnitImport, observedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tree.Upsert(unit, observedAt); err != nil {
		return err
	}
	if unit.Type == domain.ShopUnitTypeOffer && unit.Price != nil {
		s.ledger.Append(unit.ID, observedAt, *unit.Price)
	}
	return nil
}

// DeleteByID removes a node (and an offer's price history) and returns it.
func (s *Service) DeleteByID(id uuid.UUID) (Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.tree.Get(id)
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if node.IsOffer() {
		s.ledger.DiscardAll(id)
	}
	return s.tree.Delete(id)
}

// Get returns a copy of a stored node.
func (s *Service) Get(id uuid.UUID) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.tree.Get(id)
	if !ok {
		return Node{}, false
	}
	return node.clone(), true
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

// GetView builds the node with its children ordered by id. Categories carry the
// average price of their offers and the latest update date of their subtree.
func (s *Service) GetView(id uuid.UUID) (*domain.ShopUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.tree.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	view := s.view(node)
	return &view, nil
}

func (s *Service) view(node *Node) domain.ShopUnit {
	unit := domain.ShopUnit{
		ID:       node.ID,
		Name:     node.Name,
		ParentID: copyID(node.ParentID),
		Type:     node.Type,
	}

	switch node.Type {
	case domain.ShopUnitTypeOffer:
		unit.Price = copyPrice(node.Price)
		unit.Date = domain.FormatDate(node.Date)
	case domain.ShopUnitTypeCategory:
		unit.Price = AveragePrice(s.tree.SubtreePriceAndCount(node.ID))
		unit.Date = domain.FormatDate(s.tree.SubtreeLastUpdate(node.ID))
		unit.Children = make([]domain.ShopUnit, 0, len(node.children))
		for _, childID := range node.Children() {
			if child, ok := s.tree.Get(childID); ok {
				unit.Children = append(unit.Children, s.view(child))
			}
		}
	}
	return unit
}

// GetRecentSales returns, for every offer, its most recent price observation when
// that observation is at most one whole day older than asOf. The day difference
// is floored, so up to just under 48 hours of staleness is admitted.
func (s *Service) GetRecentSales(asOf time.Time) []domain.ShopUnitStatisticUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers := s.ledger.Offers()
	slices.SortFunc(offers, compareIDs)

	sales := make([]domain.ShopUnitStatisticUnit, 0)
	for _, id := range offers {
		node, ok := s.tree.Get(id)
		if !ok {
			continue
		}
		history := s.ledger.History(id)
		slices.SortStableFunc(history, func(a, b Observation) int {
			return b.Date.Compare(a.Date)
		})
		for _, obs := range history {
			if dayDifference(asOf, obs.Date) <= salesWindowDays {
				sales = append(sales, statisticUnit(node, obs.Date, priceOf(obs.Price)))
				break
			}
		}
	}
	return sales
}

// GetStatistics returns the price history of an offer, or the current aggregate of
// a category, restricted to the closed interval [start, end]. A nil bound is open.
func (s *Service) GetStatistics(id uuid.UUID, start, end *time.Time) ([]domain.ShopUnitStatisticUnit, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: dateEnd %s is before dateStart %s",
			domain.ErrValidationFailed, domain.FormatDate(*end), domain.FormatDate(*start))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.tree.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	items := make([]domain.ShopUnitStatisticUnit, 0)
	switch node.Type {
	case domain.ShopUnitTypeOffer:
		history := s.ledger.History(id)
		slices.SortStableFunc(history, func(a, b Observation) int {
			return a.Date.Compare(b.Date)
		})
		for _, obs := range history {
			if inRange(obs.Date, start, end) {
				items = append(items, statisticUnit(node, obs.Date, priceOf(obs.Price)))
			}
		}
	case domain.ShopUnitTypeCategory:
		date := s.tree.SubtreeLastUpdate(id)
		if inRange(date, start, end) {
			price := AveragePrice(s.tree.SubtreePriceAndCount(id))
			items = append(items, statisticUnit(node, date, price))
		}
	}
	return items, nil
}

func statisticUnit(node *Node, date time.Time, price *int64) domain.ShopUnitStatisticUnit {
	return domain.ShopUnitStatisticUnit{
		ID:       node.ID,
		Name:     node.Name,
		ParentID: copyID(node.ParentID),
		Type:     node.Type,
		Price:    price,
		Date:     domain.FormatDate(date),
	}
}

func priceOf(p int64) *int64 {
	return &p
}

func inRange(date time.Time, start, end *time.Time) bool {
	if start != nil && date.Before(*start) {
		return false
	}
	if end != nil && date.After(*end) {
		return false
	}
	return true
}

// dayDifference is the number of whole days from date to asOf, floored.
func dayDifference(asOf, date time.Time) int64 {
	const day = 24 * time.Hour
	diff := asOf.Sub(date)
	days := int64(diff / day)
	if diff%day < 0 {
		days--
	}
	return days
}
