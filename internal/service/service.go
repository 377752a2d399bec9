package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market/analyzer/internal/catalog"
	"market/analyzer/internal/domain"
	"market/analyzer/internal/state"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	catalog      *catalog.Service
	mirror       Mirror
	stateManager state.StateManager

	// writeMu keeps mirror notifications in the order the catalog applied them.
	writeMu sync.Mutex
}

// NewService wires the catalog to its durable-store mirror. stateManager may be nil
// when mirror progress is not tracked.
func NewService(catalog *catalog.Service, mirror Mirror, stateManager state.StateManager) *Service {
	if mirror == nil {
		mirror = NewNopMirror()
	}
	return &Service{
		catalog:      catalog,
		mirror:       mirror,
		stateManager: stateManager,
	}
}

// Import applies every unit of the batch in order with the shared update date.
// An offer without a price, or any non-positive price, stops the batch; units
// applied before it stay applied.
func (s *Service) Import(ctx context.Context, req domain.ShopUnitImportRequest) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for i, item := range req.Items {
		if item.Type == domain.ShopUnitTypeOffer && item.Price == nil {
			rejectedImportsTotal.Inc()
			return fmt.Errorf("%w: offer %s has no price", domain.ErrValidationFailed, item.ID)
		}
		if item.Price != nil && *item.Price <= 0 {
			rejectedImportsTotal.Inc()
			return fmt.Errorf("%w: %s has non-positive price %d", domain.ErrValidationFailed, item.ID, *item.Price)
		}

		if err := s.catalog.Upsert(item, req.UpdateDate); err != nil {
			rejectedImportsTotal.Inc()
			return fmt.Errorf("item %d: %w", i, err)
		}
		importedUnitsTotal.WithLabelValues(item.Type.String()).Inc()

		if err := s.mirror.UpsertItem(ctx, item); err != nil {
			mirrorErrorsTotal.WithLabelValues("upsert_item").Inc()
			log.Errorf("❌ Failed to mirror item %s: %v", item.ID, err)
		}
		if item.Type == domain.ShopUnitTypeOffer && item.Price != nil {
			if err := s.mirror.AddPrice(ctx, item.ID, req.UpdateDate, *item.Price); err != nil {
				mirrorErrorsTotal.WithLabelValues("add_price").Inc()
				log.Errorf("❌ Failed to mirror price of %s: %v", item.ID, err)
			}
		}
	}

	log.Debugf("Imported %d units at %s", len(req.Items), domain.FormatDate(req.UpdateDate))
	return nil
}

// Delete removes a unit from the catalog and then from the mirror.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*catalog.Node, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	removed, err := s.catalog.DeleteByID(id)
	if err != nil {
		return nil, err
	}
	deletedUnitsTotal.Inc()

	if err := s.mirror.DeleteItem(ctx, id); err != nil {
		mirrorErrorsTotal.WithLabelValues("delete_item").Inc()
		log.Errorf("❌ Failed to mirror deletion of %s: %v", id, err)
	}

	log.Infof("🗑️ Deleted %s %s (%s)", removed.Type, removed.ID, removed.Name)
	return &removed, nil
}

func (s *Service) Node(id uuid.UUID) (*domain.ShopUnit, error) {
	return s.catalog.GetView(id)
}

func (s *Service) Sales(date time.Time) []domain.ShopUnitStatisticUnit {
	return s.catalog.GetRecentSales(date)
}

func (s *Service) Statistic(id uuid.UUID, start, end *time.Time) ([]domain.ShopUnitStatisticUnit, error) {
	return s.catalog.GetStatistics(id, start, end)
}

type Health struct {
	Status string                `json:"status"`
	Units  int                   `json:"units"`
	Mirror *state.MirrorProgress `json:"mirror,omitempty"`
}

func (s *Service) Health(ctx context.Context) Health {
	h := Health{Status: "ok", Units: s.catalog.Len()}
	if s.stateManager == nil {
		return h
	}
	progress, err := s.stateManager.GetMirrorProgress(ctx)
	if err != nil {
		log.Warnf("⚠️ Failed to read mirror progress: %v", err)
		return h
	}
	h.Mirror = progress
	return h
}
