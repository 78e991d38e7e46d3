package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkajic20/smart-charger-backend/internal/cache"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

// ReconcileReport counts the flags a reconcile pass changed.
type ReconcileReport struct {
	ChargersReleased int
	ChargersMarked   int
	CardsReleased    int
	CardsMarked      int
}

// Changed reports whether the pass repaired anything.
func (r ReconcileReport) Changed() bool {
	return r.ChargersReleased+r.ChargersMarked+r.CardsReleased+r.CardsMarked > 0
}

// Reconciler brings charger and card in-use flags back in line with the set of
// open events.
type Reconciler interface {
	Reconcile(ctx context.Context) (ReconcileReport, error)
}

type reconciler struct {
	store  repository.Store
	cache  *cache.Client
	logger *zap.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(store repository.Store, cache *cache.Client, logger *zap.Logger) Reconciler {
	return &reconciler{store: store, cache: cache, logger: logger}
}

// Reconcile runs in one transaction. Each flip re-checks the events table in the
// same UPDATE, so a flag that a concurrent start or end made correct is left alone.
func (r *reconciler) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	touched := map[uint]struct{}{}

	err := r.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		open, err := tx.Events().ListOpen(ctx)
		if err != nil {
			return fmt.Errorf("list open events: %w", err)
		}
		openChargers := make(map[uint]struct{}, len(open))
		openCards := make(map[uint]struct{}, len(open))
		for _, e := range open {
			openChargers[e.ChargerID] = struct{}{}
			openCards[e.CardID] = struct{}{}
		}

		chargers, err := tx.Chargers().ListInUse(ctx)
		if err != nil {
			return fmt.Errorf("list chargers in use: %w", err)
		}
		inUseChargers := make(map[uint]struct{}, len(chargers))
		for _, c := range chargers {
			inUseChargers[c.ID] = struct{}{}
			if _, ok := openChargers[c.ID]; ok {
				continue
			}
			released, err := tx.Chargers().ReleaseIfIdle(ctx, c.ID)
			if err != nil {
				return fmt.Errorf("release charger %d: %w", c.ID, err)
			}
			if released {
				report.ChargersReleased++
				touched[c.ID] = struct{}{}
			}
		}
		for id := range openChargers {
			if _, ok := inUseChargers[id]; ok {
				continue
			}
			marked, err := tx.Chargers().MarkIfBusy(ctx, id)
			if err != nil {
				return fmt.Errorf("mark charger %d: %w", id, err)
			}
			if marked {
				report.ChargersMarked++
				touched[id] = struct{}{}
			}
		}

		cards, err := tx.Cards().ListInUse(ctx)
		if err != nil {
			return fmt.Errorf("list cards in use: %w", err)
		}
		inUseCards := make(map[uint]struct{}, len(cards))
		for _, c := range cards {
			inUseCards[c.ID] = struct{}{}
			if _, ok := openCards[c.ID]; ok {
				continue
			}
			released, err := tx.Cards().ReleaseIfIdle(ctx, c.ID)
			if err != nil {
				return fmt.Errorf("release card %d: %w", c.ID, err)
			}
			if released {
				report.CardsReleased++
			}
		}
		for id := range openCards {
			if _, ok := inUseCards[id]; ok {
				continue
			}
			marked, err := tx.Cards().MarkIfBusy(ctx, id)
			if err != nil {
				return fmt.Errorf("mark card %d: %w", id, err)
			}
			if marked {
				report.CardsMarked++
			}
		}

		synced := make([]uint, 0, len(openChargers))
		for id := range openChargers {
			synced = append(synced, id)
		}
		return tx.Chargers().MarkSynced(ctx, synced, time.Now().UTC())
	})
	if err != nil {
		return ReconcileReport{}, err
	}

	for id := range touched {
		_ = r.cache.Delete(ctx, chargerCacheKey(id), activeSessionKey(id))
	}
	if report.Changed() {
		r.logger.Warn("in-use flags repaired",
			zap.Int("chargers_released", report.ChargersReleased),
			zap.Int("chargers_marked", report.ChargersMarked),
			zap.Int("cards_released", report.CardsReleased),
			zap.Int("cards_marked", report.CardsMarked))
	}
	return report, nil
}
