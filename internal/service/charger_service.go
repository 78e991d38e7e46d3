package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mkajic20/smart-charger-backend/internal/cache"
	apperr "github.com/mkajic20/smart-charger-backend/internal/errors"
	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

const (
	chargerCacheTTL        = 5 * time.Minute
	defaultChargerPageSize = 20
)

// Charger validation messages, checked in this order.
const (
	msgChargerNameEmpty    = "Name of the charger cannot be empty."
	msgChargerLatitude     = "Latitude must be between -90 and 90."
	msgChargerLongitude    = "Longitude must be between -180 and 180."
	msgChargerNotExists    = "Charger with that ID doesn't exist."
	msgChargerCreateFailed = "Charger creation failed."
	msgChargerUpdateFailed = "Charger update failed."
)

// ChargerInput carries the editable charger fields.
type ChargerInput struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// ChargerService manages charging stations.
type ChargerService interface {
	CreateNewCharger(ctx context.Context, in ChargerInput, creatorID uint) Result[*model.Charger]
	GetAllChargers(ctx context.Context, q repository.PageQuery) Result[[]model.Charger]
	GetChargerByID(ctx context.Context, id uint) Result[*model.Charger]
	UpdateCharger(ctx context.Context, id uint, in ChargerInput) Result[*model.Charger]
	DeleteCharger(ctx context.Context, id uint) Result[*model.Charger]
}

type chargerService struct {
	store  repository.Store
	cache  *cache.Client
	logger *zap.Logger
}

// NewChargerService builds a ChargerService with store and cache.
func NewChargerService(store repository.Store, cache *cache.Client, logger *zap.Logger) ChargerService {
	return &chargerService{store: store, cache: cache, logger: logger}
}

func chargerCacheKey(id uint) string {
	return fmt.Sprintf("charger:%d", id)
}

// validateCharger returns the first violated rule, or "" when the input is valid.
func validateCharger(in ChargerInput) string {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return msgChargerNameEmpty
	case in.Latitude < -90 || in.Latitude > 90:
		return msgChargerLatitude
	case in.Longitude < -180 || in.Longitude > 180:
		return msgChargerLongitude
	default:
		return ""
	}
}

func (s *chargerService) CreateNewCharger(ctx context.Context, in ChargerInput, creatorID uint) Result[*model.Charger] {
	if rule := validateCharger(in); rule != "" {
		return fail[*model.Charger](apperr.Validation(msgChargerCreateFailed, rule))
	}

	charger := &model.Charger{
		Name:      in.Name,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		InUse:     false,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Chargers().Create(ctx, charger); err != nil {
		return fail[*model.Charger](fmt.Errorf("create charger: %w", err))
	}

	s.logger.Info("charger created", zap.Uint("charger_id", charger.ID), zap.Uint("creator_id", creatorID))
	return ok("Charger created successfully.", charger)
}

func (s *chargerService) GetAllChargers(ctx context.Context, q repository.PageQuery) Result[[]model.Charger] {
	q = q.Normalize(defaultChargerPageSize)
	chargers, total, err := s.store.Chargers().List(ctx, q)
	if err != nil {
		return fail[[]model.Charger](fmt.Errorf("list chargers: %w", err))
	}
	return pageOf(chargers, total, q, "List of chargers.", "There are no chargers with that parameters.")
}

func (s *chargerService) GetChargerByID(ctx context.Context, id uint) Result[*model.Charger] {
	var cached model.Charger
	if s.cache.GetJSON(ctx, chargerCacheKey(id), &cached) {
		return ok("Charger exists.", &cached)
	}

	repo := s.store.Chargers()
	charger, err := repo.FindByID(ctx, id)
	if err != nil {
		return fail[*model.Charger](missing(err, "get charger", msgChargerNotExists))
	}

	// A session can start or end between the read and the set, after its own
	// invalidation already ran. Re-read once and drop the entry if the flag moved.
	if s.cache != nil && s.cache.SetJSON(ctx, chargerCacheKey(id), charger, chargerCacheTTL) == nil {
		if current, err := repo.FindByID(ctx, id); err != nil || current.InUse != charger.InUse {
			_ = s.cache.Delete(ctx, chargerCacheKey(id))
		}
	}
	return ok("Charger exists.", charger)
}

func (s *chargerService) UpdateCharger(ctx context.Context, id uint, in ChargerInput) Result[*model.Charger] {
	repo := s.store.Chargers()
	charger, err := repo.FindByID(ctx, id)
	if err != nil {
		return fail[*model.Charger](missing(err, "get charger", msgChargerNotExists))
	}
	if rule := validateCharger(in); rule != "" {
		return fail[*model.Charger](apperr.Validation(msgChargerUpdateFailed, rule))
	}

	charger.Name = in.Name
	charger.Latitude = in.Latitude
	charger.Longitude = in.Longitude
	if err := repo.UpdateLocation(ctx, charger); err != nil {
		return fail[*model.Charger](fmt.Errorf("update charger: %w", err))
	}

	_ = s.cache.Delete(ctx, chargerCacheKey(id))
	return ok("Charger updated successfully.", charger)
}

// DeleteCharger removes the charger. Its events go with it, so a session still
// open on it releases its card first.
func (s *chargerService) DeleteCharger(ctx context.Context, id uint) Result[*model.Charger] {
	var charger *model.Charger
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		charger, err = tx.Chargers().FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.Error{
				Kind:    apperr.KindNotFound,
				Message: "Unsuccessful deletion of the charger.",
				Detail:  "Charger not found.",
			}
		}
		if err != nil {
			return fmt.Errorf("get charger: %w", err)
		}

		open, err := tx.Events().FindOpenByCharger(ctx, id)
		switch {
		case err == nil:
			if _, err := tx.Cards().Release(ctx, open.CardID); err != nil {
				return fmt.Errorf("release card: %w", err)
			}
			s.logger.Warn("charger deleted during a session", zap.Uint("charger_id", id), zap.Uint("event_id", open.ID))
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("get open event: %w", err)
		}

		if err := tx.Chargers().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete charger: %w", err)
		}
		return nil
	})
	if err != nil {
		return fail[*model.Charger](err)
	}

	_ = s.cache.Delete(ctx, chargerCacheKey(id), activeSessionKey(id))
	s.logger.Info("charger deleted", zap.Uint("charger_id", id))
	return ok("Charger deleted successfully.", charger)
}
