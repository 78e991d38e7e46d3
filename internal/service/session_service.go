package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkajic20/smart-charger-backend/internal/cache"
	apperr "github.com/mkajic20/smart-charger-backend/internal/errors"
	"github.com/mkajic20/smart-charger-backend/internal/events"
	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

const activeSessionTTL = 24 * time.Hour

// Session engine messages.
const (
	msgChargerNotFound  = "Charger not found."
	msgChargerInUse     = "Charger is already in use."
	msgCardNotFound     = "Card not found."
	msgCardNotActive    = "RFID card is not active."
	msgCardInUse        = "RFID card is already in use."
	msgUserNotActive    = "User is not active."
	msgEventNotFound    = "Event not found."
	msgChargingEnded    = "Charging has already ended."
	msgNoActiveSession  = "There is no active session on that charger."
	msgChargingStarted  = "Charging started."
	msgChargingFinished = "Charging has ended."
)

// StartChargingInput identifies the charger, card and user of a new session.
// A zero StartTime means now; a zero UserID bills the card's owner.
type StartChargingInput struct {
	StartTime time.Time
	ChargerID uint
	CardID    uint
	UserID    uint
}

// EndChargingInput closes a session. A zero EndTime means now.
type EndChargingInput struct {
	EventID uint
	EndTime time.Time
	Volume  decimal.NullDecimal
}

// SessionService drives the charging session state machine.
type SessionService interface {
	StartCharging(ctx context.Context, in StartChargingInput) Result[*model.Event]
	EndCharging(ctx context.Context, in EndChargingInput) Result[*model.Event]
	// ActiveSession returns the open session on a charger.
	ActiveSession(ctx context.Context, chargerID uint) Result[*model.Event]
}

type sessionService struct {
	store     repository.Store
	cache     *cache.Client
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionService creates the session engine.
func NewSessionService(store repository.Store, cache *cache.Client, publisher events.Publisher, logger *zap.Logger) SessionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &sessionService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func activeSessionKey(chargerID uint) string {
	return fmt.Sprintf("session:active:charger:%d", chargerID)
}

// StartCharging opens a session. The preconditions are checked in a fixed order
// and the first failure is reported; the in-use flips are conditional updates so
// a concurrent start on the same charger or card loses with the same message.
func (s *sessionService) StartCharging(ctx context.Context, in StartChargingInput) Result[*model.Event] {
	startTime := in.StartTime
	if startTime.IsZero() {
		startTime = s.now()
	}

	var event *model.Event
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		charger, err := tx.Chargers().FindByID(ctx, in.ChargerID)
		if err != nil {
			return missing(err, "get charger", msgChargerNotFound)
		}
		if charger.InUse {
			return apperr.Conflict(msgChargerInUse)
		}

		card, err := tx.Cards().FindByID(ctx, in.CardID)
		if err != nil {
			return missing(err, "get card", msgCardNotFound)
		}
		if !card.Enabled {
			return apperr.Conflict(msgCardNotActive)
		}
		if card.InUse {
			return apperr.Conflict(msgCardInUse)
		}
		if card.User == nil || !card.User.Enabled {
			return apperr.Conflict(msgUserNotActive)
		}

		// A caller may bill someone other than the owner; that user must
		// pass the same checks before anything is written.
		user, userID := card.User, card.UserID
		if in.UserID != 0 && in.UserID != card.UserID {
			if user, err = tx.Users().FindByID(ctx, in.UserID); err != nil {
				return missing(err, "get user", msgUserNotActive)
			}
			if !user.Enabled {
				return apperr.Conflict(msgUserNotActive)
			}
			userID = user.ID
		}

		swapped, err := tx.Chargers().MarkInUse(ctx, charger.ID)
		if err != nil {
			return fmt.Errorf("mark charger in use: %w", err)
		}
		if !swapped {
			return apperr.Conflict(msgChargerInUse)
		}
		swapped, err = tx.Cards().MarkInUse(ctx, card.ID)
		if err != nil {
			return fmt.Errorf("mark card in use: %w", err)
		}
		if !swapped {
			return apperr.Conflict(msgCardInUse)
		}

		event = &model.Event{
			StartTime: startTime,
			ChargerID: charger.ID,
			CardID:    card.ID,
			UserID:    userID,
		}
		if err := tx.Events().Create(ctx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}

		charger.InUse = true
		card.InUse = true
		event.Charger = charger
		event.Card = card
		event.User = user
		return nil
	})
	if err != nil {
		if !apperr.IsKind(err, apperr.KindConflict) && !apperr.IsKind(err, apperr.KindNotFound) {
			s.logger.Error("start charging failed", zap.Uint("charger_id", in.ChargerID), zap.Uint("card_id", in.CardID), zap.Error(err))
		}
		return fail[*model.Event](err)
	}

	s.logger.Info("charging started",
		zap.Uint("event_id", event.ID),
		zap.Uint("charger_id", event.ChargerID),
		zap.Uint("card_id", event.CardID),
		zap.Uint("user_id", event.UserID))
	s.afterTransition(ctx, events.TypeChargingStarted, event)
	return ok(msgChargingStarted, event)
}

// EndCharging closes an open session and releases its charger and card.
func (s *sessionService) EndCharging(ctx context.Context, in EndChargingInput) Result[*model.Event] {
	endTime := in.EndTime
	if endTime.IsZero() {
		endTime = s.now()
	}

	var event *model.Event
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		event, err = tx.Events().FindByID(ctx, in.EventID)
		if err != nil {
			return missing(err, "get event", msgEventNotFound)
		}
		if !event.Open() {
			return apperr.Conflict(msgChargingEnded)
		}

		closed, err := tx.Events().Close(ctx, event.ID, endTime, in.Volume)
		if err != nil {
			return fmt.Errorf("close event: %w", err)
		}
		if !closed {
			return apperr.Conflict(msgChargingEnded)
		}
		// The flags may already be clear if the reconciler repaired them; the
		// session is closed either way.
		if _, err := tx.Chargers().Release(ctx, event.ChargerID); err != nil {
			return fmt.Errorf("release charger: %w", err)
		}
		if _, err := tx.Cards().Release(ctx, event.CardID); err != nil {
			return fmt.Errorf("release card: %w", err)
		}

		event.EndTime = &endTime
		event.Volume = in.Volume
		if event.Charger != nil {
			event.Charger.InUse = false
		}
		if event.Card != nil {
			event.Card.InUse = false
		}
		return nil
	})
	if err != nil {
		if !apperr.IsKind(err, apperr.KindConflict) && !apperr.IsKind(err, apperr.KindNotFound) {
			s.logger.Error("end charging failed", zap.Uint("event_id", in.EventID), zap.Error(err))
		}
		return fail[*model.Event](err)
	}

	s.logger.Info("charging ended", zap.Uint("event_id", event.ID), zap.Uint("charger_id", event.ChargerID))
	s.afterTransition(ctx, events.TypeChargingEnded, event)
	return ok(msgChargingFinished, event)
}

func (s *sessionService) ActiveSession(ctx context.Context, chargerID uint) Result[*model.Event] {
	var cached model.Event
	if s.cache.GetJSON(ctx, activeSessionKey(chargerID), &cached) {
		return ok("Active session.", &cached)
	}

	event, err := s.store.Events().FindOpenByCharger(ctx, chargerID)
	if err != nil {
		return fail[*model.Event](missing(err, "get open event", msgNoActiveSession))
	}
	_ = s.cache.SetJSON(ctx, activeSessionKey(chargerID), event, activeSessionTTL)
	return ok("Active session.", event)
}

// afterTransition updates the caches and notifies subscribers. Failures here are
// logged only; the session has already been committed.
func (s *sessionService) afterTransition(ctx context.Context, kind string, event *model.Event) {
	if kind == events.TypeChargingStarted {
		if err := s.cache.SetJSON(ctx, activeSessionKey(event.ChargerID), event, activeSessionTTL); err != nil {
			s.logger.Warn("cache active session", zap.Uint("event_id", event.ID), zap.Error(err))
		}
	} else {
		_ = s.cache.Delete(ctx, activeSessionKey(event.ChargerID))
	}
	_ = s.cache.Delete(ctx, chargerCacheKey(event.ChargerID))

	msg := events.SessionMessage{
		Type:       kind,
		EventID:    event.ID,
		ChargerID:  event.ChargerID,
		CardID:     event.CardID,
		UserID:     event.UserID,
		StartTime:  event.StartTime,
		EndTime:    event.EndTime,
		Volume:     event.Volume,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("publish session message", zap.String("type", kind), zap.Uint("event_id", event.ID), zap.Error(err))
	}
}
