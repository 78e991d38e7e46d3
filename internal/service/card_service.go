package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mkajic20/smart-charger-backend/internal/cache"
	apperr "github.com/mkajic20/smart-charger-backend/internal/errors"
	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

const (
	defaultCardPageSize = 20
	msgNoCardWithID     = "There is no RFID card with that ID."
)

// CardInput carries the fields a user supplies when registering a card.
type CardInput struct {
	Value string
	Name  string
}

// CardService manages RFID cards.
type CardService interface {
	// Admin
	GetAllCards(ctx context.Context, q repository.PageQuery) Result[[]model.Card]
	GetCardByID(ctx context.Context, id uint) Result[*model.Card]
	UpdateActiveStatus(ctx context.Context, id uint) Result[*model.Card]
	DeleteCard(ctx context.Context, id uint) Result[*model.Card]
	// Customer
	GetAllCardsForUser(ctx context.Context, userID uint) Result[[]model.Card]
	GetCardByIDForUser(ctx context.Context, id, userID uint) Result[*model.Card]
	AddCard(ctx context.Context, in CardInput, userID uint) Result[*model.Card]
	DeleteCardForUser(ctx context.Context, id, userID uint) Result[*model.Card]
	// Card readers
	VerifyCard(ctx context.Context, value string) Result[*model.Card]
}

type cardService struct {
	store  repository.Store
	cache  *cache.Client
	logger *zap.Logger
}

// NewCardService creates a new card service. The cache is only invalidated,
// never read.
func NewCardService(store repository.Store, cache *cache.Client, logger *zap.Logger) CardService {
	return &cardService{store: store, cache: cache, logger: logger}
}

func (s *cardService) GetAllCards(ctx context.Context, q repository.PageQuery) Result[[]model.Card] {
	q = q.Normalize(defaultCardPageSize)
	cards, total, err := s.store.Cards().List(ctx, q)
	if err != nil {
		return fail[[]model.Card](fmt.Errorf("list cards: %w", err))
	}
	return pageOf(cards, total, q, "List of RFID cards with users.", "There are no RFID cards with that parameters.")
}

func (s *cardService) GetCardByID(ctx context.Context, id uint) Result[*model.Card] {
	card, err := s.store.Cards().FindByID(ctx, id)
	if err != nil {
		return fail[*model.Card](missing(err, "get card", msgNoCardWithID))
	}
	return ok("RFID card with user.", card)
}

// UpdateActiveStatus toggles whether the card may start sessions. InUse is untouched.
func (s *cardService) UpdateActiveStatus(ctx context.Context, id uint) Result[*model.Card] {
	cards := s.store.Cards()
	card, err := cards.FindByID(ctx, id)
	if err != nil {
		return fail[*model.Card](missing(err, "get card", msgNoCardWithID))
	}

	card.Enabled = !card.Enabled
	if err := cards.SetEnabled(ctx, id, card.Enabled); err != nil {
		return fail[*model.Card](fmt.Errorf("update card: %w", err))
	}
	return ok(fmt.Sprintf("RFID card with ID:%d updated to %t.", id, card.Enabled), card)
}

func (s *cardService) DeleteCard(ctx context.Context, id uint) Result[*model.Card] {
	card, err := s.deleteCard(ctx, id, func(cards repository.CardRepository) (*model.Card, error) {
		card, err := cards.FindByID(ctx, id)
		if err != nil {
			return nil, missing(err, "get card", msgNoCardWithID)
		}
		return card, nil
	})
	if err != nil {
		return fail[*model.Card](err)
	}
	return ok(fmt.Sprintf("RFID card with ID:%d is deleted.", id), card)
}

// deleteCard removes the card found by find. Its events go with it, so a
// session still open on the card releases its charger first.
func (s *cardService) deleteCard(ctx context.Context, id uint, find func(repository.CardRepository) (*model.Card, error)) (*model.Card, error) {
	var card *model.Card
	var freed uint
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		if card, err = find(tx.Cards()); err != nil {
			return err
		}

		open, err := tx.Events().FindOpenByCard(ctx, id)
		switch {
		case err == nil:
			if _, err := tx.Chargers().Release(ctx, open.ChargerID); err != nil {
				return fmt.Errorf("release charger: %w", err)
			}
			freed = open.ChargerID
			s.logger.Warn("card deleted during a session", zap.Uint("card_id", id), zap.Uint("event_id", open.ID))
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("get open event: %w", err)
		}

		if err := tx.Cards().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete card: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if freed != 0 {
		_ = s.cache.Delete(ctx, chargerCacheKey(freed), activeSessionKey(freed))
	}
	return card, nil
}

func (s *cardService) GetAllCardsForUser(ctx context.Context, userID uint) Result[[]model.Card] {
	cards, err := s.store.Cards().FindByUserID(ctx, userID)
	if err != nil {
		return fail[[]model.Card](fmt.Errorf("list user cards: %w", err))
	}
	if len(cards) == 0 {
		return fail[[]model.Card](apperr.NotFound(fmt.Sprintf("User with ID:%d has no RFID card.", userID)))
	}
	return ok(fmt.Sprintf("List of RFID cards for user with ID:%d.", userID), cards)
}

func (s *cardService) GetCardByIDForUser(ctx context.Context, id, userID uint) Result[*model.Card] {
	card, err := s.store.Cards().FindByIDForUser(ctx, id, userID)
	if err != nil {
		return fail[*model.Card](missing(err, "get card", fmt.Sprintf("RFID card with ID:%d doesn't exist.", id)))
	}
	return ok("RFID card found.", card)
}

// AddCard registers a card for userID. The owner row is locked for the duration
// of the quota check so parallel registrations cannot both pass it.
func (s *cardService) AddCard(ctx context.Context, in CardInput, userID uint) Result[*model.Card] {
	var created *model.Card
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		exists, err := tx.Users().Lock(ctx, userID)
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		if !exists {
			return apperr.NotFound("User not found.")
		}

		value, name := strings.TrimSpace(in.Value), strings.TrimSpace(in.Name)
		if value == "" || name == "" {
			return apperr.Validation("RFID card value and name cannot be empty.", "")
		}

		_, err = tx.Cards().FindByValue(ctx, value)
		switch {
		case err == nil:
			return apperr.Validation("RFID card with same value already exists.", "")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("check card value: %w", err)
		}

		enabled, err := tx.Cards().CountEnabledByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("count cards: %w", err)
		}
		if enabled >= model.MaxEnabledCardsPerUser {
			return apperr.Validation(fmt.Sprintf("User can't have more than %d active RFID cards.", model.MaxEnabledCardsPerUser), "")
		}

		card := &model.Card{Value: value, Name: name, Enabled: true, InUse: false, UserID: userID}
		if err := tx.Cards().Create(ctx, card); err != nil {
			return fmt.Errorf("create card: %w", err)
		}

		created, err = tx.Cards().FindByID(ctx, card.ID)
		if err != nil {
			return fmt.Errorf("reload card: %w", err)
		}
		return nil
	})
	if err != nil {
		return fail[*model.Card](err)
	}

	s.logger.Info("card added", zap.Uint("card_id", created.ID), zap.Uint("user_id", userID))
	return ok("RFID card added.", created)
}

func (s *cardService) DeleteCardForUser(ctx context.Context, id, userID uint) Result[*model.Card] {
	card, err := s.deleteCard(ctx, id, func(cards repository.CardRepository) (*model.Card, error) {
		card, err := cards.FindByIDForUser(ctx, id, userID)
		if err != nil {
			return nil, missing(err, "get card", fmt.Sprintf("RFID card with ID:%d doesn't exist.", id))
		}
		return card, nil
	})
	if err != nil {
		return fail[*model.Card](err)
	}
	return ok(fmt.Sprintf("Successfully deleted RFID card with ID:%d.", id), card)
}

// VerifyCard tells a card reader whether the presented card may start a session.
func (s *cardService) VerifyCard(ctx context.Context, value string) Result[*model.Card] {
	card, err := s.store.Cards().FindByValue(ctx, value)
	if err != nil {
		return fail[*model.Card](missing(err, "get card", "RFID card with that value doesn't exist."))
	}
	if !card.Enabled {
		return fail[*model.Card](apperr.Conflict(fmt.Sprintf("RFID card with name %s is not active.", card.Name)))
	}
	if card.InUse {
		return fail[*model.Card](apperr.Conflict(fmt.Sprintf("RFID card with name %s is already in use.", card.Name)))
	}
	return ok("RFID card is accepted.", card)
}
