package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperr "github.com/mkajic20/smart-charger-backend/internal/errors"
	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

func TestCardService_AddCard(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ana", "Horvat", true)
	other := f.user(t, "Marko", "Babic", true)
	svc := NewCardService(f.store, nil, zap.NewNop())
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res := svc.AddCard(ctx, CardInput{Value: fmt.Sprintf("V-%d", i), Name: fmt.Sprintf("Card %d", i)}, owner.ID)
		require.True(t, res.Success, res.Message)
		assert.Equal(t, "RFID card added.", res.Message)
		assert.True(t, res.Payload.Enabled)
		assert.False(t, res.Payload.InUse)
		require.NotNil(t, res.Payload.User)
		assert.Equal(t, owner.ID, res.Payload.User.ID)
	}

	t.Run("sixth active card is rejected", func(t *testing.T) {
		res := svc.AddCard(ctx, CardInput{Value: "V-6", Name: "Card 6"}, owner.ID)
		assert.False(t, res.Success)
		assert.Equal(t, "User can't have more than 5 active RFID cards.", res.Message)
		assert.Equal(t, apperr.KindValidation, res.Kind)
	})

	t.Run("duplicate value is rejected for any owner", func(t *testing.T) {
		res := svc.AddCard(ctx, CardInput{Value: "V-1", Name: "Copy"}, other.ID)
		assert.False(t, res.Success)
		assert.Equal(t, "RFID card with same value already exists.", res.Message)
	})

	t.Run("blank fields are rejected", func(t *testing.T) {
		res := svc.AddCard(ctx, CardInput{Value: "  ", Name: "Card"}, other.ID)
		assert.False(t, res.Success)
		assert.Equal(t, "RFID card value and name cannot be empty.", res.Message)
	})

	t.Run("unknown user", func(t *testing.T) {
		res := svc.AddCard(ctx, CardInput{Value: "V-9", Name: "Card"}, 999)
		assert.False(t, res.Success)
		assert.Equal(t, "User not found.", res.Message)
		assert.Equal(t, apperr.KindNotFound, res.Kind)
	})

	t.Run("disabling a card frees quota", func(t *testing.T) {
		cards := svc.GetAllCardsForUser(ctx, owner.ID)
		require.True(t, cards.Success)
		toggled := svc.UpdateActiveStatus(ctx, cards.Payload[0].ID)
		require.True(t, toggled.Success)
		assert.Equal(t, fmt.Sprintf("RFID card with ID:%d updated to false.", cards.Payload[0].ID), toggled.Message)

		res := svc.AddCard(ctx, CardInput{Value: "V-6", Name: "Card 6"}, owner.ID)
		assert.True(t, res.Success, res.Message)
	})
}

func TestCardService_OwnerScopedAccess(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ana", "Horvat", true)
	stranger := f.user(t, "Marko", "Babic", true)
	card := f.card(t, owner, "RF-1", true)
	svc := NewCardService(f.store, nil, zap.NewNop())
	ctx := context.Background()

	found := svc.GetCardByIDForUser(ctx, card.ID, owner.ID)
	require.True(t, found.Success)
	assert.Equal(t, "RFID card found.", found.Message)

	hidden := svc.GetCardByIDForUser(ctx, card.ID, stranger.ID)
	assert.False(t, hidden.Success)
	assert.Equal(t, apperr.KindNotFound, hidden.Kind)

	denied := svc.DeleteCardForUser(ctx, card.ID, stranger.ID)
	assert.False(t, denied.Success)
	assert.Equal(t, apperr.KindNotFound, denied.Kind)

	none := svc.GetAllCardsForUser(ctx, stranger.ID)
	assert.False(t, none.Success)
	assert.Equal(t, fmt.Sprintf("User with ID:%d has no RFID card.", stranger.ID), none.Message)

	deleted := svc.DeleteCardForUser(ctx, card.ID, owner.ID)
	require.True(t, deleted.Success)
	assert.False(t, svc.GetCardByID(ctx, card.ID).Success)
}

func TestCardService_VerifyCard(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Ana", "Horvat", true)
	active := f.card(t, owner, "OK", true)
	disabled := f.card(t, owner, "OFF", false)
	busy := f.card(t, owner, "BUSY", true)
	require.NoError(t, f.db.Model(busy).Update("in_use", true).Error)
	svc := NewCardService(f.store, nil, zap.NewNop())
	ctx := context.Background()

	res := svc.VerifyCard(ctx, active.Value)
	assert.True(t, res.Success)
	assert.Equal(t, "RFID card is accepted.", res.Message)

	res = svc.VerifyCard(ctx, disabled.Value)
	assert.False(t, res.Success)
	assert.Equal(t, "RFID card with name card OFF is not active.", res.Message)

	res = svc.VerifyCard(ctx, busy.Value)
	assert.False(t, res.Success)
	assert.Equal(t, "RFID card with name card BUSY is already in use.", res.Message)

	res = svc.VerifyCard(ctx, "missing")
	assert.False(t, res.Success)
	assert.Equal(t, "RFID card with that value doesn't exist.", res.Message)
	assert.Equal(t, apperr.KindNotFound, res.Kind)
}

func TestCardService_GetAllCardsPagination(t *testing.T) {
	f := newFixture(t)
	ana := f.user(t, "Ana", "Horvat", true)
	marko := f.user(t, "Marko", "Babic", true)
	for i := 0; i < 3; i++ {
		f.card(t, ana, fmt.Sprintf("A-%d", i), true)
	}
	for i := 0; i < 2; i++ {
		f.card(t, marko, fmt.Sprintf("M-%d", i), true)
	}
	svc := NewCardService(f.store, nil, zap.NewNop())
	ctx := context.Background()

	res := svc.GetAllCards(ctx, repository.PageQuery{Page: 1, PageSize: 2})
	require.True(t, res.Success)
	assert.Len(t, res.Payload, 2)
	require.NotNil(t, res.TotalPages)
	assert.Equal(t, 3, *res.TotalPages)
	assert.Equal(t, 1, *res.Page)

	res = svc.GetAllCards(ctx, repository.PageQuery{Page: 1, PageSize: 2, Search: "MARKO"})
	require.True(t, res.Success)
	assert.Len(t, res.Payload, 2)
	assert.Equal(t, 1, *res.TotalPages)
	for _, c := range res.Payload {
		assert.Equal(t, marko.ID, c.UserID)
		require.NotNil(t, c.User)
	}

	past := svc.GetAllCards(ctx, repository.PageQuery{Page: 4, PageSize: 2})
	assert.False(t, past.Success)
	assert.Empty(t, past.Payload)
	assert.Equal(t, "There are no RFID cards with that parameters.", past.Message)
}

func TestCardService_DeleteDuringSessionFreesCharger(t *testing.T) {
	tests := []struct {
		name   string
		delete func(svc CardService, card *model.Card) Result[*model.Card]
	}{
		{"admin delete", func(svc CardService, card *model.Card) Result[*model.Card] {
			return svc.DeleteCard(context.Background(), card.ID)
		}},
		{"owner delete", func(svc CardService, card *model.Card) Result[*model.Card] {
			return svc.DeleteCardForUser(context.Background(), card.ID, card.UserID)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			owner := f.user(t, "Ana", "Horvat", true)
			card := f.card(t, owner, "RF-1", true)
			spare := f.card(t, owner, "RF-2", true)
			charger := f.charger(t, "Centar", owner)
			client, mr := newTestCache(t)
			ctx := context.Background()

			sessions := NewSessionService(f.store, client, nil, zap.NewNop())
			require.True(t, sessions.StartCharging(ctx, StartChargingInput{ChargerID: charger.ID, CardID: card.ID}).Success)
			require.True(t, mr.Exists(activeSessionKey(charger.ID)))

			res := tt.delete(NewCardService(f.store, client, zap.NewNop()), card)
			require.True(t, res.Success, res.Message)

			assert.Zero(t, f.countEvents(t), "open event cascades with the card")
			assert.False(t, f.reloadCharger(t, charger.ID).InUse)
			assert.False(t, mr.Exists(activeSessionKey(charger.ID)))

			next := sessions.StartCharging(ctx, StartChargingInput{ChargerID: charger.ID, CardID: spare.ID})
			assert.True(t, next.Success, next.Message)
		})
	}
}
