package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

func TestHistoryService(t *testing.T) {
	f := newFixture(t)
	ana := f.user(t, "Ana", "Horvat", true)
	marko := f.user(t, "Marko", "Babic", true)
	anaCard := f.card(t, ana, "ANA", true)
	markoCard := f.card(t, marko, "MARKO", true)
	centar := f.charger(t, "Centar", ana)
	depot := f.charger(t, "Depot", ana)

	sessions := NewSessionService(f.store, nil, nil, zap.NewNop())
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	// Three finished sessions for Ana, one for Marko, and one still open for Marko.
	for i := 0; i < 3; i++ {
		res := sessions.StartCharging(ctx, StartChargingInput{StartTime: start.Add(time.Duration(i) * time.Hour), ChargerID: centar.ID, CardID: anaCard.ID})
		require.True(t, res.Success, res.Message)
		require.True(t, sessions.EndCharging(ctx, EndChargingInput{EventID: res.Payload.ID}).Success)
	}
	res := sessions.StartCharging(ctx, StartChargingInput{ChargerID: depot.ID, CardID: markoCard.ID})
	require.True(t, res.Success)
	require.True(t, sessions.EndCharging(ctx, EndChargingInput{EventID: res.Payload.ID}).Success)
	require.True(t, sessions.StartCharging(ctx, StartChargingInput{ChargerID: depot.ID, CardID: markoCard.ID}).Success)

	svc := NewHistoryService(f.store.Events(), f.store.Users())

	t.Run("user history pages with default size five", func(t *testing.T) {
		got := svc.GetUsersChargingHistory(ctx, ana.ID, repository.PageQuery{})
		require.True(t, got.Success)
		assert.Equal(t, "List of Ana Horvat's events.", got.Message)
		assert.Len(t, got.Payload, 3)
		for _, e := range got.Payload {
			assert.NotNil(t, e.EndTime)
			require.NotNil(t, e.Charger)
			assert.Equal(t, "Centar", e.Charger.Name)
		}
	})

	t.Run("open sessions are not history", func(t *testing.T) {
		got := svc.GetUsersChargingHistory(ctx, marko.ID, repository.PageQuery{})
		require.True(t, got.Success)
		assert.Len(t, got.Payload, 1)
	})

	t.Run("search by charger name", func(t *testing.T) {
		got := svc.GetUsersChargingHistory(ctx, ana.ID, repository.PageQuery{Search: "depot"})
		assert.False(t, got.Success)
		assert.Equal(t, "There are no events with that parameters.", got.Message)
	})

	t.Run("unknown user", func(t *testing.T) {
		got := svc.GetUsersChargingHistory(ctx, 999, repository.PageQuery{})
		assert.False(t, got.Success)
		assert.Equal(t, "User not found.", got.Message)
	})

	t.Run("full history searches user names", func(t *testing.T) {
		all := svc.GetFullChargingHistory(ctx, repository.PageQuery{PageSize: 2})
		require.True(t, all.Success)
		assert.Len(t, all.Payload, 2)
		assert.Equal(t, 2, *all.TotalPages)

		byName := svc.GetFullChargingHistory(ctx, repository.PageQuery{Search: "MARKO"})
		require.True(t, byName.Success)
		require.Len(t, byName.Payload, 1)
		assert.Equal(t, marko.ID, byName.Payload[0].UserID)
	})
}
