package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

func TestReconciler_RepairsDriftedFlags(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "Ivo", "Kovac", true)
	openCard := f.card(t, u, "OPEN", true)
	staleCard := f.card(t, u, "STALE", true)
	openCharger := f.charger(t, "Open", u)
	staleCharger := f.charger(t, "Stale", u)

	sessions := NewSessionService(f.store, nil, nil, zap.NewNop())
	ctx := context.Background()
	started := sessions.StartCharging(ctx, StartChargingInput{ChargerID: openCharger.ID, CardID: openCard.ID})
	require.True(t, started.Success)

	// Drift: the open session lost its flags and an idle pair kept theirs.
	require.NoError(t, f.db.Model(openCharger).Update("in_use", false).Error)
	require.NoError(t, f.db.Model(openCard).Update("in_use", false).Error)
	require.NoError(t, f.db.Model(staleCharger).Update("in_use", true).Error)
	require.NoError(t, f.db.Model(staleCard).Update("in_use", true).Error)

	client, mr := newTestCache(t)
	require.NoError(t, client.Set(ctx, chargerCacheKey(staleCharger.ID), []byte(`{}`), 0))
	rec := NewReconciler(f.store, client, zap.NewNop())

	report, err := rec.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{ChargersReleased: 1, ChargersMarked: 1, CardsReleased: 1, CardsMarked: 1}, report)
	assert.True(t, report.Changed())

	assert.True(t, f.reloadCharger(t, openCharger.ID).InUse)
	assert.True(t, f.reloadCard(t, openCard.ID).InUse)
	assert.False(t, f.reloadCharger(t, staleCharger.ID).InUse)
	assert.False(t, f.reloadCard(t, staleCard.ID).InUse)
	assert.NotNil(t, f.reloadCharger(t, openCharger.ID).LastSync)
	assert.False(t, mr.Exists(chargerCacheKey(staleCharger.ID)))

	again, err := rec.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed())
}

func TestReconciler_LeavesFlagsOfConcurrentSessions(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "Ivo", "Kovac", true)
	startedCard := f.card(t, u, "STARTED", true)
	endedCard := f.card(t, u, "ENDED", true)
	startedCharger := f.charger(t, "Started", u)
	endedCharger := f.charger(t, "Ended", u)

	sessions := NewSessionService(f.store, nil, nil, zap.NewNop())
	ctx := context.Background()
	ended := sessions.StartCharging(ctx, StartChargingInput{ChargerID: endedCharger.ID, CardID: endedCard.ID})
	require.True(t, ended.Success)
	snapshot := []model.Event{*ended.Payload}
	require.True(t, sessions.EndCharging(ctx, EndChargingInput{EventID: ended.Payload.ID}).Success)
	require.True(t, sessions.StartCharging(ctx, StartChargingInput{ChargerID: startedCharger.ID, CardID: startedCard.ID}).Success)

	// The reconciler read open events before the start and the end above.
	store := &swapStore{Store: f.store, events: func(r repository.EventRepository) repository.EventRepository {
		return staleOpenEvents{EventRepository: r, open: snapshot}
	}}
	report, err := NewReconciler(store, nil, zap.NewNop()).Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, report.Changed())

	assert.True(t, f.reloadCharger(t, startedCharger.ID).InUse)
	assert.True(t, f.reloadCard(t, startedCard.ID).InUse)
	assert.False(t, f.reloadCharger(t, endedCharger.ID).InUse)
	assert.False(t, f.reloadCard(t, endedCard.ID).InUse)
}
