package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkajic20/smart-charger-backend/internal/cache"
	"github.com/mkajic20/smart-charger-backend/internal/db/dbtest"
	"github.com/mkajic20/smart-charger-backend/internal/events"
	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

type fixture struct {
	db    *gorm.DB
	store repository.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB := dbtest.Open(t)
	return &fixture{db: gormDB, store: repository.NewStore(gormDB)}
}

func (f *fixture) user(t *testing.T, first, last string, enabled bool) *model.User {
	t.Helper()
	u := &model.User{
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s@example.com", first, last),
		Enabled:   enabled,
		RoleID:    model.RoleCustomer,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) card(t *testing.T, owner *model.User, value string, enabled bool) *model.Card {
	t.Helper()
	c := &model.Card{Value: value, Name: "card " + value, Enabled: enabled, UserID: owner.ID}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) charger(t *testing.T, name string, creator *model.User) *model.Charger {
	t.Helper()
	c := &model.Charger{Name: name, Latitude: 46.3, Longitude: 16.3, CreatorID: creator.ID}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) reloadCharger(t *testing.T, id uint) *model.Charger {
	t.Helper()
	var c model.Charger
	require.NoError(t, f.db.First(&c, id).Error)
	return &c
}

func (f *fixture) reloadCard(t *testing.T, id uint) *model.Card {
	t.Helper()
	var c model.Card
	require.NoError(t, f.db.First(&c, id).Error)
	return &c
}

func (f *fixture) countEvents(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Event{}).Count(&n).Error)
	return n
}

func newTestCache(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// recordingPublisher keeps published messages and optionally fails.
type recordingPublisher struct {
	messages []events.SessionMessage
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, msg events.SessionMessage) error {
	p.messages = append(p.messages, msg)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// swapStore substitutes repositories so a test can make another writer win
// between a read and the write that depends on it. Transactions keep the
// substitution.
type swapStore struct {
	repository.Store
	chargers func(repository.ChargerRepository) repository.ChargerRepository
	cards    func(repository.CardRepository) repository.CardRepository
	events   func(repository.EventRepository) repository.EventRepository
}

func (s *swapStore) Chargers() repository.ChargerRepository {
	if s.chargers != nil {
		return s.chargers(s.Store.Chargers())
	}
	return s.Store.Chargers()
}

func (s *swapStore) Cards() repository.CardRepository {
	if s.cards != nil {
		return s.cards(s.Store.Cards())
	}
	return s.Store.Cards()
}

func (s *swapStore) Events() repository.EventRepository {
	if s.events != nil {
		return s.events(s.Store.Events())
	}
	return s.Store.Events()
}

func (s *swapStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.Store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		return fn(ctx, &swapStore{Store: tx, chargers: s.chargers, cards: s.cards, events: s.events})
	})
}

// takenCharger always loses the in-use swap.
type takenCharger struct{ repository.ChargerRepository }

func (takenCharger) MarkInUse(context.Context, uint) (bool, error) { return false, nil }

// takenCard always loses the in-use swap.
type takenCard struct{ repository.CardRepository }

func (takenCard) MarkInUse(context.Context, uint) (bool, error) { return false, nil }

// staleOpenEvents reports a fixed set of open events, as read before a
// concurrent session changed them.
type staleOpenEvents struct {
	repository.EventRepository
	open []model.Event
}

func (r staleOpenEvents) ListOpen(context.Context) ([]model.Event, error) { return r.open, nil }
