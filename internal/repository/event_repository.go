package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mkajic20/smart-charger-backend/internal/model"
)

// EventRepository defines charging session persistence operations.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	FindByID(ctx context.Context, id uint) (*model.Event, error)
	FindOpenByCharger(ctx context.Context, chargerID uint) (*model.Event, error)
	FindOpenByCard(ctx context.Context, cardID uint) (*model.Event, error)
	// Close sets end_time and volume on an open event. It reports false when the
	// event is missing or was already closed.
	Close(ctx context.Context, id uint, endTime time.Time, volume decimal.NullDecimal) (bool, error)
	ListOpen(ctx context.Context) ([]model.Event, error)
	ListClosedByUser(ctx context.Context, userID uint, q PageQuery) ([]model.Event, int64, error)
	ListClosed(ctx context.Context, q PageQuery) ([]model.Event, int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit("Charger", "Card", "User").Create(event).Error
}

// FindByID loads an event with its charger, card and user.
func (r *eventRepository) FindByID(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).
		Preload("Charger").Preload("Card").Preload("User").
		Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindOpenByCharger(ctx context.Context, chargerID uint) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).
		Preload("Charger").Preload("Card").Preload("User").
		Where("charger_id = ? AND end_time IS NULL", chargerID).
		Order("id DESC").First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindOpenByCard(ctx context.Context, cardID uint) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).
		Where("card_id = ? AND end_time IS NULL", cardID).
		Order("id DESC").First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Close(ctx context.Context, id uint, endTime time.Time, volume decimal.NullDecimal) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("id = ? AND end_time IS NULL", id).
		Updates(map[string]interface{}{
			"end_time": endTime,
			"volume":   volume,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *eventRepository) ListOpen(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Where("end_time IS NULL").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListClosedByUser pages through a user's finished sessions, searching card and
// charger names.
func (r *eventRepository) ListClosedByUser(ctx context.Context, userID uint, q PageQuery) ([]model.Event, int64, error) {
	query := r.closedEvents(ctx).
		Where("events.user_id = ?", userID).
		Scopes(searchScope(q.Search, "cards.name", "chargers.name"))

	var events []model.Event
	total, err := findPage(query, "events", q, &events, "Charger", "Card", "User")
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListClosed pages through every finished session, searching card, charger and
// user names.
func (r *eventRepository) ListClosed(ctx context.Context, q PageQuery) ([]model.Event, int64, error) {
	query := r.closedEvents(ctx).
		Joins("LEFT JOIN users ON users.id = events.user_id").
		Scopes(searchScope(q.Search, "cards.name", "chargers.name", "users.first_name", "users.last_name"))

	var events []model.Event
	total, err := findPage(query, "events", q, &events, "Charger", "Card", "User")
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) closedEvents(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Event{}).
		Joins("LEFT JOIN cards ON cards.id = events.card_id").
		Joins("LEFT JOIN chargers ON chargers.id = events.charger_id").
		Where("events.end_time IS NOT NULL")
}
