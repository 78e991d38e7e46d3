package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mkajic20/smart-charger-backend/internal/model"
)

// CardRepository defines card persistence operations.
type CardRepository interface {
	Create(ctx context.Context, card *model.Card) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Card, error)
	FindByIDForUser(ctx context.Context, id, userID uint) (*model.Card, error)
	FindByValue(ctx context.Context, value string) (*model.Card, error)
	FindByUserID(ctx context.Context, userID uint) ([]model.Card, error)
	CountEnabledByUser(ctx context.Context, userID uint) (int64, error)
	List(ctx context.Context, q PageQuery) ([]model.Card, int64, error)
	ListInUse(ctx context.Context) ([]model.Card, error)
	SetEnabled(ctx context.Context, id uint, enabled bool) error
	// MarkInUse flips in_use from false to true. It reports false when the card
	// is missing or already in use.
	MarkInUse(ctx context.Context, id uint) (bool, error)
	// Release flips in_use from true to false. It reports false when the card
	// is missing or already released.
	Release(ctx context.Context, id uint) (bool, error)
	// ReleaseIfIdle clears in_use only while no open event references the card.
	ReleaseIfIdle(ctx context.Context, id uint) (bool, error)
	// MarkIfBusy sets in_use only while an open event references the card.
	MarkIfBusy(ctx context.Context, id uint) (bool, error)
}

type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

// Create creates a new card.
func (r *cardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// Delete removes a card row.
func (r *cardRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Card{}, id).Error
}

// FindByID finds a card by ID together with its owner.
func (r *cardRepository) FindByID(ctx context.Context, id uint) (*model.Card, error) {
	var card model.Card
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByIDForUser finds a card only when it belongs to userID.
func (r *cardRepository) FindByIDForUser(ctx context.Context, id, userID uint) (*model.Card, error) {
	var card model.Card
	if err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND user_id = ?", id, userID).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByValue finds a card by its RFID payload (for card readers).
func (r *cardRepository) FindByValue(ctx context.Context, value string) (*model.Card, error) {
	var card model.Card
	if err := r.db.WithContext(ctx).Where("value = ?", value).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByUserID finds all cards owned by a user.
func (r *cardRepository) FindByUserID(ctx context.Context, userID uint) ([]model.Card, error) {
	var cards []model.Card
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *cardRepository) CountEnabledByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Card{}).
		Where("user_id = ? AND enabled = ?", userID, true).
		Count(&count).Error
	return count, err
}

// List returns one page of cards matching the owner's name, the card name or its value.
func (r *cardRepository) List(ctx context.Context, q PageQuery) ([]model.Card, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Card{}).
		Joins("LEFT JOIN users ON users.id = cards.user_id").
		Scopes(searchScope(q.Search, "users.first_name", "users.last_name", "cards.name", "cards.value"))

	var cards []model.Card
	total, err := findPage(query, "cards", q, &cards, "User")
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (r *cardRepository) ListInUse(ctx context.Context) ([]model.Card, error) {
	var cards []model.Card
	if err := r.db.WithContext(ctx).Where("in_use = ?", true).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *cardRepository) SetEnabled(ctx context.Context, id uint, enabled bool) error {
	return r.db.WithContext(ctx).Model(&model.Card{}).
		Where("id = ?", id).
		Update("enabled", enabled).Error
}

func (r *cardRepository) MarkInUse(ctx context.Context, id uint) (bool, error) {
	return swapFlag(ctx, r.db, &model.Card{}, id, "in_use", false, true)
}

func (r *cardRepository) Release(ctx context.Context, id uint) (bool, error) {
	return swapFlag(ctx, r.db, &model.Card{}, id, "in_use", true, false)
}

func (r *cardRepository) ReleaseIfIdle(ctx context.Context, id uint) (bool, error) {
	return syncFlag(ctx, r.db, &model.Card{}, "cards", "card_id", id, false)
}

func (r *cardRepository) MarkIfBusy(ctx context.Context, id uint) (bool, error) {
	return syncFlag(ctx, r.db, &model.Card{}, "cards", "card_id", id, true)
}

// swapFlag is a compare-and-swap on a boolean column: the row is updated only when
// the column still holds from. A false result means another writer got there first
// or the row does not exist.
func swapFlag(ctx context.Context, db *gorm.DB, table interface{}, id uint, column string, from, to bool) (bool, error) {
	res := db.WithContext(ctx).Model(table).
		Where("id = ? AND "+column+" = ?", id, from).
		Update(column, to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// syncFlag sets in_use to busy, but only when the presence of an open event
// referencing the row through fk agrees. The check and the write are one
// statement, so a session opened or closed after the caller read the events
// table makes the update a no-op.
func syncFlag(ctx context.Context, db *gorm.DB, table interface{}, tableName, fk string, id uint, busy bool) (bool, error) {
	cond := "EXISTS"
	if !busy {
		cond = "NOT EXISTS"
	}
	res := db.WithContext(ctx).Model(table).
		Where(tableName+".id = ? AND "+tableName+".in_use = ?", id, !busy).
		Where(cond + " (SELECT 1 FROM events WHERE events." + fk + " = " + tableName + ".id AND events.end_time IS NULL)").
		Update("in_use", busy)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
