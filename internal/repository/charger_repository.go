package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mkajic20/smart-charger-backend/internal/model"
)

// ChargerRepository defines charger persistence operations.
type ChargerRepository interface {
	Create(ctx context.Context, charger *model.Charger) error
	// UpdateLocation writes name, latitude and longitude only.
	UpdateLocation(ctx context.Context, charger *model.Charger) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Charger, error)
	FindByName(ctx context.Context, name string) (*model.Charger, error)
	List(ctx context.Context, q PageQuery) ([]model.Charger, int64, error)
	ListInUse(ctx context.Context) ([]model.Charger, error)
	MarkInUse(ctx context.Context, id uint) (bool, error)
	Release(ctx context.Context, id uint) (bool, error)
	// ReleaseIfIdle clears in_use only while the charger has no open event.
	ReleaseIfIdle(ctx context.Context, id uint) (bool, error)
	// MarkIfBusy sets in_use only while the charger has an open event.
	MarkIfBusy(ctx context.Context, id uint) (bool, error)
	MarkSynced(ctx context.Context, ids []uint, at time.Time) error
}

type chargerRepository struct {
	db *gorm.DB
}

// NewChargerRepository creates a new charger repository.
func NewChargerRepository(db *gorm.DB) ChargerRepository {
	return &chargerRepository{db: db}
}

func (r *chargerRepository) Create(ctx context.Context, charger *model.Charger) error {
	return r.db.WithContext(ctx).Create(charger).Error
}

func (r *chargerRepository) UpdateLocation(ctx context.Context, charger *model.Charger) error {
	return r.db.WithContext(ctx).Model(charger).
		Select("name", "latitude", "longitude").
		Updates(charger).Error
}

func (r *chargerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Charger{}, id).Error
}

func (r *chargerRepository) FindByID(ctx context.Context, id uint) (*model.Charger, error) {
	var charger model.Charger
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&charger).Error; err != nil {
		return nil, err
	}
	return &charger, nil
}

func (r *chargerRepository) FindByName(ctx context.Context, name string) (*model.Charger, error) {
	var charger model.Charger
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id").First(&charger).Error; err != nil {
		return nil, err
	}
	return &charger, nil
}

// List returns one page of chargers whose name contains the search term.
func (r *chargerRepository) List(ctx context.Context, q PageQuery) ([]model.Charger, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Charger{}).
		Scopes(searchScope(q.Search, "chargers.name"))

	var chargers []model.Charger
	total, err := findPage(query, "chargers", q, &chargers)
	if err != nil {
		return nil, 0, err
	}
	return chargers, total, nil
}

func (r *chargerRepository) ListInUse(ctx context.Context) ([]model.Charger, error) {
	var chargers []model.Charger
	if err := r.db.WithContext(ctx).Where("in_use = ?", true).Find(&chargers).Error; err != nil {
		return nil, err
	}
	return chargers, nil
}

func (r *chargerRepository) MarkInUse(ctx context.Context, id uint) (bool, error) {
	return swapFlag(ctx, r.db, &model.Charger{}, id, "in_use", false, true)
}

func (r *chargerRepository) Release(ctx context.Context, id uint) (bool, error) {
	return swapFlag(ctx, r.db, &model.Charger{}, id, "in_use", true, false)
}

func (r *chargerRepository) ReleaseIfIdle(ctx context.Context, id uint) (bool, error) {
	return syncFlag(ctx, r.db, &model.Charger{}, "chargers", "charger_id", id, false)
}

func (r *chargerRepository) MarkIfBusy(ctx context.Context, id uint) (bool, error) {
	return syncFlag(ctx, r.db, &model.Charger{}, "chargers", "charger_id", id, true)
}

// MarkSynced stamps last_sync on the given chargers.
func (r *chargerRepository) MarkSynced(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Charger{}).
		Where("id IN ?", ids).
		Update("last_sync", at).Error
}
