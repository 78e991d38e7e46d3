package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mkajic20/smart-charger-backend/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, q PageQuery) ([]model.User, int64, error)
	SetEnabled(ctx context.Context, id uint, enabled bool) error
	SetRole(ctx context.Context, id, roleID uint) error
	// Lock touches the user row so concurrent transactions on the same user
	// serialize behind it. It reports false when the user does not exist.
	Lock(ctx context.Context, id uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Role").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, q PageQuery) ([]model.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.User{}).
		Scopes(searchScope(q.Search, "users.first_name", "users.last_name", "users.email"))

	var users []model.User
	total, err := findPage(query, "users", q, &users, "Role")
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) SetEnabled(ctx context.Context, id uint, enabled bool) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("enabled", enabled).Error
}

func (r *userRepository) SetRole(ctx context.Context, id, roleID uint) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("role_id", roleID).Error
}

func (r *userRepository) Lock(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", time.Now().UTC())
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	// MySQL reports changed rows, so an unchanged timestamp still needs a lookup.
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 1, nil
}
