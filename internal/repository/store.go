package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Users() UserRepository
	Roles() RoleRepository
	Cards() CardRepository
	Chargers() ChargerRepository
	Events() EventRepository
	// WithTransaction runs fn inside a database transaction. fn must use the
	// Store it receives; returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository       { return NewUserRepository(s.db) }
func (s *gormStore) Roles() RoleRepository       { return NewRoleRepository(s.db) }
func (s *gormStore) Cards() CardRepository       { return NewCardRepository(s.db) }
func (s *gormStore) Chargers() ChargerRepository { return NewChargerRepository(s.db) }
func (s *gormStore) Events() EventRepository     { return NewEventRepository(s.db) }

// WithTransaction executes a function within a database transaction.
func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}
