package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkajic20/smart-charger-backend/internal/cache"
	apperr "github.com/mkajic20/smart-charger-backend/internal/errors"
	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

const (
	userCacheTTL        = 5 * time.Minute
	defaultUserPageSize = 20
	msgUserNotFound     = "User not found."
)

// UserService exposes the user directory.
type UserService interface {
	GetAllUsers(ctx context.Context, q repository.PageQuery) Result[[]model.User]
	GetUserByID(ctx context.Context, id uint) Result[*model.User]
	UpdateActiveStatus(ctx context.Context, id uint) Result[*model.User]
	UpdateRole(ctx context.Context, id, roleID uint) Result[*model.User]
	GetAllRoles(ctx context.Context) Result[[]model.Role]
}

type userService struct {
	repo   repository.UserRepository
	roles  repository.RoleRepository
	cache  *cache.Client
	logger *zap.Logger
}

// NewUserService builds a UserService with repositories and cache.
func NewUserService(repo repository.UserRepository, roles repository.RoleRepository, cache *cache.Client, logger *zap.Logger) UserService {
	return &userService{repo: repo, roles: roles, cache: cache, logger: logger}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetAllUsers(ctx context.Context, q repository.PageQuery) Result[[]model.User] {
	q = q.Normalize(defaultUserPageSize)
	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return fail[[]model.User](fmt.Errorf("list users: %w", err))
	}
	return pageOf(users, total, q, "List of users.", "There are no users with that parameters.")
}

func (s *userService) GetUserByID(ctx context.Context, id uint) Result[*model.User] {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return ok("User found.", &cached)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fail[*model.User](missing(err, "get user", msgUserNotFound))
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return ok("User found.", user)
}

// UpdateActiveStatus toggles whether the user may sign in and charge.
func (s *userService) UpdateActiveStatus(ctx context.Context, id uint) Result[*model.User] {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fail[*model.User](missing(err, "get user", msgUserNotFound))
	}

	user.Enabled = !user.Enabled
	if err := s.repo.SetEnabled(ctx, id, user.Enabled); err != nil {
		return fail[*model.User](fmt.Errorf("update user: %w", err))
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	state := "deactivated"
	if user.Enabled {
		state = "activated"
	}
	s.logger.Info("user status changed", zap.Uint("user_id", id), zap.Bool("enabled", user.Enabled))
	return ok(fmt.Sprintf("User %s is %s.", user.FullName(), state), user)
}

func (s *userService) UpdateRole(ctx context.Context, id, roleID uint) Result[*model.User] {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fail[*model.User](missing(err, "get user", msgUserNotFound))
	}
	if user.RoleID == roleID {
		return fail[*model.User](apperr.Conflict(fmt.Sprintf("User %s's role is already set to that role. No changes made.", user.FullName())))
	}

	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return fail[*model.User](missing(err, "get role", "Role not found."))
	}
	if err := s.repo.SetRole(ctx, id, roleID); err != nil {
		return fail[*model.User](fmt.Errorf("update role: %w", err))
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	user.RoleID = role.ID
	user.Role = role
	s.logger.Info("user role changed", zap.Uint("user_id", id), zap.Uint("role_id", roleID))
	return ok(fmt.Sprintf("User %s's role has been updated.", user.FullName()), user)
}

func (s *userService) GetAllRoles(ctx context.Context) Result[[]model.Role] {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return fail[[]model.Role](fmt.Errorf("list roles: %w", err))
	}
	return ok("List of roles.", roles)
}
