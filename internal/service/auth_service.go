package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mkajic20/smart-charger-backend/internal/auth"
	apperr "github.com/mkajic20/smart-charger-backend/internal/errors"
	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Identity messages.
const (
	msgRegistrationFailed = "Registration failed."
	msgLoginFailed        = "Login failed."
	msgInvalidToken       = "Invalid or expired refresh token."
)

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         *model.User `json:"user,omitempty"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) Result[*model.User]
	Login(ctx context.Context, email, password string) Result[*TokenPair]
	RefreshToken(ctx context.Context, refreshToken string) Result[*TokenPair]
	// Logout revokes the refresh token and, when given, the access token.
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) Result[struct{}]
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	hasher     auth.Hasher
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, hasher auth.Hasher, logger *zap.Logger) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		tokenStore: tokenStore,
		hasher:     hasher,
		logger:     logger,
	}
}

// Register creates a customer account with a hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) Result[*model.User] {
	email := strings.TrimSpace(in.Email)
	if !emailPattern.MatchString(email) {
		return fail[*model.User](apperr.Validation(msgRegistrationFailed, "Email is not valid."))
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return fail[*model.User](apperr.Validation(msgRegistrationFailed, "Email is already in use."))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail[*model.User](fmt.Errorf("check user existence: %w", err))
	}

	firstName, lastName := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return fail[*model.User](apperr.Validation(msgRegistrationFailed, "First and last name cannot be empty."))
	}
	if len(in.Password) < minPasswordLength {
		return fail[*model.User](apperr.Validation(msgRegistrationFailed, fmt.Sprintf("Password must have at least %d characters.", minPasswordLength)))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fail[*model.User](fmt.Errorf("hash password: %w", err))
	}

	user := &model.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: &hash,
		Enabled:      true,
		RoleID:       model.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fail[*model.User](fmt.Errorf("create user: %w", err))
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return ok("Registration successful.", user)
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) Result[*TokenPair] {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail[*TokenPair](apperr.Unauthorized(msgLoginFailed, "This email is not registered."))
	}
	if err != nil {
		return fail[*TokenPair](fmt.Errorf("find user: %w", err))
	}

	if user.PasswordHash == nil || s.hasher.Compare(*user.PasswordHash, password) != nil {
		return fail[*TokenPair](apperr.Unauthorized(msgLoginFailed, "Invalid credentials."))
	}
	if !user.Enabled {
		return fail[*TokenPair](apperr.Unauthorized(msgLoginFailed, msgUserNotActive))
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return fail[*TokenPair](err)
	}
	return ok("Login successful.", pair)
}

// RefreshToken exchanges a stored refresh token for a new access token. The
// user is reloaded so a role change or deactivation takes effect.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) Result[*TokenPair] {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return fail[*TokenPair](apperr.Unauthorized(msgInvalidToken, ""))
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return fail[*TokenPair](apperr.Unauthorized(msgInvalidToken, ""))
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil || !user.Enabled {
		return fail[*TokenPair](apperr.Unauthorized(msgInvalidToken, ""))
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.RoleID, user.FullName())
	if err != nil {
		return fail[*TokenPair](fmt.Errorf("generate access token: %w", err))
	}
	return ok("Token refreshed.", &TokenPair{AccessToken: accessToken})
}

func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) Result[struct{}] {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return fail[struct{}](apperr.Unauthorized(msgInvalidToken, ""))
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return fail[struct{}](fmt.Errorf("delete refresh token: %w", err))
	}

	if access != nil && access.IsAccess() && access.ExpiresAt != nil {
		ttl := time.Until(access.ExpiresAt.Time)
		if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, ttl); err != nil {
			s.logger.Warn("blacklist access token", zap.Error(err))
		}
	}
	return ok("Logout successful.", struct{}{})
}

func (s *authService) issue(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.RoleID, user.FullName())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.RoleID, user.FullName())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, s.jwtService.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}
