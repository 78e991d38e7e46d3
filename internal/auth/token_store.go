package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkajic20/smart-charger-backend/internal/cache"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	accessTokenKeyPrefix  = "blacklist:access_token:"
)

// ErrRefreshTokenNotFound is returned for unknown or expired refresh tokens.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID uint, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore handles storage and retrieval of tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

var _ TokenStoreInterface = (*TokenStore)(nil)

type refreshTokenData struct {
	UserID uint `json:"user_id"`
}

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreRefreshToken stores a refresh token in Redis with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	if err := s.cache.SetJSON(ctx, refreshTokenKeyPrefix+tokenID, refreshTokenData{UserID: userID}, ttl); err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}
	return nil
}

// GetRefreshToken returns the user a stored refresh token was issued to.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, error) {
	var data refreshTokenData
	if !s.cache.GetJSON(ctx, refreshTokenKeyPrefix+tokenID, &data) {
		return 0, ErrRefreshTokenNotFound
	}
	return data.UserID, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID)
}

// BlacklistAccessToken adds an access token to the blacklist until it expires.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, accessTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, accessTokenKeyPrefix+tokenID)
	if err != nil {
		return false, nil // fail open when redis is down
	}
	return data != nil, nil
}
