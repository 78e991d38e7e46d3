package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the typ claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrWrongTokenType is returned when a token of the other type is presented.
var ErrWrongTokenType = errors.New("wrong token type")

// Claims represents JWT claims.
type Claims struct {
	UserID uint   `json:"userId"`
	RoleID uint   `json:"roleId"`
	Name   string `json:"name"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// IsAccess reports whether the token may authenticate API requests.
func (c *Claims) IsAccess() bool {
	return c.Type == TokenTypeAccess
}

// IsAdmin reports whether the token was issued to an administrator.
func (c *Claims) IsAdmin() bool {
	return c.RoleID == RoleAdmin
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService creates a new JWT service with the given secret and lifetimes.
func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Secret returns the HMAC key, for the echo-jwt middleware.
func (s *JWTService) Secret() []byte {
	return s.secret
}

// AccessTTL is the lifetime of access tokens.
func (s *JWTService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL is the lifetime of refresh tokens.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// GenerateAccessToken generates a new access token for the user.
func (s *JWTService) GenerateAccessToken(userID, roleID uint, name string) (string, error) {
	_, token, err := s.sign(userID, roleID, name, TokenTypeAccess, s.accessTTL)
	return token, err
}

// GenerateRefreshToken generates a new refresh token for the user.
// The refresh token ID is returned separately for storage in Redis.
func (s *JWTService) GenerateRefreshToken(userID, roleID uint, name string) (tokenID string, token string, err error) {
	return s.sign(userID, roleID, name, TokenTypeRefresh, s.refreshTTL)
}

func (s *JWTService) sign(userID, roleID uint, name, typ string, ttl time.Duration) (string, string, error) {
	now := time.Now()
	tokenID := uuid.New().String()
	claims := &Claims{
		UserID: userID,
		RoleID: roleID,
		Name:   name,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return tokenID, token, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("token ID not found")
	}

	return claims, nil
}

// ValidateRefreshToken validates tokenString and requires it to be a refresh token.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
