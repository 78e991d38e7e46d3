package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 24*time.Hour)

	token, err := svc.GenerateAccessToken(7, RoleAdmin, "Ana Horvat")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Ana Horvat", claims.Name)
	assert.True(t, claims.IsAdmin())
	assert.True(t, claims.IsAccess())
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_RefreshTokenCarriesID(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 24*time.Hour)

	id, token, err := svc.GenerateRefreshToken(7, RoleCustomer, "Ana Horvat")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.ID)
	assert.False(t, claims.IsAdmin())
	assert.Equal(t, TokenTypeRefresh, claims.Type)
	assert.False(t, claims.IsAccess())

	_, other, err := svc.GenerateRefreshToken(7, RoleCustomer, "Ana Horvat")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, time.Hour)

	foreign, err := NewJWTService("other", time.Hour, time.Hour).GenerateAccessToken(1, RoleAdmin, "x")
	require.NoError(t, err)

	expired, err := NewJWTService("secret", -time.Minute, time.Hour).GenerateAccessToken(1, RoleAdmin, "x")
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":       "not.a.token",
		"wrong secret":  foreign,
		"expired":       expired,
		"wrong alg":     wrongAlg,
		"missing token": noID,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}

func TestJWTService_ValidateRefreshTokenRequiresRefreshType(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, time.Hour)

	access, err := svc.GenerateAccessToken(7, RoleCustomer, "Ana Horvat")
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, refresh, err := svc.GenerateRefreshToken(7, RoleCustomer, "Ana Horvat")
	require.NoError(t, err)
	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, h.Compare(hash, "secret1"))
	assert.Error(t, h.Compare(hash, "secret2"))
}
