package jwtutil

import (
	"testing"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	util := NewJWTUtil(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	jamiaID := uint(7)
	token, err := util.GenerateToken("mudeer@daralhuda.org", 42, "mudeer", &jamiaID, "dar-al-huda")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "mudeer@daralhuda.org", claims.Email)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "mudeer", claims.Role)
	require.NotNil(t, claims.JamiaID)
	assert.Equal(t, uint(7), *claims.JamiaID)
	assert.Equal(t, "dar-al-huda", claims.JamiaKey)
}

func TestValidateTokenWrongKey(t *testing.T) {
	util := NewJWTUtil(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	token, err := util.GenerateToken("admin@daralhuda.org", 1, "admin", nil, "")
	require.NoError(t, err)

	other := NewJWTUtil(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	util := NewJWTUtil(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: -1})
	token, err := util.GenerateToken("admin@daralhuda.org", 1, "admin", nil, "")
	require.NoError(t, err)

	_, err = util.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateGarbageToken(t *testing.T) {
	util := NewJWTUtil(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	_, err := util.ValidateToken("not-a-token")
	assert.Error(t, err)
}
