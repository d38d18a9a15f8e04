package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lee_Forum/internal/config"
)

func TestTokenManager_ParseAccess(t *testing.T) {
	m := NewTokenManager(config.JWTConfig{AccessSecret: "a", RefreshSecret: "r"})

	pair, err := m.GeneratePair(42)
	require.NoError(t, err)

	claims, err := m.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)

	_, err = m.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)

	other := NewTokenManager(config.JWTConfig{AccessSecret: "b"})
	_, err = other.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager(config.JWTConfig{AccessSecret: "a", AccessTTL: time.Nanosecond})
	pair, err := m.GeneratePair(1)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = m.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
