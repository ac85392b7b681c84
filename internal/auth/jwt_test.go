package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestUserTokenRoundTrip(t *testing.T) {
	token, err := SignUserToken(secret, "user-1")
	require.NoError(t, err)

	claims, err := Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.False(t, claims.IsAdmin)
}

func TestAdminTokenCarriesPrivilegeFlag(t *testing.T) {
	token, err := SignAdminToken(secret, "admin-1")
	require.NoError(t, err)

	claims, err := Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := sign(secret, "user-1", false, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(secret, token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := SignUserToken(secret, "user-1")
	require.NoError(t, err)

	_, err = Parse([]byte("other-secret"), token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := Parse(secret, "not.a.token")
	assert.Error(t, err)
}
