package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckCredentials(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	require.True(t, CheckCredentials("admin", hash, "admin", "s3cret"))
	require.False(t, CheckCredentials("admin", hash, "admin", "wrong"))
	require.False(t, CheckCredentials("admin", hash, "ADMIN", "s3cret"))
	require.False(t, CheckCredentials("", hash, "", "s3cret"))
	require.False(t, CheckCredentials("admin", "", "admin", ""))
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("key", time.Hour)

	token, err := m.GenerateToken("admin")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "admin", claims["username"])
	require.NotEmpty(t, claims["jti"])

	other, err := m.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestParseToken_Rejects(t *testing.T) {
	m := NewTokenManager("key", time.Hour)
	token, err := m.GenerateToken("admin")
	require.NoError(t, err)

	_, err = NewTokenManager("other-key", time.Hour).ParseToken(token)
	require.Error(t, err)

	expired := NewTokenManager("key", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken("admin")
	require.NoError(t, err)
	_, err = m.ParseToken(old)
	require.Error(t, err)

	_, err = m.ParseToken("garbage")
	require.Error(t, err)
}
