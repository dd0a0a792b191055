package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, expiresAt, err := issuer.Issue("alice", false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	subject, admin, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", string(subject))
	assert.False(t, admin)
}

func TestTokenAdminClaim(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	token, _, err := issuer.Issue("root", true)
	require.NoError(t, err)

	_, admin, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.True(t, admin)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"), time.Hour)
	token, _, err := issuer.Issue("alice", false)
	require.NoError(t, err)

	other := NewTokenIssuer([]byte("secret-b"), time.Hour)
	_, _, err = other.Verify(token)
	require.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue("alice", false)
	require.NoError(t, err)

	issuer.now = time.Now
	_, _, err = issuer.Verify(token)
	require.Error(t, err)
}
