package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/m-employed/pkg/sdk"
)

type fakeAuthenticator struct {
	mu      sync.Mutex
	creds   *sdk.Credentials
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context) (*sdk.Credentials, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds, f.err
}

type memoryStore struct {
	mu    sync.Mutex
	creds *sdk.Credentials
}

func (m *memoryStore) SaveCredentials(creds *sdk.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	return nil
}

func (m *memoryStore) LoadCredentials() (*sdk.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return nil, errors.New("not logged in")
	}
	return m.creds, nil
}

func (m *memoryStore) DeleteCredentials() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = nil
	return nil
}

func validCreds(subject sdk.Identity) *sdk.Credentials {
	return &sdk.Credentials{
		AccessToken: "token",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour),
		Subject:     subject,
	}
}

func TestLoginLifecycle(t *testing.T) {
	auth := &fakeAuthenticator{creds: validCreds("alice")}
	m := NewManager(auth)

	assert.Equal(t, Anonymous, m.Status())
	_, ok := m.Identity()
	assert.False(t, ok)

	require.NoError(t, m.Login(context.Background()))
	assert.Equal(t, Authenticated, m.Status())

	id, ok := m.Identity()
	require.True(t, ok)
	assert.Equal(t, sdk.Identity("alice"), id)

	m.Logout()
	assert.Equal(t, Anonymous, m.Status())
	_, ok = m.Identity()
	assert.False(t, ok)
}

func TestLoginFailureStaysAnonymous(t *testing.T) {
	auth := &fakeAuthenticator{err: errors.New("provider rejected")}
	m := NewManager(auth)

	err := m.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, Anonymous, m.Status())
	assert.Nil(t, m.Credentials())
}

func TestConcurrentLoginRefused(t *testing.T) {
	auth := &fakeAuthenticator{
		creds:   validCreds("alice"),
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	m := NewManager(auth)

	done := make(chan error, 1)
	go func() { done <- m.Login(context.Background()) }()

	<-auth.started
	assert.Equal(t, Authenticating, m.Status())

	err := m.Login(context.Background())
	require.ErrorIs(t, err, ErrLoginInFlight)

	close(auth.block)
	require.NoError(t, <-done)
	assert.Equal(t, Authenticated, m.Status())
}

func TestResetHooksFireOnIdentityChange(t *testing.T) {
	auth := &fakeAuthenticator{creds: validCreds("alice")}
	m := NewManager(auth)

	var fired int
	m.OnReset(func() { fired++ })

	require.NoError(t, m.Login(context.Background()))
	assert.Equal(t, 1, fired)

	m.Logout()
	assert.Equal(t, 2, fired)

	// Logging out while already anonymous is a no-op for hooks.
	m.Logout()
	assert.Equal(t, 2, fired)
}

func TestLoginFailureDoesNotFireHooks(t *testing.T) {
	auth := &fakeAuthenticator{err: errors.New("provider down")}
	m := NewManager(auth)

	var fired int
	m.OnReset(func() { fired++ })

	require.Error(t, m.Login(context.Background()))
	assert.Equal(t, 0, fired)
}

func TestRestoreFromStore(t *testing.T) {
	store := &memoryStore{}
	auth := &fakeAuthenticator{creds: validCreds("alice")}

	first := NewManager(auth, WithCredentialStore(store))
	require.NoError(t, first.Login(context.Background()))

	// A new manager with the same store resumes the session without the
	// provider flow.
	second := NewManager(&fakeAuthenticator{err: errors.New("must not be called")}, WithCredentialStore(store))
	require.NoError(t, second.Restore())
	assert.Equal(t, Authenticated, second.Status())

	id, ok := second.Identity()
	require.True(t, ok)
	assert.Equal(t, sdk.Identity("alice"), id)
}

func TestRestoreDiscardsExpiredCredentials(t *testing.T) {
	store := &memoryStore{}
	expired := validCreds("alice")
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.SaveCredentials(expired))

	m := NewManager(&fakeAuthenticator{}, WithCredentialStore(store))
	err := m.Restore()
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, Anonymous, m.Status())

	_, loadErr := store.LoadCredentials()
	assert.Error(t, loadErr, "expired credentials should be deleted")
}

func TestLogoutClearsStore(t *testing.T) {
	store := &memoryStore{}
	auth := &fakeAuthenticator{creds: validCreds("alice")}
	m := NewManager(auth, WithCredentialStore(store))

	require.NoError(t, m.Login(context.Background()))
	m.Logout()

	_, err := store.LoadCredentials()
	assert.Error(t, err)
}
