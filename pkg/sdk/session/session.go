// Package session owns the authentication lifecycle of the client: anonymous
// until a login completes, authenticated while credentials are held, and back
// to anonymous on logout or provider failure. Exactly one Manager exists per
// process; consumers receive it by reference.
package session

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/caffeinepub/m-employed/pkg/sdk"
)

// Status is the session lifecycle state.
type Status int

const (
	Anonymous Status = iota
	Authenticating
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Authenticator runs the external identity provider flow. The call suspends
// until the provider resolves or fails.
type Authenticator interface {
	Authenticate(ctx context.Context) (*sdk.Credentials, error)
}

// ErrLoginInFlight is returned when Login is called while another login is
// still resolving.
var ErrLoginInFlight = sdk.NewError(sdk.CodeConflict, "login already in progress")

// ErrNotAuthenticated is returned by operations requiring a session.
var ErrNotAuthenticated = sdk.NewError(sdk.CodeUnauthenticated, "not logged in")

// Options configures Manager construction.
type Options struct {
	CredentialStore sdk.CredentialStore
}

// Option mutates Options.
type Option func(*Options)

// WithCredentialStore persists credentials across restarts and enables
// Restore.
func WithCredentialStore(store sdk.CredentialStore) Option {
	return func(o *Options) { o.CredentialStore = store }
}

// Manager holds the current session. All methods are safe for concurrent use.
type Manager struct {
	auth  Authenticator
	store sdk.CredentialStore

	mu         sync.Mutex
	status     Status
	creds      *sdk.Credentials
	resetHooks []func()
}

// NewManager creates an anonymous session bound to the given authenticator.
func NewManager(auth Authenticator, optFns ...Option) *Manager {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{
		auth:   auth,
		store:  opts.CredentialStore,
		status: Anonymous,
	}
}

// OnReset registers a hook fired synchronously whenever the identity changes
// (login success, logout). The entity cache registers its Reset here so that
// no identity-parameterized key survives a session change.
func (m *Manager) OnReset(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetHooks = append(m.resetHooks, fn)
}

func (m *Manager) fireResetHooks() {
	m.mu.Lock()
	hooks := make([]func(), len(m.resetHooks))
	copy(hooks, m.resetHooks)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Login runs the provider flow. On success the session becomes authenticated
// and dependent state is reset for the new identity; on failure the session
// stays anonymous and the provider error is returned.
func (m *Manager) Login(ctx context.Context) error {
	m.mu.Lock()
	if m.status == Authenticating {
		m.mu.Unlock()
		return ErrLoginInFlight
	}
	m.status = Authenticating
	m.mu.Unlock()

	creds, err := m.auth.Authenticate(ctx)
	if err != nil {
		m.mu.Lock()
		m.status = Anonymous
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.status = Authenticated
	m.creds = creds
	store := m.store
	m.mu.Unlock()

	if store != nil {
		// Persistence failures do not fail the login; the session simply
		// will not survive a restart.
		_ = store.SaveCredentials(creds)
	}

	m.fireResetHooks()
	return nil
}

// Restore loads persisted credentials, if any, and resumes the session
// without running the provider flow. Expired credentials are discarded.
func (m *Manager) Restore() error {
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store == nil {
		return ErrNotAuthenticated
	}

	creds, err := store.LoadCredentials()
	if err != nil {
		return err
	}
	if creds.IsExpired() {
		_ = store.DeleteCredentials()
		return ErrNotAuthenticated
	}

	m.mu.Lock()
	m.status = Authenticated
	m.creds = creds
	m.mu.Unlock()
	return nil
}

// Logout clears the credentials, returns the session to anonymous, and fires
// the reset hooks. Synchronous from the caller's perspective.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthenticated := m.status == Authenticated
	m.status = Anonymous
	m.creds = nil
	store := m.store
	m.mu.Unlock()

	if store != nil {
		_ = store.DeleteCredentials()
	}
	if wasAuthenticated {
		m.fireResetHooks()
	}
}

// Status returns the current lifecycle state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Identity returns the current opaque identity. ok is false while anonymous
// or authenticating.
func (m *Manager) Identity() (sdk.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != Authenticated || m.creds == nil {
		return "", false
	}
	return m.creds.Subject, true
}

// Credentials returns the held credentials, or nil while not authenticated.
func (m *Manager) Credentials() *sdk.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != Authenticated {
		return nil
	}
	return m.creds
}

// HTTPClient returns an http.Client bound to the credentials held right now,
// or the default client while anonymous. For a client that follows the
// session across login and logout, use Client.
func (m *Manager) HTTPClient() *http.Client {
	creds := m.Credentials()
	if creds == nil {
		return http.DefaultClient
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken:  creds.AccessToken,
		TokenType:    creds.TokenType,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiresAt,
	})
	return oauth2.NewClient(context.Background(), source)
}

// transport attaches the session's current bearer token, if any, to each
// request at send time.
type transport struct {
	manager *Manager
	base    http.RoundTripper
}

func (t transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if creds := t.manager.Credentials(); creds != nil {
		tokenType := creds.TokenType
		if tokenType == "" {
			tokenType = "Bearer"
		}
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", tokenType+" "+creds.AccessToken)
	}
	return t.base.RoundTrip(req)
}

// Client returns an http.Client that consults the session on every request:
// authenticated requests carry the current token, anonymous requests none.
func (m *Manager) Client() *http.Client {
	return &http.Client{Transport: transport{manager: m, base: http.DefaultTransport}}
}
