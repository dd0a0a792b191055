// Package client builds the process-wide workspace for mectl commands: one
// SDK client, one entity cache, and one session manager, assembled lazily on
// first use and shared by every command in the invocation.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/auth"
	"github.com/caffeinepub/m-employed/pkg/sdk"
	"github.com/caffeinepub/m-employed/pkg/sdk/cache"
	"github.com/caffeinepub/m-employed/pkg/sdk/session"
	"github.com/caffeinepub/m-employed/pkg/sdk/workspace"
)

// Provider yields the shared workspace backed by the credential store.
type Provider struct {
	serverURL string

	authMu        sync.Mutex
	authenticator session.Authenticator

	once sync.Once
	ws   *workspace.Workspace
	err  error
}

// NewProvider constructs a Provider bound to the given server URL.
func NewProvider(serverURL string) *Provider {
	return &Provider{serverURL: serverURL}
}

// ServerURL returns the configured server URL.
func (p *Provider) ServerURL() string { return p.serverURL }

// SetAuthenticator selects the identity provider flow used by Login. The
// login command calls this before triggering the flow; commands that only
// restore persisted credentials never need it.
func (p *Provider) SetAuthenticator(a session.Authenticator) {
	p.authMu.Lock()
	p.authenticator = a
	p.authMu.Unlock()
}

// Authenticate implements session.Authenticator by delegating to the flow
// selected via SetAuthenticator.
func (p *Provider) Authenticate(ctx context.Context) (*sdk.Credentials, error) {
	p.authMu.Lock()
	delegate := p.authenticator
	p.authMu.Unlock()
	if delegate == nil {
		return nil, fmt.Errorf("no authentication flow configured; run `mectl auth login`")
	}
	return delegate.Authenticate(ctx)
}

// Workspace returns the shared workspace, building it on first call.
// Persisted credentials are restored so a prior login survives across
// invocations.
func (p *Provider) Workspace(ctx context.Context) (*workspace.Workspace, error) {
	p.once.Do(func() {
		store, err := auth.NewFileStore()
		if err != nil {
			p.err = fmt.Errorf("failed to create credential store: %w", err)
			return
		}

		sess := session.NewManager(p, session.WithCredentialStore(store))
		// Not being logged in is fine; commands that need a session fail
		// with unauthenticated on their own.
		_ = sess.Restore()

		entities, err := cache.NewStore(cache.DefaultSize)
		if err != nil {
			p.err = fmt.Errorf("failed to create entity cache: %w", err)
			return
		}

		sdkClient := sdk.NewClient(p.serverURL, sdk.WithHTTPClient(sess.Client()))
		p.ws = workspace.New(sdkClient, entities, sess)
	})
	return p.ws, p.err
}
