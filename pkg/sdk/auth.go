package sdk

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// DeviceFlowAuthenticator authenticates a human user with the OIDC Device
// Authorization Flow (RFC 8628). It discovers the provider configuration from
// the issuer, guides the user to a browser, and polls the token endpoint
// until the user approves or the flow times out.
type DeviceFlowAuthenticator struct {
	Issuer   string
	ClientID string

	// Prompt receives the verification instructions to show the user. When
	// nil the instructions are printed to stdout.
	Prompt func(userCode, verificationURI, verificationURIComplete string)
}

// Authenticate runs the device flow and returns the resulting credentials.
// The caller is suspended until the provider resolves or fails.
func (a *DeviceFlowAuthenticator) Authenticate(ctx context.Context) (*Credentials, error) {
	scopes := []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail, oidc.ScopeOfflineAccess}

	relyingParty, err := rp.NewRelyingPartyOIDC(
		ctx,
		a.Issuer,
		a.ClientID,
		"", // public client, no secret
		"", // no redirect URI for device flow
		scopes,
		rp.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC provider at %s: %w", a.Issuer, err)
	}

	authResponse, err := rp.DeviceAuthorization(ctx, scopes, relyingParty, nil)
	if err != nil {
		return nil, fmt.Errorf("start device authorization flow: %w", err)
	}

	prompt := a.Prompt
	if prompt == nil {
		prompt = printDeviceCodeInstructions
	}
	prompt(authResponse.UserCode, authResponse.VerificationURI, authResponse.VerificationURIComplete)

	interval := time.Duration(authResponse.Interval) * time.Second
	if interval == 0 {
		interval = 5 * time.Second
	}

	token, err := rp.DeviceAccessToken(ctx, authResponse.DeviceCode, interval, relyingParty)
	if err != nil {
		return nil, fmt.Errorf("device authorization failed: %w", err)
	}

	creds := &Credentials{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}

	if token.IDToken != "" {
		claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, token.IDToken, relyingParty.IDTokenVerifier())
		if err != nil {
			return nil, fmt.Errorf("verify ID token: %w", err)
		}
		creds.Subject = Identity(claims.Subject)
	}

	return creds, nil
}

func printDeviceCodeInstructions(userCode, verificationURI, verificationURIComplete string) {
	fmt.Println("============================================================")
	fmt.Printf("Your user code is: %s\n", userCode)
	fmt.Println("")
	fmt.Println("Visit the following URL in your browser to authorize this device:")
	fmt.Printf("  %s\n", verificationURI)
	if verificationURIComplete != "" {
		fmt.Println("")
		fmt.Println("Or use this direct link (includes the code):")
		fmt.Printf("  %s\n", verificationURIComplete)
	}
	fmt.Println("============================================================")
	fmt.Println("Waiting for authorization...")
}

// DevTokenAuthenticator logs in against the dev server's token endpoint.
// It exists for local development and tests; the dev server issues a signed
// token for any requested user name without a password.
type DevTokenAuthenticator struct {
	BaseURL string
	User    string
	Admin   bool
}

// Authenticate requests a dev token for the configured user.
func (a *DevTokenAuthenticator) Authenticate(ctx context.Context) (*Credentials, error) {
	if a.User == "" {
		return nil, NewError(CodeInvalidArgument, "dev login requires a user name")
	}

	client := NewClient(a.BaseURL)
	in := struct {
		User  string `json:"user"`
		Admin bool   `json:"admin,omitempty"`
	}{User: a.User, Admin: a.Admin}
	var resp struct {
		Token     string   `json:"token"`
		TokenType string   `json:"token_type"`
		Subject   Identity `json:"subject"`
		ExpiresAt Time     `json:"expires_at"`
	}
	if err := client.do(ctx, http.MethodPost, "/v1/auth/login", in, &resp); err != nil {
		return nil, err
	}

	return &Credentials{
		AccessToken: resp.Token,
		TokenType:   resp.TokenType,
		ExpiresAt:   resp.ExpiresAt.Std(),
		Subject:     resp.Subject,
	}, nil
}
