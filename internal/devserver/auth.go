package devserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/caffeinepub/m-employed/pkg/sdk"
)

const tokenIssuerName = "meapi"

type devClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin,omitempty"`
}

// TokenIssuer issues and verifies the dev server's HS256 bearer tokens.
// There is no password check: any requested user name yields a token. This
// stands in for the external identity provider during development and tests.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer with the given signing secret and token
// lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for the subject.
func (i *TokenIssuer) Issue(subject sdk.Identity, admin bool) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := devClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuerName,
			Subject:   string(subject),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Admin: admin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify parses a token and returns its subject and admin flag.
func (i *TokenIssuer) Verify(token string) (sdk.Identity, bool, error) {
	var claims devClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuerName))
	if err != nil {
		return "", false, err
	}
	if !parsed.Valid {
		return "", false, fmt.Errorf("invalid token")
	}
	return sdk.Identity(claims.Subject), claims.Admin, nil
}

type identityContextKey struct{}

// identityFrom returns the authenticated caller, or "" for anonymous
// requests.
func identityFrom(ctx context.Context) sdk.Identity {
	id, _ := ctx.Value(identityContextKey{}).(sdk.Identity)
	return id
}

// withIdentity extracts the bearer token, verifies it, and stores the caller
// identity in the request context. Requests without a token proceed as
// anonymous; requests with a bad token are rejected.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, sdk.NewError(sdk.CodeUnauthenticated, "malformed authorization header"))
			return
		}
		subject, admin, err := s.issuer.Verify(token)
		if err != nil {
			writeError(w, sdk.NewError(sdk.CodeUnauthenticated, "invalid or expired token"))
			return
		}
		if admin {
			s.store.SetAdmin(subject)
		}
		ctx := context.WithValue(r.Context(), identityContextKey{}, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
