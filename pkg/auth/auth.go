// Package auth extracts the caller's bearer credential, optionally verifies
// it against an OIDC issuer, and carries it through the request context so
// collaborator clients can forward it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/docroute/pkg/handlers"
)

var (
	// ErrMissingCredential indicates a request without a bearer token where one is required.
	ErrMissingCredential = errors.New("missing bearer credential")
	// ErrInvalidCredential indicates a bearer token that failed verification.
	ErrInvalidCredential = errors.New("invalid bearer credential")
)

// Credential is the caller identity attached to a request.
type Credential struct {
	Token   string
	Subject string
}

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (Credential, error)
}

type credentialKey struct{}

// WithCredential returns a copy of ctx carrying cred.
func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, credentialKey{}, cred)
}

// FromContext returns the credential attached to ctx, if any.
func FromContext(ctx context.Context) (Credential, bool) {
	cred, ok := ctx.Value(credentialKey{}).(Credential)
	return cred, ok
}

// Token returns the bearer token attached to ctx, or an empty string.
func Token(ctx context.Context) string {
	cred, _ := FromContext(ctx)
	return cred.Token
}

// Middleware extracts the bearer credential. A nil verifier accepts any
// token as opaque. When required, requests without a token are rejected.
func Middleware(verifier Verifier, required bool, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if required {
					handlers.RespondError(w, logger, http.StatusUnauthorized, ErrMissingCredential)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			cred := Credential{Token: token}
			if verifier != nil {
				verified, err := verifier.Verify(r.Context(), token)
				if err != nil {
					handlers.RespondError(w, logger, http.StatusUnauthorized, err)
					return
				}
				cred = verified
			}

			next.ServeHTTP(w, r.WithContext(WithCredential(r.Context(), cred)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's provider metadata and returns a
// Verifier for ID tokens issued to clientID.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider %s: %w", issuer, err)
	}
	return &oidcVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// NewKeySetVerifier returns a Verifier for a known issuer and key set
// without provider discovery.
func NewKeySetVerifier(issuer, clientID string, keys oidc.KeySet) Verifier {
	return &oidcVerifier{
		verifier: oidc.NewVerifier(issuer, keys, &oidc.Config{ClientID: clientID}),
	}
}

func (v *oidcVerifier) Verify(ctx context.Context, token string) (Credential, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return Credential{Token: token, Subject: idToken.Subject}, nil
}
