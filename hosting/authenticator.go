// Package hosting contains the sign-in/sign-out pipeline of the provider:
// the authentication decorator that augments claims, mints the session id
// and coordinates sign-out, plus the request-scoped context plumbing.
package hosting

import (
	"context"

	"github.com/yartat/IdentityServer4/identity"
)

// AuthenticateResult is the outcome of reading the current authentication state.
type AuthenticateResult struct {
	Principal  *identity.Principal
	Properties *identity.Properties
}

// Authenticator is the underlying sign-in/sign-out primitive, normally the
// cookie handler of the transport layer. SessionAuthenticator decorates it.
type Authenticator interface {
	SignIn(ctx context.Context, scheme string, principal *identity.Principal, props *identity.Properties) error
	SignOut(ctx context.Context, scheme string, props *identity.Properties) error
	Authenticate(ctx context.Context, scheme string) (*AuthenticateResult, error)
	Challenge(ctx context.Context, scheme string, props *identity.Properties) error
	Forbid(ctx context.Context, scheme string, props *identity.Properties) error
}

// SchemeProvider resolves the configured authentication schemes.
type SchemeProvider interface {
	DefaultSignInScheme() string
	DefaultSignOutScheme() string
	CookieScheme() string
}
