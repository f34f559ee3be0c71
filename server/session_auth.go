package server

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/yartat/IdentityServer4/hosting"
	"github.com/yartat/IdentityServer4/identity"
	"github.com/yartat/IdentityServer4/usersession"
)

// CookieSchemeName is the provider's own cookie authentication scheme.
const CookieSchemeName = "idsrv"

// sessionBackedAuthenticator is the underlying authentication primitive of
// this surface: the durable session record is the authentication state, so
// signing in has nothing extra to persist and authenticating reconstructs
// the principal from the record the browser's cookie points at.
type sessionBackedAuthenticator struct {
	sessions usersession.Repo
	cookies  *sessionCookies
}

var (
	_ hosting.Authenticator  = (*sessionBackedAuthenticator)(nil)
	_ hosting.SchemeProvider = (*sessionBackedAuthenticator)(nil)
)

func newSessionBackedAuthenticator(sessions usersession.Repo, cookies *sessionCookies) *sessionBackedAuthenticator {
	return &sessionBackedAuthenticator{sessions: sessions, cookies: cookies}
}

func (a *sessionBackedAuthenticator) DefaultSignInScheme() string  { return CookieSchemeName }
func (a *sessionBackedAuthenticator) DefaultSignOutScheme() string { return CookieSchemeName }
func (a *sessionBackedAuthenticator) CookieScheme() string         { return CookieSchemeName }

func (a *sessionBackedAuthenticator) SignIn(_ context.Context, _ string, _ *identity.Principal, _ *identity.Properties) error {
	// the session record minted by the decorator is the authentication state
	return nil
}

// SignOut discards the durable session record. The decorator has already
// cleared the cookie, so the id is read from the raw request cookie.
func (a *sessionBackedAuthenticator) SignOut(ctx context.Context, _ string, _ *identity.Properties) error {
	sessionID, ok := a.cookies.requestSessionID()
	if !ok {
		return nil
	}
	if err := a.sessions.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[SignOut] session delete")
	}
	return nil
}

func (a *sessionBackedAuthenticator) Authenticate(ctx context.Context, _ string) (*hosting.AuthenticateResult, error) {
	principal, err := a.AuthenticatePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	return &hosting.AuthenticateResult{Principal: principal}, nil
}

// AuthenticatePrincipal reads the current principal from the session record,
// or nil for anonymous. It satisfies usersession.AuthenticateFunc.
func (a *sessionBackedAuthenticator) AuthenticatePrincipal(ctx context.Context) (*identity.Principal, error) {
	sessionID, ok := a.cookies.SessionID(ctx)
	if !ok {
		return nil, nil
	}

	session, err := a.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, usersession.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[AuthenticatePrincipal] session get")
	}

	return identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimSubject, Value: session.SubjectID},
		identity.Claim{Type: identity.ClaimIdentityProvider, Value: identity.LocalIdentityProvider},
		identity.Claim{Type: identity.ClaimAuthenticationTime, Value: strconv.FormatInt(session.Created.Unix(), 10)},
	), nil
}

func (a *sessionBackedAuthenticator) Challenge(_ context.Context, _ string, _ *identity.Properties) error {
	return errors.New("[Challenge] not supported by the session-backed scheme")
}

func (a *sessionBackedAuthenticator) Forbid(_ context.Context, _ string, _ *identity.Properties) error {
	return errors.New("[Forbid] not supported by the session-backed scheme")
}
