package hosting

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/yartat/IdentityServer4/identity"
	"github.com/yartat/IdentityServer4/usersession"
)

var (
	// ErrMultipleIdentities is returned when a principal carries more than
	// one identity. This is a configuration error in the caller.
	ErrMultipleIdentities = errors.New("only a single identity supported")

	// ErrSubjectMissing is returned when no subject claim can be derived.
	ErrSubjectMissing = errors.New("sub claim is missing")
)

// subjectFallbackClaims are consulted in priority order when the signing-in
// principal carries no sub claim.
var subjectFallbackClaims = []string{
	identity.ClaimEmail,
	identity.ClaimName,
	identity.ClaimGivenName,
	identity.ClaimNameIdentifier,
}

// SessionAuthenticator decorates the real authentication service to detect
// when a user is signed in to the provider's own cookie scheme. It ensures
// the principal has the claims the server needs, records request IP and
// device metadata, and issues/removes the session id used for session
// management. Sign-out is tracked to collaborate with federated sign-out.
type SessionAuthenticator struct {
	inner   Authenticator
	schemes SchemeProvider
	session usersession.UserSession
	logger  zerolog.Logger
	nowTime func() time.Time
}

var _ Authenticator = (*SessionAuthenticator)(nil)

// SessionAuthenticatorOption modifies a SessionAuthenticator instance.
type SessionAuthenticatorOption func(*SessionAuthenticator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SessionAuthenticatorOption {
	return func(sa *SessionAuthenticator) {
		sa.nowTime = nowFunc
	}
}

// WithLogger sets the logger used for augmentation events.
func WithLogger(logger zerolog.Logger) SessionAuthenticatorOption {
	return func(sa *SessionAuthenticator) {
		sa.logger = logger
	}
}

// NewSessionAuthenticator wraps the underlying authentication primitive.
func NewSessionAuthenticator(
	inner Authenticator,
	schemes SchemeProvider,
	session usersession.UserSession,
	options ...SessionAuthenticatorOption,
) (*SessionAuthenticator, error) {
	if inner == nil {
		return nil, errors.New("[NewSessionAuthenticator] inner authenticator is required")
	}
	if schemes == nil {
		return nil, errors.New("[NewSessionAuthenticator] scheme provider is required")
	}
	if session == nil {
		return nil, errors.New("[NewSessionAuthenticator] user session is required")
	}

	sa := &SessionAuthenticator{
		inner:   inner,
		schemes: schemes,
		session: session,
		logger:  zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(sa)
	}
	return sa, nil
}

// SignIn augments the principal, records request metadata and mints a new
// session id when the target scheme is the provider's cookie scheme, then
// delegates to the underlying primitive.
func (sa *SessionAuthenticator) SignIn(ctx context.Context, scheme string, principal *identity.Principal, props *identity.Properties) error {
	if sa.isCookieScheme(scheme, sa.schemes.DefaultSignInScheme()) {
		if err := sa.augmentPrincipal(principal); err != nil {
			return errors.Wrap(err, "[SignIn] augment principal")
		}

		if props == nil {
			props = identity.NewProperties()
		}
		rc := RequestFrom(ctx)
		if ip := rc.IP(); ip != "" {
			props.Set(identity.PropertyIP, ip)
		}
		if device := deviceName(requestUserAgent(rc)); device != "" {
			props.Set(identity.PropertyDevice, device)
		}

		if _, err := sa.session.CreateSessionID(ctx, principal, props); err != nil {
			return errors.Wrap(err, "[SignIn] create session id")
		}
	}

	return sa.inner.SignIn(ctx, scheme, principal, props)
}

// SignOut marks that sign-out was explicitly called and removes the session
// id cookie when the target scheme is the cookie scheme, then delegates.
func (sa *SessionAuthenticator) SignOut(ctx context.Context, scheme string, props *identity.Properties) error {
	if sa.isCookieScheme(scheme, sa.schemes.DefaultSignOutScheme()) {
		RequestFrom(ctx).SetSignOutCalled()

		// clearing the session id cookie lets JS clients detect the sign-out
		if err := sa.session.RemoveSessionIDCookie(ctx); err != nil {
			return errors.Wrap(err, "[SignOut] remove session id cookie")
		}
	}

	return sa.inner.SignOut(ctx, scheme, props)
}

// Authenticate delegates to the underlying primitive.
func (sa *SessionAuthenticator) Authenticate(ctx context.Context, scheme string) (*AuthenticateResult, error) {
	return sa.inner.Authenticate(ctx, scheme)
}

// Challenge delegates to the underlying primitive.
func (sa *SessionAuthenticator) Challenge(ctx context.Context, scheme string, props *identity.Properties) error {
	return sa.inner.Challenge(ctx, scheme, props)
}

// Forbid delegates to the underlying primitive.
func (sa *SessionAuthenticator) Forbid(ctx context.Context, scheme string, props *identity.Properties) error {
	return sa.inner.Forbid(ctx, scheme, props)
}

func (sa *SessionAuthenticator) isCookieScheme(scheme, defaultScheme string) bool {
	cookieScheme := sa.schemes.CookieScheme()
	return (scheme == "" && defaultScheme == cookieScheme) || scheme == cookieScheme
}

func (sa *SessionAuthenticator) augmentPrincipal(principal *identity.Principal) error {
	sa.logger.Debug().Msg("augmenting sign-in principal")

	if principal == nil || len(principal.Identities) != 1 {
		return ErrMultipleIdentities
	}
	ident := principal.Identities[0]

	if ident.FindFirst(identity.ClaimSubject) == nil {
		for _, claimType := range subjectFallbackClaims {
			if c := ident.FindFirst(claimType); c != nil {
				ident.AddClaim(identity.ClaimSubject, c.Value)
				break
			}
		}
	}
	if ident.FindFirst(identity.ClaimSubject) == nil {
		return ErrSubjectMissing
	}

	sa.augmentMissingClaims(ident, sa.nowTime().UTC())
	return nil
}

func (sa *SessionAuthenticator) augmentMissingClaims(ident *identity.Identity, authTime time.Time) {
	// external authentication middleware issues the legacy authentication
	// method claim with the middleware name (e.g. "Google") as its value.
	// convert that into the idp claim and an "external" amr.
	legacy := ident.FindFirst(identity.ClaimLegacyAuthenticationMethod)
	if legacy != nil &&
		ident.FindFirst(identity.ClaimIdentityProvider) == nil &&
		ident.FindFirst(identity.ClaimAuthenticationMethod) == nil {
		provider := legacy.Value
		sa.logger.Debug().Str("value", provider).Msg("converting legacy authentication method claim")

		ident.RemoveFirst(identity.ClaimLegacyAuthenticationMethod)
		ident.AddClaim(identity.ClaimIdentityProvider, provider)
		ident.AddClaim(identity.ClaimAuthenticationMethod, identity.ExternalAuthenticationMethod)
	}

	if ident.FindFirst(identity.ClaimIdentityProvider) == nil {
		ident.AddClaim(identity.ClaimIdentityProvider, identity.LocalIdentityProvider)
	}

	if ident.FindFirst(identity.ClaimAuthenticationMethod) == nil {
		if ident.FindFirst(identity.ClaimIdentityProvider).Value == identity.LocalIdentityProvider {
			ident.AddClaim(identity.ClaimAuthenticationMethod, identity.PasswordAuthenticationMethod)
		} else {
			ident.AddClaim(identity.ClaimAuthenticationMethod, identity.ExternalAuthenticationMethod)
		}
	}

	if ident.FindFirst(identity.ClaimAuthenticationTime) == nil {
		ident.AddClaim(identity.ClaimAuthenticationTime, strconv.FormatInt(authTime.Unix(), 10))
	}
}

func requestUserAgent(rc *RequestContext) string {
	if rc == nil {
		return ""
	}
	return rc.UserAgent
}
