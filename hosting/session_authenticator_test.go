package hosting_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yartat/IdentityServer4/hosting"
	"github.com/yartat/IdentityServer4/identity"
	"github.com/yartat/IdentityServer4/usersession"
	"github.com/yartat/IdentityServer4/usersession/repofakes"
)

const cookieScheme = "idsrv"

var signInTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type innerCall struct {
	op        string
	scheme    string
	principal *identity.Principal
	props     *identity.Properties
}

type fakeInner struct {
	calls []innerCall
}

func (f *fakeInner) SignIn(_ context.Context, scheme string, principal *identity.Principal, props *identity.Properties) error {
	f.calls = append(f.calls, innerCall{op: "signin", scheme: scheme, principal: principal, props: props})
	return nil
}

func (f *fakeInner) SignOut(_ context.Context, scheme string, props *identity.Properties) error {
	f.calls = append(f.calls, innerCall{op: "signout", scheme: scheme, props: props})
	return nil
}

func (f *fakeInner) Authenticate(_ context.Context, scheme string) (*hosting.AuthenticateResult, error) {
	f.calls = append(f.calls, innerCall{op: "authenticate", scheme: scheme})
	return &hosting.AuthenticateResult{}, nil
}

func (f *fakeInner) Challenge(_ context.Context, scheme string, props *identity.Properties) error {
	f.calls = append(f.calls, innerCall{op: "challenge", scheme: scheme, props: props})
	return nil
}

func (f *fakeInner) Forbid(_ context.Context, scheme string, props *identity.Properties) error {
	f.calls = append(f.calls, innerCall{op: "forbid", scheme: scheme, props: props})
	return nil
}

type staticSchemes struct {
	signIn, signOut, cookie string
}

func (s staticSchemes) DefaultSignInScheme() string  { return s.signIn }
func (s staticSchemes) DefaultSignOutScheme() string { return s.signOut }
func (s staticSchemes) CookieScheme() string         { return s.cookie }

type authFixture struct {
	inner       *fakeInner
	sessionRepo *repofakes.FakeSessionRepo
	cookies     *repofakes.FakeCookieAccessor
	session     *usersession.Manager
	service     *hosting.SessionAuthenticator
}

func setupAuthenticator(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		inner:       &fakeInner{},
		sessionRepo: repofakes.NewFakeSessionRepo(),
		cookies:     repofakes.NewFakeCookieAccessor(),
	}

	session, err := usersession.NewManager(f.sessionRepo, f.cookies,
		func(ctx context.Context) (*identity.Principal, error) { return nil, nil })
	require.NoError(t, err)
	f.session = session

	service, err := hosting.NewSessionAuthenticator(f.inner,
		staticSchemes{signIn: cookieScheme, signOut: cookieScheme, cookie: cookieScheme},
		session,
		hosting.WithNowTime(func() time.Time { return signInTime }))
	require.NoError(t, err)
	f.service = service
	return f
}

func claimValue(t *testing.T, p *identity.Principal, claimType string) string {
	t.Helper()
	c := p.FindFirst(claimType)
	require.NotNil(t, c, "claim %q missing", claimType)
	return c.Value
}

func TestSignInAugmentsExternalPrincipal(t *testing.T) {
	f := setupAuthenticator(t)

	principal := identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimName, Value: "alice@example.com"},
		identity.Claim{Type: identity.ClaimLegacyAuthenticationMethod, Value: "Google"},
	)

	err := f.service.SignIn(context.Background(), cookieScheme, principal, nil)
	require.NoError(t, err)

	require.Equal(t, "alice@example.com", claimValue(t, principal, identity.ClaimSubject))
	require.Equal(t, "Google", claimValue(t, principal, identity.ClaimIdentityProvider))
	require.Equal(t, identity.ExternalAuthenticationMethod, claimValue(t, principal, identity.ClaimAuthenticationMethod))
	require.Equal(t, strconv.FormatInt(signInTime.Unix(), 10), claimValue(t, principal, identity.ClaimAuthenticationTime))
	require.Nil(t, principal.FindFirst(identity.ClaimLegacyAuthenticationMethod))

	// session established and delegated
	sessionID, ok := f.cookies.SessionID(context.Background())
	require.True(t, ok)
	session, err := f.sessionRepo.Get(context.Background(), sessionID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", session.SubjectID)

	require.Len(t, f.inner.calls, 1)
	require.Equal(t, "signin", f.inner.calls[0].op)
	require.Same(t, principal, f.inner.calls[0].principal)
}

func TestSignInDefaultsLocalProvider(t *testing.T) {
	f := setupAuthenticator(t)

	principal := identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimSubject, Value: "123"},
	)

	require.NoError(t, f.service.SignIn(context.Background(), cookieScheme, principal, nil))

	require.Equal(t, identity.LocalIdentityProvider, claimValue(t, principal, identity.ClaimIdentityProvider))
	require.Equal(t, identity.PasswordAuthenticationMethod, claimValue(t, principal, identity.ClaimAuthenticationMethod))
}

func TestSignInSubjectPriorityOrder(t *testing.T) {
	f := setupAuthenticator(t)

	principal := identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimGivenName, Value: "Alice"},
		identity.Claim{Type: identity.ClaimEmail, Value: "alice@example.com"},
	)

	require.NoError(t, f.service.SignIn(context.Background(), cookieScheme, principal, nil))
	require.Equal(t, "alice@example.com", claimValue(t, principal, identity.ClaimSubject))
}

func TestSignInAugmentationIsIdempotent(t *testing.T) {
	f := setupAuthenticator(t)

	principal := identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimName, Value: "alice@example.com"},
		identity.Claim{Type: identity.ClaimLegacyAuthenticationMethod, Value: "Google"},
	)

	require.NoError(t, f.service.SignIn(context.Background(), cookieScheme, principal, nil))
	once := append([]identity.Claim(nil), principal.Identities[0].Claims...)

	require.NoError(t, f.service.SignIn(context.Background(), cookieScheme, principal, nil))
	require.Equal(t, once, principal.Identities[0].Claims)
}

func TestSignInRejectsMultipleIdentities(t *testing.T) {
	f := setupAuthenticator(t)

	principal := &identity.Principal{Identities: []*identity.Identity{{}, {}}}
	err := f.service.SignIn(context.Background(), cookieScheme, principal, nil)
	require.ErrorIs(t, err, hosting.ErrMultipleIdentities)
	require.Empty(t, f.inner.calls)
}

func TestSignInRejectsMissingSubject(t *testing.T) {
	f := setupAuthenticator(t)

	principal := identity.NewPrincipal(
		identity.Claim{Type: "role", Value: "admin"},
	)
	err := f.service.SignIn(context.Background(), cookieScheme, principal, nil)
	require.ErrorIs(t, err, hosting.ErrSubjectMissing)
	require.Empty(t, f.inner.calls)
}

func TestSignInOtherSchemePassesThrough(t *testing.T) {
	f := setupAuthenticator(t)

	principal := identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimName, Value: "alice@example.com"},
	)

	require.NoError(t, f.service.SignIn(context.Background(), "external", principal, nil))

	// no augmentation, no session
	require.Nil(t, principal.FindFirst(identity.ClaimSubject))
	_, ok := f.cookies.SessionID(context.Background())
	require.False(t, ok)
	require.Len(t, f.inner.calls, 1)
}

func TestSignInEmptySchemeUsesDefault(t *testing.T) {
	f := setupAuthenticator(t)

	principal := identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimSubject, Value: "123"},
	)

	require.NoError(t, f.service.SignIn(context.Background(), "", principal, nil))
	require.NotNil(t, principal.FindFirst(identity.ClaimIdentityProvider))

	_, ok := f.cookies.SessionID(context.Background())
	require.True(t, ok)
}

func TestSignInRecordsIPAndDevice(t *testing.T) {
	f := setupAuthenticator(t)

	rc := &hosting.RequestContext{
		RemoteAddr:   "192.0.2.7",
		ForwardedFor: "203.0.113.9, 10.0.0.1",
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0 Safari/537.36",
	}
	ctx := hosting.WithRequest(context.Background(), rc)

	principal := identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimSubject, Value: "123"},
	)
	props := identity.NewProperties()

	require.NoError(t, f.service.SignIn(ctx, cookieScheme, principal, props))
	require.Equal(t, "203.0.113.9", props.Get(identity.PropertyIP))
	require.NotEmpty(t, props.Get(identity.PropertyDevice))
}

func TestSignInWithoutRequestContext(t *testing.T) {
	f := setupAuthenticator(t)

	principal := identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimSubject, Value: "123"},
	)

	// augmentation proceeds without the optional properties
	require.NoError(t, f.service.SignIn(context.Background(), cookieScheme, principal, nil))
	require.Len(t, f.inner.calls, 1)
	require.Empty(t, f.inner.calls[0].props.Get(identity.PropertyIP))
}

func TestSignOutCookieScheme(t *testing.T) {
	f := setupAuthenticator(t)
	rc := &hosting.RequestContext{}
	ctx := hosting.WithRequest(context.Background(), rc)

	principal := identity.NewPrincipal(
		identity.Claim{Type: identity.ClaimSubject, Value: "123"},
	)
	require.NoError(t, f.service.SignIn(ctx, cookieScheme, principal, nil))

	require.NoError(t, f.service.SignOut(ctx, cookieScheme, nil))

	require.True(t, rc.SignOutCalled())
	_, ok := f.cookies.SessionID(ctx)
	require.False(t, ok)
	require.Equal(t, "signout", f.inner.calls[len(f.inner.calls)-1].op)
}

func TestSignOutOtherSchemePassesThrough(t *testing.T) {
	f := setupAuthenticator(t)
	rc := &hosting.RequestContext{}
	ctx := hosting.WithRequest(context.Background(), rc)

	require.NoError(t, f.service.SignOut(ctx, "external", nil))
	require.False(t, rc.SignOutCalled())
	require.Equal(t, "signout", f.inner.calls[0].op)
}

func TestPassThroughOperations(t *testing.T) {
	f := setupAuthenticator(t)
	ctx := context.Background()

	_, err := f.service.Authenticate(ctx, cookieScheme)
	require.NoError(t, err)
	require.NoError(t, f.service.Challenge(ctx, cookieScheme, nil))
	require.NoError(t, f.service.Forbid(ctx, cookieScheme, nil))

	require.Equal(t, "authenticate", f.inner.calls[0].op)
	require.Equal(t, "challenge", f.inner.calls[1].op)
	require.Equal(t, "forbid", f.inner.calls[2].op)
}
