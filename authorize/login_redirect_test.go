package authorize_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yartat/IdentityServer4/authorize"
	"github.com/yartat/IdentityServer4/hosting"
	"github.com/yartat/IdentityServer4/internal/config"
	"github.com/yartat/IdentityServer4/messages"
	"github.com/yartat/IdentityServer4/messages/repofakes"
)

func testOptions(loginURL string) *config.Options {
	return &config.Options{
		BaseURI: "https://idp.example.com",
		UserInteraction: config.UserInteractionOptions{
			LoginURL:                loginURL,
			LoginReturnURLParameter: "returnUrl",
		},
	}
}

func returnURLOf(t *testing.T, redirect string) string {
	t.Helper()
	parsed, err := url.Parse(redirect)
	require.NoError(t, err)
	return parsed.Query().Get("returnUrl")
}

func TestBuildLoginRedirectLocalLoginPage(t *testing.T) {
	store := repofakes.NewFakeStore[url.Values]()
	builder, err := authorize.NewLoginRedirectBuilder(
		testOptions("/account/login"),
		authorize.NewParametersProcessor(store),
	)
	require.NoError(t, err)

	redirect, err := builder.BuildLoginRedirect(context.Background(), authorizeRequest())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(redirect, "/account/login?returnUrl="), "got %q", redirect)

	returnURL := returnURLOf(t, redirect)
	require.True(t, strings.HasPrefix(returnURL, "/connect/authorize/callback?authzId="), "got %q", returnURL)
}

func TestBuildLoginRedirectCrossOriginLoginPage(t *testing.T) {
	builder, err := authorize.NewLoginRedirectBuilder(
		testOptions("https://login.example.com/account/login"),
		authorize.NewParametersProcessor(repofakes.NewFakeStore[url.Values]()),
	)
	require.NoError(t, err)

	redirect, err := builder.BuildLoginRedirect(context.Background(), authorizeRequest())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(redirect, "https://login.example.com/account/login?returnUrl="))

	// never a bare relative return URL when origins differ
	returnURL := returnURLOf(t, redirect)
	require.True(t, strings.HasPrefix(returnURL, "https://idp.example.com/connect/authorize/callback?authzId="), "got %q", returnURL)
}

func TestBuildLoginRedirectIncludesBasePath(t *testing.T) {
	builder, err := authorize.NewLoginRedirectBuilder(
		testOptions("/account/login"),
		authorize.NewParametersProcessor(repofakes.NewFakeStore[url.Values]()),
	)
	require.NoError(t, err)

	ctx := hosting.WithRequest(context.Background(), &hosting.RequestContext{BasePath: "/tenant1/"})
	redirect, err := builder.BuildLoginRedirect(ctx, authorizeRequest())
	require.NoError(t, err)

	returnURL := returnURLOf(t, redirect)
	require.True(t, strings.HasPrefix(returnURL, "/tenant1/connect/authorize/callback?authzId="), "got %q", returnURL)
}

func TestBuildLoginRedirectStatelessMode(t *testing.T) {
	builder, err := authorize.NewLoginRedirectBuilder(
		testOptions("/account/login"),
		authorize.NewParametersProcessor(nil),
	)
	require.NoError(t, err)

	redirect, err := builder.BuildLoginRedirect(context.Background(), authorizeRequest())
	require.NoError(t, err)

	returnURL := returnURLOf(t, redirect)
	require.NotContains(t, returnURL, "authzId")

	inlined, err := url.Parse(returnURL)
	require.NoError(t, err)
	require.Equal(t, "abc", inlined.Query().Get("client_id"))
	require.Equal(t, "openid", inlined.Query().Get("scope"))
}

func TestBuildLoginRedirectURLProcessorHook(t *testing.T) {
	var sawRaw url.Values
	builder, err := authorize.NewLoginRedirectBuilder(
		testOptions("/account/login"),
		authorize.NewParametersProcessor(repofakes.NewFakeStore[url.Values]()),
		authorize.WithLoginURLProcessor(func(loginURL string, raw url.Values) string {
			sawRaw = raw
			return "https://tenant-a.example.com" + loginURL
		}),
	)
	require.NoError(t, err)

	redirect, err := builder.BuildLoginRedirect(context.Background(), authorizeRequest())
	require.NoError(t, err)

	// hook output taken verbatim
	require.True(t, strings.HasPrefix(redirect, "https://tenant-a.example.com/account/login?returnUrl="))
	require.Equal(t, "abc", sawRaw.Get("client_id"))
}

func TestBuildLoginRedirectStoreFailureAborts(t *testing.T) {
	builder, err := authorize.NewLoginRedirectBuilder(
		testOptions("/account/login"),
		authorize.NewParametersProcessor(failingStore{}),
	)
	require.NoError(t, err)

	_, err = builder.BuildLoginRedirect(context.Background(), authorizeRequest())
	require.ErrorIs(t, err, messages.ErrStoreUnavailable)
}
