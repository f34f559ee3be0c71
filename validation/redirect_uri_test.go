package validation_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yartat/IdentityServer4/clients"
	"github.com/yartat/IdentityServer4/validation"
)

func testClient(redirectURIs, postLogoutURIs []string) *clients.Client {
	return &clients.Client{
		ID:                     "test-client",
		Enabled:                true,
		RedirectURIs:           redirectURIs,
		PostLogoutRedirectURIs: postLogoutURIs,
	}
}

func TestIsRedirectURIValid(t *testing.T) {
	v := validation.NewStrictRedirectURIValidator()

	tests := []struct {
		name       string
		registered []string
		requested  string
		valid      bool
	}{
		{
			name:       "exact match",
			registered: []string{"https://app.example.com/cb"},
			requested:  "https://app.example.com/cb",
			valid:      true,
		},
		{
			name:       "query differs",
			registered: []string{"https://app.example.com/cb"},
			requested:  "https://app.example.com/cb?x=1",
			valid:      false,
		},
		{
			name:       "trailing slash differs",
			registered: []string{"https://app.example.com/cb"},
			requested:  "https://app.example.com/cb/",
			valid:      false,
		},
		{
			name:       "path case differs",
			registered: []string{"https://app.example.com/cb"},
			requested:  "https://app.example.com/CB",
			valid:      false,
		},
		{
			name:       "host case differs",
			registered: []string{"https://app.example.com/cb"},
			requested:  "https://APP.EXAMPLE.COM/cb",
			valid:      true,
		},
		{
			name:       "scheme case differs",
			registered: []string{"https://app.example.com/cb"},
			requested:  "HTTPS://app.example.com/cb",
			valid:      true,
		},
		{
			name:       "scheme differs",
			registered: []string{"https://app.example.com/cb"},
			requested:  "http://app.example.com/cb",
			valid:      false,
		},
		{
			name:       "port differs",
			registered: []string{"https://app.example.com/cb"},
			requested:  "https://app.example.com:8443/cb",
			valid:      false,
		},
		{
			name:       "no prefix matching",
			registered: []string{"https://app.example.com/cb"},
			requested:  "https://app.example.com/cb/extra",
			valid:      false,
		},
		{
			name:       "second registered entry matches",
			registered: []string{"https://other.example.com/cb", "https://app.example.com/cb"},
			requested:  "https://app.example.com/cb",
			valid:      true,
		},
		{
			name:       "relative registration matches absolute request path",
			registered: []string{"/signin-oidc"},
			requested:  "https://app.example.com/signin-oidc",
			valid:      true,
		},
		{
			name:       "relative registration matches path case-insensitively",
			registered: []string{"/signin-oidc"},
			requested:  "https://app.example.com/Signin-OIDC",
			valid:      true,
		},
		{
			name:       "relative registration with query must match query",
			registered: []string{"/signin-oidc?tenant=a"},
			requested:  "https://app.example.com/signin-oidc?tenant=b",
			valid:      false,
		},
		{
			name:       "relative registration rejects different path",
			registered: []string{"/signin-oidc"},
			requested:  "https://app.example.com/signin-oidc/extra",
			valid:      false,
		},
		{
			name:       "both relative exact",
			registered: []string{"/signin-oidc"},
			requested:  "/signin-oidc",
			valid:      true,
		},
		{
			name:       "both relative case differs",
			registered: []string{"/signin-oidc"},
			requested:  "/Signin-OIDC",
			valid:      false,
		},
		{
			name:       "malformed requested uri fails closed",
			registered: []string{"https://app.example.com/cb"},
			requested:  "https://[::1",
			valid:      false,
		},
		{
			name:       "empty requested uri",
			registered: []string{"https://app.example.com/cb"},
			requested:  "",
			valid:      false,
		},
		{
			name:       "no registered uris",
			registered: nil,
			requested:  "https://app.example.com/cb",
			valid:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := testClient(tc.registered, nil)
			require.Equal(t, tc.valid, v.IsRedirectURIValid(tc.requested, client))
		})
	}
}

func TestIsPostLogoutRedirectURIValid(t *testing.T) {
	v := validation.NewStrictRedirectURIValidator()
	client := testClient(nil, []string{"https://app.example.com/signout-callback"})

	require.True(t, v.IsPostLogoutRedirectURIValid("https://app.example.com/signout-callback", client))
	require.False(t, v.IsPostLogoutRedirectURIValid("https://app.example.com/signout-callback?x=1", client))
	require.False(t, v.IsPostLogoutRedirectURIValid("https://app.example.com/cb", client))

	// redirect set must not leak into post-logout validation
	client = testClient([]string{"https://app.example.com/cb"}, nil)
	require.False(t, v.IsPostLogoutRedirectURIValid("https://app.example.com/cb", client))
}
