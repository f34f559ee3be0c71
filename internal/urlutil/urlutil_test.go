package urlutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yartat/IdentityServer4/internal/urlutil"
)

func TestSlashHelpers(t *testing.T) {
	require.Equal(t, "/path", urlutil.EnsureLeadingSlash("path"))
	require.Equal(t, "/path", urlutil.EnsureLeadingSlash("/path"))
	require.Equal(t, "", urlutil.EnsureLeadingSlash(""))

	require.Equal(t, "path/", urlutil.EnsureTrailingSlash("path"))
	require.Equal(t, "path/", urlutil.EnsureTrailingSlash("path/"))
	require.Equal(t, "", urlutil.EnsureTrailingSlash(""))

	require.Equal(t, "path", urlutil.RemoveLeadingSlash("/path"))
	require.Equal(t, "path", urlutil.RemoveTrailingSlash("path/"))
}

func TestCleanURLPath(t *testing.T) {
	require.Equal(t, "/", urlutil.CleanURLPath(""))
	require.Equal(t, "/", urlutil.CleanURLPath("  "))
	require.Equal(t, "/", urlutil.CleanURLPath("/"))
	require.Equal(t, "/base", urlutil.CleanURLPath("/base/"))
	require.Equal(t, "/base", urlutil.CleanURLPath("/base"))
}

func TestIsLocalURL(t *testing.T) {
	tests := []struct {
		url   string
		local bool
	}{
		{"", false},
		{"/", true},
		{"/account/login", true},
		{"//evil.example.com", false},
		{`/\evil.example.com`, false},
		{"~/", true},
		{"~/account/login", true},
		{"~//evil.example.com", false},
		{`~/\evil.example.com`, false},
		{"https://evil.example.com", false},
		{"account/login", false},
	}

	for _, tc := range tests {
		require.Equal(t, tc.local, urlutil.IsLocalURL(tc.url), "url: %q", tc.url)
	}
}

func TestAddQueryString(t *testing.T) {
	require.Equal(t, "/login?a=1", urlutil.AddQueryString("/login", "a=1"))
	require.Equal(t, "/login?a=1&b=2", urlutil.AddQueryString("/login?a=1", "b=2"))
	require.Equal(t, "/login?returnUrl=%2Fconnect%2Fauthorize%2Fcallback%3FauthzId%3Dabc",
		urlutil.AddQueryParam("/login", "returnUrl", "/connect/authorize/callback?authzId=abc"))
}

func TestAddHashFragment(t *testing.T) {
	require.Equal(t, "/cb#code=1", urlutil.AddHashFragment("/cb", "code=1"))
	require.Equal(t, "/cb#code=1&state=2", urlutil.AddHashFragment("/cb#code=1", "&state=2"))
}

func TestReadQueryStringAsValues(t *testing.T) {
	values := urlutil.ReadQueryStringAsValues("/login?client_id=abc&scope=openid&scope=profile")
	require.Equal(t, "abc", values.Get("client_id"))
	require.Equal(t, []string{"openid", "profile"}, values["scope"])

	require.Equal(t, "abc", urlutil.ReadQueryStringAsValues("client_id=abc&scope=openid").Get("client_id"))

	require.Empty(t, urlutil.ReadQueryStringAsValues("/login"))
	require.Empty(t, urlutil.ReadQueryStringAsValues("/connect/authorize/callback"))
	require.Empty(t, urlutil.ReadQueryStringAsValues("%zz=1"))
}

func TestGetOrigin(t *testing.T) {
	require.Equal(t, "https://idp.example.com", urlutil.GetOrigin("https://idp.example.com/account/login?x=1"))
	require.Equal(t, "", urlutil.GetOrigin("/account/login"))
	require.Equal(t, "", urlutil.GetOrigin("ftp://example.com/file"))
	require.Equal(t, "", urlutil.GetOrigin("://bad"))
}

func TestSplitCSV(t *testing.T) {
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, urlutil.SplitCSV("10.0.0.1, 10.0.0.2"))
	require.Equal(t, []string{"10.0.0.1"}, urlutil.SplitCSV("10.0.0.1,"))
	require.Nil(t, urlutil.SplitCSV("  "))
}

func TestSpaceSeparated(t *testing.T) {
	require.Equal(t, "openid profile", urlutil.ToSpaceSeparatedString([]string{"openid", "profile"}))
	require.Equal(t, []string{"openid", "profile"}, urlutil.FromSpaceSeparatedString("  openid  profile "))
}
