// Package validation implements request validation for the interaction
// endpoints, most importantly the strict redirect URI checks that guard
// against open-redirect and token-leak attacks.
package validation

import (
	"net/url"
	"strings"

	"github.com/yartat/IdentityServer4/clients"
)

// RedirectURIValidator decides whether a client-supplied redirect target is
// one the client is registered for. Implementations must fail closed: any
// URI that cannot be positively matched is invalid.
type RedirectURIValidator interface {
	IsRedirectURIValid(requestedURI string, client *clients.Client) bool
	IsPostLogoutRedirectURIValid(requestedURI string, client *clients.Client) bool
}

// StrictRedirectURIValidator matches the requested URI against the client's
// registered set by exact equality. No substring, prefix or wildcard
// matching is permitted.
type StrictRedirectURIValidator struct{}

// NewStrictRedirectURIValidator creates the default validator.
func NewStrictRedirectURIValidator() *StrictRedirectURIValidator {
	return &StrictRedirectURIValidator{}
}

var _ RedirectURIValidator = (*StrictRedirectURIValidator)(nil)

// IsRedirectURIValid reports whether the requested URI equals one of the
// client's registered redirect URIs.
func (v *StrictRedirectURIValidator) IsRedirectURIValid(requestedURI string, client *clients.Client) bool {
	return uriSetContains(client.RedirectURIs, requestedURI)
}

// IsPostLogoutRedirectURIValid reports whether the requested URI equals one
// of the client's registered post-logout redirect URIs.
func (v *StrictRedirectURIValidator) IsPostLogoutRedirectURIValid(requestedURI string, client *clients.Client) bool {
	return uriSetContains(client.PostLogoutRedirectURIs, requestedURI)
}

func uriSetContains(registered []string, requestedURI string) bool {
	if len(registered) == 0 || requestedURI == "" {
		return false
	}

	requested, ok := parseURI(requestedURI)
	if !ok {
		// attacker-controlled input, never propagate a parse failure
		return false
	}

	for _, entry := range registered {
		candidate, ok := parseURI(entry)
		if !ok {
			continue
		}
		if urisEqual(requested, candidate) {
			return true
		}
	}
	return false
}

type parsedURI struct {
	raw      string
	url      *url.URL
	absolute bool
}

func parseURI(raw string) (parsedURI, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return parsedURI{}, false
	}
	return parsedURI{raw: raw, url: u, absolute: u.IsAbs()}, true
}

// urisEqual applies the URI-shape-aware equality rule: two URIs of the same
// absoluteness compare as whole URIs (scheme and host case-insensitive, path
// and query significant). When exactly one side is absolute, its path+query
// is compared case-insensitively against the raw string of the relative one,
// tolerating registration-time scheme/host omission without weakening the
// path match.
func urisEqual(x, y parsedURI) bool {
	if x.absolute != y.absolute {
		return strings.EqualFold(pathAndQuery(x), pathAndQuery(y))
	}

	if !x.absolute {
		return x.raw == y.raw
	}

	return strings.EqualFold(x.url.Scheme, y.url.Scheme) &&
		strings.EqualFold(x.url.Host, y.url.Host) &&
		x.url.User.String() == y.url.User.String() &&
		x.url.EscapedPath() == y.url.EscapedPath() &&
		x.url.RawQuery == y.url.RawQuery
}

func pathAndQuery(u parsedURI) string {
	if !u.absolute {
		return u.raw
	}
	pq := u.url.EscapedPath()
	if u.url.RawQuery != "" {
		pq += "?" + u.url.RawQuery
	}
	return pq
}
