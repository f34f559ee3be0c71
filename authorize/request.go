// Package authorize carries an in-flight authorization request across the
// redirect to the login page: persisting (or inlining) its parameters and
// composing the final login redirect URL.
package authorize

import (
	"net/url"

	"github.com/yartat/IdentityServer4/clients"
)

// Protocol route and parameter names fixed by this core.
const (
	// AuthorizeCallbackPath is the resume-authorization path the login page
	// returns the browser to.
	AuthorizeCallbackPath = "/connect/authorize/callback"

	// AuthzIDParameter carries the opaque message-store id on the callback
	// URL in store-backed mode.
	AuthzIDParameter = "authzId"
)

// ValidatedAuthorizeRequest is the upstream-validated authorization request:
// the raw original request parameters plus the resolved client. Treated as
// read-only here.
type ValidatedAuthorizeRequest struct {
	Raw         url.Values
	Client      *clients.Client
	RedirectURI string
}
