package server

import (
	"github.com/yartat/IdentityServer4/authorize"
	"github.com/yartat/IdentityServer4/endsession"
	"github.com/yartat/IdentityServer4/internal/urlutil"
)

// Protocol routes fixed by the interaction core. The login and logout pages
// are configurable and registered from the options instead.
const (
	RouteAuthorize          = "/connect/authorize"
	RouteAuthorizeCallback  = authorize.AuthorizeCallbackPath
	RouteEndSessionCallback = endsession.CallbackPath
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteAuthorize, ChainMiddleware(s.AuthorizeHandler(), s.StandardMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthorizeCallback, ChainMiddleware(s.AuthorizeCallbackHandler(), s.StandardMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteEndSessionCallback, ChainMiddleware(s.EndSessionCallbackHandler(), s.StandardMiddleware()...))

	// the login/logout pages are hosted here only when configured as local
	// paths; a cross-origin login page is served by another deployment
	if urlutil.IsLocalURL(s.options.UserInteraction.LoginURL) {
		s.RegisterRouteHandler("POST "+s.options.UserInteraction.LoginURL, ChainMiddleware(s.LoginHandler(), s.StandardMiddleware()...))
	}
	if urlutil.IsLocalURL(s.options.UserInteraction.LogoutURL) {
		s.RegisterRouteHandler("GET "+s.options.UserInteraction.LogoutURL, ChainMiddleware(s.LogoutHandler(), s.StandardMiddleware()...))
	}
}
