// Package server is the HTTP surface of the interaction core: the authorize
// entry and resume endpoints, the development login/logout pages and the
// front-channel end-session callback.
package server

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/yartat/IdentityServer4/authorize"
	"github.com/yartat/IdentityServer4/clients"
	"github.com/yartat/IdentityServer4/endsession"
	"github.com/yartat/IdentityServer4/grants"
	"github.com/yartat/IdentityServer4/internal/config"
	"github.com/yartat/IdentityServer4/messages"
	"github.com/yartat/IdentityServer4/usersession"
	"github.com/yartat/IdentityServer4/validation"
)

// Stores groups the persistence collaborators the server needs. The Redis
// implementations and the in-memory fakes are interchangeable here.
type Stores struct {
	Clients  clients.Repo
	Sessions usersession.Repo
	Grants   grants.Store

	// AuthorizeParams may be nil, which selects the stateless parameter
	// mode: request parameters travel inlined on the return URL.
	AuthorizeParams    messages.Store[url.Values]
	LogoutMessages     messages.Store[endsession.LogoutMessage]
	EndSessionMessages messages.Store[endsession.EndSession]
}

type Server struct {
	mux     *http.ServeMux
	routes  []string
	options *config.Options
	stores  Stores
	logger  zerolog.Logger

	redirectValidator validation.RedirectURIValidator
	parameters        *authorize.ParametersProcessor
	loginRedirect     *authorize.LoginRedirectBuilder
}

// ServerOption modifies a Server instance.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(options *config.Options, stores Stores, opts ...ServerOption) (*Server, error) {
	if options == nil {
		return nil, errors.New("[Server New] options are required")
	}
	if stores.Clients == nil || stores.Sessions == nil || stores.Grants == nil {
		return nil, errors.New("[Server New] client, session and grant stores are required")
	}
	if stores.LogoutMessages == nil || stores.EndSessionMessages == nil {
		return nil, errors.New("[Server New] logout and end-session message stores are required")
	}

	s := &Server{
		mux:               http.NewServeMux(),
		options:           options,
		stores:            stores,
		logger:            zerolog.Nop(),
		redirectValidator: validation.NewStrictRedirectURIValidator(),
		parameters:        authorize.NewParametersProcessor(stores.AuthorizeParams),
	}
	for _, opt := range opts {
		opt(s)
	}

	loginRedirect, err := authorize.NewLoginRedirectBuilder(options, s.parameters)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] login redirect builder")
	}
	s.loginRedirect = loginRedirect

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	for _, route := range s.routes {
		s.logger.Debug().Str("route", route).Msg("route registered")
	}
}
