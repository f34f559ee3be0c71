package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/yartat/IdentityServer4/hosting"
	"github.com/yartat/IdentityServer4/usersession"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, description string) {
	s.writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

// sessionServices builds the per-request authentication stack: the cookie
// accessor, the session-backed primitive, the session manager and the
// decorating authenticator, all bound to this exchange.
func (s *Server) sessionServices(w http.ResponseWriter, r *http.Request) (*hosting.SessionAuthenticator, *usersession.Manager, error) {
	cookies := newSessionCookies(w, r, s.options.CheckSessionCookieName)
	inner := newSessionBackedAuthenticator(s.stores.Sessions, cookies)

	manager, err := usersession.NewManager(s.stores.Sessions, cookies, inner.AuthenticatePrincipal)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[sessionServices] session manager")
	}

	authenticator, err := hosting.NewSessionAuthenticator(inner, inner, manager, hosting.WithLogger(s.logger))
	if err != nil {
		return nil, nil, errors.Wrap(err, "[sessionServices] session authenticator")
	}
	return authenticator, manager, nil
}

// issuer returns the identifier clients receive as iss, honouring the
// lower-case option.
func (s *Server) issuer() string {
	issuer := s.options.IssuerURI
	if issuer == "" {
		issuer = s.options.BaseURI
	}
	if s.options.LowerCaseIssuerURI {
		issuer = strings.ToLower(issuer)
	}
	return issuer
}
