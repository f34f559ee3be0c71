package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/yartat/IdentityServer4/authorize"
	"github.com/yartat/IdentityServer4/clients"
	"github.com/yartat/IdentityServer4/messages"
)

// AuthorizeHandler validates the authorization request and redirects the
// browser to the login page, parking the request parameters for the resume.
func (s *Server) AuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		raw := r.URL.Query()

		request, ok := s.validateAuthorizeRequest(ctx, w, raw)
		if !ok {
			return
		}

		target, err := s.loginRedirect.BuildLoginRedirect(ctx, request)
		if err != nil {
			s.logger.Error().Err(err).Msg("build login redirect")
			s.writeError(w, http.StatusInternalServerError, "server_error", "unable to start the login interaction")
			return
		}

		http.Redirect(w, r, target, http.StatusFound)
	}
}

// AuthorizeCallbackHandler resumes an authorization request after login. The
// original parameters come back either by reference (authzId pointing into
// the message store) or inlined on the query string.
func (s *Server) AuthorizeCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, ok := s.resumeParameters(ctx, w, r.URL.Query())
		if !ok {
			return
		}

		request, ok := s.validateAuthorizeRequest(ctx, w, raw)
		if !ok {
			return
		}

		_, session, err := s.sessionServices(w, r)
		if err != nil {
			s.logger.Error().Err(err).Msg("session services")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}

		user, err := session.User(ctx, false)
		if err != nil {
			s.logger.Error().Err(err).Msg("resolve user")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}
		if user == nil {
			// login did not stick, send the browser back to the login page
			target, err := s.loginRedirect.BuildLoginRedirect(ctx, request)
			if err != nil {
				s.logger.Error().Err(err).Msg("build login redirect")
				s.writeError(w, http.StatusInternalServerError, "server_error", "")
				return
			}
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		if err := session.AddClientID(ctx, request.Client.ID); err != nil {
			s.logger.Error().Err(err).Str("client", request.Client.ID).Msg("record client on session")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}
		if err := session.EnsureSessionIDCookie(ctx); err != nil {
			s.logger.Error().Err(err).Msg("ensure session cookie")
		}

		s.writeJSON(w, http.StatusOK, map[string]any{
			"clientId":    request.Client.ID,
			"redirectUri": request.RedirectURI,
			"subject":     user.SubjectID(),
			"parameters":  raw,
		})
	}
}

// resumeParameters reconstructs the parked authorization parameters.
func (s *Server) resumeParameters(ctx context.Context, w http.ResponseWriter, query url.Values) (url.Values, bool) {
	id := query.Get(authorize.AuthzIDParameter)
	if id == "" || s.stores.AuthorizeParams == nil {
		return query, true
	}

	msg, err := s.stores.AuthorizeParams.Read(ctx, id)
	if err != nil {
		if errors.Is(err, messages.ErrNotFound) {
			s.writeError(w, http.StatusBadRequest, "invalid_request", "authorization request expired")
			return nil, false
		}
		s.logger.Error().Err(err).Msg("read authorization parameters")
		s.writeError(w, http.StatusInternalServerError, "server_error", "")
		return nil, false
	}
	// consumed; a replayed id must not resume the request again
	if err := s.stores.AuthorizeParams.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Msg("delete consumed authorization parameters")
	}
	return msg.Data, true
}

func (s *Server) validateAuthorizeRequest(ctx context.Context, w http.ResponseWriter, raw url.Values) (*authorize.ValidatedAuthorizeRequest, bool) {
	clientID := raw.Get("client_id")
	if clientID == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "client_id is required")
		return nil, false
	}

	client, err := s.stores.Clients.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, clients.ErrClientNotFound) {
			s.writeError(w, http.StatusBadRequest, "unauthorized_client", "unknown client")
			return nil, false
		}
		s.logger.Error().Err(err).Str("client", clientID).Msg("load client")
		s.writeError(w, http.StatusInternalServerError, "server_error", "")
		return nil, false
	}
	if !client.Enabled {
		s.writeError(w, http.StatusBadRequest, "unauthorized_client", "client is disabled")
		return nil, false
	}

	redirectURI := raw.Get("redirect_uri")
	if !s.redirectValidator.IsRedirectURIValid(redirectURI, client) {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "invalid redirect_uri")
		return nil, false
	}

	return &authorize.ValidatedAuthorizeRequest{
		Raw:         raw,
		Client:      client,
		RedirectURI: redirectURI,
	}, true
}
