package server

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/yartat/IdentityServer4/endsession"
	"github.com/yartat/IdentityServer4/grants"
	"github.com/yartat/IdentityServer4/hosting"
	"github.com/yartat/IdentityServer4/identity"
	"github.com/yartat/IdentityServer4/internal/urlutil"
	"github.com/yartat/IdentityServer4/messages"
	"github.com/yartat/IdentityServer4/usersession"
)

// loginClaimFields maps login form fields onto the claims of the signing-in
// principal. Credential verification belongs to the hosting application; this
// surface accepts the asserted identity and runs it through the sign-in
// pipeline.
var loginClaimFields = map[string]string{
	"subject": identity.ClaimSubject,
	"name":    identity.ClaimName,
	"email":   identity.ClaimEmail,
	"idp":     identity.ClaimLegacyAuthenticationMethod,
}

// LoginHandler signs the asserted identity in through the session pipeline
// and sends the browser back to the parked authorization request.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
			return
		}

		var claims []identity.Claim
		for field, claimType := range loginClaimFields {
			if value := r.PostFormValue(field); value != "" {
				claims = append(claims, identity.Claim{Type: claimType, Value: value})
			}
		}
		principal := identity.NewPrincipal(claims...)

		authenticator, _, err := s.sessionServices(w, r)
		if err != nil {
			s.logger.Error().Err(err).Msg("session services")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}

		if err := authenticator.SignIn(ctx, CookieSchemeName, principal, nil); err != nil {
			if errors.Is(err, hosting.ErrSubjectMissing) || errors.Is(err, hosting.ErrMultipleIdentities) {
				s.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
				return
			}
			s.logger.Error().Err(err).Msg("sign in")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}

		returnURL := r.FormValue(s.options.UserInteraction.LoginReturnURLParameter)
		if returnURL == "" {
			s.writeJSON(w, http.StatusOK, map[string]any{"subject": principal.SubjectID()})
			return
		}
		if !urlutil.IsLocalURL(returnURL) {
			s.writeError(w, http.StatusBadRequest, "invalid_request", "return URL must be local")
			return
		}
		http.Redirect(w, r, returnURL, http.StatusFound)
	}
}

// LogoutHandler ends the session: computes the front-channel fan-out while
// the session state is still live, revokes the session's grants, signs out
// and redirects to the signout callback when any client needs notifying.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		logout := s.readLogoutMessage(ctx, r)

		authenticator, session, err := s.sessionServices(w, r)
		if err != nil {
			s.logger.Error().Err(err).Msg("session services")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}

		builder, err := endsession.NewBuilder(session, s.stores.EndSessionMessages, s.options, endsession.WithLogger(s.logger))
		if err != nil {
			s.logger.Error().Err(err).Msg("end session builder")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}

		callbackURL, err := builder.SignoutCallbackURL(ctx, logout)
		if err != nil {
			s.logger.Error().Err(err).Msg("signout callback")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}

		s.revokeSessionGrants(ctx, session)

		if err := authenticator.SignOut(ctx, CookieSchemeName, nil); err != nil {
			s.logger.Error().Err(err).Msg("sign out")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}

		if callbackURL != "" {
			http.Redirect(w, r, callbackURL, http.StatusFound)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"signedOut": true})
	}
}

// readLogoutMessage resolves the parked logout message, if the request
// carries one. An unknown or expired id degrades to a plain logout.
func (s *Server) readLogoutMessage(ctx context.Context, r *http.Request) *endsession.LogoutMessage {
	id := r.URL.Query().Get(s.options.UserInteraction.LogoutIDParameter)
	if id == "" {
		return nil
	}

	msg, err := s.stores.LogoutMessages.Read(ctx, id)
	if err != nil {
		if !errors.Is(err, messages.ErrNotFound) {
			s.logger.Error().Err(err).Msg("read logout message")
		}
		return nil
	}
	if err := s.stores.LogoutMessages.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Msg("delete consumed logout message")
	}
	return &msg.Data
}

// revokeSessionGrants discards the persisted grants bound to the ending
// session. Best effort: a failure here must not block the sign-out.
func (s *Server) revokeSessionGrants(ctx context.Context, session usersession.UserSession) {
	user, err := session.User(ctx, false)
	if err != nil || user == nil {
		return
	}
	sessionID, err := session.SessionID(ctx, false)
	if err != nil || sessionID == "" {
		return
	}

	filter := grants.Filter{SubjectID: user.SubjectID(), SessionID: sessionID}
	if err := s.stores.Grants.RemoveAll(ctx, filter); err != nil {
		s.logger.Error().Err(err).Str("subject", user.SubjectID()).Msg("revoke session grants")
	}
}
