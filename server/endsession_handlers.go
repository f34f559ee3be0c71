package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/yartat/IdentityServer4/clients"
	"github.com/yartat/IdentityServer4/endsession"
	"github.com/yartat/IdentityServer4/internal/urlutil"
	"github.com/yartat/IdentityServer4/messages"
)

// EndSessionCallbackHandler reads the stored end-session notification and
// emits the front-channel logout frame URL for every client that registered
// one. Clients requiring session context get iss and sid appended.
func (s *Server) EndSessionCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := r.URL.Query().Get(endsession.CallbackIDParameter)
		if id == "" {
			s.writeError(w, http.StatusBadRequest, "invalid_request", endsession.CallbackIDParameter+" is required")
			return
		}

		msg, err := s.stores.EndSessionMessages.Read(ctx, id)
		if err != nil {
			if errors.Is(err, messages.ErrNotFound) {
				s.writeError(w, http.StatusBadRequest, "invalid_request", "end session notification expired")
				return
			}
			s.logger.Error().Err(err).Msg("read end session notification")
			s.writeError(w, http.StatusInternalServerError, "server_error", "")
			return
		}

		frameURLs := make([]string, 0, len(msg.Data.ClientIDs))
		for _, clientID := range msg.Data.ClientIDs {
			client, err := s.stores.Clients.Get(ctx, clientID)
			if err != nil {
				if errors.Is(err, clients.ErrClientNotFound) {
					s.logger.Warn().Str("client", clientID).Msg("end session fan-out skipped unknown client")
					continue
				}
				s.logger.Error().Err(err).Str("client", clientID).Msg("load client")
				s.writeError(w, http.StatusInternalServerError, "server_error", "")
				return
			}
			if client.FrontChannelLogoutURI == "" {
				continue
			}

			frameURL := client.FrontChannelLogoutURI
			if client.FrontChannelLogoutSessionRequired {
				frameURL = urlutil.AddQueryParam(frameURL, "iss", s.issuer())
				frameURL = urlutil.AddQueryParam(frameURL, "sid", msg.Data.SessionID)
			}
			frameURLs = append(frameURLs, frameURL)
		}

		if err := s.stores.EndSessionMessages.Delete(ctx, id); err != nil {
			s.logger.Warn().Err(err).Msg("delete consumed end session notification")
		}

		s.writeJSON(w, http.StatusOK, map[string]any{"frameUrls": frameURLs})
	}
}
