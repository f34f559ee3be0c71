package server

import (
	"net/http"

	"github.com/yartat/IdentityServer4/hosting"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) StandardMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		s.RequestContextMiddleware,
	}
}

// RequestContextMiddleware captures the transport metadata the session
// services consume: client address, user agent and the deployment base path.
func (s *Server) RequestContextMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := &hosting.RequestContext{
			RemoteAddr:   remoteHost(r.RemoteAddr),
			ForwardedFor: r.Header.Get("X-Forwarded-For"),
			UserAgent:    r.UserAgent(),
			BasePath:     r.Header.Get("X-Forwarded-Prefix"),
		}
		next(w, r.WithContext(hosting.WithRequest(r.Context(), rc)))
	}
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next(w, r)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

// remoteHost strips the port net/http appends to RemoteAddr.
func remoteHost(remoteAddr string) string {
	for i := len(remoteAddr) - 1; i >= 0; i-- {
		if remoteAddr[i] == ':' {
			return remoteAddr[:i]
		}
		if remoteAddr[i] == ']' { // IPv6 without port
			break
		}
	}
	return remoteAddr
}
