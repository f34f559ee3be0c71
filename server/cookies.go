package server

import (
	"context"
	"net/http"

	"github.com/yartat/IdentityServer4/usersession"
)

// sessionCookies binds the session-id cookie contract to one HTTP exchange.
// Reads prefer the value issued during this request so a sign-in followed by
// a session read within the same request observes the new id. The cookie is
// issued without HttpOnly: it exists for check-session monitoring, where JS
// clients poll its value to detect session changes.
type sessionCookies struct {
	w          http.ResponseWriter
	r          *http.Request
	cookieName string

	issued  string
	cleared bool
}

var _ usersession.CookieAccessor = (*sessionCookies)(nil)

func newSessionCookies(w http.ResponseWriter, r *http.Request, cookieName string) *sessionCookies {
	return &sessionCookies{w: w, r: r, cookieName: cookieName}
}

func (c *sessionCookies) SessionID(_ context.Context) (string, bool) {
	if c.cleared {
		return "", false
	}
	if c.issued != "" {
		return c.issued, true
	}
	cookie, err := c.r.Cookie(c.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// requestSessionID reads the raw request cookie, ignoring issues and clears
// made during this exchange.
func (c *sessionCookies) requestSessionID() (string, bool) {
	cookie, err := c.r.Cookie(c.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (c *sessionCookies) IssueSessionID(_ context.Context, sessionID string) error {
	c.issued = sessionID
	c.cleared = false
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.cookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: false,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
	return nil
}

func (c *sessionCookies) ClearSessionID(_ context.Context) error {
	c.issued = ""
	c.cleared = true
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
	return nil
}
