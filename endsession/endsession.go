// Package endsession computes which relying parties must be notified when a
// session ends and prepares the signout callback used for front-channel
// logout.
package endsession

import "time"

// Protocol route and parameter names fixed by this core.
const (
	// CallbackPath renders the signout frame that notifies the clients.
	CallbackPath = "/connect/endsession/callback"

	// CallbackIDParameter carries the opaque notification id on the
	// callback URL.
	CallbackIDParameter = "endSessionId"
)

// EndSession is the logout notification payload: the subject and session
// that ended plus the clients to notify.
type EndSession struct {
	SubjectID string   `json:"subjectId"`
	SessionID string   `json:"sessionId"`
	ClientIDs []string `json:"clientIds"`
}

// LogoutMessage captures an explicit end-session request from a relying
// party, persisted while the logout page interacts with the user.
type LogoutMessage struct {
	SubjectID             string    `json:"subjectId"`
	SessionID             string    `json:"sessionId"`
	ClientIDs             []string  `json:"clientIds"`
	PostLogoutRedirectURI string    `json:"postLogoutRedirectURI"`
	State                 string    `json:"state"`
	Created               time.Time `json:"created"`
}
