// Package usersession models the per-browser authentication session: an
// opaque session id tied to the authenticated subject and the list of
// relying-party clients visited during the session.
package usersession

import "time"

// Session is the durable per-browser session record. A new id is minted on
// every sign-in; re-sign-in replaces the previous session.
type Session struct {
	ID        string    `json:"id"`        // Opaque identifier, also the session cookie value
	SubjectID string    `json:"subjectId"` // Owning subject
	Created   time.Time `json:"created"`   // When the session was established
	ClientIDs []string  `json:"clientIds"` // Clients signed into during the session, in visit order
}
