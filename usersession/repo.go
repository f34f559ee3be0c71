package usersession

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoSession       = errors.New("no active session")
)

// Repo persists session records keyed by session id. Atomicity of concurrent
// updates to the same session is the store's concern; last write wins.
type Repo interface {
	Upsert(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	AddClientID(ctx context.Context, sessionID, clientID string) error
	Delete(ctx context.Context, sessionID string) error
}

// CookieAccessor reads and writes the session-id cookie of the current
// request. Wire encoding of the cookie belongs to the transport layer.
type CookieAccessor interface {
	SessionID(ctx context.Context) (string, bool)
	IssueSessionID(ctx context.Context, sessionID string) error
	ClearSessionID(ctx context.Context) error
}
