package grants

import (
	"context"
	"errors"
)

// ErrGrantNotFound is returned for absent keys and for records past their
// expiration; readers cannot distinguish the two.
var ErrGrantNotFound = errors.New("grant not found")

// Filter selects grants by any combination of fields; zero values match all.
type Filter struct {
	SubjectID string
	SessionID string
	ClientID  string
	Type      string
}

// Matches reports whether the grant satisfies every set filter field.
func (f Filter) Matches(g *PersistedGrant) bool {
	if f.SubjectID != "" && f.SubjectID != g.SubjectID {
		return false
	}
	if f.SessionID != "" && f.SessionID != g.SessionID {
		return false
	}
	if f.ClientID != "" && f.ClientID != g.ClientID {
		return false
	}
	if f.Type != "" && f.Type != g.Type {
		return false
	}
	return true
}

// Store persists grants keyed by their unique key. Reads must treat an
// expired-but-present record identically to an absent one.
type Store interface {
	Store(ctx context.Context, grant *PersistedGrant) error
	Get(ctx context.Context, key string) (*PersistedGrant, error)
	GetAll(ctx context.Context, filter Filter) ([]*PersistedGrant, error)
	Remove(ctx context.Context, key string) error
	RemoveAll(ctx context.Context, filter Filter) error

	// RemoveAllExpired physically discards expired records. Backends whose
	// medium expires entries on its own may make this a no-op.
	RemoveAllExpired(ctx context.Context) error
}
