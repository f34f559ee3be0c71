package messages

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no message exists for an identifier.
	ErrNotFound = errors.New("message not found")

	// ErrStoreUnavailable is returned when the backing medium cannot be
	// reached. Callers that require persistence must treat this as fatal.
	ErrStoreUnavailable = errors.New("message store unavailable")
)

// Store persists message envelopes. Write returns an opaque identifier that
// is safe to embed as a URL query value and unique enough that collisions
// are negligible for the deployment's volume.
type Store[T any] interface {
	Write(ctx context.Context, msg Message[T]) (string, error)
	Read(ctx context.Context, id string) (Message[T], error)
	Delete(ctx context.Context, id string) error
}
