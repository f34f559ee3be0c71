// Package messages defines the generic message envelope and store contract
// used to persist interaction state (authorize parameters, end-session
// notifications) across browser redirects.
package messages

import "time"

// Message wraps a payload with its creation time. Instances are written to a
// Store and retrieved later by the opaque identifier the write returned.
type Message[T any] struct {
	Data    T         `json:"data"`
	Created time.Time `json:"created"`
}

// New creates a message envelope for the given payload.
func New[T any](data T, created time.Time) Message[T] {
	return Message[T]{Data: data, Created: created}
}
