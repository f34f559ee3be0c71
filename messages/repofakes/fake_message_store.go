package repofakes

import (
	"context"
	"sync"

	"github.com/segmentio/ksuid"
	"github.com/yartat/IdentityServer4/messages"
)

// FakeStore is an in-memory message store for tests and single-node setups.
type FakeStore[T any] struct {
	msgs map[string]messages.Message[T]
	lock sync.RWMutex
}

func NewFakeStore[T any]() *FakeStore[T] {
	return &FakeStore[T]{msgs: make(map[string]messages.Message[T])}
}

func (s *FakeStore[T]) Write(_ context.Context, msg messages.Message[T]) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	id := ksuid.New().String()
	s.msgs[id] = msg
	return id, nil
}

func (s *FakeStore[T]) Read(_ context.Context, id string) (messages.Message[T], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	msg, ok := s.msgs[id]
	if !ok {
		var zero messages.Message[T]
		return zero, messages.ErrNotFound
	}
	return msg, nil
}

func (s *FakeStore[T]) Delete(_ context.Context, id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.msgs, id)
	return nil
}
