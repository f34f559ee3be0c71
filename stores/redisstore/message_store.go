package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/ksuid"
	"github.com/yartat/IdentityServer4/messages"
)

// MessageStore persists message envelopes as JSON values under opaque ksuid
// keys, expiring them after the configured retention.
type MessageStore[T any] struct {
	client    redis.UniversalClient
	keyspace  string
	retention time.Duration
}

var _ messages.Store[struct{}] = (*MessageStore[struct{}])(nil)

// NewMessageStore creates a store. keyspace separates payload types sharing
// one Redis database; retention of zero keeps messages until deleted.
func NewMessageStore[T any](client redis.UniversalClient, keyspace string, retention time.Duration) *MessageStore[T] {
	return &MessageStore[T]{
		client:    client,
		keyspace:  keyspace,
		retention: retention,
	}
}

func (s *MessageStore[T]) key(id string) string {
	return messageKeyPrefix + s.keyspace + ":" + id
}

func (s *MessageStore[T]) Write(ctx context.Context, msg messages.Message[T]) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", errors.Wrap(err, "[MessageStore.Write] marshal")
	}

	id := ksuid.New().String()
	if err := s.client.Set(ctx, s.key(id), data, s.retention).Err(); err != nil {
		return "", errors.Wrap(messages.ErrStoreUnavailable, err.Error())
	}
	return id, nil
}

func (s *MessageStore[T]) Read(ctx context.Context, id string) (messages.Message[T], error) {
	var msg messages.Message[T]

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return msg, messages.ErrNotFound
		}
		return msg, errors.Wrap(messages.ErrStoreUnavailable, err.Error())
	}

	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, errors.Wrap(err, "[MessageStore.Read] unmarshal")
	}
	return msg, nil
}

func (s *MessageStore[T]) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.Wrap(messages.ErrStoreUnavailable, err.Error())
	}
	return nil
}
