package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/yartat/IdentityServer4/usersession"
)

// SessionStore persists per-browser session records as JSON values.
// AddClientID is read-modify-write; the session contract accepts last write
// wins on concurrent updates.
type SessionStore struct {
	client    redis.UniversalClient
	retention time.Duration
}

var _ usersession.Repo = (*SessionStore)(nil)

// NewSessionStore creates a store. retention of zero keeps sessions until
// deleted by sign-out.
func NewSessionStore(client redis.UniversalClient, retention time.Duration) *SessionStore {
	return &SessionStore{
		client:    client,
		retention: retention,
	}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *SessionStore) Upsert(ctx context.Context, session *usersession.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "[SessionStore.Upsert] marshal")
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), data, s.retention).Err(); err != nil {
		return errors.Wrap(err, "[SessionStore.Upsert]")
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*usersession.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usersession.ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "[SessionStore.Get]")
	}

	var session usersession.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "[SessionStore.Get] unmarshal")
	}
	return &session, nil
}

func (s *SessionStore) AddClientID(ctx context.Context, sessionID, clientID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, id := range session.ClientIDs {
		if id == clientID {
			return nil
		}
	}
	session.ClientIDs = append(session.ClientIDs, clientID)
	return s.Upsert(ctx, session)
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return errors.Wrap(err, "[SessionStore.Delete]")
	}
	return nil
}
