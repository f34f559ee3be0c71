package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/yartat/IdentityServer4/grants"
)

// GrantStore persists grants as JSON values. Expiring grants are written with
// a matching Redis TTL so the server discards them on its own; reads still
// apply the expiration check to cover clock skew between nodes.
type GrantStore struct {
	client  redis.UniversalClient
	nowTime func() time.Time
}

var _ grants.Store = (*GrantStore)(nil)

// GrantStoreOption modifies a GrantStore instance.
type GrantStoreOption func(*GrantStore)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GrantStoreOption {
	return func(s *GrantStore) {
		s.nowTime = nowFunc
	}
}

func NewGrantStore(client redis.UniversalClient, options ...GrantStoreOption) *GrantStore {
	s := &GrantStore{
		client:  client,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func grantKey(key string) string {
	return grantKeyPrefix + key
}

func (s *GrantStore) Store(ctx context.Context, grant *grants.PersistedGrant) error {
	data, err := json.Marshal(grant)
	if err != nil {
		return errors.Wrap(err, "[GrantStore.Store] marshal")
	}

	var ttl time.Duration
	if grant.Expiration != nil {
		ttl = grant.Expiration.Sub(s.nowTime())
		if ttl <= 0 {
			// Already expired; storing it would only create an invisible record.
			return s.Remove(ctx, grant.Key)
		}
	}

	if err := s.client.Set(ctx, grantKey(grant.Key), data, ttl).Err(); err != nil {
		return errors.Wrap(err, "[GrantStore.Store]")
	}
	return nil
}

func (s *GrantStore) Get(ctx context.Context, key string) (*grants.PersistedGrant, error) {
	data, err := s.client.Get(ctx, grantKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, grants.ErrGrantNotFound
		}
		return nil, errors.Wrap(err, "[GrantStore.Get]")
	}

	var grant grants.PersistedGrant
	if err := json.Unmarshal(data, &grant); err != nil {
		return nil, errors.Wrap(err, "[GrantStore.Get] unmarshal")
	}
	if grant.Expired(s.nowTime()) {
		return nil, grants.ErrGrantNotFound
	}
	return &grant, nil
}

func (s *GrantStore) GetAll(ctx context.Context, filter grants.Filter) ([]*grants.PersistedGrant, error) {
	result := make([]*grants.PersistedGrant, 0)
	err := s.scan(ctx, func(grant *grants.PersistedGrant) error {
		if filter.Matches(grant) {
			result = append(result, grant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GrantStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, grantKey(key)).Err(); err != nil {
		return errors.Wrap(err, "[GrantStore.Remove]")
	}
	return nil
}

func (s *GrantStore) RemoveAll(ctx context.Context, filter grants.Filter) error {
	return s.scan(ctx, func(grant *grants.PersistedGrant) error {
		if !filter.Matches(grant) {
			return nil
		}
		return s.Remove(ctx, grant.Key)
	})
}

// RemoveAllExpired is a no-op: expiring grants carry a Redis TTL and the
// server reclaims them itself.
func (s *GrantStore) RemoveAllExpired(_ context.Context) error {
	return nil
}

// scan walks every live grant in the keyspace. Grants past their expiration
// but not yet reclaimed by Redis are skipped.
func (s *GrantStore) scan(ctx context.Context, visit func(*grants.PersistedGrant) error) error {
	now := s.nowTime()
	iter := s.client.Scan(ctx, 0, grantKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // expired between scan and read
			}
			return errors.Wrap(err, "[GrantStore.scan]")
		}

		var grant grants.PersistedGrant
		if err := json.Unmarshal(data, &grant); err != nil {
			return errors.Wrap(err, "[GrantStore.scan] unmarshal")
		}
		if grant.Expired(now) {
			continue
		}
		if err := visit(&grant); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "[GrantStore.scan]")
	}
	return nil
}
