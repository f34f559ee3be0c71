package repofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yartat/IdentityServer4/grants"
)

var _ grants.Store = (*FakeGrantStore)(nil)

// FakeGrantStore is an in-memory grant store. Expired records stay stored
// until RemoveAllExpired but are invisible to readers.
type FakeGrantStore struct {
	grants  map[string]*grants.PersistedGrant
	nowTime func() time.Time
	lock    sync.RWMutex
}

// FakeGrantStoreOption modifies a FakeGrantStore instance.
type FakeGrantStoreOption func(*FakeGrantStore)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) FakeGrantStoreOption {
	return func(s *FakeGrantStore) {
		s.nowTime = nowFunc
	}
}

func NewFakeGrantStore(options ...FakeGrantStoreOption) *FakeGrantStore {
	s := &FakeGrantStore{
		grants:  make(map[string]*grants.PersistedGrant),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *FakeGrantStore) Store(_ context.Context, grant *grants.PersistedGrant) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	copied := *grant
	s.grants[grant.Key] = &copied
	return nil
}

func (s *FakeGrantStore) Get(_ context.Context, key string) (*grants.PersistedGrant, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	grant, ok := s.grants[key]
	if !ok || grant.Expired(s.nowTime()) {
		return nil, grants.ErrGrantNotFound
	}
	copied := *grant
	return &copied, nil
}

func (s *FakeGrantStore) GetAll(_ context.Context, filter grants.Filter) ([]*grants.PersistedGrant, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	now := s.nowTime()
	result := make([]*grants.PersistedGrant, 0)
	for _, grant := range s.grants {
		if grant.Expired(now) || !filter.Matches(grant) {
			continue
		}
		copied := *grant
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result, nil
}

func (s *FakeGrantStore) Remove(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.grants, key)
	return nil
}

func (s *FakeGrantStore) RemoveAll(_ context.Context, filter grants.Filter) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for key, grant := range s.grants {
		if filter.Matches(grant) {
			delete(s.grants, key)
		}
	}
	return nil
}

func (s *FakeGrantStore) RemoveAllExpired(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	now := s.nowTime()
	for key, grant := range s.grants {
		if grant.Expired(now) {
			delete(s.grants, key)
		}
	}
	return nil
}
