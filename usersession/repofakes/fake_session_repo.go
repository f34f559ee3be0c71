package repofakes

import (
	"context"
	"sync"

	"github.com/yartat/IdentityServer4/usersession"
)

var _ usersession.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	sessions map[string]*usersession.Session
	lock     sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{sessions: make(map[string]*usersession.Session)}
}

func (r *FakeSessionRepo) Upsert(_ context.Context, session *usersession.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	copied := *session
	copied.ClientIDs = append([]string(nil), session.ClientIDs...)
	r.sessions[session.ID] = &copied
	return nil
}

func (r *FakeSessionRepo) Get(_ context.Context, sessionID string) (*usersession.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, usersession.ErrSessionNotFound
	}
	copied := *session
	copied.ClientIDs = append([]string(nil), session.ClientIDs...)
	return &copied, nil
}

func (r *FakeSessionRepo) AddClientID(_ context.Context, sessionID, clientID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return usersession.ErrSessionNotFound
	}
	session.ClientIDs = append(session.ClientIDs, clientID)
	return nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// FakeCookieAccessor keeps the session-id cookie value in memory, standing
// in for the transport layer's cookie handling.
type FakeCookieAccessor struct {
	value string
	set   bool
	lock  sync.Mutex
}

var _ usersession.CookieAccessor = (*FakeCookieAccessor)(nil)

func NewFakeCookieAccessor() *FakeCookieAccessor {
	return &FakeCookieAccessor{}
}

func (c *FakeCookieAccessor) SessionID(_ context.Context) (string, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.value, c.set
}

func (c *FakeCookieAccessor) IssueSessionID(_ context.Context, sessionID string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.value = sessionID
	c.set = true
	return nil
}

func (c *FakeCookieAccessor) ClearSessionID(_ context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.value = ""
	c.set = false
	return nil
}
