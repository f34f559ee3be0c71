package usersession

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/yartat/IdentityServer4/identity"
)

// UserSession is the contract the session-coordination services consume.
// recheck forces a fresh read from the underlying state instead of the
// request-scoped cache, for decisions that must reflect the very latest
// state (e.g. end-session fan-out).
type UserSession interface {
	CreateSessionID(ctx context.Context, principal *identity.Principal, props *identity.Properties) (string, error)
	User(ctx context.Context, recheck bool) (*identity.Principal, error)
	SessionID(ctx context.Context, recheck bool) (string, error)
	EnsureSessionIDCookie(ctx context.Context) error
	RemoveSessionIDCookie(ctx context.Context) error
	AddClientID(ctx context.Context, clientID string) error
	ClientList(ctx context.Context) ([]string, error)
}

// AuthenticateFunc reads the current principal from the underlying
// authentication state. A nil principal means anonymous.
type AuthenticateFunc func(ctx context.Context) (*identity.Principal, error)

// Manager is the default UserSession. One instance serves one request; its
// user/session-id cache never outlives the request and is dropped on every
// mutation through the same instance.
type Manager struct {
	repo         Repo
	cookies      CookieAccessor
	authenticate AuthenticateFunc
	nowTime      func() time.Time

	lock            sync.Mutex
	cachedUser      *identity.Principal
	userCached      bool
	cachedSessionID string
	sessionCached   bool
}

var _ UserSession = (*Manager)(nil)

// ManagerOption modifies a Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager initializes a Manager with its required collaborators.
func NewManager(repo Repo, cookies CookieAccessor, authenticate AuthenticateFunc, options ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[NewManager] session repo is required")
	}
	if cookies == nil {
		return nil, errors.New("[NewManager] cookie accessor is required")
	}
	if authenticate == nil {
		return nil, errors.New("[NewManager] authenticate func is required")
	}

	m := &Manager{
		repo:         repo,
		cookies:      cookies,
		authenticate: authenticate,
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// CreateSessionID mints a new session id for the signing-in principal,
// persists the session record and issues the session-id cookie.
func (m *Manager) CreateSessionID(ctx context.Context, principal *identity.Principal, _ *identity.Properties) (string, error) {
	if principal == nil || principal.SubjectID() == "" {
		return "", errors.New("[CreateSessionID] principal has no subject")
	}

	sessionID := uuid.New().String()
	session := &Session{
		ID:        sessionID,
		SubjectID: principal.SubjectID(),
		Created:   m.nowTime().UTC(),
	}

	if err := m.repo.Upsert(ctx, session); err != nil {
		return "", errors.Wrap(err, "[CreateSessionID] session upsert")
	}
	if err := m.cookies.IssueSessionID(ctx, sessionID); err != nil {
		return "", errors.Wrap(err, "[CreateSessionID] issue cookie")
	}

	m.lock.Lock()
	m.cachedUser = principal
	m.userCached = true
	m.cachedSessionID = sessionID
	m.sessionCached = true
	m.lock.Unlock()

	return sessionID, nil
}

// User returns the current authenticated principal, or nil for anonymous.
func (m *Manager) User(ctx context.Context, recheck bool) (*identity.Principal, error) {
	m.lock.Lock()
	if m.userCached && !recheck {
		user := m.cachedUser
		m.lock.Unlock()
		return user, nil
	}
	m.lock.Unlock()

	user, err := m.authenticate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[User] authenticate")
	}

	m.lock.Lock()
	m.cachedUser = user
	m.userCached = true
	m.lock.Unlock()
	return user, nil
}

// SessionID returns the current session id, or the empty string when the
// browser carries no (or a stale) session cookie.
func (m *Manager) SessionID(ctx context.Context, recheck bool) (string, error) {
	m.lock.Lock()
	if m.sessionCached && !recheck {
		id := m.cachedSessionID
		m.lock.Unlock()
		return id, nil
	}
	m.lock.Unlock()

	sessionID, err := m.resolveSessionID(ctx)
	if err != nil {
		return "", err
	}

	m.lock.Lock()
	m.cachedSessionID = sessionID
	m.sessionCached = true
	m.lock.Unlock()
	return sessionID, nil
}

func (m *Manager) resolveSessionID(ctx context.Context) (string, error) {
	sessionID, ok := m.cookies.SessionID(ctx)
	if !ok || sessionID == "" {
		return "", nil
	}
	if _, err := m.repo.Get(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", nil
		}
		return "", errors.Wrap(err, "[SessionID] session get")
	}
	return sessionID, nil
}

// EnsureSessionIDCookie re-issues the session-id cookie when a session is
// live, and clears a stale cookie otherwise.
func (m *Manager) EnsureSessionIDCookie(ctx context.Context) error {
	sessionID, err := m.SessionID(ctx, false)
	if err != nil {
		return err
	}
	if sessionID != "" {
		return errors.Wrap(m.cookies.IssueSessionID(ctx, sessionID), "[EnsureSessionIDCookie] issue cookie")
	}
	return errors.Wrap(m.cookies.ClearSessionID(ctx), "[EnsureSessionIDCookie] clear cookie")
}

// RemoveSessionIDCookie clears the session-id cookie so JS clients can
// detect the user has signed out.
func (m *Manager) RemoveSessionIDCookie(ctx context.Context) error {
	m.lock.Lock()
	m.cachedSessionID = ""
	m.sessionCached = false
	m.cachedUser = nil
	m.userCached = false
	m.lock.Unlock()

	return errors.Wrap(m.cookies.ClearSessionID(ctx), "[RemoveSessionIDCookie] clear cookie")
}

// AddClientID records that the client joined the current session.
func (m *Manager) AddClientID(ctx context.Context, clientID string) error {
	sessionID, err := m.SessionID(ctx, false)
	if err != nil {
		return err
	}
	if sessionID == "" {
		return ErrNoSession
	}
	if err := m.repo.AddClientID(ctx, sessionID, clientID); err != nil {
		return errors.Wrap(err, "[AddClientID] repo add")
	}
	return nil
}

// ClientList returns the de-duplicated set of clients visited during the
// current session. Always read fresh from the store.
func (m *Manager) ClientList(ctx context.Context) ([]string, error) {
	sessionID, err := m.SessionID(ctx, false)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, nil
	}

	session, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[ClientList] session get")
	}

	seen := make(map[string]struct{}, len(session.ClientIDs))
	list := make([]string, 0, len(session.ClientIDs))
	for _, id := range session.ClientIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		list = append(list, id)
	}
	return list, nil
}
