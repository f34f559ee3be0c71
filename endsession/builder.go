package endsession

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/yartat/IdentityServer4/internal/config"
	"github.com/yartat/IdentityServer4/internal/urlutil"
	"github.com/yartat/IdentityServer4/messages"
	"github.com/yartat/IdentityServer4/usersession"
)

// Builder assembles the end-session fan-out: the set of clients to notify
// and the callback URL carrying the stored notification id.
type Builder struct {
	session usersession.UserSession
	store   messages.Store[EndSession]
	options *config.Options
	logger  zerolog.Logger
	nowTime func() time.Time
}

// BuilderOption modifies a Builder instance.
type BuilderOption func(*Builder)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.nowTime = nowFunc
	}
}

// WithLogger sets the logger used for fan-out events.
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder with its required collaborators.
func NewBuilder(session usersession.UserSession, store messages.Store[EndSession], options *config.Options, opts ...BuilderOption) (*Builder, error) {
	if session == nil {
		return nil, errors.New("[NewBuilder] user session is required")
	}
	if store == nil {
		return nil, errors.New("[NewBuilder] end session message store is required")
	}
	if options == nil {
		return nil, errors.New("[NewBuilder] options are required")
	}

	b := &Builder{
		session: session,
		store:   store,
		options: options,
		logger:  zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build computes the notification payload, or nil when no client needs to be
// told about the logout. An explicit logout message takes precedence over
// the live session; when both describe the same subject the client sets are
// unioned, since clients may have joined after the message was created.
func (b *Builder) Build(ctx context.Context, logout *LogoutMessage) (*EndSession, error) {
	// the decision must reflect the very latest authentication state
	user, err := b.session.User(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "[Build] session user")
	}
	var currentSubjectID string
	if user != nil {
		currentSubjectID = user.SubjectID()
	}

	if logout != nil && len(logout.ClientIDs) > 0 {
		clientIDs := append([]string(nil), logout.ClientIDs...)
		if currentSubjectID != "" && currentSubjectID == logout.SubjectID {
			live, err := b.session.ClientList(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "[Build] session client list")
			}
			clientIDs = union(clientIDs, live)
		}
		return &EndSession{
			SubjectID: logout.SubjectID,
			SessionID: logout.SessionID,
			ClientIDs: clientIDs,
		}, nil
	}

	if currentSubjectID != "" {
		clientIDs, err := b.session.ClientList(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "[Build] session client list")
		}
		if len(clientIDs) > 0 {
			sessionID, err := b.session.SessionID(ctx, true)
			if err != nil {
				return nil, errors.Wrap(err, "[Build] session id")
			}
			return &EndSession{
				SubjectID: currentSubjectID,
				SessionID: sessionID,
				ClientIDs: clientIDs,
			}, nil
		}
	}

	// no sessions, nothing to clean up
	return nil, nil
}

// SignoutCallbackURL builds the notification, writes it to the message store
// and returns the callback URL carrying the stored id. Returns the empty
// string when there is nothing to notify; callers skip the fan-out entirely.
func (b *Builder) SignoutCallbackURL(ctx context.Context, logout *LogoutMessage) (string, error) {
	endSession, err := b.Build(ctx, logout)
	if err != nil {
		return "", err
	}
	if endSession == nil {
		return "", nil
	}

	msg := messages.New(*endSession, b.nowTime().UTC())
	id, err := b.store.Write(ctx, msg)
	if err != nil {
		return "", errors.Wrap(err, "[SignoutCallbackURL] message store write")
	}

	b.logger.Debug().
		Str("subject", endSession.SubjectID).
		Int("clients", len(endSession.ClientIDs)).
		Msg("end session notification stored")

	callbackURL := CallbackPath
	if b.options.BaseURI != "" {
		callbackURL = urlutil.EnsureTrailingSlash(b.options.BaseURI) + urlutil.RemoveLeadingSlash(CallbackPath)
	}
	return urlutil.AddQueryParam(callbackURL, CallbackIDParameter, id), nil
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	result := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}
