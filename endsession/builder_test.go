package endsession_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yartat/IdentityServer4/endsession"
	"github.com/yartat/IdentityServer4/identity"
	"github.com/yartat/IdentityServer4/internal/config"
	"github.com/yartat/IdentityServer4/messages/repofakes"
	"github.com/yartat/IdentityServer4/usersession"
	sessionfakes "github.com/yartat/IdentityServer4/usersession/repofakes"
)

type builderFixture struct {
	user    *identity.Principal
	session *usersession.Manager
	store   *repofakes.FakeStore[endsession.EndSession]
	builder *endsession.Builder
}

func setupBuilder(t *testing.T) *builderFixture {
	t.Helper()

	f := &builderFixture{
		store: repofakes.NewFakeStore[endsession.EndSession](),
	}

	session, err := usersession.NewManager(
		sessionfakes.NewFakeSessionRepo(),
		sessionfakes.NewFakeCookieAccessor(),
		func(ctx context.Context) (*identity.Principal, error) { return f.user, nil },
	)
	require.NoError(t, err)
	f.session = session

	builder, err := endsession.NewBuilder(session, f.store, &config.Options{
		BaseURI: "https://idp.example.com",
	})
	require.NoError(t, err)
	f.builder = builder
	return f
}

// signIn establishes a live session for the subject with the given clients.
func (f *builderFixture) signIn(t *testing.T, subjectID string, clientIDs ...string) string {
	t.Helper()

	f.user = identity.NewPrincipal(identity.Claim{Type: identity.ClaimSubject, Value: subjectID})
	sessionID, err := f.session.CreateSessionID(context.Background(), f.user, nil)
	require.NoError(t, err)
	for _, clientID := range clientIDs {
		require.NoError(t, f.session.AddClientID(context.Background(), clientID))
	}
	return sessionID
}

func TestBuildUnionsMessageAndLiveSession(t *testing.T) {
	f := setupBuilder(t)
	f.signIn(t, "bob", "c2")

	result, err := f.builder.Build(context.Background(), &endsession.LogoutMessage{
		SubjectID: "bob",
		SessionID: "logout-session",
		ClientIDs: []string{"c1"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, "bob", result.SubjectID)
	require.Equal(t, "logout-session", result.SessionID)
	require.ElementsMatch(t, []string{"c1", "c2"}, result.ClientIDs)
}

func TestBuildDifferentSubjectSkipsUnion(t *testing.T) {
	f := setupBuilder(t)
	f.signIn(t, "alice", "c2")

	result, err := f.builder.Build(context.Background(), &endsession.LogoutMessage{
		SubjectID: "bob",
		ClientIDs: []string{"c1"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, "bob", result.SubjectID)
	require.Equal(t, []string{"c1"}, result.ClientIDs)
}

func TestBuildUnionDeduplicates(t *testing.T) {
	f := setupBuilder(t)
	f.signIn(t, "bob", "c1", "c2")

	result, err := f.builder.Build(context.Background(), &endsession.LogoutMessage{
		SubjectID: "bob",
		ClientIDs: []string{"c1"},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c1", "c2"}, result.ClientIDs)
}

func TestBuildFromLiveSessionOnly(t *testing.T) {
	f := setupBuilder(t)
	sessionID := f.signIn(t, "bob", "c1", "c2")

	result, err := f.builder.Build(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, "bob", result.SubjectID)
	require.Equal(t, sessionID, result.SessionID)
	require.Equal(t, []string{"c1", "c2"}, result.ClientIDs)
}

func TestBuildNothingToNotify(t *testing.T) {
	f := setupBuilder(t)

	// anonymous, no message
	result, err := f.builder.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, result)

	// authenticated but no clients visited
	f.signIn(t, "bob")
	result, err = f.builder.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, result)

	// message without clients falls back to the (empty) live session
	result, err = f.builder.Build(context.Background(), &endsession.LogoutMessage{SubjectID: "bob"})
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestSignoutCallbackURL(t *testing.T) {
	f := setupBuilder(t)
	f.signIn(t, "bob", "c1")

	callbackURL, err := f.builder.SignoutCallbackURL(context.Background(), nil)
	require.NoError(t, err)

	parsed, err := url.Parse(callbackURL)
	require.NoError(t, err)
	require.Equal(t, "https", parsed.Scheme)
	require.Equal(t, "idp.example.com", parsed.Host)
	require.Equal(t, "/connect/endsession/callback", parsed.Path)

	id := parsed.Query().Get("endSessionId")
	require.NotEmpty(t, id)

	msg, err := f.store.Read(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "bob", msg.Data.SubjectID)
	require.Equal(t, []string{"c1"}, msg.Data.ClientIDs)
}

func TestSignoutCallbackURLNothingToNotify(t *testing.T) {
	f := setupBuilder(t)

	callbackURL, err := f.builder.SignoutCallbackURL(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, callbackURL)
}
