package application

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

var (
	testStateSecret   = []byte("state-secret")
	testSessionSecret = []byte("session-secret")
)

func newAuthFixture(provider *mockAuthProvider) (*AuthService, *mockCredentialStore, *mockUserStore) {
	creds := newMockCredentialStore()
	users := newMockUserStore()
	svc := NewAuthService(provider, creds, users, testStateSecret, testSessionSecret, time.Hour, "http://localhost:5173/")
	return svc, creds, users
}

func TestAuthService_Start_EmbedsSignedState(t *testing.T) {
	svc, _, _ := newAuthFixture(&mockAuthProvider{})

	consentURL, err := svc.Start("u1")
	require.NoError(t, err)

	parsed, err := url.Parse(consentURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	subject, err := verifyState(testStateSecret, state)
	require.NoError(t, err)
	assert.Equal(t, "u1", subject)
}

func TestAuthService_Callback_CreatesUserAndStoresCredential(t *testing.T) {
	provider := &mockAuthProvider{
		tokens:   model.TokenUpdate{AccessToken: "A1", RefreshToken: "R1"},
		identity: driven.Identity{Email: "ada@example.com", Name: "Ada"},
	}
	svc, creds, users := newAuthFixture(provider)

	state, err := signState(testStateSecret, "")
	require.NoError(t, err)

	redirect, err := svc.Callback(context.Background(), "auth-code", state)
	require.NoError(t, err)

	require.Len(t, users.created, 1)
	user := users.created[0]
	assert.Equal(t, "ada@example.com", user.Email)

	stored := creds.creds[user.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "A1", stored.AccessToken)
	assert.Equal(t, "R1", stored.RefreshToken)

	parsed, err := url.Parse(redirect)
	require.NoError(t, err)
	session := parsed.Query().Get("token")
	require.NotEmpty(t, session)

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(session, &claims, func(*jwt.Token) (any, error) {
		return testSessionSecret, nil
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestAuthService_Callback_ExistingUserNotDuplicated(t *testing.T) {
	provider := &mockAuthProvider{
		tokens:   model.TokenUpdate{AccessToken: "A2"},
		identity: driven.Identity{Email: "ada@example.com"},
	}
	svc, _, users := newAuthFixture(provider)
	_, err := users.Create(context.Background(), "ada@example.com", "Ada")
	require.NoError(t, err)
	users.created = nil

	state, err := signState(testStateSecret, "")
	require.NoError(t, err)

	_, err = svc.Callback(context.Background(), "auth-code", state)
	require.NoError(t, err)
	assert.Empty(t, users.created, "returning user must be reused, not recreated")
}

func TestAuthService_Callback_MissingCode(t *testing.T) {
	svc, _, _ := newAuthFixture(&mockAuthProvider{})

	state, err := signState(testStateSecret, "")
	require.NoError(t, err)

	_, err = svc.Callback(context.Background(), "", state)
	require.Error(t, err)
	assert.Equal(t, KindAuthorizationIncomplete, KindOf(err))
}

func TestAuthService_Callback_TamperedState(t *testing.T) {
	svc, _, _ := newAuthFixture(&mockAuthProvider{
		tokens: model.TokenUpdate{AccessToken: "A1"},
	})

	state, err := signState([]byte("wrong-secret"), "u1")
	require.NoError(t, err)

	_, err = svc.Callback(context.Background(), "auth-code", state)
	require.Error(t, err)
	assert.Equal(t, KindAuthorizationIncomplete, KindOf(err))
}

func TestAuthService_Callback_ExchangeFailure(t *testing.T) {
	svc, _, _ := newAuthFixture(&mockAuthProvider{
		exchangeErr: errors.New("invalid_grant"),
	})

	state, err := signState(testStateSecret, "")
	require.NoError(t, err)

	_, err = svc.Callback(context.Background(), "auth-code", state)
	require.Error(t, err)
	assert.Equal(t, KindAuthorizationIncomplete, KindOf(err))
}

func TestAuthService_Callback_NoTokens(t *testing.T) {
	svc, _, _ := newAuthFixture(&mockAuthProvider{})

	state, err := signState(testStateSecret, "")
	require.NoError(t, err)

	_, err = svc.Callback(context.Background(), "auth-code", state)
	require.Error(t, err)
	assert.Equal(t, KindAuthorizationIncomplete, KindOf(err))
}

func TestAuthService_Callback_EmailUnavailable(t *testing.T) {
	svc, creds, _ := newAuthFixture(&mockAuthProvider{
		tokens:   model.TokenUpdate{AccessToken: "A1"},
		identity: driven.Identity{Name: "No Email"},
	})

	state, err := signState(testStateSecret, "")
	require.NoError(t, err)

	_, err = svc.Callback(context.Background(), "auth-code", state)
	require.Error(t, err)
	assert.Equal(t, KindAuthorizationIncomplete, KindOf(err))
	assert.Empty(t, creds.upserts, "no credential may be stored without an identity")
}

func TestAuthService_Status(t *testing.T) {
	svc, creds, _ := newAuthFixture(&mockAuthProvider{})

	connected, err := svc.Status(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, connected)

	_, err = creds.Upsert(context.Background(), "u1", model.TokenUpdate{AccessToken: "A1"})
	require.NoError(t, err)

	connected, err = svc.Status(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, connected)
}
