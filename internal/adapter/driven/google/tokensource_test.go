package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// fakeCredentialStore records upserts and simulates the merge rule.
type fakeCredentialStore struct {
	cred    *model.Credential
	upserts []model.TokenUpdate
}

func (f *fakeCredentialStore) Get(_ context.Context, _ string) (*model.Credential, error) {
	return f.cred, nil
}

func (f *fakeCredentialStore) Upsert(_ context.Context, userID string, update model.TokenUpdate) (model.Credential, error) {
	f.upserts = append(f.upserts, update)

	merged := model.Credential{UserID: userID}
	if f.cred != nil {
		merged = *f.cred
	}
	if update.AccessToken != "" {
		merged.AccessToken = update.AccessToken
	}
	if update.RefreshToken != "" {
		merged.RefreshToken = update.RefreshToken
	}
	if !update.Expiry.IsZero() {
		merged.Expiry = update.Expiry
	}
	if merged.AccessToken == "" {
		return model.Credential{}, driven.ErrUnusableCredential
	}
	f.cred = &merged
	return merged, nil
}

// staticTokenSource returns a fixed token, standing in for a provider
// refresh.
type staticTokenSource struct {
	tok *oauth2.Token
	err error
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) { return s.tok, s.err }

func TestPersistingTokenSource_PersistsRefreshedToken(t *testing.T) {
	store := &fakeCredentialStore{
		cred: &model.Credential{UserID: "u1", AccessToken: "A1", RefreshToken: "R1"},
	}
	seed := &oauth2.Token{AccessToken: "A1", RefreshToken: "R1"}
	// The provider issues a new access token and, as refresh responses
	// commonly do, omits the refresh token.
	refreshed := &oauth2.Token{AccessToken: "A2", Expiry: time.Now().Add(time.Hour)}

	src := newPersistingTokenSource(context.Background(), store, "u1", seed, &staticTokenSource{tok: refreshed})

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "A2", tok.AccessToken)

	// The refreshed token was persisted before Token returned, and the
	// merge preserved the stored refresh token.
	require.Len(t, store.upserts, 1)
	require.NotNil(t, store.cred)
	assert.Equal(t, "A2", store.cred.AccessToken)
	assert.Equal(t, "R1", store.cred.RefreshToken)
}

func TestPersistingTokenSource_NoWriteWhenUnchanged(t *testing.T) {
	store := &fakeCredentialStore{
		cred: &model.Credential{UserID: "u1", AccessToken: "A1", RefreshToken: "R1"},
	}
	seed := &oauth2.Token{AccessToken: "A1", RefreshToken: "R1"}

	src := newPersistingTokenSource(context.Background(), store, "u1", seed, &staticTokenSource{tok: seed})

	_, err := src.Token()
	require.NoError(t, err)
	assert.Empty(t, store.upserts, "unchanged token must not be rewritten")
}

func TestPersistingTokenSource_SecondCallDoesNotRepersist(t *testing.T) {
	store := &fakeCredentialStore{
		cred: &model.Credential{UserID: "u1", AccessToken: "A1", RefreshToken: "R1"},
	}
	seed := &oauth2.Token{AccessToken: "A1", RefreshToken: "R1"}
	refreshed := &oauth2.Token{AccessToken: "A2"}

	src := newPersistingTokenSource(context.Background(), store, "u1", seed, &staticTokenSource{tok: refreshed})

	_, err := src.Token()
	require.NoError(t, err)
	_, err = src.Token()
	require.NoError(t, err)

	assert.Len(t, store.upserts, 1)
}
