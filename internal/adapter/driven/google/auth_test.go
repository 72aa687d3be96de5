package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://127.0.0.1:8080/callback",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
}

func TestAuth_Exchange_CarriesScopeAndIDToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.FormValue("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "A1",
			"refresh_token": "R1",
			"token_type": "Bearer",
			"expires_in": 3600,
			"scope": "https://www.googleapis.com/auth/calendar.readonly https://www.googleapis.com/auth/tasks",
			"id_token": "raw-id-token"
		}`))
	}))
	defer srv.Close()

	auth := NewAuth(newTestOAuthConfig(srv.URL + "/token"))

	update, rawIDToken, err := auth.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "A1", update.AccessToken)
	assert.Equal(t, "R1", update.RefreshToken)
	assert.Equal(t, "Bearer", update.TokenType)
	assert.False(t, update.Expiry.IsZero())
	assert.Equal(t, "https://www.googleapis.com/auth/calendar.readonly https://www.googleapis.com/auth/tasks", update.Scope)
	assert.Equal(t, "raw-id-token", rawIDToken)
}

func TestAuth_Exchange_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer srv.Close()

	auth := NewAuth(newTestOAuthConfig(srv.URL + "/token"))

	_, _, err := auth.Exchange(context.Background(), "expired-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange authorization code")
}

func TestAuth_AuthCodeURL_RequestsOfflineForcedConsent(t *testing.T) {
	auth := NewAuth(newTestOAuthConfig("https://oauth2.example.com/token"))
	auth.cfg.Endpoint.AuthURL = "https://accounts.example.com/o/oauth2/auth"

	consentURL := auth.AuthCodeURL("signed-state")

	assert.Contains(t, consentURL, "state=signed-state")
	assert.Contains(t, consentURL, "access_type=offline")
	assert.Contains(t, consentURL, "approval_prompt=force")
}
