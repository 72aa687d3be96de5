package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"braindump/internal/domain/port/driven"
)

// AuthService drives the Google authorization-code flow: building the
// consent URL, exchanging the callback code, resolving the local user
// identity, persisting the credential, and issuing the application's own
// session token.
type AuthService struct {
	provider      driven.AuthProvider
	creds         driven.CredentialStore
	users         driven.UserStore
	stateSecret   []byte
	sessionSecret []byte
	sessionTTL    time.Duration
	frontendURL   string
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	provider driven.AuthProvider,
	creds driven.CredentialStore,
	users driven.UserStore,
	stateSecret, sessionSecret []byte,
	sessionTTL time.Duration,
	frontendURL string,
) *AuthService {
	return &AuthService{
		provider:      provider,
		creds:         creds,
		users:         users,
		stateSecret:   stateSecret,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
		frontendURL:   frontendURL,
	}
}

// Start returns the provider consent URL for the given (possibly empty)
// acting user id. The embedded state is signed and short-lived.
func (s *AuthService) Start(userID string) (string, error) {
	state, err := signState(s.stateSecret, userID)
	if err != nil {
		return "", err
	}
	return s.provider.AuthCodeURL(state), nil
}

// Callback completes the flow: verifies state, exchanges the code,
// resolves or creates the local user, upserts the credential, and returns
// the frontend redirect URL carrying the session token. All failures are
// terminal for this attempt; the user must restart via Start.
func (s *AuthService) Callback(ctx context.Context, code, state string) (string, error) {
	if code == "" {
		return "", NewError(KindAuthorizationIncomplete, "missing authorization code", nil)
	}

	if _, err := verifyState(s.stateSecret, state); err != nil {
		return "", NewError(KindAuthorizationIncomplete, "invalid state", err)
	}

	tokens, rawIDToken, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return "", NewError(KindAuthorizationIncomplete, "code exchange failed", err)
	}
	if tokens.AccessToken == "" && rawIDToken == "" {
		return "", NewError(KindAuthorizationIncomplete, "missing access or identity token", nil)
	}

	identity, err := s.provider.ResolveIdentity(ctx, tokens, rawIDToken)
	if err != nil {
		return "", NewError(KindAuthorizationIncomplete, "identity resolution failed", err)
	}
	if identity.Email == "" {
		return "", NewError(KindAuthorizationIncomplete, "email unavailable", nil)
	}

	user, err := s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		created, err := s.users.Create(ctx, identity.Email, identity.Name)
		if err != nil {
			return "", fmt.Errorf("create user: %w", err)
		}
		user = &created
		slog.Info("user created", "user_id", user.ID)
	}

	if _, err := s.creds.Upsert(ctx, user.ID, tokens); err != nil {
		return "", fmt.Errorf("store credential: %w", err)
	}
	slog.Info("google account connected", "user_id", user.ID)

	session, err := signSession(s.sessionSecret, user.ID, user.Email, s.sessionTTL)
	if err != nil {
		return "", err
	}

	redirect, err := url.Parse(s.frontendURL)
	if err != nil {
		return "", fmt.Errorf("parse frontend url: %w", err)
	}
	q := redirect.Query()
	q.Set("token", session)
	redirect.RawQuery = q.Encode()

	return redirect.String(), nil
}

// Status reports whether a credential row exists for the user. This is a
// presence check only, not a validity check.
func (s *AuthService) Status(ctx context.Context, userID string) (bool, error) {
	cred, err := s.creds.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return cred != nil, nil
}
