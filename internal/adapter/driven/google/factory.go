// Package google implements the provider ports against the Google
// Calendar, Tasks, and OAuth APIs.
package google

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"braindump/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ClientFactory = (*Factory)(nil)

// Factory builds authenticated Calendar and Tasks clients for a user from
// the stored credential. Both constructors return (nil, nil) when the user
// has no credential. The underlying token source persists any token the
// provider issues mid-session back through the CredentialStore before the
// triggering call proceeds, keeping long sessions valid without forcing
// re-authorization.
type Factory struct {
	oauth *oauth2.Config
	store driven.CredentialStore
}

// NewFactory creates a Factory.
func NewFactory(oauth *oauth2.Config, store driven.CredentialStore) *Factory {
	return &Factory{oauth: oauth, store: store}
}

// CalendarClient builds a calendar client for the user, or (nil, nil) when
// not connected.
func (f *Factory) CalendarClient(ctx context.Context, userID string) (driven.CalendarClient, error) {
	hc, err := f.httpClient(ctx, userID)
	if err != nil || hc == nil {
		return nil, err
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return NewCalendarAdapter(svc), nil
}

// TaskClient builds a tasks client for the user, or (nil, nil) when not
// connected.
func (f *Factory) TaskClient(ctx context.Context, userID string) (driven.TaskClient, error) {
	hc, err := f.httpClient(ctx, userID)
	if err != nil || hc == nil {
		return nil, err
	}

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("create tasks service: %w", err)
	}
	return NewTasksAdapter(svc), nil
}

// httpClient loads the user's credential and assembles the transport
// stack: an in-memory ETag cache at the base, the oauth2 transport above
// it, and the persisting token source supplying (and saving) tokens.
func (f *Factory) httpClient(ctx context.Context, userID string) (*http.Client, error) {
	cred, err := f.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if cred == nil {
		return nil, nil
	}

	seed := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       cred.Expiry,
	}

	source := newPersistingTokenSource(ctx, f.store, userID, seed, f.oauth.TokenSource(ctx, seed))

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: source,
			Base:   httpcache.NewMemoryCacheTransport(),
		},
	}, nil
}
