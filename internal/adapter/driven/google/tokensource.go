package google

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// persistingTokenSource wraps an oauth2.TokenSource and writes every newly
// issued token through the CredentialStore before handing it to the
// transport. The oauth2 transport asks for a token before each request, so
// a silent refresh is durably saved before the triggering call's result
// can reach the caller. Persistence is deliberately synchronous: a
// fire-and-forget write would open a window where a fresh token is used
// once and then lost, breaking every later call.
type persistingTokenSource struct {
	ctx    context.Context
	store  driven.CredentialStore
	userID string
	src    oauth2.TokenSource

	mu   sync.Mutex
	last *oauth2.Token
}

func newPersistingTokenSource(ctx context.Context, store driven.CredentialStore, userID string, seed *oauth2.Token, src oauth2.TokenSource) *persistingTokenSource {
	return &persistingTokenSource{
		ctx:    ctx,
		store:  store,
		userID: userID,
		src:    src,
		last:   seed,
	}
}

// Token returns a valid token, persisting it first if the provider issued
// a new one since the last call.
func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	if p.last == nil || tok.AccessToken != p.last.AccessToken {
		update := model.TokenUpdate{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			TokenType:    tok.TokenType,
			Expiry:       tok.Expiry,
		}
		if _, err := p.store.Upsert(p.ctx, p.userID, update); err != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", err)
		}
		p.last = tok
	}

	return tok, nil
}
