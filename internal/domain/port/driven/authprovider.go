package driven

import (
	"context"

	"braindump/internal/domain/model"
)

// Identity is the provider-side identity resolved during an OAuth callback.
type Identity struct {
	Email string
	Name  string
}

// AuthProvider defines the driven port for the provider's OAuth surface:
// building consent URLs, exchanging authorization codes, and resolving the
// authenticated account's identity.
type AuthProvider interface {
	// AuthCodeURL builds the consent-screen URL carrying the opaque state.
	// The URL requests offline access and forced consent so a refresh
	// token is issued even for a previously-consented account.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for tokens. rawIDToken is the
	// OpenID Connect id_token when the provider returned one, else "".
	Exchange(ctx context.Context, code string) (model.TokenUpdate, string, error)

	// ResolveIdentity resolves the account identity, preferring verified
	// id_token claims and falling back to a userinfo lookup using the
	// access token when rawIDToken is empty or unverifiable.
	ResolveIdentity(ctx context.Context, tokens model.TokenUpdate, rawIDToken string) (Identity, error)
}
