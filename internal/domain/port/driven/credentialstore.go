package driven

import (
	"context"
	"errors"

	"braindump/internal/domain/model"
)

// ErrUnusableCredential is returned by Upsert when the merged credential
// would have no access token from either the update or the stored row.
// The write is rejected rather than persisting a credential that can
// never authenticate.
var ErrUnusableCredential = errors.New("credential has no access token after merge")

// CredentialStore defines the driven port for persisted Google OAuth
// credentials. Exactly one credential exists per user.
type CredentialStore interface {
	// Get retrieves the credential for the given user.
	// Returns (nil, nil) if no credential exists; callers must treat that
	// as "not connected", not as an error.
	Get(ctx context.Context, userID string) (*model.Credential, error)

	// Upsert merges a token response into the stored credential and
	// persists the result. Fields present in the update overwrite; fields
	// absent (zero-valued) preserve the stored value. Returns
	// ErrUnusableCredential if no access token survives the merge.
	Upsert(ctx context.Context, userID string, update model.TokenUpdate) (model.Credential, error)
}
