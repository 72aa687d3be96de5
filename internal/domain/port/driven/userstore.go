package driven

import (
	"context"

	"braindump/internal/domain/model"
)

// UserStore defines the driven port for local user identities.
type UserStore interface {
	// GetByID returns the user with the given id, or (nil, nil) if absent.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByEmail returns the user with the given email, or (nil, nil) if absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// Create inserts a new user and returns it with its assigned id.
	Create(ctx context.Context, email, name string) (model.User, error)
}
