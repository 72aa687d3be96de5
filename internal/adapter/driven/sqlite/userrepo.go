package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID returns the user with the given id, or (nil, nil) if absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail returns the user with the given email, or (nil, nil) if absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepo) getBy(ctx context.Context, column, value string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT id, email, name, created_at FROM users WHERE %s = ?`, column)

	var user model.User
	var createdAt string
	err := r.db.Reader.QueryRowContext(ctx, query, value).Scan(&user.ID, &user.Email, &user.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by %s %q: %w", column, value, err)
	}

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for user %q: %w", user.ID, err)
	}

	return &user, nil
}

// Create inserts a new user with a generated id.
func (r *UserRepo) Create(ctx context.Context, email, name string) (model.User, error) {
	user := model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	const query = `INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.Writer.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.User{}, fmt.Errorf("create user %q: %w", email, err)
	}

	return user, nil
}
