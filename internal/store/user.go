package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/openride/carpool-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It handles domain validation and password hashing internally.
	// Returns ErrLoginIDExists or ErrEmailExists if the login ID or email
	// is already taken, and validation errors from the domain User if the
	// data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	// The returned user carries the hashed password, never a plaintext one.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByLoginID retrieves a user by their login ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByLoginID(ctx context.Context, loginID string) (*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service).
	WithTx(tx *sql.Tx) UserStore
}
