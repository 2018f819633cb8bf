package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/shopspring/decimal"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// The caller must have hashed the password into HashedPassword.
	// Returns ErrNameExists if the name is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByName retrieves a user by their unique name.
	// Returns ErrUserNotFound if the user does not exist.
	GetByName(ctx context.Context, name string) (*domain.User, error)

	// List returns all users ordered by name.
	List(ctx context.Context) ([]*domain.User, error)

	// Update modifies an existing user's profile fields and password hash.
	// Balance and role are not changed by Update.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrNameExists if updating to a name that already exists.
	Update(ctx context.Context, user *domain.User) error

	// AddBalance atomically adds amount to the user's balance and returns the
	// updated user. Returns ErrUserNotFound if the user does not exist.
	AddBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*domain.User, error)

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
