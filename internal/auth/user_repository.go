package auth

import "errors"

// UserRepository defines operations for account persistence and retrieval.
// MongoDB is the primary backend; MariaDB and an in-memory implementation
// exist behind the same interface so the rest of the code never cares.
type UserRepository interface {
	// Create stores a new user and assigns its ID. Implementations must
	// enforce unique usernames and emails (case-insensitive) and return
	// ErrUserExists on conflict.
	Create(user *User) (*User, error)

	// GetByUsername returns a user by username (case-insensitive).
	GetByUsername(username string) (*User, error)

	// GetByEmail returns a user by email (case-insensitive).
	GetByEmail(email string) (*User, error)

	// GetByID returns a user by its opaque identifier.
	GetByID(id string) (*User, error)

	// GetByResetToken returns the user holding the given password-reset
	// token, if any.
	GetByResetToken(token string) (*User, error)

	// Update persists the full user document. Returns ErrUserNotFound if
	// the ID is unknown.
	Update(user *User) (*User, error)

	// Delete removes a user by ID. Returns ErrUserNotFound if missing.
	Delete(id string) error

	// List returns every stored user.
	List() ([]*User, error)

	// Close releases the underlying connection, if any.
	Close() error
}

// Domain-level errors returned by the repository.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)
