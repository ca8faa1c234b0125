// Package users declares the repository contract for account rows.
package users

import (
	"context"

	"github.com/authkeep/authkeep/internal/server/models"
)

// Repository defines the persistent operations on users. Implementations
// must exclude soft-deleted rows from every lookup and report a lookup
// miss as common.ErrorNotFound.
type Repository interface {
	// Create inserts a new user. A duplicate email is reported as
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) error

	// GetByEmail returns the user with the given email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateHash replaces the stored credential hash.
	UpdateHash(ctx context.Context, id string, hash string) error

	// SetVerified updates the account verification flag.
	SetVerified(ctx context.Context, id string, verified bool) error
}
