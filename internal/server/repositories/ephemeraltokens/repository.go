// Package ephemeraltokens declares the repository contract shared by the
// two single-use token tables: account verification and password reset.
// Both kinds have the same shape (token, owning user, expiration); only
// the table differs.
package ephemeraltokens

import (
	"context"
	"time"

	"github.com/authkeep/authkeep/internal/server/models"
)

// Repository defines create/find/delete for one ephemeral-token table.
// There is deliberately no update: tokens are immutable once written and
// removed on consumption or expiry.
type Repository interface {
	// Create inserts a new token row. A token-value collision is reported
	// as common.ErrorAlreadyExists so the caller can retry with a fresh
	// token.
	Create(ctx context.Context, token, userID string, expires time.Time) error

	// Find looks up a token. A miss is reported as common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.EphemeralToken, error)

	// Delete removes a token. Deleting a non-existent token is not an
	// error, which makes expiry-triggered deletion idempotent.
	Delete(ctx context.Context, token string) error
}
