// Package refreshtokens declares the repository contract for refresh
// tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/authkeep/authkeep/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens.
type Repository interface {
	// Upsert stores a refresh token for (userID, appID), overwriting a
	// previous token for the same pair. A user holds at most one refresh
	// token per application.
	Upsert(ctx context.Context, userID, appID, token string, expires time.Time) error

	// Find looks up a refresh token by its opaque token string.
	// A miss is reported as common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting a
	// non-existent token is not an error.
	Delete(ctx context.Context, token string) error
}
