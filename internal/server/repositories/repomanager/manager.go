// Package repomanager hands out repositories bound to a database handle.
// Passing a transaction handle from dbx.WithTx binds every repository of a
// flow to the same open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/authkeep/authkeep/internal/dbx"
	"github.com/authkeep/authkeep/internal/server/repositories/ephemeraltokens"
	"github.com/authkeep/authkeep/internal/server/repositories/refreshtokens"
	"github.com/authkeep/authkeep/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	VerifyAccountTokens(db dbx.DBTX) ephemeraltokens.Repository
	ResetPasswordTokens(db dbx.DBTX) ephemeraltokens.Repository
}
