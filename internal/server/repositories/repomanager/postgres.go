package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/authkeep/authkeep/internal/dbx"
	"github.com/authkeep/authkeep/internal/server/migrations"
	"github.com/authkeep/authkeep/internal/server/repositories/ephemeraltokens"
	"github.com/authkeep/authkeep/internal/server/repositories/refreshtokens"
	"github.com/authkeep/authkeep/internal/server/repositories/users"
)

// gooseUpContext is a test seam for goose.UpContext.
var gooseUpContext = goose.UpContext

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) VerifyAccountTokens(db dbx.DBTX) ephemeraltokens.Repository {
	return ephemeraltokens.NewVerifyAccountRepository(db)
}

func (m *PostgresRepositoryManager) ResetPasswordTokens(db dbx.DBTX) ephemeraltokens.Repository {
	return ephemeraltokens.NewResetPasswordRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}
