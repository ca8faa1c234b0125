package ephemeraltokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/authkeep/authkeep/internal/common"
	"github.com/authkeep/authkeep/internal/dbx"
	"github.com/authkeep/authkeep/internal/server/models"
)

const (
	VerifyAccountTable = "verify_account_tokens"
	ResetPasswordTable = "reset_password_tokens"
)

// PostgresRepository serves one of the two ephemeral-token tables. The
// table name is fixed at construction from the constants above, never from
// request data.
type PostgresRepository struct {
	db    dbx.DBTX
	table string
}

func NewVerifyAccountRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, table: VerifyAccountTable}
}

func NewResetPasswordRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, table: ResetPasswordTable}
}

func (r *PostgresRepository) Create(ctx context.Context, token, userID string, expires time.Time) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (token, user_id, expires_at)
         VALUES ($1, $2, $3)
		 `, r.table)

	_, err := r.db.ExecContext(ctx, query, token, userID, expires)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.EphemeralToken, error) {
	query := fmt.Sprintf(
		`SELECT token, user_id, expires_at FROM %s
		 WHERE token = $1
		 `, r.table)

	et := &models.EphemeralToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&et.Token, &et.UserID, &et.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return et, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := fmt.Sprintf(
		`DELETE FROM %s
		 WHERE token = $1
		 `, r.table)

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}
