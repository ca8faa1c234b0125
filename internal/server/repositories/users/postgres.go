package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/authkeep/authkeep/internal/common"
	"github.com/authkeep/authkeep/internal/dbx"
	"github.com/authkeep/authkeep/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (id, email, name, hash, verified, deleted)
         VALUES ($1, $2, $3, $4, false, false)
		 `

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.Hash)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, name, hash, verified FROM users
		 WHERE email = $1 AND deleted = false
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, email, name, hash, verified FROM users
		 WHERE id = $1 AND deleted = false
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) UpdateHash(ctx context.Context, id string, hash string) error {
	query :=
		`UPDATE users SET hash = $1
		 WHERE id = $2 AND deleted = false
		 `

	return r.mustUpdateOne(ctx, query, hash, id)
}

func (r *PostgresRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	query :=
		`UPDATE users SET verified = $1
		 WHERE id = $2 AND deleted = false
		 `

	return r.mustUpdateOne(ctx, query, verified, id)
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Hash, &user.Verified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) mustUpdateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}
