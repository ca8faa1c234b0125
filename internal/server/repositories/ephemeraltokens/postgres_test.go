package ephemeraltokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/authkeep/authkeep/internal/common"
)

func newRepoWithMock(t *testing.T, ctor func(db *sql.DB) *PostgresRepository) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return ctor(db), mock, db
}

func verifyCtor(db *sql.DB) *PostgresRepository { return NewVerifyAccountRepository(db) }
func resetCtor(db *sql.DB) *PostgresRepository  { return NewResetPasswordRepository(db) }

func TestCreate_UsesKindTable(t *testing.T) {
	tests := []struct {
		name  string
		ctor  func(db *sql.DB) *PostgresRepository
		table string
	}{
		{"verify-account", verifyCtor, `verify_account_tokens`},
		{"reset-password", resetCtor, `reset_password_tokens`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t, tc.ctor)
			defer db.Close()

			q := `(?s)^INSERT\s+INTO\s+` + tc.table + `\s*\(token,\s*user_id,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`

			exp := time.Now().Add(24 * time.Hour)
			mock.ExpectExec(q).
				WithArgs("tok-1", "u-1", exp).
				WillReturnResult(sqlmock.NewResult(0, 1))

			if err := repo.Create(context.Background(), "tok-1", "u-1", exp); err != nil {
				t.Fatalf("Create error: %v", err)
			}
		})
	}
}

func TestCreate_TokenCollision(t *testing.T) {
	repo, mock, db := newRepoWithMock(t, verifyCtor)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+verify_account_tokens`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "verify_account_tokens_pkey"})

	err := repo.Create(context.Background(), "tok-1", "u-1", time.Now().Add(time.Hour))
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t, resetCtor)
	defer db.Close()

	q := `(?s)^SELECT\s+token,\s*user_id,\s*expires_at\s+FROM\s+reset_password_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`

	exp := time.Now().Add(15 * time.Minute)
	rows := sqlmock.NewRows([]string{"token", "user_id", "expires_at"}).
		AddRow("tok-1", "u-1", exp)
	mock.ExpectQuery(q).WithArgs("tok-1").WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.UserID != "u-1" || !got.Expires.Equal(exp) {
		t.Fatalf("unexpected token: %+v", got)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t, verifyCtor)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+token,\s*user_id,\s*expires_at\s+FROM\s+verify_account_tokens`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t, verifyCtor)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+verify_account_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`

	mock.ExpectExec(q).WithArgs("tok-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("tok-1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "tok-1"); err != nil {
		t.Fatalf("first Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), "tok-1"); err != nil {
		t.Fatalf("second Delete error: %v", err)
	}
}
