// Package services contains the server-side business logic. AuthService
// orchestrates the user-facing flows: sign-up, sign-in, access-token
// refresh, account verification, and password recovery. Each flow runs its
// reads and writes inside one transaction and translates failures into the
// sentinel errors of the common package.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/authkeep/authkeep/internal/common"
	"github.com/authkeep/authkeep/internal/dbx"
	"github.com/authkeep/authkeep/internal/server/auth"
	"github.com/authkeep/authkeep/internal/server/models"
	"github.com/authkeep/authkeep/internal/server/repositories/ephemeraltokens"
	"github.com/authkeep/authkeep/internal/server/repositories/repomanager"
)

// maxTokenInsertAttempts bounds the retries after an opaque-token
// collision. Collisions are astronomically unlikely; hitting the cap means
// something else is wrong.
const maxTokenInsertAttempts = 3

// Notifier delivers the out-of-band messages carrying ephemeral tokens.
// A notification failure is propagated synchronously to the calling flow,
// which rolls back.
type Notifier interface {
	SendAccountVerification(ctx context.Context, email, name, token string) error
	SendPasswordReset(ctx context.Context, email, name, token string) error
}

// SignInResult bundles the credentials minted at sign-in. RefreshToken and
// RefreshExpires are set only when the caller asked to be remembered.
type SignInResult struct {
	AccessToken    string
	RefreshToken   string
	RefreshExpires time.Time
}

// AuthService implements the credential-issuance flows on top of the
// hasher, signer, generator and the transactional store.
type AuthService struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	hasher    *auth.Hasher
	signer    *auth.Signer
	generator *auth.Generator
	notifier  Notifier
}

func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, hasher *auth.Hasher, signer *auth.Signer, generator *auth.Generator, notifier Notifier) *AuthService {
	return &AuthService{
		db:        db,
		repos:     repos,
		hasher:    hasher,
		signer:    signer,
		generator: generator,
		notifier:  notifier,
	}
}

// SignUp creates an account and sends its verification token. The user
// insert, the token insert and the notification share one transaction: if
// the notification cannot be dispatched, the account is rolled back so no
// user exists that was never told how to verify.
func (s *AuthService) SignUp(ctx context.Context, email, name, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	id := uuid.NewString()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user := &models.User{ID: id, Email: email, Name: name, Hash: hash}
		if err := s.repos.Users(tx).Create(ctx, user); err != nil {
			return err
		}

		token, err := s.createEphemeral(ctx, tx, s.repos.VerifyAccountTokens(tx), auth.KindVerifyAccount, id)
		if err != nil {
			return err
		}

		return s.notifier.SendAccountVerification(ctx, email, name, token)
	})
}

// SignIn checks the password and issues an access token. When remember is
// set, a refresh token scoped to appID is generated as well; re-signing-in
// for the same application replaces the previous refresh token.
func (s *AuthService) SignIn(ctx context.Context, email, password, appID string, remember bool) (*SignInResult, error) {
	var result *SignInResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repos.Users(tx).GetByEmail(ctx, email)
		if err != nil {
			return err
		}

		if err := s.hasher.Verify(user.Hash, password); err != nil {
			return err
		}

		access, err := s.signer.Issue(user.ID, nil)
		if err != nil {
			return fmt.Errorf("issuing access token: %w", err)
		}
		result = &SignInResult{AccessToken: access}

		if !remember {
			return nil
		}

		token, expires, err := s.upsertRefreshToken(ctx, tx, user.ID, appID)
		if err != nil {
			return err
		}
		result.RefreshToken = token
		result.RefreshExpires = expires
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Refresh exchanges a valid refresh token plus the old access token for a
// new access token. The old access token's signature must verify but its
// expiration is deliberately ignored; the refresh token's expiration is
// the gate. The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, authorization, refreshToken, appID string) (string, error) {
	accessToken, err := bearerToken(authorization)
	if err != nil {
		return "", err
	}

	var newAccess string
	var expired bool

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rt, err := s.repos.RefreshTokens(tx).Find(ctx, refreshToken)
		if err != nil {
			return err
		}

		if rt.AppID != appID {
			return common.ErrorInvalid
		}

		user, err := s.repos.Users(tx).GetByID(ctx, rt.UserID)
		if err != nil {
			return err
		}
		if !user.Verified {
			return common.ErrorUnverified
		}

		if !rt.Expires.After(time.Now()) {
			if err := s.repos.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
				return err
			}
			// Commit the delete; expiry is reported after the transaction.
			expired = true
			return nil
		}

		claims, err := s.signer.Claims(accessToken)
		if err != nil {
			return err
		}
		sub, _ := claims["sub"].(string)
		if sub == "" || sub != rt.UserID {
			return common.ErrorInvalid
		}

		newAccess, err = s.signer.Reissue(accessToken)
		return err
	})
	if err != nil {
		return "", err
	}
	if expired {
		return "", common.ErrTokenExpired
	}
	return newAccess, nil
}

// VerifyAccount consumes a verification token and marks the owning user
// verified. The token delete and the user update share one transaction.
func (s *AuthService) VerifyAccount(ctx context.Context, token string) error {
	var expired bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.VerifyAccountTokens(tx)

		vt, err := repo.Find(ctx, token)
		if err != nil {
			return err
		}

		if !vt.Expires.After(time.Now()) {
			if err := repo.Delete(ctx, token); err != nil {
				return err
			}
			expired = true
			return nil
		}

		if err := s.repos.Users(tx).SetVerified(ctx, vt.UserID, true); err != nil {
			return err
		}
		return repo.Delete(ctx, token)
	})
	if err != nil {
		return err
	}
	if expired {
		return common.ErrTokenExpired
	}
	return nil
}

// ResendVerification issues a fresh verification token for an account that
// has not verified yet. An already-verified account fails before any write.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repos.Users(tx).GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if user.Verified {
			return common.ErrorInvalid
		}

		token, err := s.createEphemeral(ctx, tx, s.repos.VerifyAccountTokens(tx), auth.KindVerifyAccount, user.ID)
		if err != nil {
			return err
		}

		return s.notifier.SendAccountVerification(ctx, email, user.Name, token)
	})
}

// RequestPasswordReset issues a reset token for the account and mails it.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repos.Users(tx).GetByEmail(ctx, email)
		if err != nil {
			return err
		}

		token, err := s.createEphemeral(ctx, tx, s.repos.ResetPasswordTokens(tx), auth.KindResetPassword, user.ID)
		if err != nil {
			return err
		}

		return s.notifier.SendPasswordReset(ctx, email, user.Name, token)
	})
}

// ResetPassword consumes a reset token and replaces the user's credential
// hash. The token is deleted in the same transaction, so it cannot be
// replayed once the password has changed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	var expired bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.ResetPasswordTokens(tx)

		rt, err := repo.Find(ctx, token)
		if err != nil {
			return err
		}

		if !rt.Expires.After(time.Now()) {
			if err := repo.Delete(ctx, token); err != nil {
				return err
			}
			expired = true
			return nil
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		if err := s.repos.Users(tx).UpdateHash(ctx, rt.UserID, hash); err != nil {
			return err
		}
		return repo.Delete(ctx, token)
	})
	if err != nil {
		return err
	}
	if expired {
		return common.ErrTokenExpired
	}
	return nil
}

const tokenInsertSavepoint = "token_insert"

// createEphemeral generates a token of the given kind and inserts it,
// retrying a bounded number of times if the store reports a collision on
// the token value. A failed statement aborts the surrounding transaction
// in Postgres, so every attempt runs under a savepoint that is rolled
// back before the next try.
func (s *AuthService) createEphemeral(ctx context.Context, tx dbx.DBTX, repo ephemeraltokens.Repository, kind auth.TokenKind, userID string) (string, error) {
	for attempt := 0; attempt < maxTokenInsertAttempts; attempt++ {
		token, expires, err := s.generator.Generate(kind)
		if err != nil {
			return "", err
		}

		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+tokenInsertSavepoint); err != nil {
			return "", fmt.Errorf("creating savepoint: %w", err)
		}
		err = repo.Create(ctx, token, userID, expires)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return "", err
		}
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+tokenInsertSavepoint); err != nil {
			return "", fmt.Errorf("rolling back savepoint: %w", err)
		}
	}
	return "", common.ErrorInternal
}

// upsertRefreshToken generates a refresh token for (userID, appID) and
// stores it, replacing any previous token for the pair. Same bounded retry
// on a token-value collision as createEphemeral.
func (s *AuthService) upsertRefreshToken(ctx context.Context, tx dbx.DBTX, userID, appID string) (string, time.Time, error) {
	repo := s.repos.RefreshTokens(tx)

	for attempt := 0; attempt < maxTokenInsertAttempts; attempt++ {
		token, expires, err := s.generator.Generate(auth.KindRefresh)
		if err != nil {
			return "", time.Time{}, err
		}

		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+tokenInsertSavepoint); err != nil {
			return "", time.Time{}, fmt.Errorf("creating savepoint: %w", err)
		}
		err = repo.Upsert(ctx, userID, appID, token, expires)
		if err == nil {
			return token, expires, nil
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return "", time.Time{}, err
		}
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+tokenInsertSavepoint); err != nil {
			return "", time.Time{}, fmt.Errorf("rolling back savepoint: %w", err)
		}
	}
	return "", time.Time{}, common.ErrorInternal
}

// bearerToken extracts the access token from an Authorization header
// value. Anything but exactly "Bearer <token>" is invalid.
func bearerToken(authorization string) (string, error) {
	parts := strings.Split(authorization, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", common.ErrorInvalid
	}
	return parts[1], nil
}
