// Package server initializes and runs the auth server application.
// It opens the database, applies migrations, wires the hashing, signing
// and mailing components into the auth service, and runs the HTTP endpoint
// with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/authkeep/authkeep/internal/logging"
	"github.com/authkeep/authkeep/internal/server/auth"
	"github.com/authkeep/authkeep/internal/server/config"
	"github.com/authkeep/authkeep/internal/server/httpapi"
	"github.com/authkeep/authkeep/internal/server/mailer"
	"github.com/authkeep/authkeep/internal/server/repositories/repomanager"
	"github.com/authkeep/authkeep/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	hasher := auth.NewHasher(auth.ScryptParams{
		N:       cfg.ScryptN,
		R:       cfg.ScryptR,
		P:       cfg.ScryptP,
		SaltLen: cfg.ScryptSaltLen,
		KeyLen:  cfg.ScryptKeyLen,
	})

	signer, err := auth.NewSigner(cfg.JWTAlgorithm, []byte(cfg.SecretKey), cfg.JWTHeaders,
		cfg.AccessTokenValidity, auth.StaticClaims{
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Public:   cfg.JWTPublicClaims,
			Private:  cfg.JWTPrivateClaims,
		})
	if err != nil {
		return nil, fmt.Errorf("signer init error: %w", err)
	}

	generator := auth.NewGenerator(cfg.RefreshTokenValidity, cfg.VerifyTokenValidity, cfg.ResetTokenValidity)

	notifier := mailer.NewSMTPMailer(mailer.Config{
		Host:             cfg.SMTPHost,
		Port:             cfg.SMTPPort,
		Username:         cfg.SMTPUsername,
		Password:         cfg.SMTPPassword,
		From:             cfg.SMTPFrom,
		Secure:           cfg.SMTPSecure,
		VerifyAccountURL: cfg.VerifyAccountBaseURL,
		ResetPasswordURL: cfg.ResetPasswordBaseURL,
	})

	svc := services.NewAuthService(db, repos, hasher, signer, generator, notifier)
	api := httpapi.NewServer(svc, logger)

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.Addr,
		Handler: app.api.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return app.db.Close()
}
