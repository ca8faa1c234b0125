// Package httpapi exposes the credential-issuance flows as a JSON HTTP
// API. Handlers decode and validate flat request payloads, call the
// service layer, and translate its sentinel errors into status codes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/authkeep/authkeep/internal/logging"
	"github.com/authkeep/authkeep/internal/server/services"
)

// Service is the surface of the auth service the handlers depend on.
type Service interface {
	SignUp(ctx context.Context, email, name, password string) error
	SignIn(ctx context.Context, email, password, appID string, remember bool) (*services.SignInResult, error)
	Refresh(ctx context.Context, authorization, refreshToken, appID string) (string, error)
	VerifyAccount(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type Server struct {
	svc Service
	log logging.Logger
}

func NewServer(svc Service, log logging.Logger) *Server {
	return &Server{svc: svc, log: log.With("module", "httpapi")}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/ping", s.handlePing)

	r.Post("/api/signup", s.handleSignUp)
	r.Post("/api/signin", s.handleSignIn)
	r.Post("/api/token/refresh", s.handleRefresh)
	r.Post("/api/verify-account", s.handleVerifyAccount)
	r.Post("/api/resend-verification", s.handleResendVerification)
	r.Post("/api/reset-password/request", s.handleRequestPasswordReset)
	r.Post("/api/reset-password", s.handleResetPassword)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info(r.Context(), "request handled",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}
