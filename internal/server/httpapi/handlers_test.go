package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authkeep/authkeep/internal/common"
	"github.com/authkeep/authkeep/internal/logging"
	"github.com/authkeep/authkeep/internal/server/services"
)

// stubService returns canned results so the tests exercise only the HTTP
// mapping.
type stubService struct {
	err           error
	signInResult  *services.SignInResult
	refreshResult string

	lastAuthorization string
}

func (s *stubService) SignUp(context.Context, string, string, string) error { return s.err }

func (s *stubService) SignIn(context.Context, string, string, string, bool) (*services.SignInResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.signInResult, nil
}

func (s *stubService) Refresh(_ context.Context, authorization, _, _ string) (string, error) {
	s.lastAuthorization = authorization
	if s.err != nil {
		return "", s.err
	}
	return s.refreshResult, nil
}

func (s *stubService) VerifyAccount(context.Context, string) error       { return s.err }
func (s *stubService) ResendVerification(context.Context, string) error  { return s.err }
func (s *stubService) RequestPasswordReset(context.Context, string) error { return s.err }
func (s *stubService) ResetPassword(context.Context, string, string) error { return s.err }

func newTestServer(svc *stubService) http.Handler {
	return NewServer(svc, logging.NewDiscardLogger()).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := doJSON(t, newTestServer(&stubService{}), http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong")
}

func TestSignUpHandler(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"success", `{"email":"a@b.com","name":"Alice","password":"longenough"}`, nil, http.StatusCreated},
		{"malformed json", `{`, nil, http.StatusBadRequest},
		{"invalid email", `{"email":"nope","name":"Alice","password":"longenough"}`, nil, http.StatusBadRequest},
		{"short password", `{"email":"a@b.com","name":"Alice","password":"short"}`, nil, http.StatusBadRequest},
		{"duplicate email", `{"email":"a@b.com","name":"Alice","password":"longenough"}`, common.ErrorAlreadyExists, http.StatusConflict},
		{"internal failure", `{"email":"a@b.com","name":"Alice","password":"longenough"}`, common.ErrorInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&stubService{err: tt.err})
			rec := doJSON(t, h, http.MethodPost, "/api/signup", tt.body, nil)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSignInHandler(t *testing.T) {
	t.Run("with refresh token", func(t *testing.T) {
		expires := time.Now().Add(time.Hour)
		h := newTestServer(&stubService{signInResult: &services.SignInResult{
			AccessToken: "at", RefreshToken: "rt", RefreshExpires: expires,
		}})

		rec := doJSON(t, h, http.MethodPost, "/api/signin",
			`{"email":"a@b.com","password":"pw","app_id":"app","remember":true}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp signInResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "at", resp.AccessToken)
		assert.Equal(t, "rt", resp.RefreshToken)
		assert.Equal(t, expires.Unix(), resp.RefreshExpires)
	})

	t.Run("without refresh token", func(t *testing.T) {
		h := newTestServer(&stubService{signInResult: &services.SignInResult{AccessToken: "at"}})

		rec := doJSON(t, h, http.MethodPost, "/api/signin",
			`{"email":"a@b.com","password":"pw"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "refresh_token")
	})

	t.Run("remember requires app id", func(t *testing.T) {
		h := newTestServer(&stubService{})
		rec := doJSON(t, h, http.MethodPost, "/api/signin",
			`{"email":"a@b.com","password":"pw","remember":true}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		h := newTestServer(&stubService{err: common.ErrInvalidPassword})
		rec := doJSON(t, h, http.MethodPost, "/api/signin",
			`{"email":"a@b.com","password":"pw"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		h := newTestServer(&stubService{err: common.ErrorNotFound})
		rec := doJSON(t, h, http.MethodPost, "/api/signin",
			`{"email":"a@b.com","password":"pw"}`, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRefreshHandler(t *testing.T) {
	t.Run("passes authorization header", func(t *testing.T) {
		svc := &stubService{refreshResult: "new-at"}
		h := newTestServer(svc)

		rec := doJSON(t, h, http.MethodPost, "/api/token/refresh",
			`{"refresh_token":"rt","app_id":"app"}`,
			map[string]string{"Authorization": "Bearer old-at"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Bearer old-at", svc.lastAuthorization)
		assert.Contains(t, rec.Body.String(), "new-at")
	})

	t.Run("missing refresh token", func(t *testing.T) {
		h := newTestServer(&stubService{})
		rec := doJSON(t, h, http.MethodPost, "/api/token/refresh", `{"app_id":"app"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service errors", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
		}{
			{common.ErrTokenExpired, http.StatusUnauthorized},
			{common.ErrorUnverified, http.StatusMethodNotAllowed},
			{common.ErrorInvalid, http.StatusBadRequest},
			{common.ErrorNotFound, http.StatusNotFound},
			{common.ErrInvalidToken, http.StatusUnauthorized},
		}
		for _, tt := range tests {
			h := newTestServer(&stubService{err: tt.err})
			rec := doJSON(t, h, http.MethodPost, "/api/token/refresh",
				`{"refresh_token":"rt","app_id":"app"}`, nil)
			assert.Equal(t, tt.status, rec.Code, "error %v", tt.err)
		}
	})
}

func TestVerifyAccountHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newTestServer(&stubService{})
		rec := doJSON(t, h, http.MethodPost, "/api/verify-account", `{"token":"vt"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("expired", func(t *testing.T) {
		h := newTestServer(&stubService{err: common.ErrTokenExpired})
		rec := doJSON(t, h, http.MethodPost, "/api/verify-account", `{"token":"vt"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		h := newTestServer(&stubService{})
		rec := doJSON(t, h, http.MethodPost, "/api/verify-account", `{}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResendVerificationHandler(t *testing.T) {
	t.Run("already verified", func(t *testing.T) {
		h := newTestServer(&stubService{err: common.ErrorInvalid})
		rec := doJSON(t, h, http.MethodPost, "/api/resend-verification", `{"email":"a@b.com"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		h := newTestServer(&stubService{})
		rec := doJSON(t, h, http.MethodPost, "/api/resend-verification", `{"email":"a@b.com"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestResetPasswordHandlers(t *testing.T) {
	t.Run("request success", func(t *testing.T) {
		h := newTestServer(&stubService{})
		rec := doJSON(t, h, http.MethodPost, "/api/reset-password/request", `{"email":"a@b.com"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("request unknown email", func(t *testing.T) {
		h := newTestServer(&stubService{err: common.ErrorNotFound})
		rec := doJSON(t, h, http.MethodPost, "/api/reset-password/request", `{"email":"a@b.com"}`, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("reset success", func(t *testing.T) {
		h := newTestServer(&stubService{})
		rec := doJSON(t, h, http.MethodPost, "/api/reset-password",
			`{"token":"pt","password":"longenough"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reset short password", func(t *testing.T) {
		h := newTestServer(&stubService{})
		rec := doJSON(t, h, http.MethodPost, "/api/reset-password",
			`{"token":"pt","password":"short"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
