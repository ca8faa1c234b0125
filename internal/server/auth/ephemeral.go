package auth

import (
	"fmt"
	"time"

	"github.com/authkeep/authkeep/internal/common"
)

// tokenBytes is the entropy of every opaque token: 128 bits.
const tokenBytes = 16

// TokenKind selects which configured lifetime an ephemeral token gets.
type TokenKind int

const (
	KindRefresh TokenKind = iota
	KindVerifyAccount
	KindResetPassword
)

func (k TokenKind) String() string {
	switch k {
	case KindRefresh:
		return "refresh"
	case KindVerifyAccount:
		return "verify-account"
	case KindResetPassword:
		return "reset-password"
	default:
		return "unknown"
	}
}

// Generator produces opaque random tokens paired with absolute expirations.
// Uniqueness is not checked here; the store's primary key on the token
// column enforces it, and flows retry a colliding insert a bounded number
// of times.
type Generator struct {
	ttl map[TokenKind]time.Duration
}

func NewGenerator(refresh, verifyAccount, resetPassword time.Duration) *Generator {
	return &Generator{
		ttl: map[TokenKind]time.Duration{
			KindRefresh:       refresh,
			KindVerifyAccount: verifyAccount,
			KindResetPassword: resetPassword,
		},
	}
}

// Generate returns a fresh token of the given kind and its expiration,
// now + the kind's configured interval.
func (g *Generator) Generate(kind TokenKind) (string, time.Time, error) {
	ttl, ok := g.ttl[kind]
	if !ok {
		return "", time.Time{}, fmt.Errorf("unknown token kind %d", kind)
	}

	token, err := common.MakeRandTokenString(tokenBytes)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generating token: %w", err)
	}

	return token, time.Now().Add(ttl), nil
}
