package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_PerKindIntervals(t *testing.T) {
	g := NewGenerator(72*time.Hour, 24*time.Hour, 15*time.Minute)

	tests := []struct {
		kind TokenKind
		ttl  time.Duration
	}{
		{KindRefresh, 72 * time.Hour},
		{KindVerifyAccount, 24 * time.Hour},
		{KindResetPassword, 15 * time.Minute},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			before := time.Now()
			token, expires, err := g.Generate(tc.kind)
			after := time.Now()
			require.NoError(t, err)

			b, err := base64.RawURLEncoding.DecodeString(token)
			require.NoError(t, err, "token must be url-safe base64")
			assert.Len(t, b, 16, "128 bits of entropy")

			assert.False(t, expires.Before(before.Add(tc.ttl)))
			assert.False(t, expires.After(after.Add(tc.ttl)))
		})
	}
}

func TestGenerator_TokensDiffer(t *testing.T) {
	g := NewGenerator(time.Hour, time.Hour, time.Hour)

	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		token, _, err := g.Generate(KindRefresh)
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup, "duplicate token generated")
		seen[token] = struct{}{}
	}
}

func TestGenerator_UnknownKind(t *testing.T) {
	g := NewGenerator(time.Hour, time.Hour, time.Hour)

	_, _, err := g.Generate(TokenKind(42))
	assert.Error(t, err)
}
