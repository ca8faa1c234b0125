package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authkeep/authkeep/internal/common"
)

// StaticClaims are the claims fixed at startup and stamped into every
// access token: issuer, audience, and arbitrary public/private extension
// claims from configuration.
type StaticClaims struct {
	Issuer   string
	Audience string
	Public   map[string]any
	Private  map[string]any
}

// Signer mints and verifies HMAC-signed access tokens. The signing key is
// a static configuration value; there is no key rotation at this layer.
type Signer struct {
	method   jwt.SigningMethod
	key      []byte
	headers  map[string]any
	validity time.Duration
	static   jwt.MapClaims
	// parser skips built-in claim validation; expiration is checked
	// explicitly in Verify so that Claims and Reissue can accept tokens
	// that have already expired.
	parser *jwt.Parser
}

// NewSigner builds a Signer for the given HMAC algorithm name
// (HS256/HS384/HS512). Configured header values are embedded into every
// minted token.
func NewSigner(alg string, key []byte, headers map[string]any, validity time.Duration, static StaticClaims) (*Signer, error) {
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", alg)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("algorithm %q is not symmetric", alg)
	}

	staticClaims := jwt.MapClaims{}
	if static.Issuer != "" {
		staticClaims["iss"] = static.Issuer
	}
	if static.Audience != "" {
		staticClaims["aud"] = static.Audience
	}
	for k, v := range static.Public {
		staticClaims[k] = v
	}
	for k, v := range static.Private {
		staticClaims[k] = v
	}

	return &Signer{
		method:   method,
		key:      key,
		headers:  headers,
		validity: validity,
		static:   staticClaims,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{alg}),
			jwt.WithJSONNumber(),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Issue mints a token for subject: static claims, then per-call extra
// claims, then sub and exp = now + validity. Extra claims win over static
// ones on key collision.
func (s *Signer) Issue(subject string, extra map[string]any) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range s.static {
		claims[k] = v
	}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = subject
	claims["exp"] = time.Now().Add(s.validity).Unix()

	return s.sign(claims)
}

// Verify validates the signature and expiration and returns the claim set.
// Tokens without a parseable numeric exp claim are rejected.
func (s *Signer) Verify(token string) (jwt.MapClaims, error) {
	claims, err := s.Claims(token)
	if err != nil {
		return nil, err
	}

	exp, err := numericClaim(claims, "exp")
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if time.Now().Unix() >= exp {
		return nil, common.ErrTokenExpired
	}
	return claims, nil
}

// Claims checks only the signature and returns the claim set, ignoring
// expiration. This is what the refresh flow needs to read sub out of an
// access token that may already have expired.
func (s *Signer) Claims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Reissue verifies the old token's signature (not its expiration), copies
// its claims, overwrites exp, and signs again. The subject and every other
// claim carry over unchanged.
func (s *Signer) Reissue(oldToken string) (string, error) {
	claims, err := s.Claims(oldToken)
	if err != nil {
		return "", err
	}

	claims["exp"] = time.Now().Add(s.validity).Unix()
	return s.sign(claims)
}

func (s *Signer) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(s.method, claims)
	for k, v := range s.headers {
		token.Header[k] = v
	}

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// numericClaim reads an integer claim that may arrive as json.Number,
// float64 or int64 depending on who produced the token.
func numericClaim(claims jwt.MapClaims, name string) (int64, error) {
	v, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing %q claim", name)
	}
	switch value := v.(type) {
	case json.Number:
		return value.Int64()
	case float64:
		return int64(value), nil
	case int64:
		return value, nil
	default:
		return 0, fmt.Errorf("claim %q is not numeric", name)
	}
}
