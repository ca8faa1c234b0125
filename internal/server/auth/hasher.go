// Package auth implements the three credential primitives: the scrypt
// password hasher, the JWT access-token signer, and the ephemeral token
// generator. All of them are pure computation; persistence lives in the
// repositories.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/authkeep/authkeep/internal/common"
)

// hashDelimiter joins the derived key and the salt in the stored artifact.
// '.' is not part of the base64 alphabet, so splitting is unambiguous.
const hashDelimiter = "."

// ScryptParams are the cost parameters for password hashing. They live in
// configuration, not in the stored hash, so hashes recorded under the
// current parameters stay verifiable for as long as the configuration
// carries them.
type ScryptParams struct {
	N       int // CPU/memory cost, power of two
	R       int // block size
	P       int // parallelism
	SaltLen int
	KeyLen  int
}

// Hasher derives and verifies salted password hashes.
type Hasher struct {
	params ScryptParams
}

func NewHasher(params ScryptParams) *Hasher {
	return &Hasher{params: params}
}

// Hash derives a key from password with a fresh random salt and returns
// "base64(key).base64(salt)". Two calls with the same password produce
// different artifacts.
func (h *Hasher) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(h.params.SaltLen)

	key, err := scrypt.Key([]byte(password), salt, h.params.N, h.params.R, h.params.P, h.params.KeyLen)
	if err != nil {
		return "", fmt.Errorf("scrypt: %w", err)
	}

	return base64.StdEncoding.EncodeToString(key) + hashDelimiter +
		base64.StdEncoding.EncodeToString(salt), nil
}

// Verify re-derives the key from password and the stored salt and compares
// in constant time. It returns common.ErrInvalidCredentialFormat when the
// stored value does not parse into exactly two base64 parts, and
// common.ErrInvalidPassword when the derived key does not match.
func (h *Hasher) Verify(stored, password string) error {
	parts := strings.Split(stored, hashDelimiter)
	if len(parts) != 2 {
		return common.ErrInvalidCredentialFormat
	}

	key, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return common.ErrInvalidCredentialFormat
	}
	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return common.ErrInvalidCredentialFormat
	}

	candidate, err := scrypt.Key([]byte(password), salt, h.params.N, h.params.R, h.params.P, h.params.KeyLen)
	if err != nil {
		return fmt.Errorf("scrypt: %w", err)
	}

	if subtle.ConstantTimeCompare(key, candidate) != 1 {
		return common.ErrInvalidPassword
	}
	return nil
}
