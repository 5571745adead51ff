// Package secrets issues and verifies grantor API secrets. The plaintext
// is handed out exactly once at registration; only the bcrypt hash is
// stored, so a leaked parties table cannot mint tokens.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "pactum/pkg/domain-errors"
)

const secretBytes = 32

// Generate returns a fresh random secret, base64url without padding so it
// survives copy-paste into headers and env vars.
func Generate() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash bcrypts a secret for storage.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash secret")
	}
	return string(hashed), nil
}

// Verify compares a presented secret against its stored hash. A mismatch
// comes back as an unauthorized domain error so handlers map it straight
// to a 401.
func Verify(secret, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid secret")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify secret")
}
