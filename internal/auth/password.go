// Package auth implements password hashing and bearer-token issuance
// for user accounts.
package auth

import (
	"errors"

	"github.com/melo-app/accounts/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a salted one-way hash of plaintext. Each call uses
// a fresh random salt, so hashing the same password twice yields distinct
// encodings that both verify.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword recomputes the hash using the parameters embedded in
// stored and compares in constant time. A mismatch returns (false, nil);
// an unparseable stored hash is a defect and returns an integrity error.
func VerifyPassword(plaintext, stored string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, apperr.Integrity("stored password hash is malformed", err)
}
