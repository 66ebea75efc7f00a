package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt password hashing.
const BcryptCost = 12

// ErrInvalidCredentials is returned when a username or password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Credentials is the single admin account, checked against a bcrypt hash.
type Credentials struct {
	username     string
	passwordHash []byte
}

func NewCredentials(username, passwordHash string) *Credentials {
	return &Credentials{username: username, passwordHash: []byte(passwordHash)}
}

// Check returns ErrInvalidCredentials unless both values match. The bcrypt
// comparison runs even on a username mismatch.
func (c *Credentials) Check(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	err := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password))
	if !userOK || err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
