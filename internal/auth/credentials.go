package auth

import (
	"crypto/subtle"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the configured admin login. The password is kept only as
// a bcrypt hash; a plaintext ADMIN_PASSWORD is accepted for dev setups and
// hashed at startup.
type Credentials struct {
	user string
	hash []byte
}

// NewCredentials builds the credential store from config.
func NewCredentials(user, passwordHash, plaintext string) (*Credentials, error) {
	if user == "" {
		return nil, errors.New("admin user not configured")
	}
	switch {
	case passwordHash != "":
		return &Credentials{user: user, hash: []byte(passwordHash)}, nil
	case plaintext != "":
		log.Println("WARNING: ADMIN_PASSWORD set in plaintext, prefer ADMIN_PASSWORD_HASH")
		hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		return &Credentials{user: user, hash: hash}, nil
	default:
		return nil, errors.New("no admin credential configured (set ADMIN_PASSWORD_HASH)")
	}
}

// Verify checks a login attempt.
func (c *Credentials) Verify(user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.user)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
	return userOK && passOK
}
