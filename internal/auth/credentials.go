// Package auth verifies the single admin credential that guards mutations.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator decides whether a username/secret pair is authorized.
type Authenticator interface {
	Verify(username, secret string) bool
}

// Verifier checks credentials against a configured username and bcrypt hash.
// A Verifier without a configured credential rejects everything.
type Verifier struct {
	username []byte
	hash     []byte
}

// dummyHash keeps the rejection path as slow as the accept path.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("studio-calendar"), bcrypt.DefaultCost)

// NewVerifier builds a verifier. passwordHash is a bcrypt hash and wins over
// password; a plaintext password is hashed once here.
func NewVerifier(username, password, passwordHash string) (*Verifier, error) {
	if username == "" || (password == "" && passwordHash == "") {
		return &Verifier{}, nil
	}

	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
		return &Verifier{username: []byte(username), hash: []byte(passwordHash)}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &Verifier{username: []byte(username), hash: hash}, nil
}

// Enabled reports whether any credential can ever be accepted.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.hash) > 0
}

func (v *Verifier) Verify(username, secret string) bool {
	if !v.Enabled() {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), v.username) == 1
	err := bcrypt.CompareHashAndPassword(v.hash, []byte(secret))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false
	}
	return userOK && err == nil
}
