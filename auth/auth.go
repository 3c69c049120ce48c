// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch = errors.New("password does not match")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SessionToken is a user's stored bearer credential. The zero value is
// "no active session" and matches nothing.
type SessionToken struct {
	value string
	valid bool
}

// NewSessionToken creates a fresh random token for a login
func NewSessionToken() SessionToken {
	return SessionToken{value: uuid.NewString(), valid: true}
}

// TokenFromNull converts a nullable auth_token column
func TokenFromNull(ns sql.NullString) SessionToken {
	if !ns.Valid || ns.String == "" {
		return SessionToken{}
	}
	return SessionToken{value: ns.String, valid: true}
}

// Valid reports whether the user currently has a session
func (t SessionToken) Valid() bool {
	return t.valid
}

// String returns the raw token, or "" when absent
func (t SessionToken) String() string {
	return t.value
}

// Matches compares a presented token against the stored one in constant time.
// An absent stored token never matches, and neither does an empty presented one.
func (t SessionToken) Matches(presented string) bool {
	if !t.valid || presented == "" {
		return false
	}
	return hmac.Equal([]byte(t.value), []byte(presented))
}

// HashPassword hashes a plaintext password with bcrypt's default cost
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword returns ErrPasswordMismatch when password does not match hash
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to check password: %w", err)
	}
	return nil
}
