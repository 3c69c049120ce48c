// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestNewSessionToken(t *testing.T) {
	token := NewSessionToken()
	if !token.Valid() {
		t.Fatal("NewSessionToken() is not valid")
	}
	if _, err := uuid.Parse(token.String()); err != nil {
		t.Errorf("NewSessionToken() = %q, not a UUID: %v", token.String(), err)
	}

	tokens := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := NewSessionToken().String()
		if tokens[s] {
			t.Errorf("NewSessionToken() produced duplicate token: %s", s)
		}
		tokens[s] = true
	}
}

func TestTokenFromNull(t *testing.T) {
	tests := []struct {
		name      string
		in        sql.NullString
		wantValid bool
	}{
		{"null column", sql.NullString{}, false},
		{"empty string", sql.NullString{String: "", Valid: true}, false},
		{"stored token", sql.NullString{String: "abc", Valid: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenFromNull(tt.in)
			if got.Valid() != tt.wantValid {
				t.Errorf("TokenFromNull() valid = %v, want %v", got.Valid(), tt.wantValid)
			}
		})
	}
}

func TestSessionTokenMatches(t *testing.T) {
	stored := TokenFromNull(sql.NullString{String: "secret-token", Valid: true})

	tests := []struct {
		name      string
		stored    SessionToken
		presented string
		want      bool
	}{
		{"same token", stored, "secret-token", true},
		{"different token", stored, "other-token", false},
		{"prefix only", stored, "secret", false},
		{"empty presented", stored, "", false},
		{"no session, empty presented", SessionToken{}, "", false},
		{"no session, any presented", SessionToken{}, "secret-token", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stored.Matches(tt.presented); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.presented, got, tt.want)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("HashPassword() returned plaintext")
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"correct password", "hunter22", nil},
		{"wrong password", "hunter23", ErrPasswordMismatch},
		{"empty password", "", ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(hash, tt.password)
			if err != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
