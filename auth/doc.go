// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session tokens, password hashing and ID generation.

# Session Tokens

A user logs in and receives a random UUID token, stored in user.auth_token:

	token := auth.NewSessionToken()

Logging out sets the column back to NULL. The stored value is read back as a
SessionToken:

	stored := auth.TokenFromNull(row.AuthToken)
	if !stored.Matches(r.Header.Get("X-Authorization")) {
		// not the owner
	}

Matches treats an absent stored token as "no active session": it never
matches, not even an empty presented string. Rotating or clearing the token
therefore invalidates earlier sessions immediately.

# Passwords

Passwords are hashed with bcrypt at the default cost:

	hash, err := auth.HashPassword(plain)
	err = auth.CheckPassword(hash, plain) // ErrPasswordMismatch on mismatch

# ID Generation

Random hex IDs, used for stored image filenames:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
