// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package users manages accounts and sessions.

Login issues a fresh session token and stores it on the user row; Logout
clears it. Every other package identifies the caller by resolving the
presented token:

	u, err := svc.ResolveByToken(ctx, r.Header.Get("X-Authorization"))
	if errors.Is(err, users.ErrNotFound) {
		// 401
	}

Profile edits and profile images are allowed only for the user's own
session. Errors are sentinels: ErrNotFound, ErrEmailInUse,
ErrInvalidCredentials, ErrForbidden, ErrSamePassword and ErrNoImage.
*/
package users
