// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/petitions/auth"
	"github.com/danielhkuo/petitions/db"
	"github.com/danielhkuo/petitions/images"
	"github.com/danielhkuo/petitions/models"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrForbidden          = errors.New("cannot modify another user")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrNoImage            = errors.New("user has no image")
)

type Service struct {
	store  *db.Store
	images *images.Store
}

func NewService(store *db.Store, imageStore *images.Store) *Service {
	return &Service{store: store, images: imageStore}
}

const userColumns = `id, email, first_name, last_name, image_filename, password, auth_token`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	var image, token sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &image, &u.PasswordHash, &token); err != nil {
		return models.User{}, err
	}
	if image.Valid {
		u.ImageFilename = &image.String
	}
	u.AuthToken = auth.TokenFromNull(token)
	return u, nil
}

func (s *Service) lookup(ctx context.Context, q db.Querier, where string, arg any) (models.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM "user" WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("users: lookup: %w", err)
	}
	return u, nil
}

// ResolveByToken finds the user holding an active session token. An empty
// token resolves to nobody without a query.
func (s *Service) ResolveByToken(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrNotFound
	}
	return s.lookup(ctx, s.store.DB(), "auth_token = $1", token)
}

func (s *Service) ResolveByID(ctx context.Context, id int64) (models.User, error) {
	return s.lookup(ctx, s.store.DB(), "id = $1", id)
}

// Register creates an account and returns its id.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (int64, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.store.DB().QueryRowContext(ctx, `
		INSERT INTO "user" (email, first_name, last_name, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, req.Email, req.FirstName, req.LastName, hash).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, ErrEmailInUse
	}
	if err != nil {
		return 0, fmt.Errorf("users: register: %w", err)
	}

	slog.Info("user registered", "user_id", id)
	return id, nil
}

// Login checks credentials and starts a new session, replacing any
// previous token.
func (s *Service) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	u, err := s.lookup(ctx, s.store.DB(), "email = $1", email)
	if errors.Is(err, ErrNotFound) {
		return models.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.LoginResponse{}, err
	}

	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return models.LoginResponse{}, ErrInvalidCredentials
		}
		return models.LoginResponse{}, err
	}

	token := auth.NewSessionToken()
	if _, err := s.store.DB().ExecContext(ctx,
		`UPDATE "user" SET auth_token = $1 WHERE id = $2`, token.String(), u.ID); err != nil {
		return models.LoginResponse{}, fmt.Errorf("users: login: %w", err)
	}

	slog.Info("user logged in", "user_id", u.ID)
	return models.LoginResponse{UserID: u.ID, Token: token.String()}, nil
}

// Logout ends the session identified by token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotFound
	}
	res, err := s.store.DB().ExecContext(ctx, `UPDATE "user" SET auth_token = NULL WHERE auth_token = $1`, token)
	if err != nil {
		return fmt.Errorf("users: logout: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// View returns the public profile of id. The email is included only when
// token is that user's own session.
func (s *Service) View(ctx context.Context, id int64, token string) (models.UserView, error) {
	u, err := s.ResolveByID(ctx, id)
	if err != nil {
		return models.UserView{}, err
	}

	v := models.UserView{FirstName: u.FirstName, LastName: u.LastName}
	if u.AuthToken.Matches(token) {
		v.Email = &u.Email
	}
	return v, nil
}

// Update applies a profile edit by the holder of token. Changing the
// password requires the current one.
func (s *Service) Update(ctx context.Context, id int64, token string, req models.EditUserRequest) error {
	return s.store.WithTx(ctx, func(tx *sql.Tx) error {
		u, err := s.lookup(ctx, tx, "id = $1", id)
		if err != nil {
			return err
		}
		if !u.AuthToken.Matches(token) {
			return ErrForbidden
		}

		if req.Email != nil && *req.Email != u.Email {
			var taken bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND id <> $2)`, *req.Email, id).Scan(&taken); err != nil {
				return fmt.Errorf("users: update: %w", err)
			}
			if taken {
				return ErrEmailInUse
			}
			u.Email = *req.Email
		}
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}

		if req.Password != nil {
			if req.CurrentPassword == nil {
				return ErrInvalidCredentials
			}
			if err := auth.CheckPassword(u.PasswordHash, *req.CurrentPassword); err != nil {
				if errors.Is(err, auth.ErrPasswordMismatch) {
					return ErrInvalidCredentials
				}
				return err
			}
			if *req.Password == *req.CurrentPassword {
				return ErrSamePassword
			}
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE "user" SET email = $1, first_name = $2, last_name = $3, password = $4
			WHERE id = $5
		`, u.Email, u.FirstName, u.LastName, u.PasswordHash, id)
		if db.IsUniqueViolation(err) {
			return ErrEmailInUse
		}
		if err != nil {
			return fmt.Errorf("users: update: %w", err)
		}

		slog.Info("user updated", "user_id", id)
		return nil
	})
}

// Image returns the user's profile image.
func (s *Service) Image(ctx context.Context, id int64) ([]byte, string, error) {
	u, err := s.ResolveByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if u.ImageFilename == nil {
		return nil, "", ErrNoImage
	}
	return s.images.Read(*u.ImageFilename)
}

// SetImage stores a new profile image for id, replacing any previous one.
// It reports whether the user had no image before. The ownership check and
// the row update share one transaction; the replaced file is removed only
// after it commits.
func (s *Service) SetImage(ctx context.Context, id int64, token string, data []byte, ext string) (bool, error) {
	var previous *string
	var filename string

	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		u, err := s.lookup(ctx, tx, "id = $1", id)
		if err != nil {
			return err
		}
		if !u.AuthToken.Matches(token) {
			return ErrForbidden
		}
		previous = u.ImageFilename

		// A retried transaction reuses the file saved by the first attempt.
		if filename == "" {
			if filename, err = s.images.Save(data, ext); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE "user" SET image_filename = $1 WHERE id = $2`, filename, id); err != nil {
			return fmt.Errorf("users: set image: %w", err)
		}
		return nil
	})
	if err != nil {
		if filename != "" {
			_ = s.images.Remove(filename)
		}
		return false, err
	}

	if previous != nil {
		if err := s.images.Remove(*previous); err != nil {
			slog.Warn("failed to remove replaced image", "user_id", id, "error", err)
		}
		return false, nil
	}
	return true, nil
}

// RemoveImage deletes the user's profile image.
func (s *Service) RemoveImage(ctx context.Context, id int64, token string) error {
	var filename string

	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		u, err := s.lookup(ctx, tx, "id = $1", id)
		if err != nil {
			return err
		}
		if !u.AuthToken.Matches(token) {
			return ErrForbidden
		}
		if u.ImageFilename == nil {
			return ErrNoImage
		}
		filename = *u.ImageFilename

		if _, err := tx.ExecContext(ctx,
			`UPDATE "user" SET image_filename = NULL WHERE id = $1`, id); err != nil {
			return fmt.Errorf("users: remove image: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.images.Remove(filename)
}
