// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package users

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/petitions/images"
	"github.com/danielhkuo/petitions/models"
	"github.com/danielhkuo/petitions/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newService(t *testing.T) *Service {
	t.Helper()
	imgs, err := images.NewStore(t.TempDir())
	require.NoError(t, err)
	return NewService(testutil.SetupTestDB(t), imgs)
}

func register(t *testing.T, svc *Service, email string) int64 {
	t.Helper()
	id, err := svc.Register(context.Background(), models.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "secret1",
	})
	require.NoError(t, err)
	return id
}

func login(t *testing.T, svc *Service, email string) string {
	t.Helper()
	res, err := svc.Login(context.Background(), email, "secret1")
	require.NoError(t, err)
	return res.Token
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id := register(t, svc, "ada@example.com")

	_, err := svc.Register(ctx, models.RegisterRequest{
		FirstName: "Other", LastName: "Person", Email: "ada@example.com", Password: "secret2",
	})
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, res.UserID)
	assert.NotEmpty(t, res.Token)

	u, err := svc.ResolveByToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.True(t, u.AuthToken.Matches(res.Token))

	// A second login rotates the token
	again, err := svc.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, res.Token, again.Token)
	_, err = svc.ResolveByToken(ctx, res.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogout(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id := register(t, svc, "ada@example.com")
	token := login(t, svc, "ada@example.com")

	require.NoError(t, svc.Logout(ctx, token))

	_, err := svc.ResolveByToken(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := svc.ResolveByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, u.AuthToken.Valid())
	assert.False(t, u.AuthToken.Matches(""))

	assert.ErrorIs(t, svc.Logout(ctx, token), ErrNotFound)
	assert.ErrorIs(t, svc.Logout(ctx, ""), ErrNotFound)
}

func TestResolveByTokenEmpty(t *testing.T) {
	svc := newService(t)

	// A registered user who never logged in has a NULL token
	register(t, svc, "ada@example.com")

	_, err := svc.ResolveByToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestView(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id := register(t, svc, "ada@example.com")
	register(t, svc, "bob@example.com")
	token := login(t, svc, "ada@example.com")
	otherToken := login(t, svc, "bob@example.com")

	v, err := svc.View(ctx, id, token)
	require.NoError(t, err)
	require.NotNil(t, v.Email)
	assert.Equal(t, "ada@example.com", *v.Email)

	v, err = svc.View(ctx, id, otherToken)
	require.NoError(t, err)
	assert.Nil(t, v.Email)
	assert.Equal(t, "Ada", v.FirstName)

	_, err = svc.View(ctx, 9999, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id := register(t, svc, "ada@example.com")
	register(t, svc, "bob@example.com")
	token := login(t, svc, "ada@example.com")
	bobToken := login(t, svc, "bob@example.com")

	tests := []struct {
		name    string
		token   string
		req     models.EditUserRequest
		wantErr error
	}{
		{"other user", bobToken, models.EditUserRequest{FirstName: strPtr("X")}, ErrForbidden},
		{"no token", "", models.EditUserRequest{FirstName: strPtr("X")}, ErrForbidden},
		{"email of someone else", token, models.EditUserRequest{Email: strPtr("bob@example.com")}, ErrEmailInUse},
		{"wrong current password", token, models.EditUserRequest{Password: strPtr("newsecret"), CurrentPassword: strPtr("nope123")}, ErrInvalidCredentials},
		{"same password", token, models.EditUserRequest{Password: strPtr("secret1"), CurrentPassword: strPtr("secret1")}, ErrSamePassword},
		{"rename", token, models.EditUserRequest{FirstName: strPtr("Augusta"), Email: strPtr("augusta@example.com")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Update(ctx, id, tt.token, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	u, err := svc.ResolveByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", u.FirstName)
	assert.Equal(t, "Lovelace", u.LastName)
	assert.Equal(t, "augusta@example.com", u.Email)

	t.Run("password change", func(t *testing.T) {
		err := svc.Update(ctx, id, token, models.EditUserRequest{
			Password: strPtr("newsecret"), CurrentPassword: strPtr("secret1"),
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, "augusta@example.com", "newsecret")
		assert.NoError(t, err)
	})

	assert.ErrorIs(t, svc.Update(ctx, 9999, token, models.EditUserRequest{}), ErrNotFound)
}

func TestProfileImage(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id := register(t, svc, "ada@example.com")
	register(t, svc, "bob@example.com")
	token := login(t, svc, "ada@example.com")
	bobToken := login(t, svc, "bob@example.com")

	_, _, err := svc.Image(ctx, id)
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = svc.SetImage(ctx, id, bobToken, testutil.PNG, ".png")
	assert.ErrorIs(t, err, ErrForbidden)

	created, err := svc.SetImage(ctx, id, token, testutil.PNG, ".png")
	require.NoError(t, err)
	assert.True(t, created)

	data, mime, err := svc.Image(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, testutil.PNG, data)
	assert.Equal(t, "image/png", mime)

	created, err = svc.SetImage(ctx, id, token, testutil.PNG, ".png")
	require.NoError(t, err)
	assert.False(t, created)

	assert.ErrorIs(t, svc.RemoveImage(ctx, id, bobToken), ErrForbidden)
	require.NoError(t, svc.RemoveImage(ctx, id, token))

	_, _, err = svc.Image(ctx, id)
	assert.ErrorIs(t, err, ErrNoImage)
	assert.ErrorIs(t, svc.RemoveImage(ctx, id, token), ErrNoImage)

	_, _, err = svc.Image(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetImage_ConcurrentReplacementsKeepOneFile(t *testing.T) {
	dir := t.TempDir()
	imgs, err := images.NewStore(dir)
	require.NoError(t, err)
	svc := NewService(testutil.SetupTestDB(t), imgs)
	ctx := context.Background()

	id := register(t, svc, "ada@example.com")
	token := login(t, svc, "ada@example.com")

	const writers = 8
	var wg sync.WaitGroup
	var created atomic.Int32
	errs := make(chan error, writers)

	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := svc.SetImage(ctx, id, token, testutil.PNG, ".png")
			if err != nil {
				errs <- err
				return
			}
			if first {
				created.Add(1)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("SetImage failed: %v", err)
	}
	assert.Equal(t, int32(1), created.Load())

	u, err := svc.ResolveByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u.ImageFilename)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, *u.ImageFilename, entries[0].Name())

	require.NoError(t, svc.RemoveImage(ctx, id, token))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
