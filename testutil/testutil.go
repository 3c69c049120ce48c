// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/petitions/auth"
	"github.com/danielhkuo/petitions/cliparse"
	"github.com/danielhkuo/petitions/db"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// BaseTime is the creation date of the first fixture petition; later
// fixtures are spaced from it so CREATED_* sorts are predictable.
var BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// passwordHash hashes TestPassword once per test binary; bcrypt is slow.
var passwordHash = sync.OnceValues(func() (string, error) {
	return auth.HashPassword(TestPassword)
})

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *db.Store {
	t.Helper()

	store, err := db.Open(context.Background(), db.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(t *testing.T) cliparse.Config {
	return cliparse.Config{
		Port:         4941,
		DatabaseURL:  ":memory:",
		DatabaseType: db.SQLite,
		ImageDir:     t.TempDir(),
	}
}

// TestUser is a logged-in fixture user.
type TestUser struct {
	ID    int64
	Email string
	Token string
}

// CreateTestUser inserts a user with an active session
func CreateTestUser(t *testing.T, store *db.Store, email string) TestUser {
	t.Helper()

	hash, err := passwordHash()
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	token := auth.NewSessionToken().String()

	var id int64
	err = store.DB().QueryRow(`
		INSERT INTO "user" (email, first_name, last_name, password, auth_token)
		VALUES ($1, 'Test', 'User', $2, $3)
		RETURNING id
	`, email, hash, token).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return TestUser{ID: id, Email: email, Token: token}
}

// LogoutTestUser clears a user's session token
func LogoutTestUser(t *testing.T, store *db.Store, userID int64) {
	t.Helper()

	if _, err := store.DB().Exec(`UPDATE "user" SET auth_token = NULL WHERE id = $1`, userID); err != nil {
		t.Fatalf("Failed to log out test user: %v", err)
	}
}

// TestPetition is a fixture petition and the ids of its tiers, in cost order
// as given.
type TestPetition struct {
	ID      int64
	TierIDs []int64
}

// CreateTestPetition inserts a petition with one tier per cost. Tiers are
// titled "Tier 1", "Tier 2", ... in the order given.
func CreateTestPetition(t *testing.T, store *db.Store, ownerID int64, title string, categoryID int64, created time.Time, costs ...int64) TestPetition {
	t.Helper()

	conn := store.DB()

	var p TestPetition
	err := conn.QueryRow(`
		INSERT INTO petition (title, description, creation_date, owner_id, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, title, "About "+title, created, ownerID, categoryID).Scan(&p.ID)
	if err != nil {
		t.Fatalf("Failed to create test petition: %v", err)
	}

	for i, cost := range costs {
		p.TierIDs = append(p.TierIDs, AddTestTier(t, conn, p.ID, tierTitle(i), cost))
	}

	return p
}

func tierTitle(i int) string {
	return "Tier " + string(rune('1'+i))
}

// AddTestTier adds a support tier and returns its ID
func AddTestTier(t *testing.T, conn db.Querier, petitionID int64, title string, cost int64) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRowContext(context.Background(), `
		INSERT INTO support_tier (petition_id, title, description, cost)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, petitionID, title, "Support at "+title, cost).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test tier: %v", err)
	}

	return id
}

// AddTestSupporter records a pledge and returns its ID
func AddTestSupporter(t *testing.T, store *db.Store, petitionID, tierID, userID int64, at time.Time) int64 {
	t.Helper()

	var id int64
	err := store.DB().QueryRow(`
		INSERT INTO supporter (petition_id, support_tier_id, user_id, message, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, petitionID, tierID, userID, "Good luck", at).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test supporter: %v", err)
	}

	return id
}

// CountRows returns the number of rows in table matching where
func CountRows(t *testing.T, store *db.Store, table, where string, args ...any) int {
	t.Helper()

	var n int
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	if err := store.DB().QueryRow(q, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// PNG is a minimal valid 1x1 PNG image.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AuthHeader returns the header map for a logged-in user
func AuthHeader(token string) map[string]string {
	return map[string]string{"X-Authorization": token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
