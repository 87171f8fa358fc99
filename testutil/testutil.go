// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/portalcipa/cipa-server/auth"
	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/db"
	"github.com/portalcipa/cipa-server/models"
)

// BRT is the fixed -03:00 zone used by handler tests
var BRT = time.FixedZone("BRT", -3*60*60)

// SetupTestDB creates a fresh, migrated SQLite database for one test
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file:test.db",
		DatabaseType:   db.TypeSQLite,
		AdminKeySalt:   "test-admin-salt",
		BoothTokenSalt: "test-booth-salt",
		Timezone:       "BRT",
		Location:       BRT,
		ChromeTimeout:  5 * time.Second,
	}
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// CreateTestAdmin registers email as administrator and returns the request headers
func CreateTestAdmin(t *testing.T, conn *sql.DB, cfg cliparse.Config, email string) map[string]string {
	t.Helper()

	_, err := conn.Exec(`INSERT INTO app_admin (email, created_at) VALUES ($1, $2)`,
		auth.NormalizeEmail(email), time.Now())
	if err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}

	return map[string]string{
		"X-Admin-Email": email,
		"X-Admin-Key":   auth.GenerateAdminKey(email, cfg.AdminKeySalt),
	}
}

// CreateTestEmployee inserts an employee. Empty ID, Status and CreatedAt are filled in.
func CreateTestEmployee(t *testing.T, conn *sql.DB, e models.Employee) models.Employee {
	t.Helper()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = models.StatusActive
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := conn.Exec(`
		INSERT INTO employee (id, matricula, nome, setor, cargo, email, status, is_restricted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Matricula, e.Nome, e.Setor, e.Cargo, e.Email, e.Status, e.IsRestricted, e.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test employee: %v", err)
	}

	return e
}

// CreateTestRegistration registers an approved primary candidacy and returns its ID
func CreateTestRegistration(t *testing.T, conn *sql.DB, employeeID string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO registration (id, employee_id, status, membership_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, employeeID, models.RegistrationApproved, models.MembershipPrimary, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test registration: %v", err)
	}

	return id
}

// CastTestVote stores a vote for candidateID and returns its ID
func CastTestVote(t *testing.T, conn *sql.DB, candidateID, voterMatricula string, castAt time.Time) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, candidate_id, voter_matricula, cast_at)
		VALUES ($1, $2, $3, $4)
	`, id, candidateID, voterMatricula, castAt)
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return id
}

// SaveTestSettings stores the settings document as-is
func SaveTestSettings(t *testing.T, conn *sql.DB, s models.AppSettings) {
	t.Helper()

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Failed to encode settings: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO app_settings (id, data, updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(data), time.Now())
	if err != nil {
		t.Fatalf("Failed to save test settings: %v", err)
	}
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
