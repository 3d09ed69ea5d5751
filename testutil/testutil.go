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
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/electiond/cliparse"
	"github.com/danielhkuo/electiond/db"
	"github.com/danielhkuo/electiond/models"
	"github.com/danielhkuo/electiond/store"
)

// TestAdminKey is the admin key used by GetTestConfig
const TestAdminKey = "test-admin-key"

// SetupTestDB creates a fresh SQLite database with the full schema.
// The file lives in the test's temp dir and is closed on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(db.TypeSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: db.TypeSQLite,
		AdminKey:     TestAdminKey,
		IPHashSalt:   "test-ip-salt",
		TickInterval: time.Second,
		LogLevel:     "error",
	}
}

// AdminHeaders returns headers that pass the admin check for GetTestConfig
func AdminHeaders() map[string]string {
	return map[string]string{"X-Admin-Key": TestAdminKey}
}

// VoterHeaders returns headers identifying voterID
func VoterHeaders(voterID string) map[string]string {
	return map[string]string{"X-Voter-ID": voterID}
}

// FakeClock is a settable clock for lifecycle and voting tests
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now.UTC()}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// CreateTestElection creates an election with the given window and returns its ID.
// The stored phase starts as upcoming; use SetTestPhase to force another.
func CreateTestElection(t *testing.T, conn *sql.DB, start, end time.Time) string {
	t.Helper()

	e, err := store.New(conn).CreateElection(context.Background(), store.ElectionInput{
		Name:        "Test Election",
		Description: "A test election",
		StartTime:   start,
		EndTime:     end,
	})
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e.ID
}

// CreateOngoingElection creates an election whose window contains now
func CreateOngoingElection(t *testing.T, conn *sql.DB) string {
	t.Helper()

	now := time.Now().UTC()
	id := CreateTestElection(t, conn, now.Add(-time.Hour), now.Add(24*time.Hour))
	SetTestPhase(t, conn, id, models.PhaseOngoing)
	return id
}

// SetTestPhase overwrites the stored phase of an election
func SetTestPhase(t *testing.T, conn *sql.DB, electionID string, phase models.Phase) {
	t.Helper()

	_, err := conn.Exec(`UPDATE election SET phase = $1 WHERE id = $2`, string(phase), electionID)
	if err != nil {
		t.Fatalf("Failed to set election phase: %v", err)
	}
}

// AddTestCandidate adds a candidate to an election and returns the candidate ID
func AddTestCandidate(t *testing.T, conn *sql.DB, electionID, name string) string {
	t.Helper()

	c, err := store.New(conn).AddCandidate(context.Background(), electionID, store.CandidateInput{Name: name})
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return c.ID
}

// CreateTestVoter registers a voter and assigns them to the given elections
func CreateTestVoter(t *testing.T, conn *sql.DB, name string, electionIDs ...string) string {
	t.Helper()

	st := store.New(conn)
	ctx := context.Background()

	v, err := st.CreateVoter(ctx, name, name+"-"+uuid.NewString()[:8]+"@example.com")
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
	for _, electionID := range electionIDs {
		if err := st.AssignVoter(ctx, v.ID, electionID); err != nil {
			t.Fatalf("Failed to assign test voter: %v", err)
		}
	}
	return v.ID
}

// CastTestBallot records a ballot at the current time and returns its ID
func CastTestBallot(t *testing.T, conn *sql.DB, voterID, electionID, candidateID string) string {
	t.Helper()

	b, err := store.New(conn).CastBallot(context.Background(), store.BallotInput{
		VoterID:     voterID,
		ElectionID:  electionID,
		CandidateID: candidateID,
	}, time.Now())
	if err != nil {
		t.Fatalf("Failed to cast test ballot: %v", err)
	}
	return b.ID
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
