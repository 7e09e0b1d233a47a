// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/committee-roster/auth"
	"github.com/danielhkuo/committee-roster/cliparse"
	"github.com/danielhkuo/committee-roster/db"
	"github.com/danielhkuo/committee-roster/models"
)

// TestActor is the operator name used by AdminHeaders
const TestActor = "test-clerk"

// SetupTestDB creates a fresh SQLite database in a temp dir with the full
// schema. It is closed when the test ends.
func SetupTestDB(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roster.db")
	conn, err := db.Open(context.Background(), db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Defaults()
	cfg.DatabaseURL = "roster-test.db"
	cfg.AdminKeySalt = "test-admin-salt"
	return cfg
}

// AdminHeaders returns valid operator headers for TestActor
func AdminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{
		auth.HeaderActor:    TestActor,
		auth.HeaderAdminKey: auth.GenerateAdminKey(TestActor, cfg.AdminKeySalt),
	}
}

// CreateTestTerm inserts a term and returns its ID
func CreateTestTerm(t testing.TB, conn *sqlx.DB, name string, active bool) string {
	t.Helper()

	termID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO term (id, name, is_active, created_at)
		VALUES (?, ?, ?, ?)
	`, termID, name, active, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test term: %v", err)
	}

	return termID
}

// CreateTestCommittee inserts a committee. weight may be nil.
func CreateTestCommittee(t testing.TB, conn *sqlx.DB, termID, cityTown string, ld, ed int, weight *float64) string {
	t.Helper()

	committeeID := uuid.NewString()
	var w any
	if weight != nil {
		w = *weight
	}
	_, err := conn.Exec(`
		INSERT INTO committee_list (id, term_id, city_town, leg_district, election_district, lted_weight, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, committeeID, termID, cityTown, ld, ed, w, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test committee: %v", err)
	}

	return committeeID
}

// TestVoter describes a voter_record row. Zero districts are stored as NULL.
type TestVoter struct {
	ID               string
	CityTown         string
	LegDistrict      int
	ElectionDistrict int
	AssemblyDistrict string
	Party            string
	Status           string
	LastSeenImport   int
}

// CreateTestVoter inserts a voter record
func CreateTestVoter(t testing.TB, conn *sqlx.DB, v TestVoter) string {
	t.Helper()

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = models.VoterStatusActive
	}
	_, err := conn.Exec(`
		INSERT INTO voter_record (voter_record_id, first_name, last_name, city_town, leg_district,
			election_district, assembly_district, party, status, last_seen_import)
		VALUES (?, 'Test', 'Voter', ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.CityTown, nullInt(v.LegDistrict), nullInt(v.ElectionDistrict),
		nullString(v.AssemblyDistrict), v.Party, v.Status, v.LastSeenImport)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return v.ID
}

// UpdateTestVoter changes a voter's party, town and status, as a later
// import would.
func UpdateTestVoter(t testing.TB, conn *sqlx.DB, voterID, party, cityTown, status string) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE voter_record SET party = ?, city_town = ?, status = ? WHERE voter_record_id = ?
	`, party, cityTown, status, voterID)
	if err != nil {
		t.Fatalf("Failed to update test voter: %v", err)
	}
}

// AddTestMembership inserts a membership. seat 0 is stored as NULL.
func AddTestMembership(t testing.TB, conn *sqlx.DB, termID, committeeID, voterID string, status models.MembershipStatus, seat int) string {
	t.Helper()

	membershipID := uuid.NewString()
	now := time.Now()
	_, err := conn.Exec(`
		INSERT INTO committee_membership (id, term_id, voter_record_id, committee_list_id, status,
			seat_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, membershipID, termID, voterID, committeeID, string(status), nullInt(seat), now, now)
	if err != nil {
		t.Fatalf("Failed to create test membership: %v", err)
	}

	return membershipID
}

// SetTestCrosswalk maps a city/town and legislative district to an
// assembly district
func SetTestCrosswalk(t testing.TB, conn *sqlx.DB, cityTown string, ld int, ad string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO assembly_crosswalk (city_town, leg_district, assembly_district)
		VALUES (?, ?, ?)
	`, cityTown, ld, ad)
	if err != nil {
		t.Fatalf("Failed to create test crosswalk: %v", err)
	}
}

// SetTestGovernance writes the governance singleton
func SetTestGovernance(t testing.TB, conn *sqlx.DB, cfg models.GovernanceConfig) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO governance_config (id, required_party_code, max_seats_per_lted,
			require_assembly_district_match, non_overridable_reasons)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			required_party_code = excluded.required_party_code,
			max_seats_per_lted = excluded.max_seats_per_lted,
			require_assembly_district_match = excluded.require_assembly_district_match,
			non_overridable_reasons = excluded.non_overridable_reasons
	`, nullString(cfg.RequiredPartyCode), cfg.MaxSeatsPerLted, cfg.RequireAssemblyDistrictMatch,
		models.FormatReasons(cfg.NonOverridableReasons))
	if err != nil {
		t.Fatalf("Failed to set test governance: %v", err)
	}
}

// RecordTestImport registers a voter import version
func RecordTestImport(t testing.TB, conn *sqlx.DB, version int) {
	t.Helper()

	_, err := conn.Exec(`INSERT INTO voter_import (version, record_count, imported_at) VALUES (?, 0, ?)`,
		version, time.Now())
	if err != nil {
		t.Fatalf("Failed to record test import: %v", err)
	}
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
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
