// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported DATABASE_TYPE values
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Open connects to the configured database and verifies the connection.
// SQLite paths get WAL and foreign-key pragmas and a single connection.
func Open(ctx context.Context, dbType, url string) (*sqlx.DB, error) {
	var conn *sqlx.DB
	var err error

	switch dbType {
	case TypePostgres:
		conn, err = sqlx.Open("postgres", url)
	case TypeSQLite:
		conn, err = sqlx.Open("sqlite", sqliteDSN(url))
		if err == nil {
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to the SQL subset shared by PostgreSQL and SQLite.
const schema = `
-- Terms
CREATE TABLE IF NOT EXISTS term (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    start_date TIMESTAMP,
    end_date TIMESTAMP,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_term_single_active ON term(is_active) WHERE is_active;

-- Voter records (written by the import pipeline)
CREATE TABLE IF NOT EXISTS voter_record (
    voter_record_id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    city_town TEXT NOT NULL DEFAULT '',
    leg_district INTEGER,
    election_district INTEGER,
    assembly_district TEXT,
    party TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'ACTIVE',
    last_seen_import INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_voter_record_district ON voter_record(city_town, leg_district, election_district);

CREATE TABLE IF NOT EXISTS voter_import (
    version INTEGER PRIMARY KEY,
    record_count INTEGER NOT NULL DEFAULT 0,
    imported_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- City/town + legislative district -> assembly district
CREATE TABLE IF NOT EXISTS assembly_crosswalk (
    city_town TEXT NOT NULL,
    leg_district INTEGER NOT NULL,
    assembly_district TEXT NOT NULL,
    PRIMARY KEY (city_town, leg_district)
);

-- Governance config singleton
CREATE TABLE IF NOT EXISTS governance_config (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    required_party_code TEXT,
    max_seats_per_lted INTEGER NOT NULL DEFAULT 2 CHECK (max_seats_per_lted > 0),
    require_assembly_district_match BOOLEAN NOT NULL DEFAULT FALSE,
    non_overridable_reasons TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Committees
CREATE TABLE IF NOT EXISTS committee_list (
    id TEXT PRIMARY KEY,
    term_id TEXT NOT NULL REFERENCES term(id) ON DELETE CASCADE,
    city_town TEXT NOT NULL,
    leg_district INTEGER NOT NULL,
    election_district INTEGER NOT NULL,
    lted_weight DOUBLE PRECISION CHECK (lted_weight IS NULL OR lted_weight >= 0),
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (term_id, city_town, leg_district, election_district)
);

CREATE INDEX IF NOT EXISTS idx_committee_list_lted ON committee_list(term_id, leg_district, election_district);

-- Memberships
CREATE TABLE IF NOT EXISTS committee_membership (
    id TEXT PRIMARY KEY,
    term_id TEXT NOT NULL REFERENCES term(id) ON DELETE CASCADE,
    voter_record_id TEXT NOT NULL,
    committee_list_id TEXT NOT NULL REFERENCES committee_list(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'SUBMITTED'
        CHECK (status IN ('ACTIVE', 'SUBMITTED', 'PETITIONED', 'RESIGNED', 'REMOVED')),
    seat_number INTEGER,
    override_reason TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_membership_one_active ON committee_membership(term_id, voter_record_id) WHERE status = 'ACTIVE';
CREATE UNIQUE INDEX IF NOT EXISTS idx_membership_one_seat ON committee_membership(committee_list_id, seat_number) WHERE status = 'ACTIVE';
CREATE INDEX IF NOT EXISTS idx_membership_committee ON committee_membership(committee_list_id, status);

-- Materialised seat weights
CREATE TABLE IF NOT EXISTS committee_seat (
    committee_list_id TEXT NOT NULL REFERENCES committee_list(id) ON DELETE CASCADE,
    seat_number INTEGER NOT NULL,
    membership_id TEXT NOT NULL,
    weight DOUBLE PRECISION,
    computed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (committee_list_id, seat_number)
);

-- BOE eligibility flags
CREATE TABLE IF NOT EXISTS eligibility_flag (
    id TEXT PRIMARY KEY,
    membership_id TEXT NOT NULL REFERENCES committee_membership(id) ON DELETE CASCADE,
    voter_record_id TEXT NOT NULL,
    committee_list_id TEXT NOT NULL,
    term_id TEXT NOT NULL,
    reason TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'CONFIRMED', 'DISMISSED')),
    details TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    reviewed_at TIMESTAMP,
    reviewed_by TEXT,
    review_notes TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_flag_one_pending ON eligibility_flag(membership_id, reason) WHERE status = 'PENDING';
CREATE INDEX IF NOT EXISTS idx_flag_term_status ON eligibility_flag(term_id, status);
`
