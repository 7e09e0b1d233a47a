// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connections

Open accepts DATABASE_TYPE "postgres" (github.com/lib/pq) or "sqlite"
(modernc.org/sqlite) and returns a *sqlx.DB:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections are limited to one open connection, so callers must not
touch the pool while holding a transaction.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - term: committee terms; at most one is_active row
  - voter_record, voter_import: import pipeline output
  - assembly_crosswalk: (city_town, leg_district) -> assembly_district
  - governance_config: admission rule singleton (id = 1)
  - committee_list: committees per term with optional lted_weight
  - committee_membership: voter seats per committee and term
  - committee_seat: per-seat weights written by recomputation
  - eligibility_flag: advisories raised by the BOE scan

# Invariants Enforced By Indexes

  - idx_term_single_active: one active term
  - idx_membership_one_active: one ACTIVE membership per voter per term
  - idx_flag_one_pending: one PENDING flag per membership and reason
*/
package db
