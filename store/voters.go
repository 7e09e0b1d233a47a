// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/committee-roster/models"
)

// Voter records and the crosswalk are owned by the import pipeline; this
// package only reads them.

const voterColumns = `voter_record_id, first_name, last_name, city_town, leg_district,
	election_district, assembly_district, party, status, last_seen_import`

// GetVoter returns a voter record by its record number.
func GetVoter(ctx context.Context, q Queryer, voterRecordID string) (models.Voter, error) {
	var v models.Voter
	err := get(ctx, q, &v, `SELECT `+voterColumns+` FROM voter_record WHERE voter_record_id = ?`, voterRecordID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, fmt.Errorf("voter %s: %w", voterRecordID, models.ErrNotFound)
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("get voter: %w", err)
	}
	return v, nil
}

// GetVoters loads the given voters keyed by record number. Missing IDs are
// simply absent from the map.
func GetVoters(ctx context.Context, q Queryer, ids []string) (map[string]models.Voter, error) {
	out := make(map[string]models.Voter, len(ids))
	for _, id := range ids {
		v, err := GetVoter(ctx, q, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

// LatestImportVersion returns the most recent voter import version, or 0
// when nothing has been imported.
func LatestImportVersion(ctx context.Context, q Queryer) (int, error) {
	var v int
	if err := get(ctx, q, &v, `SELECT COALESCE(MAX(version), 0) FROM voter_import`); err != nil {
		return 0, fmt.Errorf("latest import version: %w", err)
	}
	return v, nil
}

// AssemblyDistrictFor resolves a committee's assembly district through the
// crosswalk. ok is false when no crosswalk row exists.
func AssemblyDistrictFor(ctx context.Context, q Queryer, cityTown string, legDistrict int) (ad string, ok bool, err error) {
	err = get(ctx, q, &ad, `
		SELECT assembly_district FROM assembly_crosswalk
		WHERE city_town = ? AND leg_district = ?
	`, cityTown, legDistrict)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("crosswalk lookup: %w", err)
	}
	return ad, true, nil
}
