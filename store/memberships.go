// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/committee-roster/models"
)

const membershipColumns = `id, term_id, voter_record_id, committee_list_id, status, seat_number,
	override_reason, created_at, updated_at`

// ActiveMemberships returns the ACTIVE memberships of a committee in a term
// ordered by seat number.
func ActiveMemberships(ctx context.Context, q Queryer, committeeID, termID string) ([]models.Membership, error) {
	var out []models.Membership
	err := selectAll(ctx, q, &out, `
		SELECT `+membershipColumns+` FROM committee_membership
		WHERE committee_list_id = ? AND term_id = ? AND status = ?
		ORDER BY seat_number, id
	`, committeeID, termID, string(models.MembershipActive))
	if err != nil {
		return nil, fmt.Errorf("list active memberships: %w", err)
	}
	return out, nil
}

// CountActiveMemberships counts ACTIVE memberships of a committee in a term,
// leaving out excludeVoterID when it is set.
func CountActiveMemberships(ctx context.Context, q Queryer, committeeID, termID, excludeVoterID string) (int, error) {
	var n int
	err := get(ctx, q, &n, `
		SELECT COUNT(*) FROM committee_membership
		WHERE committee_list_id = ? AND term_id = ? AND status = ? AND voter_record_id <> ?
	`, committeeID, termID, string(models.MembershipActive), excludeVoterID)
	if err != nil {
		return 0, fmt.Errorf("count active memberships: %w", err)
	}
	return n, nil
}

// ActiveMembershipForVoter returns the voter's ACTIVE membership in a term.
func ActiveMembershipForVoter(ctx context.Context, q Queryer, termID, voterRecordID string) (models.Membership, error) {
	var m models.Membership
	err := get(ctx, q, &m, `
		SELECT `+membershipColumns+` FROM committee_membership
		WHERE term_id = ? AND voter_record_id = ? AND status = ?
	`, termID, voterRecordID, string(models.MembershipActive))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Membership{}, fmt.Errorf("active membership for voter %s: %w", voterRecordID, models.ErrNotFound)
	}
	if err != nil {
		return models.Membership{}, fmt.Errorf("get active membership: %w", err)
	}
	return m, nil
}

// CreateMembership inserts a membership.
func CreateMembership(ctx context.Context, q Queryer, m models.Membership) error {
	var seat any
	if m.SeatNumber != nil {
		seat = *m.SeatNumber
	}
	var override any
	if m.OverrideReason != nil {
		override = *m.OverrideReason
	}
	_, err := exec(ctx, q, `
		INSERT INTO committee_membership (id, term_id, voter_record_id, committee_list_id, status,
			seat_number, override_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.TermID, m.VoterRecordID, m.CommitteeListID, string(m.Status),
		seat, override, m.CreatedAt, m.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("voter %s or seat %v of committee %s is already active in term %s: %w",
			m.VoterRecordID, seat, m.CommitteeListID, m.TermID, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create membership: %w", err)
	}
	return nil
}

// EndMembership moves a membership out of ACTIVE and frees its seat.
func EndMembership(ctx context.Context, q Queryer, membershipID string, status models.MembershipStatus, now time.Time) error {
	err := execOne(ctx, q, fmt.Errorf("membership %s: %w", membershipID, models.ErrNotFound), `
		UPDATE committee_membership SET status = ?, seat_number = NULL, updated_at = ?
		WHERE id = ?
	`, string(status), now, membershipID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("end membership: %w", err)
	}
	return err
}

// ScanMembership is a membership joined with the committee it sits on.
type ScanMembership struct {
	models.Membership
	CommitteeCityTown         string `db:"committee_city_town"`
	CommitteeLegDistrict      int    `db:"committee_leg_district"`
	CommitteeElectionDistrict int    `db:"committee_election_district"`
}

// MembershipsForScan returns the ACTIVE and SUBMITTED memberships of a term.
func MembershipsForScan(ctx context.Context, q Queryer, termID string) ([]ScanMembership, error) {
	var out []ScanMembership
	err := selectAll(ctx, q, &out, `
		SELECT m.id, m.term_id, m.voter_record_id, m.committee_list_id, m.status, m.seat_number,
			m.override_reason, m.created_at, m.updated_at,
			c.city_town AS committee_city_town, c.leg_district AS committee_leg_district,
			c.election_district AS committee_election_district
		FROM committee_membership m
		JOIN committee_list c ON c.id = m.committee_list_id
		WHERE m.term_id = ? AND m.status IN (?, ?)
		ORDER BY m.committee_list_id, m.id
	`, termID, string(models.MembershipActive), string(models.MembershipSubmitted))
	if err != nil {
		return nil, fmt.Errorf("list memberships for scan: %w", err)
	}
	return out, nil
}
