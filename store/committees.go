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

const committeeColumns = `id, term_id, city_town, leg_district, election_district, lted_weight, updated_at`

// GetCommittee returns a committee by ID.
func GetCommittee(ctx context.Context, q Queryer, id string) (models.Committee, error) {
	var c models.Committee
	err := get(ctx, q, &c, `SELECT `+committeeColumns+` FROM committee_list WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Committee{}, fmt.Errorf("committee %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Committee{}, fmt.Errorf("get committee: %w", err)
	}
	return c, nil
}

// FindCommitteesByLTED returns every committee in the term sharing the
// legislative and election district. Multi-town LTEDs return several rows.
func FindCommitteesByLTED(ctx context.Context, q Queryer, termID string, legDistrict, electionDistrict int) ([]models.Committee, error) {
	var out []models.Committee
	err := selectAll(ctx, q, &out, `
		SELECT `+committeeColumns+` FROM committee_list
		WHERE term_id = ? AND leg_district = ? AND election_district = ?
		ORDER BY city_town, id
	`, termID, legDistrict, electionDistrict)
	if err != nil {
		return nil, fmt.Errorf("find committees by lted: %w", err)
	}
	return out, nil
}

// CreateCommittee inserts a committee.
func CreateCommittee(ctx context.Context, q Queryer, c models.Committee) error {
	_, err := exec(ctx, q, `
		INSERT INTO committee_list (id, term_id, city_town, leg_district, election_district, lted_weight, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.TermID, c.CityTown, c.LegDistrict, c.ElectionDistrict, nullFloat(c.LtedWeight), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create committee: %w", err)
	}
	return nil
}

// SetLtedWeight stores a committee's LTED weight. nil clears it.
func SetLtedWeight(ctx context.Context, q Queryer, committeeID string, weight *float64, now time.Time) error {
	if weight != nil && *weight < 0 {
		return fmt.Errorf("%w: lted weight must not be negative", models.ErrValidation)
	}
	err := execOne(ctx, q, fmt.Errorf("committee %s: %w", committeeID, models.ErrNotFound), `
		UPDATE committee_list SET lted_weight = ?, updated_at = ? WHERE id = ?
	`, nullFloat(weight), now, committeeID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("set lted weight: %w", err)
	}
	return err
}

type seatRow struct {
	SeatNumber    int             `db:"seat_number"`
	MembershipID  string          `db:"membership_id"`
	VoterRecordID sql.NullString  `db:"voter_record_id"`
	Weight        sql.NullFloat64 `db:"weight"`
}

// ReplaceSeats rewrites the materialised seat weights of a committee.
func ReplaceSeats(ctx context.Context, q Queryer, committeeID string, seats []models.SeatWeight, now time.Time) error {
	if _, err := exec(ctx, q, `DELETE FROM committee_seat WHERE committee_list_id = ?`, committeeID); err != nil {
		return fmt.Errorf("clear seats: %w", err)
	}
	for _, s := range seats {
		_, err := exec(ctx, q, `
			INSERT INTO committee_seat (committee_list_id, seat_number, membership_id, weight, computed_at)
			VALUES (?, ?, ?, ?, ?)
		`, committeeID, s.SeatNumber, s.MembershipID, nullFloat(s.Weight), now)
		if isUniqueViolation(err) {
			return fmt.Errorf("seat %d of committee %s written twice: %w", s.SeatNumber, committeeID, models.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("insert seat %d: %w", s.SeatNumber, err)
		}
	}
	return nil
}

// ListSeats returns the materialised seat weights ordered by seat number.
func ListSeats(ctx context.Context, q Queryer, committeeID string) ([]models.SeatWeight, error) {
	var rows []seatRow
	err := selectAll(ctx, q, &rows, `
		SELECT s.seat_number, s.membership_id, m.voter_record_id, s.weight
		FROM committee_seat s
		LEFT JOIN committee_membership m ON m.id = s.membership_id
		WHERE s.committee_list_id = ?
		ORDER BY s.seat_number
	`, committeeID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}

	out := make([]models.SeatWeight, 0, len(rows))
	for _, r := range rows {
		sw := models.SeatWeight{
			SeatNumber:    r.SeatNumber,
			MembershipID:  r.MembershipID,
			VoterRecordID: r.VoterRecordID.String,
		}
		if r.Weight.Valid {
			w := r.Weight.Float64
			sw.Weight = &w
		}
		out = append(out, sw)
	}
	return out, nil
}
