// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package weights

import (
	"context"
	"fmt"
	"sort"

	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/store"
)

// Calculate returns the designation weight of a committee. An empty termID
// means the committee's own term. Reads only.
func Calculate(ctx context.Context, q store.Queryer, committeeID, termID string) (models.DesignationWeight, error) {
	committee, err := store.GetCommittee(ctx, q, committeeID)
	if err != nil {
		return models.DesignationWeight{}, err
	}
	if termID == "" {
		termID = committee.TermID
	}
	if committee.TermID != termID {
		return models.DesignationWeight{}, fmt.Errorf("committee %s in term %s: %w", committeeID, termID, models.ErrNotFound)
	}

	cfg, err := store.GetGovernanceConfig(ctx, q)
	if err != nil {
		return models.DesignationWeight{}, err
	}

	members, err := store.ActiveMemberships(ctx, q, committeeID, termID)
	if err != nil {
		return models.DesignationWeight{}, err
	}

	return Apportion(committee, members, cfg.MaxSeatsPerLted)
}

// Apportion splits the committee's LTED weight evenly across its occupied
// seats. The committee total is the LTED weight itself. A committee without
// a weight yields nil weights, never zero.
//
// Seat assignments are validated first; corrupted seating is a
// data-integrity error because no split over it can be trusted.
func Apportion(committee models.Committee, members []models.Membership, maxSeats int) (models.DesignationWeight, error) {
	if err := checkSeats(committee.ID, members, maxSeats); err != nil {
		return models.DesignationWeight{}, err
	}

	sorted := make([]models.Membership, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		return *sorted[i].SeatNumber < *sorted[j].SeatNumber
	})

	out := models.DesignationWeight{
		CommitteeListID: committee.ID,
		TermID:          committee.TermID,
		WeightAvailable: committee.LtedWeight != nil,
		PerSeat:         make([]models.SeatWeight, 0, len(sorted)),
	}

	var perSeat *float64
	if committee.LtedWeight != nil {
		total := *committee.LtedWeight
		out.Total = &total
		if len(sorted) > 0 {
			share := total / float64(len(sorted))
			perSeat = &share
		}
	}

	for _, m := range sorted {
		sw := models.SeatWeight{
			SeatNumber:    *m.SeatNumber,
			MembershipID:  m.ID,
			VoterRecordID: m.VoterRecordID,
		}
		if perSeat != nil {
			w := *perSeat
			sw.Weight = &w
		}
		out.PerSeat = append(out.PerSeat, sw)
	}

	return out, nil
}

func checkSeats(committeeID string, members []models.Membership, maxSeats int) error {
	if len(members) > maxSeats {
		return fmt.Errorf("committee %s has %d active members for %d seats: %w",
			committeeID, len(members), maxSeats, models.ErrDataIntegrity)
	}

	taken := make(map[int]string, len(members))
	for _, m := range members {
		if m.SeatNumber == nil {
			return fmt.Errorf("membership %s has no seat number: %w", m.ID, models.ErrDataIntegrity)
		}
		seat := *m.SeatNumber
		if seat < 1 || seat > maxSeats {
			return fmt.Errorf("membership %s holds seat %d outside 1..%d: %w",
				m.ID, seat, maxSeats, models.ErrDataIntegrity)
		}
		if other, dup := taken[seat]; dup {
			return fmt.Errorf("seat %d held by both %s and %s: %w", seat, other, m.ID, models.ErrDataIntegrity)
		}
		taken[seat] = m.ID
	}
	return nil
}
