// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/committee-roster/eligibility"
	"github.com/danielhkuo/committee-roster/metrics"
	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/store"
	"github.com/danielhkuo/committee-roster/weights"
)

// Override asks for admission despite overridable hard stops.
type Override struct {
	Apply  bool
	Reason string
}

// RefusedError is returned when the evaluator blocks an admission. It
// matches models.ErrConflict.
type RefusedError struct {
	Eligibility models.EligibilityResult
}

func (e *RefusedError) Error() string {
	names := make([]string, 0, len(e.Eligibility.HardStops))
	for _, r := range e.Eligibility.HardStops {
		names = append(names, r.String())
	}
	if !e.Eligibility.Overridable {
		return fmt.Sprintf("admission refused (not overridable): %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("admission refused: %s", strings.Join(names, ", "))
}

func (e *RefusedError) Unwrap() error { return models.ErrConflict }

// Service admits and removes committee members.
type Service struct {
	db      *sqlx.DB
	weights *weights.Service
	metrics *metrics.Manager
	now     func() time.Time
}

// NewService creates a roster service. m may be nil.
func NewService(db *sqlx.DB, w *weights.Service, m *metrics.Manager) *Service {
	return &Service{db: db, weights: w, metrics: m, now: time.Now}
}

// AddMember seats voterID on committeeID in the active term. Eligibility is
// evaluated again inside the transaction; a preflight result from the
// caller is never trusted. The voter takes the lowest free seat and the
// committee's seat weights are recomputed before commit.
func (s *Service) AddMember(ctx context.Context, committeeID, voterID string, override Override, actor string) (models.AddMemberResponse, error) {
	if strings.TrimSpace(voterID) == "" {
		return models.AddMemberResponse{}, fmt.Errorf("%w: voterRecordId required", models.ErrValidation)
	}
	overrideReason := strings.TrimSpace(override.Reason)
	if override.Apply && overrideReason == "" {
		return models.AddMemberResponse{}, fmt.Errorf("%w: override requires a reason", models.ErrValidation)
	}

	var resp models.AddMemberResponse
	err := store.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		term, err := store.ActiveTerm(ctx, tx)
		if err != nil {
			return err
		}

		result, err := eligibility.Evaluate(ctx, tx, voterID, committeeID, term.ID)
		if err != nil {
			return err
		}
		s.metrics.RecordEligibility(result)
		resp.Eligibility = result

		for _, w := range result.Warnings {
			if w.Code == models.WarningAlreadyMember {
				return fmt.Errorf("voter %s already sits on committee %s: %w", voterID, committeeID, models.ErrConflict)
			}
		}

		overridden := false
		if !result.Eligible {
			if !override.Apply || !result.Overridable {
				return &RefusedError{Eligibility: result}
			}
			overridden = true
		}

		cfg, err := store.GetGovernanceConfig(ctx, tx)
		if err != nil {
			return err
		}
		members, err := store.ActiveMemberships(ctx, tx, committeeID, term.ID)
		if err != nil {
			return err
		}
		seat, ok := lowestFreeSeat(members, cfg.MaxSeatsPerLted)
		if !ok {
			return fmt.Errorf("committee %s has no free seat: %w", committeeID, models.ErrConflict)
		}

		now := s.now()
		m := models.Membership{
			ID:              uuid.NewString(),
			TermID:          term.ID,
			VoterRecordID:   voterID,
			CommitteeListID: committeeID,
			Status:          models.MembershipActive,
			SeatNumber:      &seat,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if overridden {
			m.OverrideReason = &overrideReason
		}
		if err := store.CreateMembership(ctx, tx, m); err != nil {
			return err
		}

		dw, err := s.weights.RecomputeSeatWeights(ctx, committeeID, tx)
		if err != nil {
			return err
		}

		resp.Membership = m
		resp.Weight = dw
		return nil
	})
	if err != nil {
		var refused *RefusedError
		if errors.As(err, &refused) {
			s.metrics.RecordRosterChange("refused")
			slog.Info("admission refused",
				"committee_id", committeeID,
				"voter_record_id", voterID,
				"hard_stops", refused.Eligibility.HardStops,
				"actor", actor,
			)
		}
		return models.AddMemberResponse{}, err
	}

	action := "add"
	if resp.Membership.OverrideReason != nil {
		action = "override"
	}
	s.metrics.RecordRosterChange(action)
	slog.Info("member added",
		"committee_id", committeeID,
		"voter_record_id", voterID,
		"membership_id", resp.Membership.ID,
		"seat", *resp.Membership.SeatNumber,
		"override", resp.Membership.OverrideReason != nil,
		"actor", actor,
	)
	return resp, nil
}

// RemoveMember ends the voter's ACTIVE membership on committeeID in the
// active term, frees the seat and recomputes the committee's weights.
func (s *Service) RemoveMember(ctx context.Context, committeeID, voterID, actor string) (models.RemoveMemberResponse, error) {
	var resp models.RemoveMemberResponse
	err := store.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		term, err := store.ActiveTerm(ctx, tx)
		if err != nil {
			return err
		}

		m, err := store.ActiveMembershipForVoter(ctx, tx, term.ID, voterID)
		if err != nil {
			return err
		}
		if m.CommitteeListID != committeeID {
			return fmt.Errorf("voter %s on committee %s: %w", voterID, committeeID, models.ErrNotFound)
		}

		if err := store.EndMembership(ctx, tx, m.ID, models.MembershipRemoved, s.now()); err != nil {
			return err
		}

		dw, err := s.weights.RecomputeSeatWeights(ctx, committeeID, tx)
		if err != nil {
			return err
		}

		resp = models.RemoveMemberResponse{MembershipID: m.ID, Weight: dw}
		return nil
	})
	if err != nil {
		return models.RemoveMemberResponse{}, err
	}

	s.metrics.RecordRosterChange("remove")
	slog.Info("member removed",
		"committee_id", committeeID,
		"voter_record_id", voterID,
		"membership_id", resp.MembershipID,
		"actor", actor,
	)
	return resp, nil
}

// lowestFreeSeat returns the smallest seat in 1..maxSeats not held by an
// ACTIVE member.
func lowestFreeSeat(members []models.Membership, maxSeats int) (int, bool) {
	taken := make(map[int]bool, len(members))
	for _, m := range members {
		if m.SeatNumber != nil {
			taken[*m.SeatNumber] = true
		}
	}
	for seat := 1; seat <= maxSeats; seat++ {
		if !taken[seat] {
			return seat, true
		}
	}
	return 0, false
}
