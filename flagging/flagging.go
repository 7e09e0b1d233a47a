// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flagging

import (
	"context"
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
)

// Service runs the eligibility flagging batch and flag reviews.
type Service struct {
	db      *sqlx.DB
	metrics *metrics.Manager
	now     func() time.Time
}

// NewService creates a flagging service. m may be nil.
func NewService(db *sqlx.DB, m *metrics.Manager) *Service {
	return &Service{db: db, metrics: m, now: time.Now}
}

// finding is one condition detected on a membership.
type finding struct {
	reason  models.FlagReason
	details string
}

type flagKey struct {
	membershipID string
	reason       models.FlagReason
}

// Run rescans the ACTIVE and SUBMITTED memberships of a term (the active
// term when termID is empty) against each voter's current record and raises
// a PENDING flag for every membership and reason not already pending.
// Memberships are never changed. Reviewed flags are never touched.
func (s *Service) Run(ctx context.Context, termID string) (models.FlagRunSummary, error) {
	started := s.now()

	termID, err := store.ResolveTermID(ctx, s.db, termID)
	if err != nil {
		return models.FlagRunSummary{}, err
	}

	cfg, err := store.GetGovernanceConfig(ctx, s.db)
	if err != nil {
		return models.FlagRunSummary{}, err
	}

	memberships, err := store.MembershipsForScan(ctx, s.db, termID)
	if err != nil {
		return models.FlagRunSummary{}, err
	}

	voterIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		voterIDs = append(voterIDs, m.VoterRecordID)
	}
	voters, err := store.GetVoters(ctx, s.db, voterIDs)
	if err != nil {
		return models.FlagRunSummary{}, err
	}

	pending, err := store.PendingFlagsForTerm(ctx, s.db, termID)
	if err != nil {
		return models.FlagRunSummary{}, err
	}

	summary := models.FlagRunSummary{
		TermID:    termID,
		Scanned:   len(memberships),
		ByReason:  map[string]int{},
		StartedAt: started,
	}

	detected := make(map[flagKey]bool)
	var toInsert []models.EligibilityFlag
	for _, m := range memberships {
		if err := ctx.Err(); err != nil {
			return models.FlagRunSummary{}, err
		}

		voter, found := voters[m.VoterRecordID]
		findings, err := s.check(ctx, cfg, m, voter, found)
		if err != nil {
			return models.FlagRunSummary{}, err
		}
		if len(findings) == 0 {
			summary.Clean++
			continue
		}

		for _, f := range findings {
			detected[flagKey{m.ID, f.reason}] = true
			toInsert = append(toInsert, models.EligibilityFlag{
				ID:              uuid.NewString(),
				MembershipID:    m.ID,
				VoterRecordID:   m.VoterRecordID,
				CommitteeListID: m.CommitteeListID,
				TermID:          termID,
				Reason:          f.reason,
				Status:          models.FlagPending,
				Details:         f.details,
				CreatedAt:       s.now(),
			})
		}
	}

	err = store.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, f := range toInsert {
			inserted, err := store.InsertPendingFlag(ctx, tx, f)
			if err != nil {
				return err
			}
			if inserted {
				summary.Flagged++
				summary.ByReason[f.Reason.String()]++
			} else {
				summary.AlreadyFlagged++
			}
		}
		return nil
	})
	if err != nil {
		return models.FlagRunSummary{}, fmt.Errorf("record flags: %w", err)
	}

	for _, f := range pending {
		if !detected[flagKey{f.MembershipID, f.Reason}] {
			summary.Cleared++
		}
	}

	summary.FinishedAt = s.now()
	s.metrics.RecordFlagRun(summary)
	slog.Info("eligibility flagging complete",
		"term_id", termID,
		"scanned", summary.Scanned,
		"flagged", summary.Flagged,
		"already_flagged", summary.AlreadyFlagged,
		"cleared", summary.Cleared,
		"clean", summary.Clean,
	)
	return summary, nil
}

// check re-runs the residency, party and district rules for one membership
// against the voter's current record.
func (s *Service) check(ctx context.Context, cfg models.GovernanceConfig, m store.ScanMembership, voter models.Voter, found bool) ([]finding, error) {
	if !found {
		return []finding{{models.FlagNotRegistered, "voter record no longer present"}}, nil
	}

	var out []finding

	if eligibility.PartyMismatch(cfg, voter) {
		out = append(out, finding{models.FlagPartyMismatch,
			fmt.Sprintf("enrolled %q, required %q", voter.Party, cfg.RequiredPartyCode)})
	}

	if cfg.RequireAssemblyDistrictMatch {
		mismatch, verified, err := eligibility.AssemblyDistrictMismatch(ctx, s.db, m.CommitteeCityTown, m.CommitteeLegDistrict, voter)
		if err != nil {
			return nil, err
		}
		if verified && mismatch {
			out = append(out, finding{models.FlagAssemblyDistrictMismatch,
				fmt.Sprintf("voter assembly district %s", *voter.AssemblyDistrict)})
		}
	}

	if moved, details := residencyChanged(m, voter); moved {
		out = append(out, finding{models.FlagResidencyChanged, details})
	}

	if !strings.EqualFold(voter.Status, models.VoterStatusActive) {
		out = append(out, finding{models.FlagInactiveVoter, fmt.Sprintf("voter status %s", voter.Status)})
	}

	return out, nil
}

// residencyChanged reports whether the voter no longer lives in the
// committee's city/town, legislative district or election district.
// Districts missing from the voter record are not compared.
func residencyChanged(m store.ScanMembership, voter models.Voter) (bool, string) {
	if !strings.EqualFold(strings.TrimSpace(voter.CityTown), strings.TrimSpace(m.CommitteeCityTown)) {
		return true, fmt.Sprintf("voter now in %q, committee in %q", voter.CityTown, m.CommitteeCityTown)
	}
	if voter.LegDistrict != nil && *voter.LegDistrict != m.CommitteeLegDistrict {
		return true, fmt.Sprintf("voter now in LD %d, committee in LD %d", *voter.LegDistrict, m.CommitteeLegDistrict)
	}
	if voter.ElectionDistrict != nil && *voter.ElectionDistrict != m.CommitteeElectionDistrict {
		return true, fmt.Sprintf("voter now in ED %d, committee in ED %d", *voter.ElectionDistrict, m.CommitteeElectionDistrict)
	}
	return false, ""
}

// Confirm marks a PENDING flag as CONFIRMED.
func (s *Service) Confirm(ctx context.Context, flagID, reviewer, notes string) (models.EligibilityFlag, error) {
	return s.review(ctx, flagID, models.FlagConfirmed, reviewer, notes)
}

// Dismiss marks a PENDING flag as DISMISSED.
func (s *Service) Dismiss(ctx context.Context, flagID, reviewer, notes string) (models.EligibilityFlag, error) {
	return s.review(ctx, flagID, models.FlagDismissed, reviewer, notes)
}

func (s *Service) review(ctx context.Context, flagID string, next models.FlagStatus, reviewer, notes string) (models.EligibilityFlag, error) {
	if strings.TrimSpace(reviewer) == "" {
		return models.EligibilityFlag{}, fmt.Errorf("%w: reviewer required", models.ErrValidation)
	}

	if err := store.ReviewFlag(ctx, s.db, flagID, next, reviewer, strings.TrimSpace(notes), s.now()); err != nil {
		return models.EligibilityFlag{}, err
	}
	s.metrics.RecordFlagReview(next)

	flag, err := store.GetFlag(ctx, s.db, flagID)
	if err != nil {
		return models.EligibilityFlag{}, err
	}
	slog.Info("eligibility flag reviewed", "flag_id", flagID, "status", next.String(), "reviewer", reviewer)
	return flag, nil
}

// List returns a page of flags for review.
func (s *Service) List(ctx context.Context, filter models.FlagFilter) (models.FlagPage, error) {
	return store.ListFlags(ctx, s.db, filter)
}
