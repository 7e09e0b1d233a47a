// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package eligibility

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/store"
)

// Evaluate decides whether voterID may take a seat on committeeID in
// termID. Every rule runs and reports; nothing short-circuits. Business-rule
// failures come back in the result, never as an error.
//
// q may be a transaction. Admissions pass their own so the check and the
// insert see the same rows.
func Evaluate(ctx context.Context, q store.Queryer, voterID, committeeID, termID string) (models.EligibilityResult, error) {
	committee, err := store.GetCommittee(ctx, q, committeeID)
	if err != nil {
		return models.EligibilityResult{}, err
	}
	if committee.TermID != termID {
		return models.EligibilityResult{}, fmt.Errorf("committee %s in term %s: %w", committeeID, termID, models.ErrNotFound)
	}

	cfg, err := store.GetGovernanceConfig(ctx, q)
	if err != nil {
		return models.EligibilityResult{}, err
	}

	var stops stopSet
	var warnings []models.EligibilityWarning

	voter, err := store.GetVoter(ctx, q, voterID)
	registered := true
	if errors.Is(err, models.ErrNotFound) {
		registered = false
	} else if err != nil {
		return models.EligibilityResult{}, err
	}

	if !registered {
		stops.add(models.ReasonNotRegistered)
	} else {
		if PartyMismatch(cfg, voter) {
			stops.add(models.ReasonPartyMismatch)
		}

		if cfg.RequireAssemblyDistrictMatch {
			mismatch, verified, err := AssemblyDistrictMismatch(ctx, q, committee.CityTown, committee.LegDistrict, voter)
			if err != nil {
				return models.EligibilityResult{}, err
			}
			if !verified {
				warnings = append(warnings, models.EligibilityWarning{
					Code:    models.WarningAssemblyDistrictUnverified,
					Message: "Assembly district could not be verified for this committee or voter",
				})
			} else if mismatch {
				stops.add(models.ReasonAssemblyDistrictMismatch)
			}
		}

		ws, err := voterWarnings(ctx, q, voter)
		if err != nil {
			return models.EligibilityResult{}, err
		}
		warnings = append(warnings, ws...)
	}

	occupied, err := store.CountActiveMemberships(ctx, q, committee.ID, termID, voterID)
	if err != nil {
		return models.EligibilityResult{}, err
	}
	if occupied >= cfg.MaxSeatsPerLted {
		stops.add(models.ReasonCapacity)
	}

	existing, err := store.ActiveMembershipForVoter(ctx, q, termID, voterID)
	switch {
	case errors.Is(err, models.ErrNotFound):
	case err != nil:
		return models.EligibilityResult{}, err
	case existing.CommitteeListID != committee.ID:
		stops.add(models.ReasonAlreadyInAnotherCommittee)
	default:
		warnings = append(warnings, models.EligibilityWarning{
			Code:    models.WarningAlreadyMember,
			Message: "Voter already holds a seat on this committee",
		})
	}

	return buildResult(cfg, stops, warnings), nil
}

// PartyMismatch reports whether the voter's enrollment differs from the
// required party. Comparison ignores case and surrounding space.
func PartyMismatch(cfg models.GovernanceConfig, voter models.Voter) bool {
	required := strings.TrimSpace(cfg.RequiredPartyCode)
	if required == "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(voter.Party), required)
}

// AssemblyDistrictMismatch compares the voter's assembly district with the
// one the crosswalk assigns to the committee's city/town and legislative
// district. verified is false when either side is unknown.
func AssemblyDistrictMismatch(ctx context.Context, q store.Queryer, cityTown string, legDistrict int, voter models.Voter) (mismatch, verified bool, err error) {
	committeeAD, ok, err := store.AssemblyDistrictFor(ctx, q, cityTown, legDistrict)
	if err != nil {
		return false, false, err
	}
	if !ok || voter.AssemblyDistrict == nil || strings.TrimSpace(*voter.AssemblyDistrict) == "" {
		return false, false, nil
	}
	same := strings.EqualFold(strings.TrimSpace(*voter.AssemblyDistrict), strings.TrimSpace(committeeAD))
	return !same, true, nil
}

func voterWarnings(ctx context.Context, q store.Queryer, voter models.Voter) ([]models.EligibilityWarning, error) {
	var warnings []models.EligibilityWarning

	if !strings.EqualFold(voter.Status, models.VoterStatusActive) {
		warnings = append(warnings, models.EligibilityWarning{
			Code:    models.WarningInactiveVoterStatus,
			Message: fmt.Sprintf("Voter status is %s", voter.Status),
		})
	}

	latest, err := store.LatestImportVersion(ctx, q)
	if err != nil {
		return nil, err
	}
	if latest > 0 && voter.LastSeenImport < latest {
		warnings = append(warnings, models.EligibilityWarning{
			Code:    models.WarningNotInLatestImport,
			Message: "Voter was not present in the most recent voter file import",
		})
	}

	return warnings, nil
}

// stopSet collects hard stops and reports them in declaration order.
type stopSet uint32

func (s *stopSet) add(r models.IneligibilityReason) {
	*s |= 1 << r
}

func (s *stopSet) list() []models.IneligibilityReason {
	out := []models.IneligibilityReason{}
	for _, r := range models.AllIneligibilityReasons {
		if *s&(1<<r) != 0 {
			out = append(out, r)
		}
	}
	return out
}

func buildResult(cfg models.GovernanceConfig, stops stopSet, warnings []models.EligibilityWarning) models.EligibilityResult {
	hardStops := stops.list()
	if warnings == nil {
		warnings = []models.EligibilityWarning{}
	}

	overridable := true
	for _, r := range hardStops {
		if !cfg.IsOverridable(r) {
			overridable = false
		}
	}

	return models.EligibilityResult{
		Eligible:    len(hardStops) == 0,
		HardStops:   hardStops,
		Warnings:    warnings,
		Overridable: overridable,
	}
}
