// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package eligibility

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/testutil"
)

func warningCodes(r models.EligibilityResult) []models.WarningCode {
	out := []models.WarningCode{}
	for _, w := range r.Warnings {
		out = append(out, w.Code)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	Convey("Given an active term with one committee", t, func() {
		conn := testutil.SetupTestDB(t)
		ctx := context.Background()
		termID := testutil.CreateTestTerm(t, conn, "2026-2028", true)
		committeeID := testutil.CreateTestCommittee(t, conn, termID, "Springfield", 4, 1, nil)

		newVoter := func(party, ad string) string {
			return testutil.CreateTestVoter(t, conn, testutil.TestVoter{
				CityTown: "Springfield", LegDistrict: 4, ElectionDistrict: 1,
				AssemblyDistrict: ad, Party: party,
			})
		}

		Convey("When a registered voter applies to an open committee", func() {
			voterID := newVoter("DEM", "A")
			result, err := Evaluate(ctx, conn, voterID, committeeID, termID)

			Convey("Then the voter is eligible with no warnings", func() {
				So(err, ShouldBeNil)
				So(result.Eligible, ShouldBeTrue)
				So(result.HardStops, ShouldBeEmpty)
				So(result.Warnings, ShouldBeEmpty)
				So(result.Overridable, ShouldBeTrue)
			})
		})

		Convey("When the voter record does not exist", func() {
			result, err := Evaluate(ctx, conn, "no-such-voter", committeeID, termID)

			Convey("Then NOT_REGISTERED is the only hard stop", func() {
				So(err, ShouldBeNil)
				So(result.Eligible, ShouldBeFalse)
				So(result.HardStops, ShouldResemble, []models.IneligibilityReason{models.ReasonNotRegistered})
			})
		})

		Convey("When a party is required", func() {
			testutil.SetTestGovernance(t, conn, models.GovernanceConfig{
				RequiredPartyCode: "DEM",
				MaxSeatsPerLted:   2,
				NonOverridableReasons: []models.IneligibilityReason{
					models.ReasonCapacity, models.ReasonAlreadyInAnotherCommittee,
				},
			})

			Convey("Then a voter enrolled elsewhere gets PARTY_MISMATCH", func() {
				for _, party := range []string{"REP", "WOR", ""} {
					result, err := Evaluate(ctx, conn, newVoter(party, ""), committeeID, termID)
					So(err, ShouldBeNil)
					So(result.Eligible, ShouldBeFalse)
					So(result.HardStops, ShouldContain, models.ReasonPartyMismatch)
					So(result.Overridable, ShouldBeTrue)
				}
			})

			Convey("Then party comparison ignores case", func() {
				result, err := Evaluate(ctx, conn, newVoter("dem", ""), committeeID, termID)
				So(err, ShouldBeNil)
				So(result.Eligible, ShouldBeTrue)
			})
		})

		Convey("When the committee is at capacity", func() {
			for seat := 1; seat <= 2; seat++ {
				testutil.AddTestMembership(t, conn, termID, committeeID, newVoter("DEM", ""), models.MembershipActive, seat)
			}
			result, err := Evaluate(ctx, conn, newVoter("DEM", ""), committeeID, termID)

			Convey("Then adding one more yields a non-overridable CAPACITY stop", func() {
				So(err, ShouldBeNil)
				So(result.Eligible, ShouldBeFalse)
				So(result.HardStops, ShouldResemble, []models.IneligibilityReason{models.ReasonCapacity})
				So(result.Overridable, ShouldBeFalse)
			})
		})

		Convey("When a sitting member is re-evaluated for their own committee", func() {
			memberID := newVoter("DEM", "")
			testutil.AddTestMembership(t, conn, termID, committeeID, memberID, models.MembershipActive, 1)
			testutil.AddTestMembership(t, conn, termID, committeeID, newVoter("DEM", ""), models.MembershipActive, 2)
			result, err := Evaluate(ctx, conn, memberID, committeeID, termID)

			Convey("Then their own seat is not counted against capacity", func() {
				So(err, ShouldBeNil)
				So(result.Eligible, ShouldBeTrue)
				So(warningCodes(result), ShouldResemble, []models.WarningCode{models.WarningAlreadyMember})
			})
		})

		Convey("When the voter already serves on another committee", func() {
			other := testutil.CreateTestCommittee(t, conn, termID, "Springfield", 4, 2, nil)
			voterID := newVoter("DEM", "")
			testutil.AddTestMembership(t, conn, termID, other, voterID, models.MembershipActive, 1)
			result, err := Evaluate(ctx, conn, voterID, committeeID, termID)

			Convey("Then ALREADY_IN_ANOTHER_COMMITTEE is reported", func() {
				So(err, ShouldBeNil)
				So(result.HardStops, ShouldResemble, []models.IneligibilityReason{models.ReasonAlreadyInAnotherCommittee})
				So(result.Overridable, ShouldBeFalse)
			})
		})

		Convey("When assembly districts must match", func() {
			testutil.SetTestGovernance(t, conn, models.GovernanceConfig{
				MaxSeatsPerLted:              2,
				RequireAssemblyDistrictMatch: true,
			})

			Convey("And the voter lives in AD A while the committee maps to AD B", func() {
				testutil.SetTestCrosswalk(t, conn, "Springfield", 4, "B")
				result, err := Evaluate(ctx, conn, newVoter("DEM", "A"), committeeID, termID)

				Convey("Then the only hard stop is ASSEMBLY_DISTRICT_MISMATCH", func() {
					So(err, ShouldBeNil)
					So(result.Eligible, ShouldBeFalse)
					So(result.HardStops, ShouldResemble, []models.IneligibilityReason{models.ReasonAssemblyDistrictMismatch})
				})
			})

			Convey("And the districts agree", func() {
				testutil.SetTestCrosswalk(t, conn, "Springfield", 4, "B")
				result, err := Evaluate(ctx, conn, newVoter("DEM", "B"), committeeID, termID)

				Convey("Then the voter is eligible", func() {
					So(err, ShouldBeNil)
					So(result.Eligible, ShouldBeTrue)
				})
			})

			Convey("And the crosswalk has no row for the committee", func() {
				result, err := Evaluate(ctx, conn, newVoter("DEM", "A"), committeeID, termID)

				Convey("Then an unverified warning is raised instead of a hard stop", func() {
					So(err, ShouldBeNil)
					So(result.Eligible, ShouldBeTrue)
					So(warningCodes(result), ShouldResemble, []models.WarningCode{models.WarningAssemblyDistrictUnverified})
				})
			})
		})

		Convey("When several rules fail at once", func() {
			testutil.SetTestGovernance(t, conn, models.GovernanceConfig{RequiredPartyCode: "DEM", MaxSeatsPerLted: 1})
			testutil.AddTestMembership(t, conn, termID, committeeID, newVoter("DEM", ""), models.MembershipActive, 1)
			result, err := Evaluate(ctx, conn, newVoter("REP", ""), committeeID, termID)

			Convey("Then every applicable reason is reported in order", func() {
				So(err, ShouldBeNil)
				So(result.HardStops, ShouldResemble, []models.IneligibilityReason{
					models.ReasonPartyMismatch, models.ReasonCapacity,
				})
				So(result.Overridable, ShouldBeTrue)
			})
		})

		Convey("When the voter looks stale", func() {
			testutil.RecordTestImport(t, conn, 7)
			voterID := testutil.CreateTestVoter(t, conn, testutil.TestVoter{
				CityTown: "Springfield", Party: "DEM", Status: models.VoterStatusInactive, LastSeenImport: 6,
			})
			result, err := Evaluate(ctx, conn, voterID, committeeID, termID)

			Convey("Then warnings are raised but eligibility is unaffected", func() {
				So(err, ShouldBeNil)
				So(result.Eligible, ShouldBeTrue)
				So(warningCodes(result), ShouldResemble, []models.WarningCode{
					models.WarningInactiveVoterStatus, models.WarningNotInLatestImport,
				})
			})
		})

		Convey("When the committee belongs to another term", func() {
			otherTerm := testutil.CreateTestTerm(t, conn, "2024-2026", false)
			_, err := Evaluate(ctx, conn, newVoter("DEM", ""), committeeID, otherTerm)

			Convey("Then a not-found error is returned", func() {
				So(errors.Is(err, models.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the committee does not exist", func() {
			_, err := Evaluate(ctx, conn, newVoter("DEM", ""), "missing", termID)

			Convey("Then a not-found error is returned", func() {
				So(errors.Is(err, models.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestPartyMismatch(t *testing.T) {
	Convey("Given governance without a required party", t, func() {
		cfg := models.DefaultGovernanceConfig()

		Convey("Then no voter mismatches", func() {
			So(PartyMismatch(cfg, models.Voter{Party: "REP"}), ShouldBeFalse)
		})

		Convey("When a party is required", func() {
			cfg.RequiredPartyCode = " DEM "

			Convey("Then whitespace and case are ignored", func() {
				So(PartyMismatch(cfg, models.Voter{Party: "dem"}), ShouldBeFalse)
				So(PartyMismatch(cfg, models.Voter{Party: "REP"}), ShouldBeTrue)
			})
		})
	})
}
