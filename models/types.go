package models

import (
	"encoding/json"
	"time"
)

// Membership status constants
type MembershipStatus string

const (
	MembershipActive     MembershipStatus = "ACTIVE"
	MembershipSubmitted  MembershipStatus = "SUBMITTED"
	MembershipPetitioned MembershipStatus = "PETITIONED"
	MembershipResigned   MembershipStatus = "RESIGNED"
	MembershipRemoved    MembershipStatus = "REMOVED"
)

// Voter status values written by the import pipeline
const (
	VoterStatusActive   = "ACTIVE"
	VoterStatusInactive = "INACTIVE"
	VoterStatusPurged   = "PURGED"
)

// Domain types

type Term struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Voter is a row owned by the voter import pipeline. Read-only here.
type Voter struct {
	VoterRecordID    string  `db:"voter_record_id" json:"voter_record_id"`
	FirstName        string  `db:"first_name" json:"first_name"`
	LastName         string  `db:"last_name" json:"last_name"`
	CityTown         string  `db:"city_town" json:"city_town"`
	LegDistrict      *int    `db:"leg_district" json:"leg_district,omitempty"`
	ElectionDistrict *int    `db:"election_district" json:"election_district,omitempty"`
	AssemblyDistrict *string `db:"assembly_district" json:"assembly_district,omitempty"`
	Party            string  `db:"party" json:"party"`
	Status           string  `db:"status" json:"status"`
	LastSeenImport   int     `db:"last_seen_import" json:"last_seen_import"`
}

type Committee struct {
	ID               string    `db:"id" json:"id"`
	TermID           string    `db:"term_id" json:"term_id"`
	CityTown         string    `db:"city_town" json:"city_town"`
	LegDistrict      int       `db:"leg_district" json:"leg_district"`
	ElectionDistrict int       `db:"election_district" json:"election_district"`
	LtedWeight       *float64  `db:"lted_weight" json:"lted_weight"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type Membership struct {
	ID              string           `db:"id" json:"id"`
	TermID          string           `db:"term_id" json:"term_id"`
	VoterRecordID   string           `db:"voter_record_id" json:"voter_record_id"`
	CommitteeListID string           `db:"committee_list_id" json:"committee_list_id"`
	Status          MembershipStatus `db:"status" json:"status"`
	SeatNumber      *int             `db:"seat_number" json:"seat_number,omitempty"`
	OverrideReason  *string          `db:"override_reason" json:"override_reason,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// GovernanceConfig is the singleton rule set for admissions.
type GovernanceConfig struct {
	RequiredPartyCode            string                `json:"required_party_code,omitempty"`
	MaxSeatsPerLted              int                   `json:"max_seats_per_lted"`
	RequireAssemblyDistrictMatch bool                  `json:"require_assembly_district_match"`
	NonOverridableReasons        []IneligibilityReason `json:"non_overridable_reasons"`
}

// DefaultGovernanceConfig is used until an admin seeds the singleton row.
func DefaultGovernanceConfig() GovernanceConfig {
	return GovernanceConfig{
		MaxSeatsPerLted:              2,
		RequireAssemblyDistrictMatch: false,
		NonOverridableReasons: []IneligibilityReason{
			ReasonCapacity,
			ReasonAlreadyInAnotherCommittee,
		},
	}
}

// IsOverridable reports whether an admin may admit despite the given hard stop.
func (c GovernanceConfig) IsOverridable(reason IneligibilityReason) bool {
	for _, r := range c.NonOverridableReasons {
		if r == reason {
			return false
		}
	}
	return true
}

type EligibilityFlag struct {
	ID              string     `db:"id" json:"id"`
	MembershipID    string     `db:"membership_id" json:"membership_id"`
	VoterRecordID   string     `db:"voter_record_id" json:"voter_record_id"`
	CommitteeListID string     `db:"committee_list_id" json:"committee_list_id"`
	TermID          string     `db:"term_id" json:"term_id"`
	Reason          FlagReason `db:"reason" json:"reason"`
	Status          FlagStatus `db:"status" json:"status"`
	Details         string     `db:"details" json:"details"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt      *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy      *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes     *string    `db:"review_notes" json:"review_notes,omitempty"`
}

// Eligibility results

type EligibilityWarning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

type EligibilityResult struct {
	Eligible    bool                  `json:"eligible"`
	HardStops   []IneligibilityReason `json:"hardStops"`
	Warnings    []EligibilityWarning  `json:"warnings"`
	Overridable bool                  `json:"overridable"`
}

// Designation weight results. Weight pointers are nil when the committee has
// no LTED weight; that is "unavailable", not zero.

type SeatWeight struct {
	SeatNumber    int      `json:"seatNumber"`
	MembershipID  string   `json:"membershipId"`
	VoterRecordID string   `json:"voterRecordId"`
	Weight        *float64 `json:"weight"`
}

type DesignationWeight struct {
	CommitteeListID string       `json:"committeeListId"`
	TermID          string       `json:"termId"`
	WeightAvailable bool         `json:"weightAvailable"`
	PerSeat         []SeatWeight `json:"perSeat"`
	Total           *float64     `json:"total"`
}

// Weighted table import

type WeightRow struct {
	Line   int
	LTED   string
	Weight string
}

type ImportRowError struct {
	Line  int    `json:"line"`
	LTED  string `json:"lted"`
	Error string `json:"error"`
}

type ImportReport struct {
	TermID             string           `json:"termId"`
	Matched            int              `json:"matched"`
	CommitteesUpdated  int              `json:"committeesUpdated"`
	SkippedNoCommittee int              `json:"skippedNoCommittee"`
	SkippedInvalid     int              `json:"skippedInvalid"`
	Failed             int              `json:"failed"`
	Errors             []ImportRowError `json:"errors,omitempty"`
}

// Flagging batch

type FlagRunSummary struct {
	TermID         string         `json:"termId"`
	Scanned        int            `json:"scanned"`
	Flagged        int            `json:"flagged"`
	AlreadyFlagged int            `json:"alreadyFlagged"`
	Cleared        int            `json:"cleared"`
	Clean          int            `json:"clean"`
	ByReason       map[string]int `json:"byReason"`
	StartedAt      time.Time      `json:"startedAt"`
	FinishedAt     time.Time      `json:"finishedAt"`
}

type FlagFilter struct {
	Status          *FlagStatus
	Reason          *FlagReason
	TermID          string
	CommitteeListID string
	Page            int
	PageSize        int
}

type FlagPage struct {
	Flags    []EligibilityFlag `json:"flags"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// Request types

type UpdateLtedWeightRequest struct {
	CommitteeListID string        `json:"committeeListId"`
	LtedWeight      NullableFloat `json:"ltedWeight"`
}

// NullableFloat tells an explicit JSON null apart from an absent field.
// Set is true whenever the field appeared in the document.
type NullableFloat struct {
	Set   bool
	Value *float64
}

// SetFloat returns a present value; nil encodes as null.
func SetFloat(v *float64) NullableFloat {
	return NullableFloat{Set: true, Value: v}
}

func (n *NullableFloat) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n NullableFloat) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

type RunFlaggingRequest struct {
	TermID string `json:"termId"`
}

type ReviewFlagRequest struct {
	Notes string `json:"notes"`
}

type AddMemberRequest struct {
	VoterRecordID  string `json:"voterRecordId"`
	Override       bool   `json:"override"`
	OverrideReason string `json:"overrideReason"`
}

// Response types

type AddMemberResponse struct {
	Membership  Membership        `json:"membership"`
	Eligibility EligibilityResult `json:"eligibility"`
	Weight      DesignationWeight `json:"weight"`
}

type AdmissionRefusedResponse struct {
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Eligibility EligibilityResult `json:"eligibility"`
}

type RemoveMemberResponse struct {
	MembershipID string            `json:"membershipId"`
	Weight       DesignationWeight `json:"weight"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
