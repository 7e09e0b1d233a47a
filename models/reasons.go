// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// IneligibilityReason is a hard stop that blocks admission to a committee.
// The set is closed; every switch over it lists all variants.
type IneligibilityReason uint8

const (
	ReasonNotRegistered IneligibilityReason = iota + 1
	ReasonPartyMismatch
	ReasonAssemblyDistrictMismatch
	ReasonCapacity
	ReasonAlreadyInAnotherCommittee
)

// AllIneligibilityReasons lists the hard stops in evaluation order.
var AllIneligibilityReasons = []IneligibilityReason{
	ReasonNotRegistered,
	ReasonPartyMismatch,
	ReasonAssemblyDistrictMismatch,
	ReasonCapacity,
	ReasonAlreadyInAnotherCommittee,
}

func (r IneligibilityReason) String() string {
	switch r {
	case ReasonNotRegistered:
		return "NOT_REGISTERED"
	case ReasonPartyMismatch:
		return "PARTY_MISMATCH"
	case ReasonAssemblyDistrictMismatch:
		return "ASSEMBLY_DISTRICT_MISMATCH"
	case ReasonCapacity:
		return "CAPACITY"
	case ReasonAlreadyInAnotherCommittee:
		return "ALREADY_IN_ANOTHER_COMMITTEE"
	}
	return fmt.Sprintf("IneligibilityReason(%d)", uint8(r))
}

// Message is the operator-facing explanation of the hard stop.
func (r IneligibilityReason) Message() string {
	switch r {
	case ReasonNotRegistered:
		return "Voter record not found"
	case ReasonPartyMismatch:
		return "Voter is not enrolled in the required party"
	case ReasonAssemblyDistrictMismatch:
		return "Voter does not live in the committee's assembly district"
	case ReasonCapacity:
		return "Committee has no open seats"
	case ReasonAlreadyInAnotherCommittee:
		return "Voter already serves on another committee this term"
	}
	return "Unknown reason"
}

// ParseIneligibilityReason parses the wire form of a hard stop.
func ParseIneligibilityReason(s string) (IneligibilityReason, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NOT_REGISTERED":
		return ReasonNotRegistered, nil
	case "PARTY_MISMATCH":
		return ReasonPartyMismatch, nil
	case "ASSEMBLY_DISTRICT_MISMATCH":
		return ReasonAssemblyDistrictMismatch, nil
	case "CAPACITY":
		return ReasonCapacity, nil
	case "ALREADY_IN_ANOTHER_COMMITTEE":
		return ReasonAlreadyInAnotherCommittee, nil
	}
	return 0, fmt.Errorf("%w: unknown ineligibility reason %q", ErrValidation, s)
}

func (r IneligibilityReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *IneligibilityReason) UnmarshalText(b []byte) error {
	v, err := ParseIneligibilityReason(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// WarningCode is a non-blocking eligibility advisory.
type WarningCode uint8

const (
	WarningInactiveVoterStatus WarningCode = iota + 1
	WarningNotInLatestImport
	WarningAssemblyDistrictUnverified
	WarningAlreadyMember
)

func (w WarningCode) String() string {
	switch w {
	case WarningInactiveVoterStatus:
		return "INACTIVE_VOTER_STATUS"
	case WarningNotInLatestImport:
		return "NOT_IN_LATEST_IMPORT"
	case WarningAssemblyDistrictUnverified:
		return "ASSEMBLY_DISTRICT_UNVERIFIED"
	case WarningAlreadyMember:
		return "ALREADY_MEMBER"
	}
	return fmt.Sprintf("WarningCode(%d)", uint8(w))
}

func (w WarningCode) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *WarningCode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "INACTIVE_VOTER_STATUS":
		*w = WarningInactiveVoterStatus
	case "NOT_IN_LATEST_IMPORT":
		*w = WarningNotInLatestImport
	case "ASSEMBLY_DISTRICT_UNVERIFIED":
		*w = WarningAssemblyDistrictUnverified
	case "ALREADY_MEMBER":
		*w = WarningAlreadyMember
	default:
		return fmt.Errorf("%w: unknown warning code %q", ErrValidation, b)
	}
	return nil
}

// FlagReason is a condition raised by the BOE eligibility scan against an
// existing membership.
type FlagReason uint8

const (
	FlagNotRegistered FlagReason = iota + 1
	FlagPartyMismatch
	FlagAssemblyDistrictMismatch
	FlagResidencyChanged
	FlagInactiveVoter
)

var AllFlagReasons = []FlagReason{
	FlagNotRegistered,
	FlagPartyMismatch,
	FlagAssemblyDistrictMismatch,
	FlagResidencyChanged,
	FlagInactiveVoter,
}

func (r FlagReason) String() string {
	switch r {
	case FlagNotRegistered:
		return "NOT_REGISTERED"
	case FlagPartyMismatch:
		return "PARTY_MISMATCH"
	case FlagAssemblyDistrictMismatch:
		return "ASSEMBLY_DISTRICT_MISMATCH"
	case FlagResidencyChanged:
		return "RESIDENCY_CHANGED"
	case FlagInactiveVoter:
		return "INACTIVE_VOTER"
	}
	return fmt.Sprintf("FlagReason(%d)", uint8(r))
}

func ParseFlagReason(s string) (FlagReason, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NOT_REGISTERED":
		return FlagNotRegistered, nil
	case "PARTY_MISMATCH":
		return FlagPartyMismatch, nil
	case "ASSEMBLY_DISTRICT_MISMATCH":
		return FlagAssemblyDistrictMismatch, nil
	case "RESIDENCY_CHANGED":
		return FlagResidencyChanged, nil
	case "INACTIVE_VOTER":
		return FlagInactiveVoter, nil
	}
	return 0, fmt.Errorf("%w: unknown flag reason %q", ErrValidation, s)
}

func (r FlagReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *FlagReason) UnmarshalText(b []byte) error {
	v, err := ParseFlagReason(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Value stores the reason by name so the column stays readable.
func (r FlagReason) Value() (driver.Value, error) {
	return r.String(), nil
}

func (r *FlagReason) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	v, err := ParseFlagReason(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// FlagStatus is the review state of an EligibilityFlag.
//
//	PENDING --confirm--> CONFIRMED
//	PENDING --dismiss--> DISMISSED
//
// CONFIRMED and DISMISSED are terminal.
type FlagStatus uint8

const (
	FlagPending FlagStatus = iota + 1
	FlagConfirmed
	FlagDismissed
)

func (s FlagStatus) String() string {
	switch s {
	case FlagPending:
		return "PENDING"
	case FlagConfirmed:
		return "CONFIRMED"
	case FlagDismissed:
		return "DISMISSED"
	}
	return fmt.Sprintf("FlagStatus(%d)", uint8(s))
}

// CanTransitionTo reports whether a reviewer may move a flag from s to next.
func (s FlagStatus) CanTransitionTo(next FlagStatus) bool {
	switch s {
	case FlagPending:
		return next == FlagConfirmed || next == FlagDismissed
	case FlagConfirmed, FlagDismissed:
		return false
	}
	return false
}

func (s FlagStatus) Terminal() bool {
	switch s {
	case FlagConfirmed, FlagDismissed:
		return true
	case FlagPending:
		return false
	}
	return false
}

func ParseFlagStatus(v string) (FlagStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "PENDING":
		return FlagPending, nil
	case "CONFIRMED":
		return FlagConfirmed, nil
	case "DISMISSED":
		return FlagDismissed, nil
	}
	return 0, fmt.Errorf("%w: unknown flag status %q", ErrValidation, v)
}

func (s FlagStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *FlagStatus) UnmarshalText(b []byte) error {
	v, err := ParseFlagStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s FlagStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *FlagStatus) Scan(src any) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	v, err := ParseFlagStatus(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("%w: unexpected NULL enum column", ErrDataIntegrity)
	}
	return "", fmt.Errorf("%w: cannot scan %T into enum", ErrDataIntegrity, src)
}

// FormatReasons joins hard stops for storage in governance_config.
func FormatReasons(reasons []IneligibilityReason) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ",")
}

// ParseReasons is the inverse of FormatReasons. Empty input yields nil.
func ParseReasons(s string) ([]IneligibilityReason, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []IneligibilityReason
	for _, part := range strings.Split(s, ",") {
		r, err := ParseIneligibilityReason(part)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
