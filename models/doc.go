// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the API.

# Domain Types

Rows read and written by the store package:

  - Term: a named committee term; exactly one is active
  - Voter: a voter record owned by the import pipeline (read-only here)
  - Committee: a geographic unit (city/town, LD, ED) scoped to a term
  - Membership: a voter's seat on a committee within a term
  - GovernanceConfig: the admission rule singleton
  - EligibilityFlag: an advisory raised by the BOE scan

# Closed Enumerations

Hard stops, warnings, flag reasons and flag statuses are small integer
types with String, MarshalText and UnmarshalText. Every switch over them
lists all variants:

	IneligibilityReason: NOT_REGISTERED, PARTY_MISMATCH,
	                     ASSEMBLY_DISTRICT_MISMATCH, CAPACITY,
	                     ALREADY_IN_ANOTHER_COMMITTEE
	FlagStatus:          PENDING -> CONFIRMED | DISMISSED

FlagReason and FlagStatus also implement sql.Scanner and driver.Valuer so
they are stored by name.

# Errors

ErrNotFound, ErrValidation, ErrDataIntegrity, ErrNoActiveTerm,
ErrInvalidTransition and ErrConflict are the error kinds every package
wraps. Hard stops are results, never errors.
*/
package models
