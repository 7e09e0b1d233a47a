// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the committee roster API.

# Handler Types

Each handler is a struct holding its config and the service it fronts:

  - EligibilityHandler: read-only eligibility preflight
  - WeightHandler: designation weights, LTED weight updates, weighted table import
  - FlagHandler: BOE eligibility flagging runs and flag review
  - RosterHandler: admitting and removing committee members
  - TermHandler: the active term

	rosterHandler := handlers.NewRosterHandler(cfg, roster.NewService(db, weightSvc, m))

# Eligibility and Admission

	GET  /eligibility?voterRecordId=&committeeListId=  → Check
	POST /committees/{id}/members                       → AddMember
	DELETE /committees/{id}/members/{voterId}           → RemoveMember

Check never blocks anything; AddMember evaluates again inside its
transaction. A refused admission answers 409 with the full eligibility
result so the client can offer an override when every hard stop allows one.

# Seat Weights

	GET   /designation-weight?committeeListId=  → GetDesignationWeight
	PATCH /committees/lted-weight                → UpdateLtedWeight
	POST  /weighted-table/import                 → ImportWeightTable (multipart "file")

# Flags

	POST /eligibility-flags/run            → Run
	GET  /eligibility-flags                → List
	POST /eligibility-flags/{id}/confirm   → Confirm
	POST /eligibility-flags/{id}/dismiss   → Dismiss

# Authentication

Every mutating endpoint requires X-Actor and X-Admin-Key. The actor is
recorded as the reviewer of flags and logged with roster changes.
*/
package handlers
