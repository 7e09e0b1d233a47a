// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/committee-roster/flagging"
	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/testutil"
)

func TestFlagWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewFlagHandler(cfg, flagging.NewService(db, nil))
	admin := testutil.AdminHeaders(cfg)

	termID := testutil.CreateTestTerm(t, db, "2026-2028", true)
	committeeID := testutil.CreateTestCommittee(t, db, termID, "Springfield", 4, 1, nil)
	testutil.SetTestGovernance(t, db, models.GovernanceConfig{RequiredPartyCode: "DEM", MaxSeatsPerLted: 2})

	switcher := testutil.CreateTestVoter(t, db, testutil.TestVoter{
		CityTown: "Springfield", LegDistrict: 4, ElectionDistrict: 1, Party: "DEM",
	})
	testutil.AddTestMembership(t, db, termID, committeeID, switcher, models.MembershipActive, 1)
	testutil.AddTestMembership(t, db, termID, committeeID, "purged", models.MembershipActive, 2)
	testutil.UpdateTestVoter(t, db, switcher, "REP", "Springfield", models.VoterStatusActive)

	// Run without a body uses the active term
	req := testutil.MakeRequest("POST", "/eligibility-flags/run", nil, admin)
	w := httptest.NewRecorder()
	handler.Run(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var summary models.FlagRunSummary
	testutil.AssertJSON(t, w, &summary)
	if summary.TermID != termID || summary.Flagged != 2 {
		t.Fatalf("Expected 2 flags in term %s, got %+v", termID, summary)
	}

	// Second run on unchanged data creates nothing
	req = testutil.MakeRequest("POST", "/eligibility-flags/run", models.RunFlaggingRequest{TermID: termID}, admin)
	w = httptest.NewRecorder()
	handler.Run(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &summary)
	if summary.Flagged != 0 || summary.AlreadyFlagged != 2 {
		t.Errorf("Expected an idempotent rerun, got %+v", summary)
	}

	// List pending party flags
	req = httptest.NewRequest("GET", "/eligibility-flags?status=pending&reason=PARTY_MISMATCH&termId="+termID, nil)
	w = httptest.NewRecorder()
	handler.List(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var page models.FlagPage
	testutil.AssertJSON(t, w, &page)
	if page.Total != 1 || len(page.Flags) != 1 {
		t.Fatalf("Expected one party flag, got %+v", page)
	}
	flagID := page.Flags[0].ID

	// Confirm it with notes
	req = testutil.MakeRequest("POST", "/eligibility-flags/"+flagID+"/confirm",
		models.ReviewFlagRequest{Notes: "re-enrolled REP"}, admin)
	req.SetPathValue("id", flagID)
	w = httptest.NewRecorder()
	handler.Confirm(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var flag models.EligibilityFlag
	testutil.AssertJSON(t, w, &flag)
	if flag.Status != models.FlagConfirmed {
		t.Errorf("Expected CONFIRMED, got %s", flag.Status)
	}
	if flag.ReviewedBy == nil || *flag.ReviewedBy != testutil.TestActor {
		t.Errorf("Expected reviewer %s, got %v", testutil.TestActor, flag.ReviewedBy)
	}

	// A reviewed flag cannot be dismissed
	req = testutil.MakeRequest("POST", "/eligibility-flags/"+flagID+"/dismiss", nil, admin)
	req.SetPathValue("id", flagID)
	w = httptest.NewRecorder()
	handler.Dismiss(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestFlagHandler_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewFlagHandler(cfg, flagging.NewService(db, nil))
	admin := testutil.AdminHeaders(cfg)

	t.Run("run without active term", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/eligibility-flags/run", nil, admin)
		w := httptest.NewRecorder()
		handler.Run(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("run unauthenticated", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/eligibility-flags/run", nil, nil)
		w := httptest.NewRecorder()
		handler.Run(w, req)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("list with unknown status", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/eligibility-flags?status=OPEN", nil)
		w := httptest.NewRecorder()
		handler.List(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("list with bad page", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/eligibility-flags?page=two", nil)
		w := httptest.NewRecorder()
		handler.List(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("empty list", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/eligibility-flags", nil)
		w := httptest.NewRecorder()
		handler.List(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var page models.FlagPage
		testutil.AssertJSON(t, w, &page)
		if page.Flags == nil || page.Total != 0 || page.PageSize != 50 {
			t.Errorf("Expected an empty first page, got %+v", page)
		}
	})

	t.Run("confirm unknown flag", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/eligibility-flags/missing/confirm", nil, admin)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()
		handler.Confirm(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestFlagRun_ChunkedBody(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewFlagHandler(cfg, flagging.NewService(db, nil))
	admin := testutil.AdminHeaders(cfg)

	testutil.CreateTestTerm(t, db, "2026-2028", true)
	pastID := testutil.CreateTestTerm(t, db, "2024-2026", false)

	testCases := []struct {
		name           string
		body           string
		expectedStatus int
		expectedTerm   string
	}{
		{"explicit term", `{"termId":"` + pastID + `"}`, http.StatusOK, pastID},
		{"unknown term", `{"termId":"missing"}`, http.StatusNotFound, ""},
		{"invalid JSON", `{"termId":`, http.StatusBadRequest, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/eligibility-flags/run", strings.NewReader(tc.body))
			// Chunked uploads carry no Content-Length
			req.ContentLength = -1
			req.TransferEncoding = []string{"chunked"}
			for k, v := range admin {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			handler.Run(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusOK {
				return
			}
			var summary models.FlagRunSummary
			testutil.AssertJSON(t, w, &summary)
			if summary.TermID != tc.expectedTerm {
				t.Errorf("Expected run for term %s, got %s", tc.expectedTerm, summary.TermID)
			}
		})
	}
}
