// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/testutil"
	"github.com/danielhkuo/committee-roster/weights"
)

func newWeightHandler(t *testing.T) (*WeightHandler, string, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewWeightHandler(db, cfg, weights.NewService(db, nil))

	termID := testutil.CreateTestTerm(t, db, "2026-2028", true)
	committeeID := testutil.CreateTestCommittee(t, db, termID, "Springfield", 4, 1, testutil.Float(12))
	testutil.SetTestGovernance(t, db, models.GovernanceConfig{MaxSeatsPerLted: 2})
	for seat := 1; seat <= 2; seat++ {
		v := testutil.CreateTestVoter(t, db, testutil.TestVoter{CityTown: "Springfield", LegDistrict: 4, ElectionDistrict: 1})
		testutil.AddTestMembership(t, db, termID, committeeID, v, models.MembershipActive, seat)
	}
	return handler, termID, committeeID
}

func TestGetDesignationWeight(t *testing.T) {
	handler, termID, committeeID := newWeightHandler(t)

	testCases := []struct {
		name           string
		query          string
		expectedStatus int
	}{
		{"current term", "?committeeListId=" + committeeID, http.StatusOK},
		{"explicit term", "?committeeListId=" + committeeID + "&termId=" + termID, http.StatusOK},
		{"missing committee", "", http.StatusBadRequest},
		{"unknown committee", "?committeeListId=missing", http.StatusNotFound},
		{"other term", "?committeeListId=" + committeeID + "&termId=other", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/designation-weight"+tc.query, nil)
			w := httptest.NewRecorder()

			handler.GetDesignationWeight(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusOK {
				return
			}

			var dw models.DesignationWeight
			testutil.AssertJSON(t, w, &dw)
			if !dw.WeightAvailable || dw.Total == nil || *dw.Total != 12 {
				t.Errorf("Expected total 12, got %+v", dw)
			}
			if len(dw.PerSeat) != 2 || *dw.PerSeat[0].Weight != 6 {
				t.Errorf("Expected two seats of 6, got %+v", dw.PerSeat)
			}
		})
	}
}

func TestGetDesignationWeight_CorruptSeating(t *testing.T) {
	handler, termID, committeeID := newWeightHandler(t)
	db := handler.db
	v := testutil.CreateTestVoter(t, db, testutil.TestVoter{CityTown: "Springfield", LegDistrict: 4, ElectionDistrict: 1})
	testutil.AddTestMembership(t, db, termID, committeeID, v, models.MembershipActive, 3)

	req := httptest.NewRequest("GET", "/designation-weight?committeeListId="+committeeID, nil)
	w := httptest.NewRecorder()

	handler.GetDesignationWeight(w, req)

	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestUpdateLtedWeight(t *testing.T) {
	handler, _, committeeID := newWeightHandler(t)
	admin := testutil.AdminHeaders(handler.cfg)

	testCases := []struct {
		name           string
		body           interface{}
		headers        map[string]string
		expectedStatus int
		expectedSeat   *float64
	}{
		{
			name:           "set weight",
			body:           models.UpdateLtedWeightRequest{CommitteeListID: committeeID, LtedWeight: models.SetFloat(testutil.Float(30))},
			headers:        admin,
			expectedStatus: http.StatusOK,
			expectedSeat:   testutil.Float(15),
		},
		{
			name:           "clear weight",
			body:           models.UpdateLtedWeightRequest{CommitteeListID: committeeID, LtedWeight: models.SetFloat(nil)},
			headers:        admin,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "negative weight",
			body:           models.UpdateLtedWeightRequest{CommitteeListID: committeeID, LtedWeight: models.SetFloat(testutil.Float(-1))},
			headers:        admin,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing committee",
			body:           models.UpdateLtedWeightRequest{LtedWeight: models.SetFloat(testutil.Float(3))},
			headers:        admin,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown committee",
			body:           models.UpdateLtedWeightRequest{CommitteeListID: "missing", LtedWeight: models.SetFloat(testutil.Float(3))},
			headers:        admin,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "no admin key",
			body:           models.UpdateLtedWeightRequest{CommitteeListID: committeeID, LtedWeight: models.SetFloat(testutil.Float(3))},
			headers:        map[string]string{"X-Actor": testutil.TestActor},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("PATCH", "/committees/lted-weight", tc.body, tc.headers)
			w := httptest.NewRecorder()

			handler.UpdateLtedWeight(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusOK {
				return
			}

			var dw models.DesignationWeight
			testutil.AssertJSON(t, w, &dw)
			if len(dw.PerSeat) != 2 {
				t.Fatalf("Expected 2 seats, got %d", len(dw.PerSeat))
			}
			got := dw.PerSeat[0].Weight
			switch {
			case tc.expectedSeat == nil && got != nil:
				t.Errorf("Expected unavailable weight, got %v", *got)
			case tc.expectedSeat != nil && (got == nil || *got != *tc.expectedSeat):
				t.Errorf("Expected seat weight %v, got %v", *tc.expectedSeat, got)
			}
		})
	}
}

func TestUpdateLtedWeight_RequiresWeightField(t *testing.T) {
	handler, _, committeeID := newWeightHandler(t)
	admin := testutil.AdminHeaders(handler.cfg)

	testCases := []struct {
		name string
		body string
	}{
		{"field absent", `{"committeeListId":"` + committeeID + `"}`},
		{"field misspelled", `{"committeeListId":"` + committeeID + `","weight":30}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("PATCH", "/committees/lted-weight", strings.NewReader(tc.body))
			for k, v := range admin {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			handler.UpdateLtedWeight(w, req)

			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	// The stored weight is untouched
	req := httptest.NewRequest("GET", "/designation-weight?committeeListId="+committeeID, nil)
	w := httptest.NewRecorder()
	handler.GetDesignationWeight(w, req)

	var dw models.DesignationWeight
	testutil.AssertJSON(t, w, &dw)
	if !dw.WeightAvailable || dw.Total == nil || *dw.Total != 12 {
		t.Errorf("Expected total 12 to survive, got %+v", dw)
	}
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestImportWeightTable(t *testing.T) {
	handler, termID, _ := newWeightHandler(t)

	body, contentType := multipartUpload(t, "weights.csv",
		"LTED,Weight\n04001,\"1,200\"\n09001,5\nabc,3\n04002,-1\n",
		map[string]string{"termId": termID})
	req := httptest.NewRequest("POST", "/weighted-table/import", body)
	req.Header.Set("Content-Type", contentType)
	for k, v := range testutil.AdminHeaders(handler.cfg) {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()

	handler.ImportWeightTable(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var report models.ImportReport
	testutil.AssertJSON(t, w, &report)
	if report.Matched != 1 || report.CommitteesUpdated != 1 {
		t.Errorf("Expected 1 matched row, got %+v", report)
	}
	if report.SkippedNoCommittee != 1 {
		t.Errorf("Expected 1 row without a committee, got %d", report.SkippedNoCommittee)
	}
	if report.SkippedInvalid != 2 || len(report.Errors) != 2 {
		t.Errorf("Expected 2 invalid rows, got %d (%v)", report.SkippedInvalid, report.Errors)
	}
}

func TestImportWeightTable_Rejects(t *testing.T) {
	handler, _, _ := newWeightHandler(t)

	t.Run("unsupported file type", func(t *testing.T) {
		body, contentType := multipartUpload(t, "weights.txt", "04001,1", nil)
		req := httptest.NewRequest("POST", "/weighted-table/import", body)
		req.Header.Set("Content-Type", contentType)
		for k, v := range testutil.AdminHeaders(handler.cfg) {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()

		handler.ImportWeightTable(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("termId", "x")
		mw.Close()
		req := httptest.NewRequest("POST", "/weighted-table/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		for k, v := range testutil.AdminHeaders(handler.cfg) {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()

		handler.ImportWeightTable(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		body, contentType := multipartUpload(t, "weights.csv", "04001,1", nil)
		req := httptest.NewRequest("POST", "/weighted-table/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.ImportWeightTable(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}
