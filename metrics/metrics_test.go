// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/danielhkuo/committee-roster/models"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should own a private registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When two managers are created", func() {
			Convey("Then registration does not collide", func() {
				So(func() {
					NewManager()
					NewManager()
				}, ShouldNotPanic)
			})
		})

		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry), WithNamespace("test"), WithHistogramBuckets([]float64{1, 2}))

			Convey("Then it should use that registry", func() {
				So(manager.Registry(), ShouldEqual, registry)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		manager := NewManager()

		Convey("When recording an ineligible evaluation", func() {
			manager.RecordEligibility(models.EligibilityResult{
				Eligible:  false,
				HardStops: []models.IneligibilityReason{models.ReasonPartyMismatch, models.ReasonCapacity},
			})

			Convey("Then the outcome and each hard stop are counted", func() {
				So(testutil.ToFloat64(manager.eligibilityChecks.WithLabelValues("ineligible")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.hardStops.WithLabelValues("PARTY_MISMATCH")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.hardStops.WithLabelValues("CAPACITY")), ShouldEqual, 1)
			})
		})

		Convey("When recording an import report", func() {
			manager.RecordImport(models.ImportReport{Matched: 3, SkippedInvalid: 2})

			Convey("Then row outcomes are added", func() {
				So(testutil.ToFloat64(manager.importRows.WithLabelValues("matched")), ShouldEqual, 3)
				So(testutil.ToFloat64(manager.importRows.WithLabelValues("skipped_invalid")), ShouldEqual, 2)
			})
		})

		Convey("When recording a flag run", func() {
			manager.RecordFlagRun(models.FlagRunSummary{ByReason: map[string]int{"PARTY_MISMATCH": 2}})

			Convey("Then runs and created flags are counted", func() {
				So(testutil.ToFloat64(manager.flagRuns), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.flagsCreated.WithLabelValues("PARTY_MISMATCH")), ShouldEqual, 2)
			})
		})

		Convey("When serving the registry", func() {
			manager.RecordHTTPRequest("GET /eligibility", "GET", 200, 12)
			manager.RecordRecompute("ok")

			w := httptest.NewRecorder()
			manager.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

			Convey("Then the exposition includes recorded series", func() {
				So(w.Code, ShouldEqual, 200)
				body := w.Body.String()
				So(strings.Contains(body, "committee_roster_http_requests_total"), ShouldBeTrue)
				So(strings.Contains(body, "committee_roster_seat_weight_recomputations_total"), ShouldBeTrue)
			})
		})
	})
}

func TestNilManager(t *testing.T) {
	Convey("Given a nil manager", t, func() {
		var manager *Manager

		Convey("Then recording is a no-op", func() {
			So(func() {
				manager.RecordEligibility(models.EligibilityResult{Eligible: true})
				manager.RecordRecompute("ok")
				manager.RecordImport(models.ImportReport{})
				manager.RecordFlagRun(models.FlagRunSummary{})
				manager.RecordFlagReview(models.FlagConfirmed)
				manager.RecordRosterChange("add")
				manager.RecordHTTPRequest("/", "GET", 200, 1)
			}, ShouldNotPanic)
		})
	})
}
