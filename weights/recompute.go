// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package weights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/committee-roster/metrics"
	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/store"
)

// Service recomputes and updates seat weights.
type Service struct {
	db      *sqlx.DB
	metrics *metrics.Manager
	now     func() time.Time
}

// NewService creates a weights service. m may be nil.
func NewService(db *sqlx.DB, m *metrics.Manager) *Service {
	return &Service{db: db, metrics: m, now: time.Now}
}

// RecomputeSeatWeights recalculates a committee's seat weights and rewrites
// its materialised seats. With a nil tx the service runs its own
// transaction; otherwise the work joins tx and the caller decides whether
// it commits.
func (s *Service) RecomputeSeatWeights(ctx context.Context, committeeID string, tx *sqlx.Tx) (models.DesignationWeight, error) {
	if tx != nil {
		return s.recompute(ctx, tx, committeeID)
	}

	var out models.DesignationWeight
	err := store.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		out, err = s.recompute(ctx, tx, committeeID)
		return err
	})
	return out, err
}

func (s *Service) recompute(ctx context.Context, tx *sqlx.Tx, committeeID string) (models.DesignationWeight, error) {
	dw, err := Calculate(ctx, tx, committeeID, "")
	if err != nil {
		if errors.Is(err, models.ErrDataIntegrity) {
			s.metrics.RecordRecompute("integrity_error")
			slog.Error("seat weight recomputation refused", "committee_id", committeeID, "error", err)
		} else {
			s.metrics.RecordRecompute("error")
		}
		return models.DesignationWeight{}, err
	}

	if err := store.ReplaceSeats(ctx, tx, committeeID, dw.PerSeat, s.now()); err != nil {
		s.metrics.RecordRecompute("error")
		return models.DesignationWeight{}, err
	}

	s.metrics.RecordRecompute("ok")
	return dw, nil
}

// UpdateLtedWeight sets a committee's LTED weight and recomputes its seats
// in one transaction. nil clears the weight.
func (s *Service) UpdateLtedWeight(ctx context.Context, committeeID string, weight *float64) (models.DesignationWeight, error) {
	if weight != nil {
		if err := validWeight(*weight); err != nil {
			return models.DesignationWeight{}, err
		}
	}

	var out models.DesignationWeight
	err := store.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := store.SetLtedWeight(ctx, tx, committeeID, weight, s.now()); err != nil {
			return err
		}
		var err error
		out, err = s.RecomputeSeatWeights(ctx, committeeID, tx)
		return err
	})
	if err != nil {
		return models.DesignationWeight{}, err
	}

	slog.Info("lted weight updated", "committee_id", committeeID, "weight_available", out.WeightAvailable)
	return out, nil
}

func validWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: weight must be a finite number", models.ErrValidation)
	}
	if w < 0 {
		return fmt.Errorf("%w: weight must not be negative", models.ErrValidation)
	}
	return nil
}
