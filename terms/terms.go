// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package terms manages the active committee term.
package terms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/store"
)

type Service struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Active returns the single active term or models.ErrNoActiveTerm.
func (s *Service) Active(ctx context.Context) (models.Term, error) {
	return store.ActiveTerm(ctx, s.db)
}

// Create adds an inactive term.
func (s *Service) Create(ctx context.Context, name string, start, end *time.Time) (models.Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Term{}, fmt.Errorf("%w: term name required", models.ErrValidation)
	}
	if start != nil && end != nil && end.Before(*start) {
		return models.Term{}, fmt.Errorf("%w: term ends before it starts", models.ErrValidation)
	}

	t := models.Term{
		ID:        uuid.NewString(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		CreatedAt: s.now(),
	}
	if err := store.CreateTerm(ctx, s.db, t); err != nil {
		return models.Term{}, err
	}
	slog.Info("term created", "term_id", t.ID, "name", t.Name)
	return t, nil
}

// Activate makes termID the only active term. Deactivation and activation
// commit together or not at all.
func (s *Service) Activate(ctx context.Context, termID, actor string) (models.Term, error) {
	err := store.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return store.ActivateTerm(ctx, tx, termID)
	})
	if err != nil {
		return models.Term{}, err
	}

	t, err := store.GetTerm(ctx, s.db, termID)
	if err != nil {
		return models.Term{}, err
	}
	slog.Info("term activated", "term_id", t.ID, "name", t.Name, "actor", actor)
	return t, nil
}
