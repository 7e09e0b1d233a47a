// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/committee-roster/models"
)

const termColumns = `id, name, start_date, end_date, is_active, created_at`

// GetTerm returns a term by ID.
func GetTerm(ctx context.Context, q Queryer, id string) (models.Term, error) {
	var t models.Term
	err := get(ctx, q, &t, `SELECT `+termColumns+` FROM term WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Term{}, fmt.Errorf("term %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Term{}, fmt.Errorf("get term: %w", err)
	}
	return t, nil
}

// ActiveTerm returns the single active term or ErrNoActiveTerm.
func ActiveTerm(ctx context.Context, q Queryer) (models.Term, error) {
	var terms []models.Term
	err := selectAll(ctx, q, &terms, `SELECT `+termColumns+` FROM term WHERE is_active = ?`, true)
	if err != nil {
		return models.Term{}, fmt.Errorf("get active term: %w", err)
	}
	switch len(terms) {
	case 0:
		return models.Term{}, models.ErrNoActiveTerm
	case 1:
		return terms[0], nil
	}
	return models.Term{}, fmt.Errorf("%d active terms: %w", len(terms), models.ErrDataIntegrity)
}

// ResolveTermID returns termID unchanged when set, otherwise the active term.
func ResolveTermID(ctx context.Context, q Queryer, termID string) (string, error) {
	if termID != "" {
		if _, err := GetTerm(ctx, q, termID); err != nil {
			return "", err
		}
		return termID, nil
	}
	t, err := ActiveTerm(ctx, q)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// CreateTerm inserts an inactive term. Use ActivateTerm to make it live.
func CreateTerm(ctx context.Context, q Queryer, t models.Term) error {
	_, err := exec(ctx, q, `
		INSERT INTO term (id, name, start_date, end_date, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, nullTime(t.StartDate), nullTime(t.EndDate), false, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create term: %w", err)
	}
	return nil
}

// ActivateTerm deactivates every term and activates termID inside tx, then
// checks that exactly one term is active. Any failure leaves tx for the
// caller to roll back.
func ActivateTerm(ctx context.Context, tx *sqlx.Tx, termID string) error {
	if _, err := GetTerm(ctx, tx, termID); err != nil {
		return err
	}

	if _, err := exec(ctx, tx, `UPDATE term SET is_active = ? WHERE is_active = ?`, false, true); err != nil {
		return fmt.Errorf("deactivate terms: %w", err)
	}

	err := execOne(ctx, tx, fmt.Errorf("term %s: %w", termID, models.ErrNotFound),
		`UPDATE term SET is_active = ? WHERE id = ?`, true, termID)
	if err != nil {
		return err
	}

	var active int
	if err := get(ctx, tx, &active, `SELECT COUNT(*) FROM term WHERE is_active = ?`, true); err != nil {
		return fmt.Errorf("count active terms: %w", err)
	}
	if active != 1 {
		return fmt.Errorf("%d active terms after activation: %w", active, models.ErrDataIntegrity)
	}
	return nil
}
