// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/danielhkuo/committee-roster/models"
)

const flagColumns = `id, membership_id, voter_record_id, committee_list_id, term_id, reason, status,
	details, created_at, reviewed_at, reviewed_by, review_notes`

// Default and maximum page sizes for ListFlags
const (
	DefaultFlagPageSize = 50
	MaxFlagPageSize     = 500
)

// InsertPendingFlag creates a PENDING flag unless one already exists for the
// same membership and reason. inserted reports whether a row was written.
func InsertPendingFlag(ctx context.Context, q Queryer, f models.EligibilityFlag) (inserted bool, err error) {
	res, err := exec(ctx, q, `
		INSERT INTO eligibility_flag (id, membership_id, voter_record_id, committee_list_id, term_id,
			reason, status, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (membership_id, reason) WHERE status = 'PENDING' DO NOTHING
	`, f.ID, f.MembershipID, f.VoterRecordID, f.CommitteeListID, f.TermID,
		f.Reason.String(), models.FlagPending.String(), f.Details, f.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n == 1, nil
}

// PendingFlagsForTerm returns every PENDING flag of a term.
func PendingFlagsForTerm(ctx context.Context, q Queryer, termID string) ([]models.EligibilityFlag, error) {
	var out []models.EligibilityFlag
	err := selectAll(ctx, q, &out, `
		SELECT `+flagColumns+` FROM eligibility_flag
		WHERE term_id = ? AND status = ?
		ORDER BY created_at, id
	`, termID, models.FlagPending.String())
	if err != nil {
		return nil, fmt.Errorf("list pending flags: %w", err)
	}
	return out, nil
}

// GetFlag returns a flag by ID.
func GetFlag(ctx context.Context, q Queryer, id string) (models.EligibilityFlag, error) {
	var f models.EligibilityFlag
	err := get(ctx, q, &f, `SELECT `+flagColumns+` FROM eligibility_flag WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EligibilityFlag{}, fmt.Errorf("flag %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.EligibilityFlag{}, fmt.Errorf("get flag: %w", err)
	}
	return f, nil
}

// ReviewFlag moves a PENDING flag to a terminal status. The update is
// conditional on the flag still being PENDING, so two reviewers racing on
// the same flag cannot both succeed.
func ReviewFlag(ctx context.Context, q Queryer, id string, next models.FlagStatus, reviewer, notes string, now time.Time) error {
	current, err := GetFlag(ctx, q, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(next) {
		return fmt.Errorf("flag %s is %s, cannot move to %s: %w",
			id, current.Status, next, models.ErrInvalidTransition)
	}

	err = execOne(ctx, q, fmt.Errorf("flag %s was reviewed concurrently: %w", id, models.ErrInvalidTransition), `
		UPDATE eligibility_flag
		SET status = ?, reviewed_at = ?, reviewed_by = ?, review_notes = ?
		WHERE id = ? AND status = ?
	`, next.String(), now, reviewer, nullString(notes), id, models.FlagPending.String())
	if err != nil && !errors.Is(err, models.ErrInvalidTransition) {
		return fmt.Errorf("review flag: %w", err)
	}
	return err
}

// ListFlags returns one page of flags matching the filter, newest first.
func ListFlags(ctx context.Context, q Queryer, filter models.FlagFilter) (models.FlagPage, error) {
	var where []string
	var args []any
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.Reason != nil {
		where = append(where, "reason = ?")
		args = append(args, filter.Reason.String())
	}
	if filter.TermID != "" {
		where = append(where, "term_id = ?")
		args = append(args, filter.TermID)
	}
	if filter.CommitteeListID != "" {
		where = append(where, "committee_list_id = ?")
		args = append(args, filter.CommitteeListID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = DefaultFlagPageSize
	}
	if size > MaxFlagPageSize {
		size = MaxFlagPageSize
	}
	// Keeps the OFFSET within a 32-bit integer
	if maxPage := math.MaxInt32/size + 1; page > maxPage {
		page = maxPage
	}

	var total int
	if err := get(ctx, q, &total, `SELECT COUNT(*) FROM eligibility_flag`+clause, args...); err != nil {
		return models.FlagPage{}, fmt.Errorf("count flags: %w", err)
	}

	flags := []models.EligibilityFlag{}
	pageArgs := append(append([]any{}, args...), size, (page-1)*size)
	err := selectAll(ctx, q, &flags, `SELECT `+flagColumns+` FROM eligibility_flag`+clause+
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return models.FlagPage{}, fmt.Errorf("list flags: %w", err)
	}

	return models.FlagPage{Flags: flags, Total: total, Page: page, PageSize: size}, nil
}
