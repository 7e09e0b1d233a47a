// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package weights

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/store"
)

// ReadWeightTable reads LTED/weight rows from an .xlsx or .csv file. The
// first sheet of a workbook is used. A header row naming LTED and Weight
// selects the columns; without one the first two columns are used.
func ReadWeightTable(r io.Reader, filename string) ([]models.WeightRow, error) {
	var records [][]string

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: open workbook: %v", models.ErrValidation, err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", models.ErrValidation)
		}
		records, err = f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %s: %v", models.ErrValidation, sheets[0], err)
		}
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		var err error
		records, err = cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %v", models.ErrValidation, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q (want .xlsx or .csv)", models.ErrValidation, filepath.Ext(filename))
	}

	return rowsFromRecords(records), nil
}

func rowsFromRecords(records [][]string) []models.WeightRow {
	ltedCol, weightCol, start := 0, 1, 0
	if len(records) > 0 {
		if l, w, ok := headerColumns(records[0]); ok {
			ltedCol, weightCol, start = l, w, 1
		}
	}

	var rows []models.WeightRow
	for i := start; i < len(records); i++ {
		rec := records[i]
		row := models.WeightRow{Line: i + 1}
		if ltedCol < len(rec) {
			row.LTED = strings.TrimSpace(rec[ltedCol])
		}
		if weightCol < len(rec) {
			row.Weight = strings.TrimSpace(rec[weightCol])
		}
		if row.LTED == "" && row.Weight == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func headerColumns(rec []string) (ltedCol, weightCol int, ok bool) {
	ltedCol, weightCol = -1, -1
	for i, cell := range rec {
		name := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case ltedCol < 0 && strings.Contains(name, "lted"):
			ltedCol = i
		case weightCol < 0 && strings.Contains(name, "weight"):
			weightCol = i
		}
	}
	return ltedCol, weightCol, ltedCol >= 0 && weightCol >= 0
}

// ImportWeightTable applies a weight table to the committees of a term (the
// active term when termID is empty). Each row commits on its own: the weight
// lands on every committee sharing the LTED code and each is recomputed, or
// none of them change.
func (s *Service) ImportWeightTable(ctx context.Context, termID string, rows []models.WeightRow) (models.ImportReport, error) {
	termID, err := store.ResolveTermID(ctx, s.db, termID)
	if err != nil {
		return models.ImportReport{}, err
	}

	report := models.ImportReport{TermID: termID}
	rowError := func(row models.WeightRow, err error) {
		report.Errors = append(report.Errors, models.ImportRowError{Line: row.Line, LTED: row.LTED, Error: err.Error()})
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ld, ed, err := ParseLTED(row.LTED)
		if err != nil {
			report.SkippedInvalid++
			rowError(row, err)
			continue
		}
		weight, err := ParseWeight(row.Weight)
		if err != nil {
			report.SkippedInvalid++
			rowError(row, err)
			continue
		}

		committees, err := store.FindCommitteesByLTED(ctx, s.db, termID, ld, ed)
		if err != nil {
			return report, err
		}
		if len(committees) == 0 {
			report.SkippedNoCommittee++
			continue
		}

		err = store.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
			for _, c := range committees {
				if err := store.SetLtedWeight(ctx, tx, c.ID, &weight, s.now()); err != nil {
					return err
				}
				if _, err := s.RecomputeSeatWeights(ctx, c.ID, tx); err != nil {
					return fmt.Errorf("committee %s: %w", c.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			report.Failed++
			rowError(row, err)
			slog.Warn("weight row failed", "line", row.Line, "lted", row.LTED, "error", err)
			continue
		}

		report.Matched++
		report.CommitteesUpdated += len(committees)
	}

	s.metrics.RecordImport(report)
	slog.Info("weight table imported",
		"term_id", termID,
		"matched", report.Matched,
		"committees_updated", report.CommitteesUpdated,
		"skipped_no_committee", report.SkippedNoCommittee,
		"skipped_invalid", report.SkippedInvalid,
		"failed", report.Failed,
	)
	return report, nil
}
