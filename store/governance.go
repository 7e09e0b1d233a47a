// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/committee-roster/models"
)

type governanceRow struct {
	RequiredPartyCode            sql.NullString `db:"required_party_code"`
	MaxSeatsPerLted              int            `db:"max_seats_per_lted"`
	RequireAssemblyDistrictMatch bool           `db:"require_assembly_district_match"`
	NonOverridableReasons        string         `db:"non_overridable_reasons"`
}

// GetGovernanceConfig reads the singleton. Until an admin seeds it the
// defaults from models.DefaultGovernanceConfig apply.
func GetGovernanceConfig(ctx context.Context, q Queryer) (models.GovernanceConfig, error) {
	var row governanceRow
	err := get(ctx, q, &row, `
		SELECT required_party_code, max_seats_per_lted, require_assembly_district_match, non_overridable_reasons
		FROM governance_config WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultGovernanceConfig(), nil
	}
	if err != nil {
		return models.GovernanceConfig{}, fmt.Errorf("get governance config: %w", err)
	}

	reasons, err := models.ParseReasons(row.NonOverridableReasons)
	if err != nil {
		return models.GovernanceConfig{}, fmt.Errorf("governance config: %w", err)
	}

	return models.GovernanceConfig{
		RequiredPartyCode:            row.RequiredPartyCode.String,
		MaxSeatsPerLted:              row.MaxSeatsPerLted,
		RequireAssemblyDistrictMatch: row.RequireAssemblyDistrictMatch,
		NonOverridableReasons:        reasons,
	}, nil
}

// SaveGovernanceConfig upserts the singleton.
func SaveGovernanceConfig(ctx context.Context, q Queryer, cfg models.GovernanceConfig) error {
	if cfg.MaxSeatsPerLted <= 0 {
		return fmt.Errorf("%w: max_seats_per_lted must be positive", models.ErrValidation)
	}
	_, err := exec(ctx, q, `
		INSERT INTO governance_config (id, required_party_code, max_seats_per_lted,
			require_assembly_district_match, non_overridable_reasons, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			required_party_code = excluded.required_party_code,
			max_seats_per_lted = excluded.max_seats_per_lted,
			require_assembly_district_match = excluded.require_assembly_district_match,
			non_overridable_reasons = excluded.non_overridable_reasons,
			updated_at = excluded.updated_at
	`, nullString(cfg.RequiredPartyCode), cfg.MaxSeatsPerLted, cfg.RequireAssemblyDistrictMatch,
		models.FormatReasons(cfg.NonOverridableReasons), time.Now())
	if err != nil {
		return fmt.Errorf("save governance config: %w", err)
	}
	return nil
}
