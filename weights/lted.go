// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package weights

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danielhkuo/committee-roster/models"
)

// edDigits is the width of the election district suffix of an LTED code.
const edDigits = 3

// ParseLTED splits an LTED code into legislative and election district.
// The trailing three digits are the election district and the rest the
// legislative district: "04001" is LD 4, ED 1.
func ParseLTED(code string) (legDistrict, electionDistrict int, err error) {
	code = strings.TrimSpace(code)
	if len(code) <= edDigits {
		return 0, 0, fmt.Errorf("%w: lted code %q is too short", models.ErrValidation, code)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return 0, 0, fmt.Errorf("%w: lted code %q is not numeric", models.ErrValidation, code)
		}
	}

	split := len(code) - edDigits
	legDistrict, err = strconv.Atoi(code[:split])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: lted code %q: %v", models.ErrValidation, code, err)
	}
	electionDistrict, err = strconv.Atoi(code[split:])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: lted code %q: %v", models.ErrValidation, code, err)
	}
	if legDistrict <= 0 || electionDistrict <= 0 {
		return 0, 0, fmt.Errorf("%w: lted code %q has a zero district", models.ErrValidation, code)
	}
	return legDistrict, electionDistrict, nil
}

// ParseWeight parses a weight cell. Thousands separators are allowed;
// negative, blank and non-finite values are not.
func ParseWeight(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("%w: weight is blank", models.ErrValidation)
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: weight %q is not a number", models.ErrValidation, s)
	}
	if err := validWeight(w); err != nil {
		return 0, err
	}
	return w, nil
}
