// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

// Error kinds shared by the store and the engines. Wrap with fmt.Errorf("%w")
// and match with errors.Is; middleware.WriteError maps them to HTTP codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrDataIntegrity     = errors.New("data integrity conflict")
	ErrNoActiveTerm      = errors.New("no active term")
	ErrInvalidTransition = errors.New("invalid flag status transition")
	ErrConflict          = errors.New("conflict")
)
