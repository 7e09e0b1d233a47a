// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// Request headers carrying operator identity
const (
	HeaderActor    = "X-Actor"
	HeaderAdminKey = "X-Admin-Key"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrMissingActor    = errors.New("missing actor")
)

// GenerateAdminKey creates an HMAC-based admin key for an operator.
// This is deterministic and verifiable
func GenerateAdminKey(actor, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(actor))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the actor
func ValidateAdminKey(actor, adminKey, salt string) error {
	expected := GenerateAdminKey(actor, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// ActorFromRequest returns the authenticated operator name from the
// X-Actor / X-Admin-Key header pair.
func ActorFromRequest(r *http.Request, salt string) (string, error) {
	actor := strings.TrimSpace(r.Header.Get(HeaderActor))
	if actor == "" {
		return "", ErrMissingActor
	}
	key := r.Header.Get(HeaderAdminKey)
	if key == "" {
		return "", ErrInvalidAdminKey
	}
	if err := ValidateAdminKey(actor, key, salt); err != nil {
		return "", err
	}
	return actor, nil
}
