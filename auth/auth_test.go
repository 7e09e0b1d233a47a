// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateAdminKey(t *testing.T) {
	tests := []struct {
		name  string
		actor string
		salt  string
	}{
		{"standard", "clerk@example.org", "secret-salt"},
		{"empty actor", "", "salt"},
		{"empty salt", "chair", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateAdminKey(tt.actor, tt.salt)

			if key == "" {
				t.Error("GenerateAdminKey() returned empty string")
			}

			// Should be deterministic
			key2 := GenerateAdminKey(tt.actor, tt.salt)
			if key != key2 {
				t.Error("GenerateAdminKey() is not deterministic")
			}

			if tt.actor != "" && tt.salt != "" {
				differentKey := GenerateAdminKey(tt.actor+"x", tt.salt)
				if key == differentKey {
					t.Error("GenerateAdminKey() produced same key for different actors")
				}
			}

			// Should be URL-safe (no padding)
			if strings.Contains(key, "=") {
				t.Error("GenerateAdminKey() contains padding characters")
			}
		})
	}
}

func TestValidateAdminKey(t *testing.T) {
	actor := "clerk"
	salt := "test-salt"
	validKey := GenerateAdminKey(actor, salt)

	tests := []struct {
		name     string
		actor    string
		adminKey string
		salt     string
		wantErr  bool
	}{
		{"valid key", actor, validKey, salt, false},
		{"wrong key", actor, "wrong-key", salt, true},
		{"wrong actor", "someone-else", validKey, salt, true},
		{"wrong salt", actor, validKey, "different-salt", true},
		{"empty key", actor, "", salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.actor, tt.adminKey, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != ErrInvalidAdminKey {
				t.Errorf("ValidateAdminKey() error = %v, want %v", err, ErrInvalidAdminKey)
			}
		})
	}
}

func TestActorFromRequest(t *testing.T) {
	salt := "test-salt"

	tests := []struct {
		name    string
		actor   string
		key     string
		want    string
		wantErr error
	}{
		{"valid", "clerk", GenerateAdminKey("clerk", salt), "clerk", nil},
		{"trimmed actor", "  clerk ", GenerateAdminKey("clerk", salt), "clerk", nil},
		{"missing actor", "", GenerateAdminKey("clerk", salt), "", ErrMissingActor},
		{"missing key", "clerk", "", "", ErrInvalidAdminKey},
		{"key for other actor", "clerk", GenerateAdminKey("chair", salt), "", ErrInvalidAdminKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/eligibility-flags/run", nil)
			if tt.actor != "" {
				req.Header.Set(HeaderActor, tt.actor)
			}
			if tt.key != "" {
				req.Header.Set(HeaderAdminKey, tt.key)
			}

			got, err := ActorFromRequest(req, salt)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ActorFromRequest() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ActorFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func BenchmarkGenerateAdminKey(b *testing.B) {
	actor := "clerk"
	salt := "test-salt"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenerateAdminKey(actor, salt)
	}
}
