// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth identifies the operator behind a mutating request.

# Admin Keys

Admin keys use HMAC-SHA256 over the operator name:

	adminKey := auth.GenerateAdminKey("clerk", salt)
	err := auth.ValidateAdminKey("clerk", adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same actor and salt always produce the same key, so nothing is stored.

# Requests

Mutating endpoints send the pair as headers:

	X-Actor: clerk
	X-Admin-Key: <key>

ActorFromRequest validates the pair and returns the actor name, which is
recorded as the reviewer on flag decisions and logged on roster changes.
*/
package auth
