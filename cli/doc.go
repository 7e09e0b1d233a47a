// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cli defines the committee-roster command tree.

	committee-roster serve
	committee-roster migrate
	committee-roster flags run [--term id]
	committee-roster weights import <file> [--term id]
	committee-roster term create <name>
	committee-roster term activate <id> [--actor name]

Persistent flags (--config, --port, --database-url, --database-type,
--admin-salt, --log-level) override file and environment configuration.
Each command installs a slog default logger from the resolved config.
*/
package cli
