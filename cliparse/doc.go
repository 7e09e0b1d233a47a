// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse loads layered configuration.

# Layers

Load starts from Defaults, then applies an optional YAML file and then
environment variables:

	cfg, err := cliparse.Load(configPath)
	// apply command-line overrides
	err = cfg.Validate()

The YAML file is the path argument or CONFIG_FILE. Empty environment
variables are ignored.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL URL or SQLite path (required)
  - DatabaseType: postgres or sqlite (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - LogLevel: debug, info, warn or error (default: info)
  - LogFormat: text or json (default: text)
  - MaxUploadMB: Weight table upload limit (default: 10)

# Environment Variables

	PORT           → port
	DATABASE_URL   → database_url
	DATABASE_TYPE  → database_type
	ADMIN_KEY_SALT → admin_key_salt
	LOG_LEVEL      → log_level
	LOG_FORMAT     → log_format
	MAX_UPLOAD_MB  → max_upload_mb

# Validation

Validate wraps every failure in ErrInvalidConfig:

  - port within 1-65535
  - database URL present and type known
  - admin key salt present
  - log format text or json
  - positive upload limit
*/
package cliparse
