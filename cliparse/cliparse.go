package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/danielhkuo/committee-roster/db"
)

// ErrInvalidConfig wraps every validation failure from Load.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port         int    `koanf:"port"`
	DatabaseURL  string `koanf:"database_url"`
	DatabaseType string `koanf:"database_type"`
	AdminKeySalt string `koanf:"admin_key_salt"`
	LogLevel     string `koanf:"log_level"`
	LogFormat    string `koanf:"log_format"`
	MaxUploadMB  int    `koanf:"max_upload_mb"`
}

// Defaults returns the configuration before any file or env layer.
func Defaults() Config {
	return Config{
		Port:         3318,
		DatabaseType: db.TypeSQLite,
		LogLevel:     "info",
		LogFormat:    "text",
		MaxUploadMB:  10,
	}
}

// Environment variables read by Load
var envKeys = map[string]string{
	"PORT":           "port",
	"DATABASE_URL":   "database_url",
	"DATABASE_TYPE":  "database_type",
	"ADMIN_KEY_SALT": "admin_key_salt",
	"LOG_LEVEL":      "log_level",
	"LOG_FORMAT":     "log_format",
	"MAX_UPLOAD_MB":  "max_upload_mb",
}

// Load layers defaults, the YAML file at path (or CONFIG_FILE when path is
// empty) and environment variables, lowest precedence first. The result is
// not validated; callers apply flag overrides and then call Validate.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Empty variables are skipped so they cannot blank out a file value.
	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return envKeys[strings.ToUpper(key)], value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: database URL required (use --database-url or DATABASE_URL env)", ErrInvalidConfig)
	}
	switch c.DatabaseType {
	case db.TypePostgres, db.TypeSQLite:
	default:
		return fmt.Errorf("%w: database type must be %q or %q, got %q",
			ErrInvalidConfig, db.TypePostgres, db.TypeSQLite, c.DatabaseType)
	}
	if c.AdminKeySalt == "" {
		return fmt.Errorf("%w: ADMIN_KEY_SALT required", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: max upload size must be positive", ErrInvalidConfig)
	}
	return nil
}

// MaxUploadBytes is the multipart body limit for weight table imports.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
