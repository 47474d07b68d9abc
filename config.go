package blogvault

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Backend names accepted by Config.Backend.
const (
	BackendBBolt  = "bbolt"
	BackendSQLite = "sqlite"
)

// Config configures the blogvault server binary. Values come from an optional
// TOML file, overridden by BLOGVAULT_* environment variables. A .env file in
// the working directory is loaded first if present.
type Config struct {
	Addr            string   `toml:"addr"`               // Addr is the HTTP listen address
	DataDir         string   `toml:"data_dir"`           // DataDir is where the repository stores its database
	Backend         string   `toml:"backend"`            // Backend is bbolt or sqlite
	AdminPassword   string   `toml:"admin_password"`     // AdminPassword guards mutating API routes; empty disables them
	SeedDir         string   `toml:"seed_dir"`           // SeedDir is an optional directory of markdown files to seed an empty store
	CORSOrigins     []string `toml:"cors_origins"`       // CORSOrigins is the list of allowed CORS origins
	CoverMaxAgeDays int      `toml:"cover_max_age_days"` // CoverMaxAgeDays is the eviction age for the maintenance endpoint
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		DataDir:         "data",
		Backend:         BackendBBolt,
		CoverMaxAgeDays: 30,
	}
}

// LoadConfig loads the configuration from the TOML file at path (skipped when
// path is empty) and applies environment overrides.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("BLOGVAULT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("BLOGVAULT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BLOGVAULT_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("BLOGVAULT_ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("BLOGVAULT_SEED_DIR"); v != "" {
		cfg.SeedDir = v
	}
	if v := os.Getenv("BLOGVAULT_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("BLOGVAULT_COVER_MAX_AGE_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BLOGVAULT_COVER_MAX_AGE_DAYS: %w", err)
		}
		cfg.CoverMaxAgeDays = days
	}

	switch cfg.Backend {
	case BackendBBolt, BackendSQLite:
	default:
		return Config{}, fmt.Errorf("unknown backend %q (expected %s or %s)", cfg.Backend, BackendBBolt, BackendSQLite)
	}

	return cfg, nil
}

func splitAndTrim(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
