package cliparse

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DefaultPort         = 3318
	DefaultDatabaseURL  = "file:electiond.db"
	DefaultDatabaseType = "sqlite"
	DefaultTickInterval = 30 * time.Second
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKey     string
	IPHashSalt   string
	TickInterval time.Duration
	LogLevel     string
	EnvFile      string
}

// BindFlags registers every setting on fs. Values left at their zero value
// are filled from the environment by Resolve.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	// Network config (can be CLI args or env)
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Admin API key (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "Salt for hashing client IPs (prefer env)")

	fs.DurationVar(&cfg.TickInterval, "tick-interval", 0, "Election lifecycle scheduler interval")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
}

// ParseFlags parses args and resolves the configuration
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("electiond", pflag.ContinueOnError)
	BindFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return Resolve(cfg)
}

// Resolve loads the dotenv file, falls back to environment variables for
// anything not set on the command line, applies defaults, and validates.
func Resolve(cfg Config) (Config, error) {
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
		}
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = DefaultDatabaseURL
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DefaultDatabaseType
		}
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.TickInterval == 0 {
		if s := os.Getenv("TICK_INTERVAL"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid TICK_INTERVAL env variable")
			}
			cfg.TickInterval = d
		} else {
			cfg.TickInterval = DefaultTickInterval
		}
	}
	if cfg.TickInterval < time.Second {
		return Config{}, errors.New("tick interval must be at least 1s")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}

	// Secrets - MUST be provided
	if cfg.AdminKey == "" {
		cfg.AdminKey = os.Getenv("ADMIN_KEY")
	}
	if cfg.AdminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}

	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	return cfg, nil
}

// ParseLevel maps a level name to a slog level; empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
