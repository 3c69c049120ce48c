// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/danielhkuo/petitions/db"
	"github.com/joho/godotenv"
)

const (
	DefaultPort      = 4941
	DefaultImageDir  = "./storage/images"
	DefaultSQLiteDSN = "./storage/petitions.db"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType db.Dialect
	ImageDir     string
	LogLevel     slog.Level
	EnvFile      string
}

// ParseFlags reads configuration from CLI flags, then the environment, then
// an optional .env file. Earlier sources win.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var dbType, logLevel string

	fset := flag.NewFlagSet("petitions", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fset.StringVar(&dbType, "t", "", "Database type (sqlite or postgres)")

	fset.StringVar(&cfg.ImageDir, "images", "", "Directory for uploaded images")
	fset.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fset.StringVar(&cfg.EnvFile, "env", ".env", "Optional dotenv file")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
	}

	// Fall back to environment variables
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

	if dbType == "" {
		dbType = os.Getenv("DATABASE_TYPE")
		if dbType == "" {
			dbType = string(db.SQLite)
		}
	}
	dialect, err := db.ParseDialect(strings.ToLower(dbType))
	if err != nil {
		return Config{}, err
	}
	cfg.DatabaseType = dialect

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != db.SQLite {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultSQLiteDSN
	}

	if cfg.ImageDir == "" {
		cfg.ImageDir = os.Getenv("IMAGE_DIR")
		if cfg.ImageDir == "" {
			cfg.ImageDir = DefaultImageDir
		}
	}

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
	}
	if logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return Config{}, fmt.Errorf("invalid log level %q", logLevel)
		}
	}

	return cfg, nil
}
