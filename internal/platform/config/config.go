package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string
	HTTPPort      string
	PostgresDSN   string
	StorageDriver string
	AutoMigrate   bool

	JWTSecret []byte
	JWTIssuer string
	JWTTTL    time.Duration

	RootUsername string
	RootPassword string

	UserPageSize int
	ImageDir     string
	VoteTimeout  time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// Load reads the environment. When CONFIG_FILE names an ini file, its
// top-level keys fill in variables the environment leaves unset.
func Load() (Config, error) {
	src := source{file: map[string]string{}}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		file, err := ini.Load(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
		src.file = file.Section("").KeysHash()
	}
	return src.load()
}

func (src source) load() (Config, error) {
	cfg := Config{
		ServiceName:   src.str("SERVICE_NAME", "herculaneum-transcriptor"),
		HTTPPort:      src.str("HTTP_PORT", "8080"),
		PostgresDSN:   src.str("POSTGRES_DSN", ""),
		StorageDriver: strings.ToLower(src.str("STORAGE_DRIVER", StorageDriverPostgres)),
		AutoMigrate:   src.bool("AUTO_MIGRATE", true),
		JWTIssuer:     src.str("JWT_ISSUER", "herculaneum-transcriptor"),
		RootUsername:  src.str("ROOT_USERNAME", ""),
		RootPassword:  src.str("ROOT_PASSWORD", ""),
		ImageDir:      src.str("IMAGE_DIR", "data/images"),
		LogFormat:     strings.ToLower(src.str("LOG_FORMAT", "text")),
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return Config{}, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q",
			StorageDriverPostgres, StorageDriverMemory, cfg.StorageDriver)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	var err error
	if cfg.JWTTTL, err = src.duration("JWT_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.VoteTimeout, err = src.duration("VOTE_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.UserPageSize, err = src.int("USER_PAGE_SIZE", 20); err != nil {
		return Config{}, err
	}
	if cfg.UserPageSize <= 0 {
		return Config{}, fmt.Errorf("USER_PAGE_SIZE must be positive, got %d", cfg.UserPageSize)
	}
	if raw := src.str("JWT_SECRET", ""); raw != "" {
		if cfg.JWTSecret, err = base64.StdEncoding.DecodeString(raw); err != nil {
			return Config{}, fmt.Errorf("JWT_SECRET must be base64: %w", err)
		}
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(src.str("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

type source struct {
	file map[string]string
}

func (src source) lookup(name string) string {
	if value, ok := os.LookupEnv(name); ok {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(src.file[name])
}

func (src source) str(name string, fallback string) string {
	if value := src.lookup(name); value != "" {
		return value
	}
	return fallback
}

func (src source) bool(name string, fallback bool) bool {
	return parseBool(src.lookup(name), fallback)
}

func (src source) duration(name string, fallback time.Duration) (time.Duration, error) {
	raw := src.lookup(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", name, raw)
	}
	return value, nil
}

func (src source) int(name string, fallback int) (int, error) {
	raw := src.lookup(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return value, nil
}

func parseBool(raw string, fallback bool) bool {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
