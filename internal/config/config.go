package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	StoreDriver             string
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	DBMaxConnLifetime       time.Duration
	DBMaxConnIdleTime       time.Duration
	DBHealthCheckPeriod     time.Duration
	AccessTokenSecret       string
	RefreshTokenSecret      string
	AccessTokenLife         time.Duration
	RefreshTokenLife        time.Duration
	BcryptCost              int
	CORSOrigins             []string
	LogLevel                string
	LogFormat               string
	SeedUserEmail           string
	SeedUserPassword        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	maxConns, err := getInt32("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getInt32("DB_MIN_CONNS", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 15*time.Second),
		StoreDriver:             strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              maxConns,
		DBMinConns:              minConns,
		DBMaxConnLifetime:       getDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		DBMaxConnIdleTime:       getDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		DBHealthCheckPeriod:     getDuration("DB_HEALTH_CHECK_PERIOD", 30*time.Second),
		AccessTokenSecret:       strings.TrimSpace(os.Getenv("JWT_ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret:      strings.TrimSpace(os.Getenv("JWT_REFRESH_TOKEN_SECRET")),
		AccessTokenLife:         getDuration("JWT_ACCESS_TOKEN_LIFE", 15*time.Minute),
		RefreshTokenLife:        getDuration("JWT_REFRESH_TOKEN_LIFE", 168*time.Hour),
		BcryptCost:              getInt("BCRYPT_COST", bcrypt.DefaultCost),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "pretty"),
		SeedUserEmail:           strings.TrimSpace(os.Getenv("SEED_USER_EMAIL")),
		SeedUserPassword:        os.Getenv("SEED_USER_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("JWT_ACCESS_TOKEN_SECRET is required")
	}

	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("JWT_REFRESH_TOKEN_SECRET is required")
	}

	// A shared secret would let refresh tokens pass as access tokens.
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("JWT_ACCESS_TOKEN_SECRET and JWT_REFRESH_TOKEN_SECRET must differ")
	}

	if c.AccessTokenLife <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_LIFE must be positive")
	}

	if c.RefreshTokenLife < c.AccessTokenLife {
		return fmt.Errorf("JWT_REFRESH_TOKEN_LIFE must not be shorter than JWT_ACCESS_TOKEN_LIFE")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store driver")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS are out of range")
		}
		if c.DBMaxConnLifetime < 0 || c.DBMaxConnIdleTime < 0 || c.DBHealthCheckPeriod < 0 {
			return fmt.Errorf("DB pool durations cannot be negative")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if (c.SeedUserEmail == "") != (c.SeedUserPassword == "") {
		return fmt.Errorf("SEED_USER_EMAIL and SEED_USER_PASSWORD must be set together")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

// getInt32 fails instead of falling back so an out-of-range pool size is not
// silently replaced.
func getInt32(key string, fallback int32) (int32, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a 32-bit integer: %w", key, err)
	}

	return int32(v), nil
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
