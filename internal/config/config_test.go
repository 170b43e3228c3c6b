package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()

	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("STORE_DRIVER", "memory")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenLife)
	require.Equal(t, 168*time.Hour, cfg.RefreshTokenLife)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, int32(10), cfg.DBMaxConns)
	require.Equal(t, 30*time.Minute, cfg.DBMaxConnLifetime)
	require.Equal(t, 5*time.Minute, cfg.DBMaxConnIdleTime)
}

func TestLoadRejectsPoolSizeOutsideInt32(t *testing.T) {
	cases := map[string]string{
		"DB_MAX_CONNS": "4294967297",
		"DB_MIN_CONNS": "-2147483649",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			require.ErrorContains(t, err, key)
		})
	}

	t.Run("not a number", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_MAX_CONNS", "ten")

		_, err := Load()
		require.ErrorContains(t, err, "DB_MAX_CONNS")
	})
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_ACCESS_TOKEN_LIFE", "5m")
	t.Setenv("JWT_REFRESH_TOKEN_LIFE", "24h")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("DB_MAX_CONNS", "32")
	t.Setenv("DB_MAX_CONN_LIFETIME", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 5*time.Minute, cfg.AccessTokenLife)
	require.Equal(t, 24*time.Hour, cfg.RefreshTokenLife)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, 10, cfg.BcryptCost)
	require.Equal(t, int32(32), cfg.DBMaxConns)
	require.Equal(t, time.Hour, cfg.DBMaxConnLifetime)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerPort:         "8080",
			RequestTimeout:     time.Second,
			StoreDriver:        StoreDriverPostgres,
			DatabaseURL:        "postgres://localhost/auth",
			DBMaxConns:         4,
			DBMinConns:         1,
			AccessTokenSecret:  "a",
			RefreshTokenSecret: "r",
			AccessTokenLife:    time.Minute,
			RefreshTokenLife:   time.Hour,
			BcryptCost:         10,
		}
	}

	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"missing access secret":  func(c *Config) { c.AccessTokenSecret = "" },
		"missing refresh secret": func(c *Config) { c.RefreshTokenSecret = "" },
		"shared secret":          func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret },
		"zero access life":       func(c *Config) { c.AccessTokenLife = 0 },
		"refresh shorter":        func(c *Config) { c.RefreshTokenLife = time.Second },
		"missing database url":   func(c *Config) { c.DatabaseURL = "" },
		"unknown driver":         func(c *Config) { c.StoreDriver = "redis" },
		"bcrypt cost too high":   func(c *Config) { c.BcryptCost = 99 },
		"half seed user":         func(c *Config) { c.SeedUserEmail = "u@example.com" },
		"pool range":             func(c *Config) { c.DBMinConns = 10 },
		"negative idle time":     func(c *Config) { c.DBMaxConnIdleTime = -time.Second },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}

	t.Run("memory driver needs no database url", func(t *testing.T) {
		cfg := valid()
		cfg.StoreDriver = StoreDriverMemory
		cfg.DatabaseURL = ""
		require.NoError(t, cfg.Validate())
	})
}
