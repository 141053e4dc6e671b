package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSQLiteFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "board.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "2m")
	t.Setenv("ORG_DOMAIN", "example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "tasks", cfg.Store.Table)
	assert.Equal(t, "board.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.CookieTTL)
	assert.Equal(t, "authToken", cfg.Session.CookieName)
	assert.Equal(t, "example.org", cfg.App.OrgDomain)
	assert.Equal(t, 30*time.Minute, cfg.Session.BoardIdleTTL)
	assert.Equal(t, 1000, cfg.Session.MaxBoards)
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadRestRequiresBackend(t *testing.T) {
	t.Setenv("STORE_DRIVER", "rest")
	t.Setenv("SUPABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "SUPABASE_URL")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Store:    StoreConfig{Driver: "postgres", Table: "tasks"},
			Database: DatabaseConfig{Host: "localhost", Name: "flowboard"},
			Session:  SessionConfig{Cache: "redis"},
			JWT:      JWTConfig{Secret: "x"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, "unknown store driver"},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "JWT secret"},
		{"unknown cache", func(c *Config) { c.Session.Cache = "disk" }, "unknown session cache"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server port"},
		{"negative board ttl", func(c *Config) { c.Session.BoardIdleTTL = -time.Second }, "board idle TTL"},
		{"negative max boards", func(c *Config) { c.Session.MaxBoards = -1 }, "max boards"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestAddresses(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.GetAddr())

	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.GetDSN())
}
