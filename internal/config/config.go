package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/movienight/movienight/internal/validate"
)

// Config is an application configuration struct.
type Config struct {
	AppVersion string     `json:"app_version" validate:"required"`
	Mongo      *Mongo     `json:"mongo" validate:"required"`
	SQLite     *SQLite    `json:"sqlite" validate:"required"`
	Sessions   *Sessions  `json:"sessions" validate:"required"`
	Auth       *Auth      `json:"auth" validate:"required"`
	Gate       *Gate      `json:"gate" validate:"required"`
	Migration  *Migration `json:"migration" validate:"required"`
	Cache      *Cache     `json:"cache" validate:"required"`
	Sentry     string     `json:"sentry"`
}

// Mongo stores the account backend connection. Required.
type Mongo struct {
	URI      string `json:"uri" validate:"required"`
	Database string `json:"default_db" validate:"required"`
}

// SQLite is the guest bookmark database. ":memory:" keeps guest bookmarks for
// the lifetime of the process only.
type SQLite struct {
	Path string `json:"path" validate:"required"`
}

// Sessions stores session store configuration. Supported types: "memory", "redis". RedisURI is not required for in-memory storage.
type Sessions struct {
	Type     string `json:"type" validate:"oneof=memory redis"`
	RedisURI string `json:"redis_uri" validate:"required_if=Type redis"`
}

// Auth holds the HS256 secret access tokens are signed with. AccessToken, when
// set, signs the user in on startup.
type Auth struct {
	JWTSecret          string `json:"jwt_secret" validate:"required"`
	AccessToken        string `json:"access_token"`
	SessionTTLHours    int    `json:"session_ttl_hours" validate:"gte=1"`
	LookupCacheSeconds int    `json:"lookup_cache_seconds" validate:"gte=1"`
}

type Gate struct {
	RefreshIntervalMinutes int `json:"refresh_interval_minutes" validate:"gte=1"`
}

// Migration controls how guest bookmarks are copied into the account store on
// sign-in. Attempts counts the first try.
type Migration struct {
	Attempts uint `json:"attempts" validate:"gte=1,lte=10"`
	DelayMS  int  `json:"delay_ms" validate:"gte=0"`
}

// Cache controls the in-process cache in front of the account store.
type Cache struct {
	ExpirationMinutes int `json:"expiration_minutes" validate:"gte=1"`
	CleanupMinutes    int `json:"cleanup_minutes" validate:"gte=1"`
}

func Default() *Config {
	return &Config{
		AppVersion: "1.0.0",
		Mongo: &Mongo{
			URI:      "mongodb://localhost:27017",
			Database: "movienight",
		},
		SQLite:   &SQLite{Path: "bookmarks.db"},
		Sessions: &Sessions{Type: "memory"},
		Auth: &Auth{
			SessionTTLHours:    24 * 7,
			LookupCacheSeconds: 15,
		},
		Gate:      &Gate{RefreshIntervalMinutes: 30},
		Migration: &Migration{Attempts: 1},
		Cache: &Cache{
			ExpirationMinutes: 30,
			CleanupMinutes:    60,
		},
	}
}

// FromFile reads a JSON config on top of Default, applies environment
// overrides and validates the result.
func FromFile(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(file, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadEnv loads .env style files into the process environment. Missing files
// are skipped and variables that are already set win.
func LoadEnv(files ...string) error {
	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

// applyEnv overrides file values with non-empty environment variables.
// Sections missing from the file are left for Validate to report.
func (c *Config) applyEnv() {
	setEnv("APP_VERSION", &c.AppVersion)
	setEnv("SENTRY_DSN", &c.Sentry)

	if c.Mongo != nil {
		setEnv("MONGO_URI", &c.Mongo.URI)
		setEnv("MONGO_DB", &c.Mongo.Database)
	}

	if c.SQLite != nil {
		setEnv("SQLITE_PATH", &c.SQLite.Path)
	}

	if c.Sessions != nil && setEnv("REDIS_URI", &c.Sessions.RedisURI) {
		c.Sessions.Type = "redis"
	}

	if c.Auth != nil {
		setEnv("AUTH_JWT_SECRET", &c.Auth.JWTSecret)
		setEnv("ACCESS_TOKEN", &c.Auth.AccessToken)
	}

	if c.Migration != nil {
		if v, err := strconv.ParseUint(os.Getenv("MIGRATION_ATTEMPTS"), 10, 32); err == nil {
			c.Migration.Attempts = uint(v)
		}
	}
}

func setEnv(key string, dst *string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}

	*dst = v
	return true
}

func (c *Config) Validate() error {
	if errs := validate.Struct(c); len(errs) > 0 {
		joined := make([]error, 0, len(errs))
		for _, err := range errs {
			joined = append(joined, err)
		}

		return errors.Join(joined...)
	}

	return nil
}

func (a *Auth) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

func (a *Auth) LookupCache() time.Duration {
	return time.Duration(a.LookupCacheSeconds) * time.Second
}

func (g *Gate) Interval() time.Duration {
	return time.Duration(g.RefreshIntervalMinutes) * time.Minute
}

func (m *Migration) Delay() time.Duration {
	return time.Duration(m.DelayMS) * time.Millisecond
}

func (c *Cache) Expiration() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

func (c *Cache) Cleanup() time.Duration {
	return time.Duration(c.CleanupMinutes) * time.Minute
}
