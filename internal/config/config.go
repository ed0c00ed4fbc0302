package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendLRU    = "lru"
	CacheBackendRedis  = "redis"
)

type UpstreamConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

type CacheConfig struct {
	Backend      string
	AerodromeTTL time.Duration
	LRUSize      int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

// Enabled reports whether composition audits should be persisted.
func (d DatabaseConfig) Enabled() bool {
	return d.DSN != ""
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type Config struct {
	AppEnv      string
	Port        string
	LogFile     string
	CORSOrigins []string
	FanoutLimit int

	Upstream  UpstreamConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
}

// IsDevelopment reports whether internal error details may be exposed to
// callers. Only an explicit APP_ENV=development enables it.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, collecting every invalid
// variable into a single error.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := &parser{getenv: getenv}

	cfg := &Config{
		AppEnv:      strings.ToLower(p.str("APP_ENV", EnvProduction)),
		Port:        p.str("PORT", "8080"),
		LogFile:     p.str("LOG_FILE", ""),
		CORSOrigins: p.list("CORS_ALLOWED_ORIGINS", []string{"https://*", "http://localhost:3000"}),
		FanoutLimit: p.positiveInt("FANOUT_LIMIT", 7),
		Upstream: UpstreamConfig{
			BaseURL:        strings.TrimRight(p.str("UPSTREAM_BASE_URL", "http://localhost:3001/api"), "/"),
			Timeout:        p.duration("HTTP_TIMEOUT", 10*time.Second),
			MaxRetries:     p.nonNegativeInt("HTTP_MAX_RETRIES", 2),
			RetryBaseDelay: p.duration("HTTP_RETRY_BASE_DELAY", 200*time.Millisecond),
			RetryMaxDelay:  p.duration("HTTP_RETRY_MAX_DELAY", 5*time.Second),
		},
		Cache: CacheConfig{
			Backend:      strings.ToLower(p.str("CACHE_BACKEND", CacheBackendMemory)),
			AerodromeTTL: p.duration("AERODROME_CACHE_TTL", 10*time.Minute),
			LRUSize:      p.positiveInt("CACHE_LRU_SIZE", 1024),
		},
		Redis: RedisConfig{
			Host:     p.str("REDIS_HOST", "localhost"),
			Port:     p.str("REDIS_PORT", "6379"),
			Password: p.str("REDIS_PASSWORD", ""),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(p.str("DB_DRIVER", "postgres")),
			DSN:    p.str("DB_DSN", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   p.positiveFloat("RATE_LIMIT_RPS", 5),
			Burst: p.positiveInt("RATE_LIMIT_BURST", 10),
		},
	}

	switch cfg.Cache.Backend {
	case CacheBackendMemory, CacheBackendLRU, CacheBackendRedis:
	default:
		p.fail("CACHE_BACKEND", cfg.Cache.Backend, "must be one of memory, lru, redis")
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		p.fail("DB_DRIVER", cfg.Database.Driver, "must be postgres or sqlite")
	}
	if cfg.Upstream.BaseURL == "" {
		p.fail("UPSTREAM_BASE_URL", "", "must not be empty")
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return cfg, nil
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) fail(key, val, reason string) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s=%q: %s", key, val, reason))
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) list(key string, def []string) []string {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		p.fail(key, v, "must be a non-negative duration such as 250ms or 10s")
		return def
	}
	return d
}

func (p *parser) int(key string, def, min int, reason string) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		p.fail(key, v, reason)
		return def
	}
	return n
}

func (p *parser) positiveInt(key string, def int) int {
	return p.int(key, def, 1, "must be a positive integer")
}

func (p *parser) nonNegativeInt(key string, def int) int {
	return p.int(key, def, 0, "must be a non-negative integer")
}

func (p *parser) positiveFloat(key string, def float64) float64 {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		p.fail(key, v, "must be a positive number")
		return def
	}
	return f
}
