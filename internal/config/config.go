package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tazhibayda/mylist-service/internal/security"
)

type Config struct {
	Port       string
	Env        string
	Production bool

	StoreBackend string // "mongo" | "memory"
	MongoURI     string
	MongoDB      string

	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
	MaxProfiles   int

	RedisAddr       string
	RateLimitPerMin int

	RabbitURL      string
	RabbitExchange string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	OAuthStateSecret   string

	DDEnabled bool
	DDService string
}

// Built-in secrets, usable only outside production.
const (
	devAccessSecret  = "dev_access_secret"
	devRefreshSecret = "dev_refresh_secret"
	devStateSecret   = "dev_state_secret"
)

func Load() Config {
	env := strings.ToLower(getenv("APP_ENV", "development"))
	return Config{
		Port:       getenv("APP_PORT", "8080"),
		Env:        env,
		Production: env == "production",

		StoreBackend: strings.ToLower(getenv("STORE_BACKEND", "mongo")),
		MongoURI:     getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getenv("MONGO_DB", "mylist"),

		AccessSecret:  getenv("JWT_ACCESS_SECRET", devAccessSecret),
		RefreshSecret: getenv("JWT_REFRESH_SECRET", devRefreshSecret),
		AccessTTL:     duration(getenv("ACCESS_TTL", ""), security.DefaultAccessTTL),
		RefreshTTL:    duration(getenv("REFRESH_TTL", ""), security.DefaultRefreshTTL),
		BcryptCost:    atoi(getenv("BCRYPT_COST", ""), security.DefaultBcryptCost),
		MaxProfiles:   atoi(getenv("MAX_PROFILES", ""), 4),

		RedisAddr:       getenv("REDIS_ADDR", ""),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", ""), 10),

		RabbitURL:      getenv("RABBIT_URL", ""),
		RabbitExchange: getenv("RABBIT_EXCHANGE", "mylist.events"),

		GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getenv("GOOGLE_REDIRECT_URI", ""),
		OAuthStateSecret:   getenv("OAUTH_STATE_SECRET", devStateSecret),

		DDEnabled: getenv("DD_ENABLED", "") == "true",
		DDService: getenv("DD_SERVICE", "mylist-service"),
	}
}

// Validate rejects settings the process must not start with. In production
// every signing secret has to be set explicitly.
func (c Config) Validate() error {
	if err := c.Tokens().Validate(); err != nil {
		return err
	}
	if !c.Production {
		return nil
	}
	if c.AccessSecret == devAccessSecret || c.RefreshSecret == devRefreshSecret {
		return errors.New("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set in production")
	}
	if c.GoogleEnabled() && c.OAuthStateSecret == devStateSecret {
		return errors.New("config: OAUTH_STATE_SECRET must be set in production when Google sign-in is enabled")
	}
	return nil
}

func (c Config) Tokens() security.TokenConfig {
	return security.TokenConfig{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
	}
}

func (c Config) GoogleEnabled() bool { return c.GoogleClientID != "" }

func atoi(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
