package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is loaded once at process start and passed by reference; handlers
// never read the environment directly.
type Config struct {
	AppEnv string
	Port   int

	// Postgres (pgxpool DSN)
	DBDSN          string
	MigrateOnStart bool

	// Bearer-token verification (must match the identity provider's signing config)
	JWTSecret string
	JWTIssuer string

	// Identity provider backend API
	IdentityAPIURL    string
	IdentitySecretKey string

	// Admin allow-list (lowercased emails)
	AdminEmails []string

	// CORS
	AllowedOrigins []string

	// Redis
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Provider profile cache
	ProfileCacheTTL time.Duration

	// Rate limit
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	// RabbitMQ (optional; events disabled when URL empty)
	RabbitURL      string
	RabbitExchange string

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.Port = getInt("PORT", 5000)

	// --- Postgres: prefer DATABASE_URL if present, else build from POSTGRES_*
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL != "" {
		cfg.DBDSN = dbURL
	} else {
		addr := getEnv("POSTGRES_ADDR", "")
		user := getEnv("POSTGRES_USER", "")
		pass := getEnv("POSTGRES_PASSWORD", "")
		db := getEnv("POSTGRES_DB", "")
		sslmode := getEnv("POSTGRES_SSLMODE", "disable")
		cfg.DBDSN = buildPostgresURL(addr, user, pass, db, sslmode)
	}
	cfg.MigrateOnStart = getBool("MIGRATE_ON_START", true)

	// --- Tokens / identity provider
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")
	cfg.IdentityAPIURL = getEnv("IDENTITY_API_URL", "")
	cfg.IdentitySecretKey = getEnv("IDENTITY_SECRET_KEY", "")

	// --- Admin allow-list (single mechanism; no hard-coded fallback)
	cfg.AdminEmails = splitList(os.Getenv("ADMIN_EMAILS"), true)

	// --- CORS
	cfg.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"), false)

	// --- Redis
	cfg.RedisAddr = getEnv("REDIS_ADDR", "127.0.0.1:6379")
	cfg.RedisPass = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0)
	cfg.ProfileCacheTTL = getDuration("PROFILE_CACHE_TTL", 10*time.Minute)

	// --- Rate limit
	cfg.RLEnabled = getBool("RL_ENABLED", true)
	cfg.RLLimit = getInt("RL_REQUESTS_LIMIT", 100)
	cfg.RLWindow = time.Duration(getInt("RL_WINDOW_SECONDS", 60)) * time.Second

	// --- RabbitMQ
	cfg.RabbitURL = strings.TrimSpace(os.Getenv("RABBITMQ_URL"))
	cfg.RabbitExchange = getEnv("RABBITMQ_EXCHANGE", "loans.events")

	// --- Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// --- Validation (fail fast)
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("missing database config: provide DATABASE_URL or POSTGRES_ADDR/POSTGRES_USER/POSTGRES_PASSWORD/POSTGRES_DB")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	if cfg.IdentityAPIURL == "" {
		return nil, fmt.Errorf("missing IDENTITY_API_URL")
	}
	if cfg.AppEnv != "dev" && cfg.IdentitySecretKey == "" {
		return nil, fmt.Errorf("missing IDENTITY_SECRET_KEY (required when APP_ENV != dev)")
	}

	return cfg, nil
}

// buildPostgresURL builds a safe postgres URL DSN (handles special characters).
func buildPostgresURL(addr, user, pass, db, sslmode string) string {
	if strings.TrimSpace(addr) == "" || strings.TrimSpace(user) == "" || strings.TrimSpace(db) == "" {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   strings.TrimSpace(addr),
		Path:   "/" + strings.TrimPrefix(strings.TrimSpace(db), "/"),
	}
	if pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}

	q := url.Values{}
	if strings.TrimSpace(sslmode) != "" {
		q.Set("sslmode", strings.TrimSpace(sslmode))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func splitList(raw string, lower bool) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		v := strings.TrimSpace(p)
		if v == "" {
			continue
		}
		if lower {
			v = strings.ToLower(v)
		}
		out = append(out, v)
	}
	return out
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		// prefer failing fast over silent misconfig
		panic(fmt.Errorf("invalid boolean env %s=%q", k, v))
	}
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
