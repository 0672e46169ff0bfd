package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port              string
	MongoURI          string
	MongoDB           string
	MongoTransactions bool
	PostgresDSN       string
	RedisAddr         string
	RedisPassword     string
	MinioEndpoint     string
	MinioAccessKey    string
	MinioSecretKey    string
	MinioBucket       string
	MinioUseSSL       bool
	JWTPrivateKey     string
	JWTIssuer         string
	JWTTTL            time.Duration
	LogLevel          string
	LogFormat         string
	CORSOrigins       []string
	LoginMaxAttempts  int
	LoginLockout      time.Duration
}

// Load reads the environment. Malformed booleans, durations and numbers are
// errors rather than silently falling back.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "vidly"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "vidly-receipts"),
		JWTPrivateKey:  getenv("VIDLY_JWT_PRIVATE_KEY", ""),
		JWTIssuer:      getenv("JWT_ISSUER", "vidly"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "json"),
		CORSOrigins:    parseCSV(getenv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var errs []error
	var err error
	if cfg.MongoTransactions, err = getbool("MONGO_TRANSACTIONS", true); err != nil {
		errs = append(errs, err)
	}
	if cfg.MinioUseSSL, err = getbool("MINIO_USE_SSL", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.JWTTTL, err = getduration("JWT_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.LoginLockout, err = getduration("LOGIN_LOCKOUT", 15*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.LoginMaxAttempts, err = getint("LOGIN_MAX_ATTEMPTS", 5); err != nil {
		errs = append(errs, err)
	}

	if cfg.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if cfg.PostgresDSN == "" {
		errs = append(errs, errors.New("POSTGRES_DSN is required"))
	}
	if cfg.JWTPrivateKey == "" {
		errs = append(errs, errors.New("VIDLY_JWT_PRIVATE_KEY is required"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// HTTPAddress returns the address the HTTP server binds to.
func (c *Config) HTTPAddress() string {
	return ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) (bool, error) {
	v := getenv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func getduration(key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func getint(key string, fallback int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
