// Package config loads talenthub's configuration from environment variables.
// All values are read once at startup into an AppConfig that is then passed
// explicitly to the packages that need it; nothing reads the environment later.
// Missing or malformed values are collected and reported together.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// MinSecretLength is the minimum accepted length of JWT_SECRET in bytes.
const MinSecretLength = 32

// DevJWTSecret is used outside production when JWT_SECRET is unset or too short.
const DevJWTSecret = "dev-secret-key-change-in-production-min-32-chars"

// EnvProduction is the APP_ENV value that turns on the strict secret policy.
const EnvProduction = "production"

// PoolConfig represents configuration for the PostgreSQL connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret            string        // HMAC key, at least MinSecretLength bytes
	AccessTokenDuration  time.Duration // Lifetime of access tokens
	RefreshTokenDuration time.Duration // Lifetime of refresh tokens
	Issuer               string        // "iss" claim
	UsingDevSecret       bool          // true when DevJWTSecret was substituted
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration // chi middleware.Timeout
	StoreTimeout   time.Duration // upper bound for a single store round trip
	AllowedOrigins []string
}

// RedisConfig is optional; an empty URL disables Redis-backed features.
type RedisConfig struct {
	URL string
}

// Enabled reports whether a Redis URL was configured.
func (c RedisConfig) Enabled() bool { return c.URL != "" }

// RateLimitConfig bounds login and registration attempts per client IP.
type RateLimitConfig struct {
	LoginLimit  int
	LoginWindow time.Duration
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Env            string
	DB             *PoolConfig
	Auth           *AuthConfig
	Server         *ServerConfig
	Redis          RedisConfig
	RateLimit      RateLimitConfig
	MigrationsPath string
}

// IsProduction reports whether APP_ENV is "production".
func (c *AppConfig) IsProduction() bool { return c.Env == EnvProduction }

func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	if valueDuration <= 0 {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: duration must be positive", key))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool between 5 and 100 connections.
func clampPoolSize(size int, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("DB_POOL_SIZE (%d) is less than minimum 5", size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("DB_POOL_SIZE (%d) is greater than maximum 100", size))
		return 100
	}
	return size
}

// resolveSecret applies the secret policy: production refuses a missing or short
// secret, every other environment substitutes DevJWTSecret and complains loudly.
func resolveSecret(env string, errors *[]string) (string, bool) {
	secret := os.Getenv("JWT_SECRET")
	if len(secret) >= MinSecretLength {
		return secret, false
	}
	if env == EnvProduction {
		if secret == "" {
			*errors = append(*errors, "missing required environment variable: JWT_SECRET")
		} else {
			*errors = append(*errors, fmt.Sprintf("JWT_SECRET must be at least %d bytes, got %d", MinSecretLength, len(secret)))
		}
		return "", false
	}
	log.Printf("WARNING: JWT_SECRET is unset or shorter than %d bytes; using the built-in development secret. Never run like this in production.", MinSecretLength)
	return DevJWTSecret, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	env := getOptionalEnv("APP_ENV", "development")

	dbPool := &PoolConfig{
		User:     getRequiredEnv("DB_USER", &errors),
		Password: getRequiredEnv("DB_PASSWORD", &errors),
		DBName:   getRequiredEnv("DB_NAME", &errors),
		Host:     getOptionalEnv("DB_HOST", "localhost"),
		Port:     getOptionalEnvInt("DB_PORT", 5432, &errors),
		SSLMode:  getOptionalEnv("DB_SSLMODE", "disable"),
	}
	dbPool.MaxSize = clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), &errors)

	secret, usingDev := resolveSecret(env, &errors)
	authConfig := &AuthConfig{
		JWTSecret:            secret,
		AccessTokenDuration:  getOptionalEnvDuration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute, &errors),
		RefreshTokenDuration: getOptionalEnvDuration("JWT_REFRESH_TOKEN_DURATION", 168*time.Hour, &errors), // 7 days
		Issuer:               getOptionalEnv("JWT_ISSUER", "talenthub"),
		UsingDevSecret:       usingDev,
	}
	if authConfig.RefreshTokenDuration < authConfig.AccessTokenDuration {
		errors = append(errors, "JWT_REFRESH_TOKEN_DURATION must not be shorter than JWT_ACCESS_TOKEN_DURATION")
	}

	serverConfig := &ServerConfig{
		Port:           getOptionalEnv("PORT", "8080"),
		RequestTimeout: getOptionalEnvDuration("REQUEST_TIMEOUT", 60*time.Second, &errors),
		StoreTimeout:   getOptionalEnvDuration("STORE_TIMEOUT", 5*time.Second, &errors),
		AllowedOrigins: splitList(getOptionalEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	rateLimit := RateLimitConfig{
		LoginLimit:  getOptionalEnvInt("LOGIN_RATE_LIMIT", 10, &errors),
		LoginWindow: getOptionalEnvDuration("LOGIN_RATE_WINDOW", time.Minute, &errors),
	}
	if rateLimit.LoginLimit <= 0 {
		errors = append(errors, "LOGIN_RATE_LIMIT must be positive")
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		Env:            env,
		DB:             dbPool,
		Auth:           authConfig,
		Server:         serverConfig,
		Redis:          RedisConfig{URL: getOptionalEnv("REDIS_URL", "")},
		RateLimit:      rateLimit,
		MigrationsPath: getOptionalEnv("MIGRATIONS_PATH", "./migrations"),
	}, nil
}
