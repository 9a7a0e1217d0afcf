package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "talenthub")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "talenthub")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("REDIS_URL", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", strings.Repeat("k", 40))

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Auth.AccessTokenDuration != 15*time.Minute {
		t.Errorf("access duration = %v", cfg.Auth.AccessTokenDuration)
	}
	if cfg.Auth.RefreshTokenDuration != 168*time.Hour {
		t.Errorf("refresh duration = %v", cfg.Auth.RefreshTokenDuration)
	}
	if cfg.Server.StoreTimeout != 5*time.Second {
		t.Errorf("store timeout = %v", cfg.Server.StoreTimeout)
	}
	if cfg.DB.MaxSize != 10 || cfg.DB.Port != 5432 || cfg.DB.Host != "localhost" {
		t.Errorf("unexpected db config %+v", cfg.DB)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled without REDIS_URL")
	}
	if cfg.Auth.UsingDevSecret {
		t.Error("a 40 byte secret should be accepted as-is")
	}
}

func TestProductionRejectsMissingSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", EnvProduction)

	_, err := LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestProductionRejectsShortSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("JWT_SECRET", "too-short")

	_, err := LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Fatalf("expected length error, got %v", err)
	}
}

func TestDevelopmentFallsBackToDevSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "short")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Auth.JWTSecret != DevJWTSecret || !cfg.Auth.UsingDevSecret {
		t.Fatalf("expected dev secret fallback, got %q", cfg.Auth.JWTSecret)
	}
	if len(DevJWTSecret) < MinSecretLength {
		t.Fatal("dev secret must itself satisfy the length rule")
	}
}

func TestErrorsAreAggregated(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("STORE_TIMEOUT", "soon")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT", "STORE_TIMEOUT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestAllowedOriginsList(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.Server.AllowedOrigins)
	}
}
