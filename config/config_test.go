package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"potluck/models"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"MONGODB_URI": "mongodb://localhost:27017"}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Port != "10000" {
		t.Errorf("Port = %q, want 10000", cfg.Port)
	}
	if cfg.MongoDatabase != "potluck" {
		t.Errorf("MongoDatabase = %q, want potluck", cfg.MongoDatabase)
	}
	if cfg.RecipeCacheTTL != 5*time.Minute {
		t.Errorf("RecipeCacheTTL = %v, want 5m", cfg.RecipeCacheTTL)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.DefaultPermission != models.PermissionEdit {
		t.Errorf("DefaultPermission = %q, want edit", cfg.DefaultPermission)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
	if cfg.JWTSecret == "" {
		t.Error("development config should fall back to a dev JWT secret")
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Errorf("TrustedProxies = %v, want none", cfg.TrustedProxies)
	}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"MONGODB_URI":                     "mongodb://db:27017",
		"COLLABORATOR_DEFAULT_PERMISSION": "Suggest",
		"ALLOWED_ORIGINS":                 "https://a.example, https://b.example",
		"LOG_LEVEL":                       "debug",
		"REDIS_DB":                        "3",
		"TRUSTED_PROXIES":                 "10.0.0.0/8, 192.0.2.10",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.DefaultPermission != models.PermissionSuggest {
		t.Errorf("DefaultPermission = %q, want suggest", cfg.DefaultPermission)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", cfg.RedisDB)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0].String() != "10.0.0.0/8" || cfg.TrustedProxies[1].String() != "192.0.2.10/32" {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
}

func TestFromEnv_RejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"permission": {"COLLABORATOR_DEFAULT_PERMISSION": "admin"},
		"ttl":        {"TOKEN_TTL": "forever"},
		"redis db":   {"REDIS_DB": "x"},
		"log level":  {"LOG_LEVEL": "loud"},
		"proxies":    {"TRUSTED_PROXIES": "not-an-ip"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := FromEnv(envMap(env)); err == nil {
				t.Error("FromEnv() expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("requires mongo uri", func(t *testing.T) {
		cfg, err := FromEnv(envMap(nil))
		if err != nil {
			t.Fatalf("FromEnv() error = %v", err)
		}
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error without MONGODB_URI")
		}
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		cfg, err := FromEnv(envMap(map[string]string{
			"ENVIRONMENT": "production",
			"MONGODB_URI": "mongodb://db:27017",
		}))
		if err != nil {
			t.Fatalf("FromEnv() error = %v", err)
		}
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error without JWT_SECRET in production")
		}
	})
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("POTLUCK_TEST_ONLY=1\nMONGODB_DATABASE=from_dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MONGODB_DATABASE", "")
	t.Setenv("POTLUCK_TEST_ONLY", "")
	os.Unsetenv("MONGODB_DATABASE")
	os.Unsetenv("POTLUCK_TEST_ONLY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MongoDatabase != "from_dotenv" {
		t.Errorf("MongoDatabase = %q, want from_dotenv", cfg.MongoDatabase)
	}
}
