package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	t.Cleanup(os.Clearenv)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host: got %q, want %q", cfg.Database.Host, "localhost")
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port: got %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Auth.AccessTokenExpiry != 15*time.Minute {
		t.Errorf("Auth.AccessTokenExpiry: got %v, want %v", cfg.Auth.AccessTokenExpiry, 15*time.Minute)
	}
	if cfg.Security.DefaultLockDuration != 15*time.Minute {
		t.Errorf("Security.DefaultLockDuration: got %v, want %v", cfg.Security.DefaultLockDuration, 15*time.Minute)
	}
}

func TestLoad_RateLimitDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"APIMaxRequests", cfg.RateLimit.APIMaxRequests, 100},
		{"LoginMaxRequests", cfg.RateLimit.LoginMaxRequests, 5},
		{"UploadMaxRequests", cfg.RateLimit.UploadMaxRequests, 10},
		{"GlobalRequestsPerMinute", cfg.RateLimit.GlobalRequestsPerMinute, 1000},
	}
	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %d, want %d", tt.name, tt.actual, tt.expected)
		}
	}

	if cfg.RateLimit.APIWindow != 60*time.Second {
		t.Errorf("APIWindow: got %v, want %v", cfg.RateLimit.APIWindow, 60*time.Second)
	}
}

func TestLoad_RateLimitCustomValues(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("RATE_LIMIT_LOGIN_WINDOW", "30s")
	os.Setenv("RATE_LIMIT_LOGIN_MAX", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.RateLimit.LoginWindow != 30*time.Second {
		t.Errorf("LoginWindow: got %v, want %v", cfg.RateLimit.LoginWindow, 30*time.Second)
	}
	if cfg.RateLimit.LoginMaxRequests != 3 {
		t.Errorf("LoginMaxRequests: got %d, want 3", cfg.RateLimit.LoginMaxRequests)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("SECURITY_CLEANUP_INTERVAL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Security.CleanupInterval != 1*time.Hour {
		t.Errorf("CleanupInterval with invalid value: got %v, want %v", cfg.Security.CleanupInterval, 1*time.Hour)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Setenv("DB_PASSWORD", "test")
	os.Unsetenv("JWT_SECRET")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() without JWT_SECRET should fail")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Unsetenv("DB_PASSWORD")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() without DB_PASSWORD should fail")
	}
}

func TestLoad_ShortJWTSecretRejected(t *testing.T) {
	os.Setenv("JWT_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() with short JWT_SECRET should fail")
	}
}

func TestLoad_ProductionRequiresLongerSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "only-twenty-chars!!!") // 20 chars, fine for dev
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() in production with <32 char JWT_SECRET should fail")
	}
}

func TestLoad_AlertsRequireAddresses(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("INCIDENT_ALERTS_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with alerts enabled but no addresses should fail")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Name:     "newjobflow",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=app password=secret dbname=newjobflow sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN(): got %q, want %q", got, want)
	}
}
