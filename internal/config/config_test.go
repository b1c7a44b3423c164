package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 30s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Import.Mode != "strict" {
		t.Errorf("Import.Mode = %q, want %q", cfg.Import.Mode, "strict")
	}
	if cfg.Import.DefaultCity != "Manaus" {
		t.Errorf("Import.DefaultCity = %q, want %q", cfg.Import.DefaultCity, "Manaus")
	}
	if cfg.Import.DefaultState != "AM" {
		t.Errorf("Import.DefaultState = %q, want %q", cfg.Import.DefaultState, "AM")
	}
	if cfg.Import.DefaultBirthDate != "2000-01-01" {
		t.Errorf("Import.DefaultBirthDate = %q", cfg.Import.DefaultBirthDate)
	}
	if cfg.Import.MaxFileSize != 10485760 {
		t.Errorf("Import.MaxFileSize = %d, want %d", cfg.Import.MaxFileSize, 10485760)
	}
	if cfg.Import.MaxRows != 5000 {
		t.Errorf("Import.MaxRows = %d, want %d", cfg.Import.MaxRows, 5000)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("IMPORT_MODE", "permissive")
	t.Setenv("IMPORT_DEFAULT_CITY", "Belém")
	t.Setenv("IMPORT_MAX_ROWS", "100")
	t.Setenv("DB_MAX_CONN_LIFETIME", "45m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Import.Mode != "permissive" {
		t.Errorf("Import.Mode = %q, want %q", cfg.Import.Mode, "permissive")
	}
	if cfg.Import.DefaultCity != "Belém" {
		t.Errorf("Import.DefaultCity = %q, want %q", cfg.Import.DefaultCity, "Belém")
	}
	if cfg.Import.MaxRows != 100 {
		t.Errorf("Import.MaxRows = %d, want %d", cfg.Import.MaxRows, 100)
	}
	if cfg.Database.MaxConnLifetime != 45*time.Minute {
		t.Errorf("Database.MaxConnLifetime = %v, want 45m", cfg.Database.MaxConnLifetime)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("Load() succeeded without DATABASE_URL")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port type", "SERVER_PORT", "not-a-port"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad mode", "IMPORT_MODE", "lenient"},
		{"bad birth date", "IMPORT_DEFAULT_BIRTH_DATE", "01/01/2000"},
		{"bad duration", "SERVER_READ_TIMEOUT", "fifteen"},
		{"zero max rows", "IMPORT_MAX_ROWS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/test")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9001}
	if got := cfg.Addr(); got != "127.0.0.1:9001" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:9001")
	}
}
