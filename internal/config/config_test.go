package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Fatalf("expected listen addr :9090, got %q", cfg.ListenAddr)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Fatalf("expected default sqlite backend, got %q", cfg.StoreBackend)
	}
	if cfg.DatabasePath != "fitquest.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.Location().String() != "Asia/Shanghai" {
		t.Fatalf("unexpected timezone %s", cfg.Location())
	}
}

func TestLoadParsesOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("STORE_BACKEND", "FILE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %#v", cfg.AllowedOrigins)
	}
	if cfg.StoreBackend != BackendFile {
		t.Fatalf("expected file backend, got %q", cfg.StoreBackend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AppConfig
		wantErr bool
	}{
		{name: "sqlite", cfg: AppConfig{StoreBackend: BackendSQLite, AppTimezone: "UTC"}},
		{name: "unknown backend", cfg: AppConfig{StoreBackend: "mongo", AppTimezone: "UTC"}, wantErr: true},
		{name: "postgres without dsn", cfg: AppConfig{StoreBackend: BackendPostgres, PostgresMaxConns: 5, AppTimezone: "UTC"}, wantErr: true},
		{name: "postgres", cfg: AppConfig{StoreBackend: BackendPostgres, PostgresDSN: "postgres://u:p@localhost/db", PostgresMaxConns: 5, AppTimezone: "UTC"}},
		{name: "bad timezone", cfg: AppConfig{StoreBackend: BackendSQLite, AppTimezone: "Mars/Base"}, wantErr: true},
		{name: "negative rate", cfg: AppConfig{StoreBackend: BackendSQLite, AppTimezone: "UTC", RateLimitPerMinute: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
