package app

import (
	"testing"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(env.Options{Environment: map[string]string{}})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != "5000" || cfg.DBDriver != "postgres" || cfg.MaxImageBytes != 500000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.ImageSweepEnabled || !cfg.MetricsEnabled || cfg.OtelEnabled {
		t.Fatalf("unexpected feature defaults: %+v", cfg)
	}
	if got := cfg.ObjectStore().Normalize(); got.Mode != objectstore.ModeLocal || got.LocalDir != "uploads" {
		t.Fatalf("object store defaults: %+v", got)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(env.Options{Environment: map[string]string{
		"PORT":                       "8080",
		"DB_DRIVER":                  "sqlite",
		"SQLITE_PATH":                "/tmp/p.db",
		"CORS_ALLOWED_ORIGINS":       "https://a.example,https://b.example",
		"OTEL_EXPORTER_OTLP_HEADERS": "authorization=Bearer x",
		"GEOCODE_MAX_RETRIES":        "5",
	}})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.DB().Driver != "sqlite" || cfg.DB().SQLitePath != "/tmp/p.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins: got=%v", cfg.CORSAllowedOrigins)
	}
	if cfg.GeocodeMaxRetries != 5 {
		t.Fatalf("retries: want=5 got=%d", cfg.GeocodeMaxRetries)
	}
	if got := cfg.Otel().Headers["authorization"]; got != "Bearer x" {
		t.Fatalf("otel headers: got=%q", got)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"driver":      {"DB_DRIVER": "mysql"},
		"empty key":   {"JWT_SECRET_KEY": " "},
		"image limit": {"MAX_IMAGE_BYTES": "0"},
		"bad int":     {"GEOCODE_MAX_RETRIES": "many"},
	}
	for name, environ := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := loadConfig(env.Options{Environment: environ}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
