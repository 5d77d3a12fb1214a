package config_test

import (
	"testing"
	"time"

	"citymap-server/utils/config"
)

// TestFromEnv_RequiresJWTSecret verifies startup fails without a secret.
func TestFromEnv_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := config.FromEnv(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

// TestFromEnv_Defaults verifies the defaults match the original map view.
func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	for _, k := range []string{"PORT", "ALLOWED_ORIGINS", "DATA_PATH", "SESSION_TTL", "MAP_CENTER_LON", "MAP_CENTER_LAT", "MAP_ZOOM", "REDIS_DB"} {
		t.Setenv(k, "")
	}
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.Port != "8080" || cfg.DataPath != "./data/cities.json" || cfg.SessionTTL != 24*time.Hour {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.InitialView != (config.MapView{Longitude: -100, Latitude: 40, Zoom: 3.5}) {
		t.Errorf("unexpected initial view: %+v", cfg.InitialView)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

// TestFromEnv_Overrides verifies values and list parsing from the
// environment.
func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("MAP_ZOOM", "5")
	t.Setenv("REDIS_DB", "2")
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.InitialView.Zoom != 5 || cfg.RedisDB != 2 {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
}

// TestFromEnv_InvalidNumbers verifies malformed numeric values are errors.
func TestFromEnv_InvalidNumbers(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("REDIS_DB", "two")
	if _, err := config.FromEnv(); err == nil {
		t.Error("expected error for REDIS_DB")
	}
	t.Setenv("REDIS_DB", "")
	t.Setenv("SESSION_TTL", "forever")
	if _, err := config.FromEnv(); err == nil {
		t.Error("expected error for SESSION_TTL")
	}
}
