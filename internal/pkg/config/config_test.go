package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.API.BaseURL != "http://localhost:8081" || cfg.API.Timeout != 10*time.Second {
		t.Errorf("unexpected api defaults: %+v", cfg.API)
	}
	if cfg.Store.Driver != DriverFile || cfg.Store.Path != ".hms/session.json" || cfg.Store.Prefix != "" {
		t.Errorf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Refresh.Before != 2*time.Minute || cfg.Refresh.Interval != 30*time.Second {
		t.Errorf("unexpected refresh defaults: %+v", cfg.Refresh)
	}
	if cfg.DevAPI.Port != "8081" || cfg.DevAPI.TokenTTL != time.Hour || cfg.DevAPI.Store != DriverMemory ||
		cfg.DevAPI.Revocation != DriverMemory ||
		!cfg.DevAPI.SeedUsers || cfg.DevAPI.LoginRate != 5 {
		t.Errorf("unexpected devapi defaults: %+v", cfg.DevAPI)
	}
	if cfg.Mongo.Database != "hms_portal" || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("unexpected backend defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":           "9000",
		"ENV":            "production",
		"API_BASE_URL":   "https://api.hms.example",
		"API_TIMEOUT":    "3s",
		"STORE_DRIVER":   "redis",
		"STORE_PREFIX":   "hms:",
		"REFRESH_BEFORE": "5m",
		"JWT_SECRET":     "s3cret",
		"DEVAPI_STORE":   "mongo",
		"SEED_USERS":     "false",
		"LOGIN_RATE":     "0.5",
		"REDIS_DB":       "2",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.Port != "9000" || cfg.IsDevelopment() {
		t.Errorf("unexpected server config: %+v", cfg)
	}
	if cfg.API.BaseURL != "https://api.hms.example" || cfg.API.Timeout != 3*time.Second {
		t.Errorf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Store.Driver != DriverRedis || cfg.Store.Prefix != "hms:" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Refresh.Before != 5*time.Minute {
		t.Errorf("REFRESH_BEFORE = %s", cfg.Refresh.Before)
	}
	if cfg.DevAPI.Store != DriverMongo || cfg.DevAPI.SeedUsers || cfg.DevAPI.LoginRate != 0.5 {
		t.Errorf("unexpected devapi config: %+v", cfg.DevAPI)
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("REDIS_DB = %d", cfg.Redis.DB)
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		t.Errorf("RequireJWTSecret: %v", err)
	}
}

func TestLoadWith_RejectsUnknownDrivers(t *testing.T) {
	cases := []map[string]string{
		{"STORE_DRIVER": "sqlite"},
		{"DEVAPI_STORE": "redis"},
		{"DEVAPI_REVOCATION": "mongo"},
	}
	for _, env := range cases {
		if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Errorf("LoadWith(%v) = nil error, want failure", env)
		}
	}
}

func TestLoadWith_RejectsBadDuration(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{"API_TIMEOUT": "soon"}))
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestRequireJWTSecret_Missing(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if err := cfg.RequireJWTSecret(); err == nil {
		t.Error("missing JWT_SECRET must fail")
	}
}
