package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 5000)
	}
	if cfg.Valuation.Workers != 10 {
		t.Errorf("Valuation.Workers default = %d, want %d", cfg.Valuation.Workers, 10)
	}
	if got := cfg.Clients.Estimator.GetTimeout(); got != 2*time.Second {
		t.Errorf("Estimator timeout = %v, want 2s", got)
	}
	if got := cfg.Clients.Snapshot.GetTimeout(); got != 2*time.Second {
		t.Errorf("Snapshot timeout = %v, want 2s", got)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("FUNDWATCH_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_InvalidPortEnvIgnored(t *testing.T) {
	t.Setenv("FUNDWATCH_PORT", "not-a-port")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want default kept", cfg.Server.Port)
	}
}

func TestConfig_StorageAndWorkerOverrides(t *testing.T) {
	t.Setenv("FUNDWATCH_HOLDINGS_PATH", "/tmp/h.json")
	t.Setenv("FUNDWATCH_WORKERS", "3")
	t.Setenv("FUNDWATCH_TIMEZONE", "Asia/Shanghai")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Storage.HoldingsPath != "/tmp/h.json" {
		t.Errorf("HoldingsPath = %q", cfg.Storage.HoldingsPath)
	}
	if cfg.Valuation.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Valuation.Workers)
	}
	if cfg.Valuation.Timezone != "Asia/Shanghai" {
		t.Errorf("Timezone = %q", cfg.Valuation.Timezone)
	}
}

func TestProviderConfig_GetTimeout_Invalid(t *testing.T) {
	for _, v := range []string{"", "abc", "-1s", "0s"} {
		c := ProviderConfig{Timeout: v}
		if got := c.GetTimeout(); got != 2*time.Second {
			t.Errorf("GetTimeout(%q) = %v, want 2s fallback", v, got)
		}
	}
	c := ProviderConfig{Timeout: "500ms"}
	if got := c.GetTimeout(); got != 500*time.Millisecond {
		t.Errorf("GetTimeout(500ms) = %v", got)
	}
}

func TestValuationConfig_GetLocation(t *testing.T) {
	c := ValuationConfig{Timezone: "Local"}
	if c.GetLocation() != time.Local {
		t.Error("Local timezone should resolve to time.Local")
	}
	c = ValuationConfig{Timezone: "Not/AZone"}
	if c.GetLocation() != time.Local {
		t.Error("unknown timezone should fall back to time.Local")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fundwatch.toml")
	content := `
environment = "production"

[server]
port = 7070

[storage]
holdings_path = "data/funds.json"
versions = 0

[clients.estimator]
timeout = "1s"

[valuation]
workers = 0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Storage.HoldingsPath != "data/funds.json" {
		t.Errorf("HoldingsPath = %q", cfg.Storage.HoldingsPath)
	}
	if cfg.Clients.Estimator.GetTimeout() != time.Second {
		t.Errorf("Estimator timeout = %v, want 1s", cfg.Clients.Estimator.GetTimeout())
	}
	// Defaults survive for keys the file does not set
	if cfg.Clients.Snapshot.BaseURL != "http://hq.sinajs.cn" {
		t.Errorf("Snapshot.BaseURL = %q, want default", cfg.Clients.Snapshot.BaseURL)
	}
	if cfg.Valuation.Workers != 1 {
		t.Errorf("Workers = %d, want clamp to 1", cfg.Valuation.Workers)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[server\nport = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error for invalid TOML")
	}
}
