package common

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Upstream.BaseURL != "https://lda.senate.gov/api/v1" {
		t.Errorf("BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Rollup.MaxRows != 20000 || cfg.Rollup.MaxPages != 200 || cfg.Rollup.MaxLinks != 10 {
		t.Errorf("rollup defaults = %+v", cfg.Rollup)
	}
	if cfg.Upstream.Retries != 4 {
		t.Errorf("Retries = %d, want 4", cfg.Upstream.Retries)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lda.toml")
	data := `
environment = "production"

[server]
port = 9090

[upstream]
base_url = "https://lda.senate.gov/api/v1"
rate_limit = 2

[rollup]
max_rows = 500
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Upstream.RateLimit != 2 {
		t.Errorf("RateLimit = %d, want 2", cfg.Upstream.RateLimit)
	}
	if cfg.Rollup.MaxRows != 500 {
		t.Errorf("MaxRows = %d, want 500", cfg.Rollup.MaxRows)
	}
	if !cfg.IsProduction() {
		t.Error("environment = production should report IsProduction")
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig("does/not/exist.toml")
	if err != nil {
		t.Fatalf("missing files must be skipped, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LDA_PORT", "9999")
	t.Setenv("LDA_BASE_URL", "https://stub.example/api/v1/")
	t.Setenv("LDA_API_KEY", "envkey")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL != "https://stub.example/api/v1" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.APIKey != "envkey" {
		t.Errorf("APIKey = %q", cfg.Upstream.APIKey)
	}
}

func TestResolveAPIKey_HeaderWins(t *testing.T) {
	t.Setenv("LDA_API_KEY", "envkey")
	cfg := NewDefaultConfig()
	cfg.Upstream.APIKey = "cfgkey"

	h := http.Header{}
	h.Set("X-LDA-Key", "headerkey")
	if got := cfg.ResolveAPIKey(h); got != "headerkey" {
		t.Errorf("ResolveAPIKey = %q, want headerkey", got)
	}
	if got := cfg.ResolveAPIKey(nil); got != "envkey" {
		t.Errorf("ResolveAPIKey without header = %q, want envkey", got)
	}
}

func TestResolveAllowedOrigin(t *testing.T) {
	cfg := NewDefaultConfig()
	if got := cfg.ResolveAllowedOrigin("https://any.example"); got != "*" {
		t.Errorf("wildcard config: got %q", got)
	}

	cfg.Server.AllowedOrigins = []string{"https://a.example", "https://b.example"}
	if got := cfg.ResolveAllowedOrigin("https://b.example"); got != "https://b.example" {
		t.Errorf("listed origin: got %q", got)
	}
	if got := cfg.ResolveAllowedOrigin("https://evil.example"); got != "https://a.example" {
		t.Errorf("unlisted origin falls back to first entry: got %q", got)
	}
	if got := cfg.ResolveAllowedOrigin(""); got != "https://a.example" {
		t.Errorf("missing origin falls back to first entry: got %q", got)
	}
}

func TestGetTimeout(t *testing.T) {
	c := LDAConfig{Timeout: "5s"}
	if got := c.GetTimeout(); got.Seconds() != 5 {
		t.Errorf("GetTimeout = %v, want 5s", got)
	}
	c.Timeout = "bogus"
	if got := c.GetTimeout(); got.Seconds() != 30 {
		t.Errorf("invalid timeout falls back to 30s, got %v", got)
	}
}
