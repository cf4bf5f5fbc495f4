package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/notebook/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.Uploads.MaxBytes != 10<<20 {
		t.Errorf("max bytes = %d", cfg.Uploads.MaxBytes)
	}
	if cfg.LLM.Model != "gpt-4.1-mini" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
}

func TestConfig_MissingAPIKeyIsAllowed(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LLM.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty api key should not fail validation: %v", err)
	}
}

func TestConfig_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.App.HTTP.Port = 70000 }, "Port"},
		{"upload dir", func(c *Config) { c.Uploads.Dir = "" }, "Dir"},
		{"max bytes", func(c *Config) { c.Uploads.MaxBytes = 0 }, "MaxBytes"},
		{"model", func(c *Config) { c.LLM.Model = "" }, "Model"},
		{"base url", func(c *Config) { c.LLM.BaseURL = "not a url" }, "BaseURL"},
		{"cors origin", func(c *Config) { c.App.HTTP.CORSOrigins = []string{"localhost 3000"} }, "CORSOrigins"},
		{"throttle", func(c *Config) { c.Events.Throttle = -time.Second }, "Throttle"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	t.Setenv("NOTEBOOK_TEST_KEY", "sk-test")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `app:
  log_level: debug
  http:
    port: 9001
    cors_origins: ["http://localhost:5173"]
uploads:
  dir: /tmp/notebook-uploads
llm:
  api_key: ${NOTEBOOK_TEST_KEY}
  timeout: 30s
events:
  throttle: 500ms
index:
  enabled: false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	read, err := pkgconfig.LoadOptional(path, cfg)
	if err != nil || !read {
		t.Fatalf("LoadOptional = %v, %v", read, err)
	}
	if cfg.App.HTTP.Port != 9001 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.LLM.APIKey != "sk-test" || cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.LLM.Model != "gpt-4.1-mini" {
		t.Errorf("model default lost: %q", cfg.LLM.Model)
	}
	if cfg.Events.Throttle != 500*time.Millisecond || cfg.Index.Enabled {
		t.Errorf("events/index = %+v / %+v", cfg.Events, cfg.Index)
	}
	if cfg.Uploads.MaxBytes != 10<<20 {
		t.Errorf("max bytes default lost: %d", cfg.Uploads.MaxBytes)
	}
}
