package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("NOTEBOOK_TEST_NAME", "from-env")
	path := writeFile(t, "name: ${NOTEBOOK_TEST_NAME}\nport: 9000\n")

	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" || cfg.Port != 9000 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	var cfg sample
	if err := Load(path, &cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	cfg := sample{Name: "default", Port: 8000}
	read, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if read {
		t.Error("missing file reported as read")
	}
	if cfg.Name != "default" || cfg.Port != 8000 {
		t.Errorf("defaults changed: %+v", cfg)
	}
}

func TestLoadOptional_OverridesDefaults(t *testing.T) {
	cfg := sample{Name: "default", Port: 8000}
	read, err := LoadOptional(writeFile(t, "port: 8100\n"), &cfg)
	if err != nil || !read {
		t.Fatalf("LoadOptional = %v, %v", read, err)
	}
	if cfg.Name != "default" || cfg.Port != 8100 {
		t.Errorf("cfg = %+v", cfg)
	}
}
