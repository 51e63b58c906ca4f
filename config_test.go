package console_test

import (
	"os"
	"path/filepath"
	"testing"

	console "github.com/sipcha/console-go"
)

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	t.Setenv(console.EnvEndpoint, "")
	t.Setenv(console.EnvTenant, "")
	t.Setenv(console.EnvStorePath, "")
	os.Unsetenv(console.EnvEndpoint)
	os.Unsetenv(console.EnvTenant)
	os.Unsetenv(console.EnvStorePath)

	cfg, err := console.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Endpoint != "" || cfg.Tenant != "" {
		t.Errorf("LoadConfig() = %+v, want zero config", cfg)
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	os.Unsetenv(console.EnvEndpoint)
	os.Unsetenv(console.EnvTenant)
	os.Unsetenv(console.EnvStorePath)

	path := filepath.Join(t.TempDir(), "sipcha.yaml")
	data := "endpoint: https://api.example.com\ntenant: acme\nstore_path: /tmp/sipcha.json\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := console.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Endpoint != "https://api.example.com" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Tenant != "acme" {
		t.Errorf("Tenant = %q, want acme", cfg.Tenant)
	}
	if cfg.StorePath != "/tmp/sipcha.json" {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sipcha.yaml")
	if err := os.WriteFile(path, []byte("endpoint: https://file.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(console.EnvEndpoint, "https://env.example.com")

	cfg, err := console.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Endpoint != "https://env.example.com" {
		t.Errorf("Endpoint = %q, want env override", cfg.Endpoint)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sipcha.yaml")
	if err := os.WriteFile(path, []byte("endpoint: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := console.LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() expected error for malformed YAML")
	}
}
