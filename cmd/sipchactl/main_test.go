package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sipcha/console-go/gateway"
)

func TestBuildApp_NoEndpointConfigured(t *testing.T) {
	t.Setenv(gateway.EnvEndpoint, "")
	os.Unsetenv(gateway.EnvEndpoint)
	dir := t.TempDir()

	_, err := buildApp(
		filepath.Join(dir, "absent.yaml"), "", "",
		filepath.Join(dir, "session.json"), "warn", false, false)

	if err == nil {
		t.Fatal("buildApp() expected error without any endpoint")
	}
	if !strings.Contains(err.Error(), "no API endpoint configured") {
		t.Errorf("error = %v, want configuration instructions", err)
	}
}

func TestBuildApp_ExplicitEndpoint(t *testing.T) {
	dir := t.TempDir()

	a, err := buildApp(
		filepath.Join(dir, "absent.yaml"), "https://api.example.com", "acme",
		filepath.Join(dir, "session.json"), "warn", false, false)
	if err != nil {
		t.Fatalf("buildApp() error: %v", err)
	}
	defer a.Close()

	if a.client.Config().Endpoint != "https://api.example.com" {
		t.Errorf("Endpoint = %q, want explicit value", a.client.Config().Endpoint)
	}
	if a.tenant != "acme" {
		t.Errorf("tenant = %q, want acme", a.tenant)
	}
	if a.sessions.Authenticated() {
		t.Error("fresh store should start unauthenticated")
	}
}
