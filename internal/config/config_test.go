package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openhive-oss/openhive/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Registry.Driver != "memory" {
		t.Errorf("expected default driver memory, got %s", cfg.Registry.Driver)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoad_SQLiteDriver(t *testing.T) {
	dir := writeConfig(t, `
registry:
  driver: sqlite
  path: /tmp/agents.db
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Registry.Driver != "sqlite" || cfg.Registry.Path != "/tmp/agents.db" {
		t.Errorf("unexpected registry config: %+v", cfg.Registry)
	}
}

func TestLoad_RemoteRequiresURL(t *testing.T) {
	dir := writeConfig(t, `
registry:
  driver: remote
`)
	_, err := Load(dir)
	if errors.AsCode(err) != errors.CodeConfigInvalid {
		t.Fatalf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	dir := writeConfig(t, `
registry:
  driver: cassandra
`)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoad_MultipleCredentials(t *testing.T) {
	dir := writeConfig(t, `
registry:
  driver: remote
  url: https://registry.example.com
  auth:
    bearer_token: a
    api_key: b
`)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for multiple credentials")
	}
}

func TestLoad_EnvInterpolation(t *testing.T) {
	t.Setenv("OPENHIVE_TEST_TOKEN", "tok-123")
	dir := writeConfig(t, `
registry:
  driver: remote
  url: https://registry.example.com
  auth:
    bearer_token: ${env.OPENHIVE_TEST_TOKEN}
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Registry.Auth.BearerToken != "tok-123" {
		t.Errorf("expected interpolated token, got %q", cfg.Registry.Auth.BearerToken)
	}
}

func TestLoad_BareEnvInterpolation(t *testing.T) {
	t.Setenv("OPENHIVE_TEST_URL", "https://hive.example.com")
	dir := writeConfig(t, `
registry:
  driver: remote
  url: ${OPENHIVE_TEST_URL}
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Registry.URL != "https://hive.example.com" {
		t.Errorf("expected interpolated url, got %q", cfg.Registry.URL)
	}
}
