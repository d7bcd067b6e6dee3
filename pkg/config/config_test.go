package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testConf struct {
	Endpoint string `envconfig:"ENDPOINT" required:"true"`
	Retries  int    `envconfig:"RETRIES" default:"3"`
}

func TestNewFromEnvironment(t *testing.T) {
	t.Setenv("WHTEST_ENDPOINT", "http://localhost:9000")

	conf, err := New[testConf]("WHTEST")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Endpoint != "http://localhost:9000" {
		t.Fatalf("unexpected endpoint: %s", conf.Endpoint)
	}
	if conf.Retries != 3 {
		t.Fatalf("expected default retries=3, got %d", conf.Retries)
	}
}

func TestNewMissingRequired(t *testing.T) {
	os.Unsetenv("WHMISS_ENDPOINT")

	if _, err := New[testConf]("WHMISS"); err == nil {
		t.Fatal("expected error for missing required variable")
	}
}

func TestNewLoadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.env")
	if err := os.WriteFile(path, []byte("WHFILE_ENDPOINT=http://db:5432\nWHFILE_RETRIES=7\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(EnvFileVar, path)

	conf, err := New[testConf]("WHFILE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Endpoint != "http://db:5432" {
		t.Fatalf("unexpected endpoint: %s", conf.Endpoint)
	}
	if conf.Retries != 7 {
		t.Fatalf("unexpected retries: %d", conf.Retries)
	}
}

func TestEnvFileDoesNotClobberProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.env")
	if err := os.WriteFile(path, []byte("WHCLOB_ENDPOINT=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(EnvFileVar, path)
	t.Setenv("WHCLOB_ENDPOINT", "from-env")

	conf, err := New[testConf]("WHCLOB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Endpoint != "from-env" {
		t.Fatalf("process env should win, got %s", conf.Endpoint)
	}
}
