package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Enabled {
		t.Error("default config should have sync disabled")
	}
	if cfg.Database.Path == "" {
		t.Error("default config should have a database path")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not written: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := &Config{
		Database: DatabaseConfig{Path: "/tmp/golf.db"},
		Server: ServerConfig{
			URL:     "https://sync.example.com",
			Enabled: true,
			Email:   "alex@example.com",
			Token:   "tok",
			UID:     "user-1",
		},
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip changed config: got %+v, want %+v", got, want)
	}
}

func TestLoadFillsMissingDatabasePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  url: https://sync.example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path == "" {
		t.Error("missing database path should fall back to the default")
	}
	if cfg.Server.URL != "https://sync.example.com" {
		t.Errorf("server url = %q", cfg.Server.URL)
	}
}
