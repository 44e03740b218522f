package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadConfigFile tests YAML loading and the not-found sentinel.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads a full file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `
listen: "0.0.0.0:9090"
timezone_file: "/etc/icsfix/missing_timezones.txt"
max_document_size: 1048576
sniff_timeout: "10s"
fetch_timeout: "45s"
max_conns: 64
db_dir: "/var/lib/icsfix"
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		cfg := NewConfig()
		f.Apply(cfg)

		if cfg.Listen != "0.0.0.0:9090" {
			t.Errorf("expected listen override, got %q", cfg.Listen)
		}
		if cfg.TimezoneFile != "/etc/icsfix/missing_timezones.txt" {
			t.Errorf("expected timezone file override, got %q", cfg.TimezoneFile)
		}
		if cfg.MaxDocumentSize != 1048576 {
			t.Errorf("expected 1048576, got %d", cfg.MaxDocumentSize)
		}
		if cfg.SniffTimeout != 10*time.Second {
			t.Errorf("expected 10s, got %v", cfg.SniffTimeout)
		}
		if cfg.FetchTimeout != 45*time.Second {
			t.Errorf("expected 45s, got %v", cfg.FetchTimeout)
		}
		if cfg.MaxConns != 64 {
			t.Errorf("expected 64, got %d", cfg.MaxConns)
		}
		if cfg.DBDir != "/var/lib/icsfix" {
			t.Errorf("expected db dir override, got %q", cfg.DBDir)
		}
	})

	t.Run("partial file leaves other defaults alone", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("listen: \"127.0.0.1:3000\"\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		cfg := NewConfig()
		f.Apply(cfg)

		if cfg.Listen != "127.0.0.1:3000" {
			t.Errorf("expected listen override, got %q", cfg.Listen)
		}
		if cfg.MaxDocumentSize != DefaultMaxDocumentSize {
			t.Errorf("expected default ceiling, got %d", cfg.MaxDocumentSize)
		}
		if cfg.FetchTimeout != DefaultFetchTimeout {
			t.Errorf("expected default fetch timeout, got %v", cfg.FetchTimeout)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("listen: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected an error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the search order.
func TestFindConfigFile(t *testing.T) {
	t.Run("explicit existing path wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("listen: \"x\"\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("listen: \"x\"\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		t.Chdir(dir)
		if got := FindConfigFile(""); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})
}

// TestApplyEnv tests environment variable overrides.
func TestApplyEnv(t *testing.T) {
	t.Run("environment overrides config", func(t *testing.T) {
		t.Setenv("ICSFIX_LISTEN", "0.0.0.0:8443")
		t.Setenv("ICSFIX_MAX_DOCUMENT_SIZE", "204800")

		cfg := NewConfig()
		ApplyEnv(cfg)

		if cfg.Listen != "0.0.0.0:8443" {
			t.Errorf("expected env listen, got %q", cfg.Listen)
		}
		if cfg.MaxDocumentSize != 204800 {
			t.Errorf("expected 204800, got %d", cfg.MaxDocumentSize)
		}
	})

	t.Run("non-numeric size override is ignored", func(t *testing.T) {
		t.Setenv("ICSFIX_MAX_DOCUMENT_SIZE", "lots")

		cfg := NewConfig()
		ApplyEnv(cfg)

		if cfg.MaxDocumentSize != DefaultMaxDocumentSize {
			t.Errorf("expected default ceiling, got %d", cfg.MaxDocumentSize)
		}
	})
}
