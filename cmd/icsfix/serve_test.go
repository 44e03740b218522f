package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/icsfix/icsfix/internal/config"
)

// TestBuildServeConfig tests configuration precedence for serve.
func TestBuildServeConfig(t *testing.T) {
	t.Run("defaults survive with no inputs", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cmd := NewRootCmd()
		serveCmd, _, err := cmd.Find([]string{"serve"})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildServeConfig(serveCmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Listen != config.DefaultListen {
			t.Errorf("expected default listen, got %q", cfg.Listen)
		}
		if cfg.MaxDocumentSize != config.DefaultMaxDocumentSize {
			t.Errorf("expected default max size, got %d", cfg.MaxDocumentSize)
		}
		if cfg.DBDir != config.XDGDataDir() {
			t.Errorf("expected XDG data dir for audit store, got %q", cfg.DBDir)
		}
	})

	t.Run("config file values are applied", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		content := "listen: 0.0.0.0:9999\nmax_document_size: 1024\nsniff_timeout: 5s\n"
		if err := os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewRootCmd()
		serveCmd, _, err := cmd.Find([]string{"serve"})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildServeConfig(serveCmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Listen != "0.0.0.0:9999" {
			t.Errorf("expected listen from file, got %q", cfg.Listen)
		}
		if cfg.MaxDocumentSize != 1024 {
			t.Errorf("expected max size from file, got %d", cfg.MaxDocumentSize)
		}
		if cfg.SniffTimeout != 5*time.Second {
			t.Errorf("expected sniff timeout from file, got %v", cfg.SniffTimeout)
		}
	})

	t.Run("environment beats the file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		t.Setenv("ICSFIX_LISTEN", "127.0.0.1:7777")

		content := "listen: 0.0.0.0:9999\n"
		if err := os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewRootCmd()
		serveCmd, _, err := cmd.Find([]string{"serve"})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildServeConfig(serveCmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Listen != "127.0.0.1:7777" {
			t.Errorf("expected listen from environment, got %q", cfg.Listen)
		}
	})

	t.Run("flags beat everything", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ICSFIX_LISTEN", "127.0.0.1:7777")

		cmd := NewRootCmd()
		serveCmd, _, err := cmd.Find([]string{"serve"})
		if err != nil {
			t.Fatal(err)
		}
		if err := serveCmd.Flags().Set("listen", "127.0.0.1:5555"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildServeConfig(serveCmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Listen != "127.0.0.1:5555" {
			t.Errorf("expected listen from flag, got %q", cfg.Listen)
		}
	})

	t.Run("no-audit clears the audit directory", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cmd := NewRootCmd()
		serveCmd, _, err := cmd.Find([]string{"serve"})
		if err != nil {
			t.Fatal(err)
		}
		if err := serveCmd.Flags().Set("no-audit", "true"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildServeConfig(serveCmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDir != "" {
			t.Errorf("expected empty audit dir, got %q", cfg.DBDir)
		}
	})

	t.Run("explicit missing config file is fatal", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cmd := NewRootCmd()
		serveCmd, _, err := cmd.Find([]string{"serve"})
		if err != nil {
			t.Fatal(err)
		}
		if err := serveCmd.Flags().Set("config", "/nonexistent/icsfix.yaml"); err != nil {
			t.Fatal(err)
		}

		if _, err := buildServeConfig(serveCmd); err == nil {
			t.Fatal("expected an error for a missing explicit config file")
		}
	})
}
