package tzdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/icsfix/icsfix/internal/relay"
)

// TestLoad tests loading the timezone definitions file.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("loads content and trims the trailing newline", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DataFileName)
		content := "BEGIN:VTIMEZONE\nTZID:W. Europe Standard Time\nEND:VTIMEZONE\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		b, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := "BEGIN:VTIMEZONE\nTZID:W. Europe Standard Time\nEND:VTIMEZONE"
		if b.Text() != want {
			t.Errorf("expected %q, got %q", want, b.Text())
		}
		if b.Path() != path {
			t.Errorf("expected path %q, got %q", path, b.Path())
		}
	})

	t.Run("missing file returns ErrTimezoneDataUnavailable", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.txt"))
		if !errors.Is(err, relay.ErrTimezoneDataUnavailable) {
			t.Errorf("expected ErrTimezoneDataUnavailable, got %v", err)
		}
	})

	t.Run("empty file returns ErrTimezoneDataUnavailable", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DataFileName)
		if err := os.WriteFile(path, []byte("\n\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		_, err := Load(path)
		if !errors.Is(err, relay.ErrTimezoneDataUnavailable) {
			t.Errorf("expected ErrTimezoneDataUnavailable, got %v", err)
		}
	})
}

// TestFindDataFile tests the search order for the data file.
func TestFindDataFile(t *testing.T) {
	t.Run("explicit path wins even when the file does not exist", func(t *testing.T) {
		t.Parallel()
		got := FindDataFile("/etc/icsfix/custom_timezones.txt")
		if got != "/etc/icsfix/custom_timezones.txt" {
			t.Errorf("expected explicit path, got %q", got)
		}
	})

	t.Run("falls back to working directory file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, DataFileName)
		if err := os.WriteFile(path, []byte("BEGIN:VTIMEZONE\nEND:VTIMEZONE\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		t.Chdir(dir)
		if got := FindDataFile(""); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns the XDG fallback when nothing exists", func(t *testing.T) {
		// Empty working directory, no explicit path: the XDG fallback is
		// returned even when nothing exists there. The contract is a
		// non-empty path in all cases; Load reports the miss with the
		// searched path in the error.
		t.Chdir(t.TempDir())

		got := FindDataFile("")
		if got == "" {
			t.Fatal("expected a fallback path, got empty string")
		}
		if filepath.Base(got) != DataFileName {
			t.Errorf("expected fallback to end in %q, got %q", DataFileName, got)
		}
	})
}
