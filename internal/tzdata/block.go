package tzdata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/icsfix/icsfix/internal/relay"
)

// DataFileName is the conventional name of the timezone definitions file.
const DataFileName = "missing_timezones.txt"

// appName is the directory name used for XDG lookups.
const appName = "icsfix"

// Block is an immutable fragment of VTIMEZONE definitions, shared
// read-only across all concurrent requests for the life of the process.
type Block struct {
	text string
	path string
}

// Load reads the timezone definitions from path.
//
// A missing or unreadable file, or a file with no content, returns an
// error wrapping relay.ErrTimezoneDataUnavailable: the relay cannot do
// its one job without the block, and the operator needs to fix the
// deployment rather than any caller their request.
func Load(path string) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", relay.ErrTimezoneDataUnavailable, err)
	}

	text := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s is empty", relay.ErrTimezoneDataUnavailable, path)
	}

	return &Block{text: text, path: path}, nil
}

// Text returns the timezone definitions, without a trailing newline.
// The injector adds its own separator.
func (b *Block) Text() string {
	return b.text
}

// Path returns where the block was loaded from.
func (b *Block) Path() string {
	return b.path
}

// FindDataFile locates the timezone definitions file.
//
// Search order:
//  1. explicit path, when non-empty (missing file is still reported so
//     an operator typo is not silently shadowed by a fallback)
//  2. DataFileName in the current working directory
//  3. DataFileName in the XDG config directory for icsfix
//
// Returns the path to use; Load reports the error if nothing exists.
func FindDataFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DataFileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return filepath.Join(xdg.ConfigHome, appName, DataFileName)
}
