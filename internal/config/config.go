package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The pipeline constants mirror the deployed relay's behavior and exist
// here, not scattered through the stages, so the defaults are documented
// in one place.
const (
	// DefaultListen is the HTTP listen address. Loopback by default; the
	// relay is expected to sit behind a reverse proxy unless a TLS domain
	// is configured.
	DefaultListen = "127.0.0.1:8080"

	// DefaultMaxDocumentSize is the fetch size ceiling in bytes (800 KiB).
	// Subscription calendars are rarely above a couple hundred KiB; the
	// ceiling bounds per-request memory against misbehaving upstreams.
	DefaultMaxDocumentSize int64 = 819200

	// DefaultSniffTimeout bounds the 1 KiB content probe. Short, because
	// the probe exists only to fail fast on obviously wrong URLs.
	DefaultSniffTimeout = 15 * time.Second

	// DefaultFetchTimeout covers the entire streaming download, not
	// individual chunks.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultFetchChunkSize is the streaming read granularity in bytes.
	DefaultFetchChunkSize = 4096

	// DefaultSniffRangeBytes is how many leading bytes the sniffer
	// requests and inspects.
	DefaultSniffRangeBytes int64 = 1024

	// DefaultMaxConns caps concurrent client connections to the relay.
	// Zero disables the cap.
	DefaultMaxConns = 256

	// DefaultUserAgent identifies the relay to upstream calendar servers.
	DefaultUserAgent = "icsfix/1.0 (+https://github.com/icsfix/icsfix)"

	// AppName is the application name used for XDG directory paths.
	AppName = "icsfix"
)

// Config holds all relay options. It is populated from defaults, the
// optional YAML file, environment variables, and CLI flags, then passed
// through the application explicitly rather than read from globals.
type Config struct {
	// Listen is the HTTP listen address in "host:port" form.
	Listen string

	// TimezoneFile is the path to the VTIMEZONE definitions file. Empty
	// means search the conventional locations (see tzdata.FindDataFile).
	TimezoneFile string

	// MaxDocumentSize is the fetch size ceiling in bytes.
	MaxDocumentSize int64

	// SniffTimeout bounds the content probe request.
	SniffTimeout time.Duration

	// FetchTimeout covers the whole streaming download.
	FetchTimeout time.Duration

	// FetchChunkSize is the streaming read granularity in bytes.
	FetchChunkSize int

	// SniffRangeBytes is how many leading bytes the sniffer inspects.
	SniffRangeBytes int64

	// UserAgent is sent with sniff and fetch requests upstream.
	UserAgent string

	// MaxConns caps concurrent client connections. Zero means no cap.
	MaxConns int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONLog switches log output from text to JSON.
	JSONLog bool

	// DBDir is the directory for the SQLite request audit store. Empty
	// disables auditing entirely.
	DBDir string

	// TLSDomain, when set, enables automatic TLS via Let's Encrypt for
	// that domain instead of plain HTTP.
	TLSDomain string

	// TLSCacheDir stores obtained certificates. Defaults to the XDG
	// cache directory when empty.
	TLSCacheDir string

	// ConfigFilePath is an explicit YAML config path. Empty means search
	// .icsfix in the current then the home directory.
	ConfigFilePath string
}

// NewConfig returns a Config with all defaults applied.
//
// Design decision: A constructor instead of zero values because nearly
// every default is non-zero, and the constructor doubles as the
// canonical list of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Listen:          DefaultListen,
		MaxDocumentSize: DefaultMaxDocumentSize,
		SniffTimeout:    DefaultSniffTimeout,
		FetchTimeout:    DefaultFetchTimeout,
		FetchChunkSize:  DefaultFetchChunkSize,
		SniffRangeBytes: DefaultSniffRangeBytes,
		UserAgent:       DefaultUserAgent,
		MaxConns:        DefaultMaxConns,
	}
}

// XDGDataDir returns the XDG data directory for icsfix
// (~/.local/share/icsfix on Linux). Used as the default audit store
// location when auditing is enabled without an explicit directory.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for icsfix
// (~/.config/icsfix on Linux).
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for icsfix
// (~/.cache/icsfix on Linux). Used for the autocert certificate cache.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration and returns the first problem found
// as one of the sentinel errors in errors.go. It runs once after all
// sources are applied, so every later component can trust its inputs.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return ErrEmptyListen
	}
	if c.MaxDocumentSize <= 0 {
		return ErrInvalidMaxDocumentSize
	}
	if c.SniffTimeout <= 0 || c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.FetchChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.SniffRangeBytes <= 0 {
		return ErrInvalidSniffRange
	}
	if c.MaxConns < 0 {
		return ErrInvalidMaxConns
	}
	return nil
}
