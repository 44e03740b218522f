package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".icsfix"

// File is the YAML shape of the configuration file. All fields are
// optional; absent fields leave the corresponding Config value alone.
type File struct {
	Listen          string `yaml:"listen"`
	TimezoneFile    string `yaml:"timezone_file"`
	MaxDocumentSize int64  `yaml:"max_document_size"`
	SniffTimeout    string `yaml:"sniff_timeout"`
	FetchTimeout    string `yaml:"fetch_timeout"`
	UserAgent       string `yaml:"user_agent"`
	MaxConns        int    `yaml:"max_conns"`
	DBDir           string `yaml:"db_dir"`
	TLSDomain       string `yaml:"tls_domain"`
	TLSCacheDir     string `yaml:"tls_cache_dir"`
}

// LoadConfigFile reads a YAML configuration file. A missing file
// returns ErrConfigNotFound so the caller can decide whether that is
// fatal (explicit path) or fine (default search).
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Operator-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file:
//  1. the explicit path, if given
//  2. .icsfix in the current directory
//  3. .icsfix in the user's home directory
//
// Returns the path if found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// Apply copies the non-zero values of f onto c. Duration fields use
// time.ParseDuration syntax; unparseable durations are ignored rather
// than fatal, matching how partially-filled files should still work.
func (f *File) Apply(c *Config) {
	if f.Listen != "" {
		c.Listen = f.Listen
	}
	if f.TimezoneFile != "" {
		c.TimezoneFile = f.TimezoneFile
	}
	if f.MaxDocumentSize > 0 {
		c.MaxDocumentSize = f.MaxDocumentSize
	}
	if d, err := time.ParseDuration(f.SniffTimeout); err == nil && d > 0 {
		c.SniffTimeout = d
	}
	if d, err := time.ParseDuration(f.FetchTimeout); err == nil && d > 0 {
		c.FetchTimeout = d
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.MaxConns > 0 {
		c.MaxConns = f.MaxConns
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.TLSDomain != "" {
		c.TLSDomain = f.TLSDomain
	}
	if f.TLSCacheDir != "" {
		c.TLSCacheDir = f.TLSCacheDir
	}
}

// ApplyEnv overlays ICSFIX_* environment variables onto c. A .env file
// in the working directory is loaded first when present; real
// environment variables win over .env entries (godotenv does not
// overwrite existing variables).
func ApplyEnv(c *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("ICSFIX_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("ICSFIX_TIMEZONE_FILE"); v != "" {
		c.TimezoneFile = v
	}
	if v := os.Getenv("ICSFIX_MAX_DOCUMENT_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxDocumentSize = n
		}
	}
	if v := os.Getenv("ICSFIX_DB_DIR"); v != "" {
		c.DBDir = v
	}
	if v := os.Getenv("ICSFIX_TLS_DOMAIN"); v != "" {
		c.TLSDomain = v
	}
}
