// Package config defines the relay configuration, its defaults, and
// validation, plus loading from a YAML file and environment variables.
//
// Precedence, lowest to highest: built-in defaults, the .icsfix YAML
// file (explicit path, current directory, then home directory), values
// from the environment (a .env file is honored when present), and
// finally CLI flags. Validation runs once after all sources are
// applied, before any network listener is opened.
package config
