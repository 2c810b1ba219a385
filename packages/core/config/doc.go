// Package config handles configuration loading and management for hitvars.
//
// It provides functionality for:
//   - Discovering .hitvars.config.json, hitvars.config.json or .hitvarsrc
//   - Default configuration values
//   - Merging file settings with command-line overrides
package config
