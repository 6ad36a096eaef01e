package config

// Package config loads application settings from defaults, an optional YAML
// file, and command-line flags, in increasing order of precedence.
