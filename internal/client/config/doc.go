// Package config loads runtime configuration for the itemkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file named by -c/--config (see (*Config).ApplyFile).
//  3. Command-line flags bound by (*Config).BindFlags, which override the file.
//
// Durations in files accept strings like "10s" or integer nanoseconds:
//
//	server_url: http://127.0.0.1:8080
//	request_timeout: 10s
//	refresh_leeway: 30s
package config
