package config

import "time"

// Config holds runtime settings for the itemkeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API.
//   - GRPCAddr: host:port of the gRPC session service.
//   - SessionDBPath: SQLite file holding the cookie jar (the refresh token).
//   - RequestTimeout: per-request HTTP timeout.
//   - RefreshLeeway: refresh the access token this long before it expires.
//   - LogFormat / LogLevel: diagnostics written to stderr.
type Config struct {
	ServerURL      string
	GRPCAddr       string
	SessionDBPath  string
	RequestTimeout time.Duration
	RefreshLeeway  time.Duration
	LogFormat      string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.GRPCAddr = "127.0.0.1:50051"
	c.SessionDBPath = "itemkeeper-session.db"
	c.RequestTimeout = 10 * time.Second
	c.RefreshLeeway = 0
	c.LogFormat = "text"
	c.LogLevel = "warn"
}
