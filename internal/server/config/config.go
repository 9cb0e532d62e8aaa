// Package config handles configuration for the server component,
// including defaults, a JSON or YAML file overlay, environment variables
// and command-line flags.
package config

import "time"

// Config holds runtime settings for the itemkeeper server.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses for the REST API and the gRPC session API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration / ResetTokenValidityDuration: token lifetimes.
//   - BcryptCost: password hashing cost factor.
//   - Environment: "production" switches the refresh cookie to Secure + SameSite=None.
//   - AllowedOrigins: CORS allow-list; browser clients send the refresh cookie cross-origin.
//   - RedisAddr / RedisPassword / UserCacheTTL: optional user cache in front of the auth gate.
//   - LogFormat / LogLevel: see logging.New.
// DefaultSecretKey is the development JWT secret.
const DefaultSecretKey = "secretKey"

type Config struct {
	HTTPAddr                     string
	GRPCAddr                     string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	ResetTokenValidityDuration   time.Duration
	BcryptCost                   int
	Environment                  string
	AllowedOrigins               []string
	RedisAddr                    string
	RedisPassword                string
	UserCacheTTL                 time.Duration
	LogFormat                    string
	LogLevel                     string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = DefaultSecretKey
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.ResetTokenValidityDuration = 1 * time.Hour
	c.BcryptCost = 10
	c.Environment = "development"
	c.AllowedOrigins = []string{"http://localhost:5173"}
	c.RedisAddr = ""
	c.RedisPassword = ""
	c.UserCacheTTL = 5 * time.Minute
	c.LogFormat = "json"
	c.LogLevel = "info"
}

// IsProduction reports whether the server runs with production cookie policy.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	args := osArgs()
	parseFile(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
