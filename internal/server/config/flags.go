package config

import (
	"io"
	"os"

	"github.com/dmitrijs2005/itemkeeper/internal/flagx"
	"github.com/spf13/pflag"
)

// newFlagSet binds every server flag to c, using the current values of c as
// defaults. Durations take Go syntax ("15m", "168h").
func newFlagSet(c *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("itemkeeper-server", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringP("config", "c", "", "path to a JSON or YAML config file")
	fs.StringVarP(&c.HTTPAddr, "http-addr", "a", c.HTTPAddr, "REST API listen address")
	fs.StringVarP(&c.GRPCAddr, "grpc-addr", "g", c.GRPCAddr, "gRPC session API listen address")
	fs.StringVarP(&c.DatabaseDSN, "database-dsn", "d", c.DatabaseDSN, "PostgreSQL DSN; empty keeps everything in memory")
	fs.StringVarP(&c.SecretKey, "secret", "s", c.SecretKey, "JWT signing secret")
	fs.DurationVarP(&c.AccessTokenValidityDuration, "access-ttl", "t", c.AccessTokenValidityDuration, "access token lifetime")
	fs.DurationVarP(&c.RefreshTokenValidityDuration, "refresh-ttl", "r", c.RefreshTokenValidityDuration, "refresh token lifetime")
	fs.DurationVar(&c.ResetTokenValidityDuration, "reset-ttl", c.ResetTokenValidityDuration, "password reset token lifetime")
	fs.IntVar(&c.BcryptCost, "bcrypt-cost", c.BcryptCost, "bcrypt cost factor")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, `"production" enables cross-site refresh cookies`)
	fs.StringSliceVar(&c.AllowedOrigins, "allowed-origins", c.AllowedOrigins, "CORS origins allowed to send credentials")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "Redis address for the user cache; empty disables it")
	fs.DurationVar(&c.UserCacheTTL, "user-cache-ttl", c.UserCacheTTL, "user cache entry lifetime")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: json, text or zap")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "log level")
	return fs
}

// parseFlags overlays command-line flags from args onto config. Arguments
// that are not server flags are ignored. Invalid values panic, the same as
// an unreadable config file.
func parseFlags(config *Config, args []string) {
	fs := newFlagSet(config)
	if err := fs.Parse(flagx.FilterArgs(args, fs)); err != nil {
		panic(err)
	}
}

func osArgs() []string {
	return os.Args[1:]
}
