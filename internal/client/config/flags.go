package config

import "github.com/spf13/pflag"

// Flag names, shared by BindFlags and the file overlay.
const (
	FlagConfig        = "config"
	FlagServer        = "server"
	FlagGRPC          = "grpc"
	FlagSessionDB     = "session-db"
	FlagTimeout       = "timeout"
	FlagRefreshLeeway = "refresh-leeway"
	FlagLogFormat     = "log-format"
	FlagLogLevel      = "log-level"
)

// BindFlags registers the client flags on fs, writing straight into c. The
// current values of c become the flag defaults, so call LoadDefaults first.
func (c *Config) BindFlags(fs *pflag.FlagSet) *string {
	path := fs.StringP(FlagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringVarP(&c.ServerURL, FlagServer, "a", c.ServerURL, "REST API base URL")
	fs.StringVarP(&c.GRPCAddr, FlagGRPC, "g", c.GRPCAddr, "gRPC session service address")
	fs.StringVar(&c.SessionDBPath, FlagSessionDB, c.SessionDBPath, "file that keeps the login across runs")
	fs.DurationVar(&c.RequestTimeout, FlagTimeout, c.RequestTimeout, "request timeout")
	fs.DurationVar(&c.RefreshLeeway, FlagRefreshLeeway, c.RefreshLeeway, "refresh the access token this long before expiry")
	fs.StringVar(&c.LogFormat, FlagLogFormat, c.LogFormat, "log format: text, json or zap")
	fs.StringVar(&c.LogLevel, FlagLogLevel, c.LogLevel, "log level")
	return path
}
