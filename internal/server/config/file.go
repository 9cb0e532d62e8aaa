package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/itemkeeper/internal/flagx"
	"github.com/dmitrijs2005/itemkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the server configuration. Interval
// fields use timex.Duration so both "15m" and integer nanoseconds parse.
// Zero values leave the corresponding Config field untouched.
type FileConfig struct {
	HTTPAddr                     string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr                     string         `json:"grpc_addr" yaml:"grpc_addr"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration" yaml:"reset_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	Environment                  string         `json:"environment" yaml:"environment"`
	AllowedOrigins               []string       `json:"allowed_origins" yaml:"allowed_origins"`
	RedisAddr                    string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword                string         `json:"redis_password" yaml:"redis_password"`
	UserCacheTTL                 timex.Duration `json:"user_cache_ttl" yaml:"user_cache_ttl"`
	LogFormat                    string         `json:"log_format" yaml:"log_format"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/--config in args, if any, and overlays its
// non-empty values onto config. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON. Unreadable or invalid files panic, the
// same as invalid flags.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Environment, c.Environment)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration.Duration > 0 {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	if c.UserCacheTTL.Duration > 0 {
		config.UserCacheTTL = c.UserCacheTTL.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
