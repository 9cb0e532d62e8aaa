package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/itemkeeper/internal/timex"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the client configuration.
type FileConfig struct {
	ServerURL      string         `json:"server_url" yaml:"server_url"`
	GRPCAddr       string         `json:"grpc_addr" yaml:"grpc_addr"`
	SessionDBPath  string         `json:"session_db_path" yaml:"session_db_path"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RefreshLeeway  timex.Duration `json:"refresh_leeway" yaml:"refresh_leeway"`
	LogFormat      string         `json:"log_format" yaml:"log_format"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
}

// ApplyFile overlays the file at path onto c. Values whose flag was set
// explicitly on fs win over the file, so the precedence stays
// defaults < file < flags.
func (c *Config) ApplyFile(path string, fs *pflag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	changed := func(name string) bool {
		return fs != nil && fs.Changed(name)
	}

	setString(&c.ServerURL, fc.ServerURL, changed(FlagServer))
	setString(&c.GRPCAddr, fc.GRPCAddr, changed(FlagGRPC))
	setString(&c.SessionDBPath, fc.SessionDBPath, changed(FlagSessionDB))
	setString(&c.LogFormat, fc.LogFormat, changed(FlagLogFormat))
	setString(&c.LogLevel, fc.LogLevel, changed(FlagLogLevel))
	if fc.RequestTimeout.Duration > 0 && !changed(FlagTimeout) {
		c.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RefreshLeeway.Duration > 0 && !changed(FlagRefreshLeeway) {
		c.RefreshLeeway = fc.RefreshLeeway.Duration
	}
	return nil
}

func setString(dst *string, v string, locked bool) {
	if v != "" && !locked {
		*dst = v
	}
}
