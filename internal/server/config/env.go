package config

import (
	"os"
	"strings"
)

// lookupEnv is swapped in tests.
var lookupEnv = os.LookupEnv

// parseEnv overlays values from environment variables. cmd/server loads a
// .env file into the environment before this runs.
//
//	HTTP_ADDR, GRPC_ADDR, DATABASE_URL, JWT_SECRET, ENVIRONMENT,
//	ALLOWED_ORIGINS (comma separated), REDIS_ADDR, REDIS_PASSWORD,
//	LOG_FORMAT, LOG_LEVEL
func parseEnv(config *Config) {
	vars := map[string]*string{
		"HTTP_ADDR":      &config.HTTPAddr,
		"GRPC_ADDR":      &config.GRPCAddr,
		"DATABASE_URL":   &config.DatabaseDSN,
		"JWT_SECRET":     &config.SecretKey,
		"ENVIRONMENT":    &config.Environment,
		"REDIS_ADDR":     &config.RedisAddr,
		"REDIS_PASSWORD": &config.RedisPassword,
		"LOG_FORMAT":     &config.LogFormat,
		"LOG_LEVEL":      &config.LogLevel,
	}
	for name, dst := range vars {
		if v, ok := lookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookupEnv("ALLOWED_ORIGINS"); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
