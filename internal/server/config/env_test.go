package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func Test_parseEnv(t *testing.T) {
	orig := lookupEnv
	t.Cleanup(func() { lookupEnv = orig })

	lookupEnv = fakeEnv(map[string]string{
		"HTTP_ADDR":       ":1",
		"GRPC_ADDR":       ":2",
		"DATABASE_URL":    "postgres://x",
		"JWT_SECRET":      "s",
		"ENVIRONMENT":     "production",
		"ALLOWED_ORIGINS": "https://a.example, https://b.example,,",
		"REDIS_ADDR":      "r:6379",
		"REDIS_PASSWORD":  "rp",
		"LOG_FORMAT":      "zap",
		"LOG_LEVEL":       "",
	})

	cfg := &Config{LogLevel: "info"}
	parseEnv(cfg)

	assert.Equal(t, ":1", cfg.HTTPAddr)
	assert.Equal(t, ":2", cfg.GRPCAddr)
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, "s", cfg.SecretKey)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "r:6379", cfg.RedisAddr)
	assert.Equal(t, "rp", cfg.RedisPassword)
	assert.Equal(t, "zap", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel, "empty values do not override")
}
