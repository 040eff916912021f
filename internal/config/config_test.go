package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_Load_Defaults(t *testing.T) {
	// given
	dir := t.TempDir()

	// when
	cfg, err := load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))

	// then
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.HTTPServer.Port)
	assert.Equal(t, int64(100<<10), cfg.HTTPServer.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.Timeout.Read)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.App.IsProduction())
	assert.Equal(t, "X-API-Key", cfg.Auth.Header)
	assert.Equal(t, "supersecretkey", cfg.Auth.APIKey)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Seed.Enabled)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "products", cfg.NATS.SubjectPrefix)
	assert.Equal(t, uint32(5), cfg.Breaker.ConsecutiveFailures)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "product-catalog", cfg.Telemetry.ServiceName)
	assert.Equal(t, "localhost:4318", cfg.Telemetry.Traces.OtlpHttp.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Telemetry.Traces.OtlpHttp.Timeout)
}

func Test_Load_LayerPriority(t *testing.T) {
	// given
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yaml", `
server:
  port: 8080
  timeout:
    read: 3s
log:
  level: debug
  format: text
auth:
  apikey: from-yaml
app:
  env: staging
`)
	envPath := writeFile(t, dir, ".env", `
PRODUCT_AUTH_APIKEY=from-dotenv
PRODUCT_APP_ENV=production
UNRELATED_SETTING=ignored
`)
	t.Setenv("PRODUCT_AUTH_APIKEY", "from-env")

	// when
	cfg, err := load(configPath, envPath)

	// then
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPServer.Port, "yaml overrides defaults")
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.Timeout.Read)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.Timeout.Write, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.App.IsProduction(), ".env overrides yaml")
	assert.Equal(t, "from-env", cfg.Auth.APIKey, "environment overrides .env")
}

func Test_Load_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "port out of range", yaml: "server:\n  port: 70000\n"},
		{name: "unknown log level", yaml: "log:\n  level: verbose\n"},
		{name: "unknown log format", yaml: "log:\n  format: xml\n"},
		{name: "empty api key", yaml: "auth:\n  apikey: \"\"\n"},
		{name: "nats enabled without url", yaml: "nats:\n  enabled: true\n  url: \"\"\n"},
		{name: "metrics path without slash", yaml: "metrics:\n  path: metrics\n"},
		{name: "zero breaker threshold", yaml: "breaker:\n  consecutivefailures: 0\n"},
		{name: "telemetry enabled without endpoint", yaml: "telemetry:\n  enabled: true\n  traces:\n    otlphttp:\n      endpoint: \"\"\n"},
		{name: "empty telemetry service name", yaml: "telemetry:\n  servicename: \"\"\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			configPath := writeFile(t, dir, "config.yaml", tc.yaml)

			cfg, err := load(configPath, filepath.Join(dir, "missing.env"))

			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func Test_Config_StringMasksSecrets(t *testing.T) {
	dir := t.TempDir()
	cfg, err := load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	out := cfg.String()

	assert.NotContains(t, out, "supersecretkey")
	assert.Contains(t, out, "apikey: ****")
	assert.Contains(t, out, "port: 3000")
}

func Test_KeyTransformer(t *testing.T) {
	assert.Equal(t, "server.timeout.readheader", keyTransformer("PRODUCT_SERVER_TIMEOUT_READHEADER"))
	assert.Equal(t, "auth.apikey", keyTransformer("PRODUCT_AUTH_APIKEY"))
}

func Test_Default(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3000, cfg.HTTPServer.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.Timeout.ReadHeader)
}
