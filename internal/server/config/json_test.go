package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"address":               "www.example:9000",
		"database_dsn":          "mongodb://localhost:27017/library",
		"access_token_secret":   "access",
		"refresh_token_secret":  "refresh",
		"access_token_ttl":      "10m",
		"refresh_token_ttl":     "2d",
		"access_cookie_max_age": "30m",
		"cookie_domain":         "library.example",
		"environment":           "production",
		"log_level":             "warn",
		"page_base_url":         "https://cdn.example",
		"s3_root_user":          "user",
		"s3_root_password":      "password",
		"s3_bucket":             "pages",
		"s3_region":             "eu-west-1",
		"s3_base_endpoint":      "http://minio:9000",
		"page_url_ttl":          60000000000,
	})

	cfg := &Config{}
	require.NoError(t, parseJson(cfg, []string{"-config", path}))

	assert.Equal(t, "www.example:9000", cfg.Address)
	assert.Equal(t, "mongodb://localhost:27017/library", cfg.DatabaseDSN)
	assert.Equal(t, "access", cfg.AccessTokenSecret)
	assert.Equal(t, "refresh", cfg.RefreshTokenSecret)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.AccessCookieMaxAge)
	assert.Equal(t, "library.example", cfg.CookieDomain)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "https://cdn.example", cfg.PageBaseURL)
	assert.Equal(t, "user", cfg.S3RootUser)
	assert.Equal(t, "password", cfg.S3RootPassword)
	assert.Equal(t, "pages", cfg.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.S3Region)
	assert.Equal(t, "http://minio:9000", cfg.S3BaseEndpoint)
	assert.Equal(t, time.Minute, cfg.PageURLTTL)
}

func Test_parseJson_PartialFileKeepsOtherFields(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"log_level": "debug"})

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseJson(cfg, []string{"-c", path}))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
}

func Test_parseJson_NoFlag(t *testing.T) {
	cfg := &Config{Address: "defaults:1234"}
	require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))
	assert.Equal(t, "defaults:1234", cfg.Address)
}

func Test_parseJson_Invalid(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

	assert.Error(t, parseJson(&Config{}, []string{"-c", bad}))

	badDur := writeTempJSON(t, map[string]any{"access_token_ttl": "fortnight"})
	assert.Error(t, parseJson(&Config{}, []string{"-c", badDur}))
}
