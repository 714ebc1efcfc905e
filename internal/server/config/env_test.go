package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseEnv(cfg, envMap(map[string]string{
		"ADDRESS":                ":8181",
		"MONGODB_URI":            "mongodb://mongo:27017/library",
		"JWT_ACCESS_SECRET":      "a",
		"JWT_REFRESH_SECRET":     "r",
		"JWT_ACCESS_EXPIRES_IN":  "20m",
		"JWT_REFRESH_EXPIRES_IN": "14d",
		"ACCESS_COOKIE_MAX_AGE":  "2h",
		"COOKIE_DOMAIN":          "bugema.ac.ug",
		"S3_BUCKET":              "pages",
		"PAGE_URL_TTL":           "",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Address)
	assert.Equal(t, "mongodb://mongo:27017/library", cfg.DatabaseDSN)
	assert.Equal(t, "a", cfg.AccessTokenSecret)
	assert.Equal(t, "r", cfg.RefreshTokenSecret)
	assert.Equal(t, 20*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 2*time.Hour, cfg.AccessCookieMaxAge)
	assert.Equal(t, "bugema.ac.ug", cfg.CookieDomain)
	assert.Equal(t, "pages", cfg.S3Bucket)
	assert.Equal(t, 15*time.Minute, cfg.PageURLTTL, "empty duration keeps default")
}

func Test_parseEnv_DatabaseURIWinsOverMongoURI(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, parseEnv(cfg, envMap(map[string]string{
		"DATABASE_URI": "postgres://pg/library",
		"MONGODB_URI":  "mongodb://mongo/library",
	})))
	assert.Equal(t, "postgres://pg/library", cfg.DatabaseDSN)
}

func Test_parseEnv_BadDuration(t *testing.T) {
	err := parseEnv(&Config{}, envMap(map[string]string{"JWT_REFRESH_EXPIRES_IN": "a week"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_REFRESH_EXPIRES_IN")
}
