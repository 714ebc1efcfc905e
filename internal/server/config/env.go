package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/booklib/internal/timex"
)

// parseEnv overlays environment variables onto config. Variables that are
// unset keep the current value; set-but-empty ones clear it.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := []struct {
		dst  *string
		keys []string
	}{
		{&config.Address, []string{"ADDRESS"}},
		{&config.DatabaseDSN, []string{"DATABASE_URI", "MONGODB_URI"}},
		{&config.AccessTokenSecret, []string{"JWT_ACCESS_SECRET"}},
		{&config.RefreshTokenSecret, []string{"JWT_REFRESH_SECRET"}},
		{&config.CookieDomain, []string{"COOKIE_DOMAIN"}},
		{&config.Environment, []string{"APP_ENV"}},
		{&config.LogLevel, []string{"LOG_LEVEL"}},
		{&config.PageBaseURL, []string{"PAGE_BASE_URL"}},
		{&config.S3RootUser, []string{"S3_ROOT_USER"}},
		{&config.S3RootPassword, []string{"S3_ROOT_PASSWORD"}},
		{&config.S3Bucket, []string{"S3_BUCKET"}},
		{&config.S3Region, []string{"S3_REGION"}},
		{&config.S3BaseEndpoint, []string{"S3_BASE_ENDPOINT"}},
	}
	for _, s := range strs {
		if v, ok := firstOf(lookup, s.keys); ok {
			*s.dst = v
		}
	}

	durs := []struct {
		dst *time.Duration
		key string
	}{
		{&config.AccessTokenTTL, "JWT_ACCESS_EXPIRES_IN"},
		{&config.RefreshTokenTTL, "JWT_REFRESH_EXPIRES_IN"},
		{&config.AccessCookieMaxAge, "ACCESS_COOKIE_MAX_AGE"},
		{&config.PageURLTTL, "PAGE_URL_TTL"},
	}
	for _, d := range durs {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := timex.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func firstOf(lookup func(string) (string, bool), keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := lookup(k); ok {
			return v, true
		}
	}
	return "", false
}
