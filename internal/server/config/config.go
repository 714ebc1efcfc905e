// Package config handles configuration for the library server,
// including defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/booklib/internal/common"
)

const EnvironmentProduction = "production"

// Config holds runtime settings for the library server.
//
// Fields:
//   - Address: HTTP bind address.
//   - DatabaseDSN: store connection string; the scheme selects the backend
//     (mongodb://, postgres://, memory://).
//   - AccessTokenSecret / RefreshTokenSecret: independent HS256 signing secrets.
//   - AccessTokenTTL / RefreshTokenTTL: token lifetimes.
//   - AccessCookieMaxAge: lifetime of the access cookie (longer than the token it carries).
//   - CookieDomain: optional Domain attribute for both session cookies.
//   - Environment: "production" turns on Secure cookies and gin release mode.
//   - S3*: object storage for page images; an empty bucket means static paths.
//   - PageURLTTL: validity of presigned page URLs.
type Config struct {
	Address            string
	DatabaseDSN        string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	AccessCookieMaxAge time.Duration
	CookieDomain       string
	Environment        string
	LogLevel           string
	PageBaseURL        string
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	PageURLTTL         time.Duration
}

// LoadDefaults populates Config with development defaults. Secrets and the
// store DSN have no defaults on purpose.
func (c *Config) LoadDefaults() {
	c.Address = ":8080"
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 7 * 24 * time.Hour
	c.AccessCookieMaxAge = time.Hour
	c.Environment = "development"
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
	c.PageURLTTL = 15 * time.Minute
}

// IsProduction reports whether cookies must carry the Secure flag.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// Validate checks the settings the server cannot start without.
// The DSN is checked later, on first store access.
func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("%w: access token secret is not set", common.ErrorConfiguration)
	}
	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("%w: refresh token secret is not set", common.ErrorConfiguration)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("%w: token lifetimes must be positive", common.ErrorConfiguration)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
