package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/booklib/internal/flagx"
	"github.com/dmitrijs2005/booklib/internal/timex"
)

var serverFlags = []string{"-a", "-d", "-s", "-rs", "-t", "-r", "-e", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string    HTTP bind address (e.g. ":8080")
//	-d string    store DSN
//	-s string    access token secret
//	-rs string   refresh token secret
//	-t duration  access token TTL ("15m")
//	-r duration  refresh token TTL ("7d")
//	-e string    environment ("production" enables secure cookies)
//	-l string    log level
//
// Arguments are filtered with flagx.FilterArgs first so that flags owned by
// other components (e.g. -c) do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "store DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "rs", config.RefreshTokenSecret, "refresh token secret")
	fs.Func("t", "access token TTL", durationFlag(&config.AccessTokenTTL))
	fs.Func("r", "refresh token TTL", durationFlag(&config.RefreshTokenTTL))
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}

func durationFlag(dst *time.Duration) func(string) error {
	return func(s string) error {
		d, err := timex.ParseDuration(s)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
