package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error tracking configuration
type Sentry struct {
	dsn string
	env string
}

// Flags returns CLI flags for Sentry configuration
func (s *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error tracking (disabled when empty)",
			Sources:     cli.EnvVars("STORYSPARK_SENTRY_DSN"),
			Destination: &s.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Sources:     cli.EnvVars("STORYSPARK_SENTRY_ENV"),
			Destination: &s.env,
		},
	}
}

// LogValue returns log attributes for the Sentry configuration
func (s Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("dsn.len", len(s.dsn)),
		slog.String("env", s.env),
	)
}

// Configure initializes Sentry when a DSN is configured. The returned
// closer flushes buffered events before shutdown.
func (s *Sentry) Configure(version string) (func(), error) {
	if s.dsn == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         s.dsn,
		Environment: s.env,
		Release:     version,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry")
	}

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
