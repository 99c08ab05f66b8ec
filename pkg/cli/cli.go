package cli

import (
	"context"

	"github.com/storyspark-lab/storyspark/pkg/cli/config"
	"github.com/storyspark-lab/storyspark/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	flags := loggerCfg.Flags()
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "storyspark",
		Usage:   "StorySpark interactive story generation",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			f, err = sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			logging.Default().Info("Starting storyspark", "logger", loggerCfg, "sentry", sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for _, f := range closers {
				f()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdBuild(),
			cmdCharacter(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
