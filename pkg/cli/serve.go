package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/cli/config"
	httpctrl "github.com/storyspark-lab/storyspark/pkg/controller/http"
	"github.com/storyspark-lab/storyspark/pkg/service/scenegen"
	"github.com/storyspark-lab/storyspark/pkg/usecase"
	"github.com/storyspark-lab/storyspark/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var tokenSecret string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var storyCfg config.Story
	var publishCfg config.Publish

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("STORYSPARK_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "token-secret",
			Usage:       "HMAC secret for session tokens (token check disabled when empty)",
			Sources:     cli.EnvVars("STORYSPARK_TOKEN_SECRET"),
			Destination: &tokenSecret,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, storyCfg.Flags()...)
	flags = append(flags, publishCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}

			sceneSvc, err := scenegen.New(llmClient)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize scene generator")
			}

			storyConfig, err := storyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load story configuration")
			}

			publishers, publishCloser, err := publishCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure publishers")
			}
			defer publishCloser()

			uc := usecase.New(repo, llmClient, sceneSvc,
				usecase.WithStoryConfig(storyConfig),
				usecase.WithPublishers(publishers...),
			)

			// Create HTTP server options
			httpOpts := []httpctrl.Option{}
			if tokenSecret != "" {
				httpOpts = append(httpOpts, httpctrl.WithTokenSecret(tokenSecret))
				logging.Default().Info("Session token check enabled")
			}

			httpHandler, err := httpctrl.New(uc, httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
