// Command billing serves the billing HTTP API and runs maintenance tasks.
//
// Usage:
//
//	billing serve
//	billing migrate
//	billing codes generate -tier 1 -count 100 [-prefix AS]
//	billing codes import -tier 2 [-file codes.csv]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/billingkit/pkg/config"
	"github.com/dmitrymomot/billingkit/pkg/environment"
	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/requestid"
)

var errUsage = errors.New("usage: billing <serve|migrate|codes> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	var cmd func(context.Context, appConfig, *slog.Logger) error
	switch args[0] {
	case "serve":
		cmd = serve
	case "migrate":
		cmd = migrate
	case "codes":
		cmd = func(ctx context.Context, cfg appConfig, log *slog.Logger) error {
			return codes(ctx, cfg, log, args[1:], stdin, stdout)
		}
	default:
		return errUsage
	}

	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}
	return cmd(ctx, cfg, newLogger(cfg))
}

func newLogger(cfg appConfig) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(environment.Parse(cfg.Env), cfg.Name),
		logger.WithConfig(cfg.Log),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			environment.LoggerExtractor(),
		),
	)
}
