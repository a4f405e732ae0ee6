package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"contenttest/internal/bootstrap"
	"contenttest/internal/bootstrap/logging"
	"contenttest/internal/errs"
	"contenttest/internal/usecase/contenttest"
)

const (
	appStartTimeout = 10 * time.Second
	appStopTimeout  = 10 * time.Second
)

// commandEnv is what a handler gets once the application graph is up.
type commandEnv struct {
	app *bootstrap.App
	svc *contenttest.Service
}

type commandFunc func(ctx context.Context, cmd *cobra.Command, env commandEnv) error

// withApp runs one command inside a started application graph. The handler
// context carries the command's log attributes and is cancelled on
// SIGINT or SIGTERM.
func withApp(run commandFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(
			ctx,
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var env commandEnv
		fxApp := fx.New(
			bootstrap.Module,
			fx.Supply(fx.Annotated{Name: "configFile", Target: cfgFile}),
			fx.Provide(func() context.Context { return ctx }),
			fx.Populate(&env.app, &env.svc),
		)
		if err := fxApp.Err(); err != nil {
			logging.Error(ctx, "build application graph failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "build fx application")
		}

		startCtx, cancelStart := context.WithTimeout(ctx, appStartTimeout)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}
		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.WithoutCancel(ctx), appStopTimeout)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		started := time.Now()
		err := run(ctx, cmd, env)
		logging.Debug(ctx, "command finished", slog.Duration("elapsed", time.Since(started)), slog.Bool("ok", err == nil))
		if err != nil {
			return errs.Wrapf(err, "run %s", cmd.Name())
		}
		return nil
	}
}
