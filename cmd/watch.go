package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"contenttest/internal/bootstrap/logging"
	"contenttest/internal/errs"
	probleminfra "contenttest/internal/infrastructure/problem"
)

var testWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the tests of a problem whenever its XML changes",
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, env commandEnv) error {
		watcher := probleminfra.NewWatcher(env.app.Config.Problems)
		err := watcher.Watch(ctx, func(ctx context.Context, location string) {
			results, err := env.svc.RunStale(ctx, location)
			if err != nil {
				logging.Error(ctx, "run tests after change failed", slog.String("location", location), slog.Any("err", errs.Loggable(err)))
				return
			}
			if len(results) == 0 {
				return
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s changed, %d tests run\n", location, len(results)); err != nil {
				return
			}
			for _, result := range results {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), renderRunResult(result))
			}
		})
		if err != nil {
			logging.Error(ctx, "watch problems failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "watch problems")
		}
		return nil
	}),
}

func init() {
	testCmd.AddCommand(testWatchCmd)
}
