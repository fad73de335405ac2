package once

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/sidkik/mirrord/cmd/util"
	"github.com/sidkik/mirrord/pkg/config"
	"github.com/sidkik/mirrord/pkg/errors"
	"github.com/sidkik/mirrord/pkg/sync"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `once` command.
func New() *cobra.Command {
	var flags util.MirrorFlags
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Synchronize the replica with its source a single time",
		Long: "Run a single synchronization, then exit. The exit code is " +
			"non-zero if any entry couldn't be synchronized.\n\n" +
			"It takes the same configuration as `mirrord run`.",
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := flags.Resolve()
			if err != nil {
				util.HandleFatalError(err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := once(ctx, cfg); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	flags.Register(cmd.Flags())
	return cmd
}

func once(ctx context.Context, cfg config.Mirror) error {
	util.PrintBanner(stdout, cfg)

	d, cleanup, err := util.NewDaemon(cfg, stdout, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	defer cleanup()

	outcomes, err := d.RunOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.WithContext(err, "synchronize")
	}

	if summary := sync.Summarize(outcomes); summary.Warnings > 0 {
		return errors.NewFriendlyError("%d %s couldn't be synchronized. See %s for details.",
			summary.Warnings, pluralize(summary.Warnings, "entry", "entries"), cfg.Log)
	}
	fmt.Fprintln(stdout, "Replica is up to date.")
	return nil
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
