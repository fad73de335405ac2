package run

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/sidkik/mirrord/cmd/util"
	"github.com/sidkik/mirrord/pkg/config"
	"github.com/sidkik/mirrord/pkg/errors"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `run` command.
func New() *cobra.Command {
	var flags util.MirrorFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep a replica in sync with its source",
		Long: "Synchronize the replica with the source immediately, and then " +
			"again at every interval until interrupted.\n\n" +
			"Anything in the replica that isn't in the source is deleted, " +
			"and files that differ from the source are overwritten.",
		Example: "mirrord run -s ~/photos -r /mnt/backup/photos -i 300 -l /var/log/mirrord",
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := flags.Resolve()
			if err != nil {
				util.HandleFatalError(err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg, clockwork.NewRealClock()); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	flags.Register(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg config.Mirror, clock clockwork.Clock) error {
	util.PrintBanner(stdout, cfg)

	d, cleanup, err := util.NewDaemon(cfg, stdout, clock)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := d.Run(ctx); err != nil {
		return errors.WithContext(err, "run daemon")
	}
	return nil
}
