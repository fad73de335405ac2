package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	configCmd "github.com/sidkik/mirrord/cmd/config"
	"github.com/sidkik/mirrord/cmd/once"
	"github.com/sidkik/mirrord/cmd/run"
	"github.com/sidkik/mirrord/cmd/util"
	"github.com/sidkik/mirrord/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "MIRRORD_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := &cobra.Command{
		Use:   "mirrord",
		Short: "Keep a replica directory identical to a source directory",
		Long: "mirrord periodically makes a replica directory an exact copy " +
			"of a source directory. The sync is one-way: changes made in the " +
			"replica are overwritten or deleted.",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		configCmd.New(),
		once.New(),
		run.New(),
		version.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
