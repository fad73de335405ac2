package config

import (
	"fmt"
	"io"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"

	"github.com/sidkik/mirrord/cmd/util"
	"github.com/sidkik/mirrord/pkg/config"
	"github.com/sidkik/mirrord/pkg/errors"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `config` command.
func New() *cobra.Command {
	var flags util.MirrorFlags
	var writePath string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate and print the mirror configuration",
		Long: "Combine the config file and flags the same way `mirrord run` " +
			"does, validate the result, and print it as YAML.\n\n" +
			"With --write, the configuration is saved to a file that can " +
			"later be passed to --config.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := printConfig(flags, writePath); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	flags.Register(cmd.Flags())
	cmd.Flags().StringVarP(&writePath, "write", "w", "",
		"Write the configuration to this path instead of printing it.")
	return cmd
}

func printConfig(flags util.MirrorFlags, writePath string) error {
	cfg, err := flags.Resolve()
	if err != nil {
		return err
	}

	if writePath != "" {
		if err := config.WriteMirror(writePath, cfg); err != nil {
			return errors.WithContext(err, "write config")
		}
		fmt.Fprintf(stdout, "Wrote config to %s\n", writePath)
		return nil
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}
	fmt.Fprint(stdout, string(yamlBytes))
	return nil
}
