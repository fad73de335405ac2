package util

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/sidkik/mirrord/pkg/config"
	"github.com/sidkik/mirrord/pkg/errors"
)

// Variables mocked for unit testing.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// HandleFatalError reports `err` to the operator and exits. Friendly errors
// are printed as-is. Other errors are logged along with their context.
func HandleFatalError(err error) {
	if msg, ok := errors.GetFriendlyMessage(err); ok {
		fmt.Fprintln(stderr, msg)
	} else {
		log.WithError(err).Error("Fatal error")
	}
	exit(1)
}

// HandlePanic logs a panic along with its stack trace and exits. It must be
// deferred in main.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("stack", string(debug.Stack())).Errorf("Unexpected crash: %v", r)
		exit(2)
	}
}

// MirrorFlags holds the command line flags that configure a mirror.
type MirrorFlags struct {
	ConfigPath string
	Mirror     config.Mirror
}

// Register adds the flags to `flags`.
func (f *MirrorFlags) Register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.ConfigPath, "config", "c", "",
		"Path to a YAML config file. Flags take precedence over the file.")
	flags.StringVarP(&f.Mirror.Source, "source", "s", "",
		"The directory to mirror.")
	flags.StringVarP(&f.Mirror.Replica, "replica", "r", "",
		"The directory to keep in sync with the source. "+
			"Anything in it that's not in the source is deleted.")
	flags.IntVarP(&f.Mirror.Interval, "interval", "i", 0,
		"Seconds between the start of each synchronization.")
	flags.StringVarP(&f.Mirror.Log, "log", "l", "",
		"File to log to. If it's a directory, a dated log file is created in it.")
	flags.StringVar(&f.Mirror.Digest, "digest", "",
		"Digest used to compare files of the same size (default \"md5\").")
	flags.IntVar(&f.Mirror.Workers, "workers", 0,
		"Number of files to copy concurrently (default 1).")
}

// Resolve combines the flags with the config file, if one was given.
func (f MirrorFlags) Resolve() (config.Mirror, error) {
	return config.Resolve(f.ConfigPath, f.Mirror)
}

// PrintBanner prints the settings a mirror runs with.
func PrintBanner(w io.Writer, cfg config.Mirror) {
	fmt.Fprintf(w, "Source:   %s\n", cfg.Source)
	fmt.Fprintf(w, "Replica:  %s\n", cfg.Replica)
	fmt.Fprintf(w, "Interval: %s\n", cfg.IntervalDuration())
	fmt.Fprintf(w, "Log:      %s\n", cfg.Log)
	fmt.Fprintln(w)
}
