package util

import (
	"io"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/mirrord/pkg/config"
	"github.com/sidkik/mirrord/pkg/daemon"
	"github.com/sidkik/mirrord/pkg/errors"
	"github.com/sidkik/mirrord/pkg/notify"
	"github.com/sidkik/mirrord/pkg/sync"
)

// Mocked for unit testing.
var syncFs = afero.NewOsFs()

// NewDaemon wires up a daemon for `cfg`. Outcomes are reported to `console`
// and to the configured log file, which also receives the daemon's own logs.
// The returned function closes the log file and must be called once the
// daemon is done.
func NewDaemon(cfg config.Mirror, console io.Writer, clock clockwork.Clock) (*daemon.Daemon, func(), error) {
	logFile, err := notify.OpenLog(cfg.Log)
	if err != nil {
		return nil, nil, errors.WithContext(err, "open log")
	}

	std := log.StandardLogger()
	hooks := make(log.LevelHooks)
	for level, levelHooks := range std.Hooks {
		hooks[level] = append(hooks[level], levelHooks...)
	}
	hooks.Add(notify.NewHook(logFile.Logger, log.InfoLevel))
	oldHooks := std.ReplaceHooks(hooks)

	cleanup := func() {
		std.ReplaceHooks(oldHooks)
		if err := logFile.Close(); err != nil {
			log.WithError(err).Debug("Failed to close log file")
		}
	}

	notifier := notify.New(console, notify.ColorEnabled(console), logFile, cfg.Replica)
	engine, err := sync.NewEngine(syncFs, cfg.SyncOptions(), notifier)
	if err != nil {
		cleanup()
		return nil, nil, errors.WithContext(err, "create engine")
	}

	log.WithField("path", logFile.Path).Debug("Logging to file")
	return daemon.New(engine, clock, cfg.IntervalDuration(), cfg.Replica), cleanup, nil
}
