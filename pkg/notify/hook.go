package notify

import (
	log "github.com/sirupsen/logrus"
)

// NewHook returns a hook that copies every entry at `minLevel` or more severe
// into `target`. It's used to mirror the daemon's own logs into the log file.
func NewHook(target *log.Logger, minLevel log.Level) log.Hook {
	var levels []log.Level
	for _, level := range log.AllLevels {
		if level <= minLevel {
			levels = append(levels, level)
		}
	}
	return &hook{target: target, levels: levels}
}

type hook struct {
	target *log.Logger
	levels []log.Level
}

func (h *hook) Levels() []log.Level {
	return h.levels
}

func (h *hook) Fire(entry *log.Entry) error {
	// Logging at the panic level would panic again within the hook.
	level := entry.Level
	if level < log.ErrorLevel {
		level = log.ErrorLevel
	}

	h.target.WithFields(entry.Data).WithTime(entry.Time).Log(level, entry.Message)
	return nil
}
