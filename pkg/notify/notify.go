// Package notify reports the outcomes of reconciliation passes to the
// operator, both on the console and in a log file.
package notify

import (
	"fmt"
	"io"
	"os"
	goSync "sync"

	"github.com/buger/goterm"
	humanize "github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"

	"github.com/sidkik/mirrord/pkg/sync"
)

var actionColors = map[sync.Action]int{
	sync.Creation:    goterm.GREEN,
	sync.Deletion:    goterm.RED,
	sync.Replacement: goterm.CYAN,
	sync.Warning:     goterm.YELLOW,
}

// Notifier prints a line to the console for every outcome, and records it in
// the log file along with the full path of the affected replica entry.
type Notifier struct {
	console io.Writer
	color   bool
	file    log.FieldLogger
	replica string

	lock goSync.Mutex
}

// New returns a Notifier that writes to `console` and `file`. Console lines
// are coloured by action if `color` is true.
func New(console io.Writer, color bool, file log.FieldLogger, replica string) *Notifier {
	return &Notifier{
		console: console,
		color:   color,
		file:    file,
		replica: replica,
	}
}

// Notify reports a single outcome.
func (n *Notifier) Notify(o sync.Outcome) {
	n.lock.Lock()
	defer n.lock.Unlock()

	line := o.String()
	if n.color {
		line = goterm.Color(line, actionColors[o.Action])
	}
	fmt.Fprintln(n.console, line)

	msg := fmt.Sprintf("%s %s: %s", o.Kind, o.Action, o.Path.Join(n.replica))
	switch {
	case o.Action == sync.Warning:
		n.file.WithError(o.Err).Error(msg)
	case o.Bytes > 0:
		n.file.WithField("size", humanize.Bytes(uint64(o.Bytes))).Info(msg)
	default:
		n.file.Info(msg)
	}
}

// ColorEnabled returns whether output to `w` should be coloured. Colours are
// only used when writing to a terminal, and can be disabled by setting
// NO_COLOR.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
