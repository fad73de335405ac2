package sync

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/mirrord/pkg/errors"
)

// Options configures an Engine.
type Options struct {
	// Source and Replica are the roots of the two trees. The replica is
	// modified to match the source.
	Source  string
	Replica string

	// Digest names the content digest used to compare files of the same
	// size. Defaults to DefaultDigest.
	Digest string

	// Workers is the number of files copied concurrently. Defaults to 1.
	Workers int
}

// An Engine runs reconciliation passes. At most one pass runs at a time.
type Engine struct {
	fs         afero.Fs
	source     string
	replica    string
	reconciler *Reconciler

	running atomic.Bool
}

// Mocked out for unit testing.
var newPassID = func() string {
	return uuid.New().String()
}

// NewEngine returns an Engine that mirrors `opts.Source` into `opts.Replica`
// on `fs`, reporting every outcome to `notifier`.
func NewEngine(fs afero.Fs, opts Options, notifier Notifier) (*Engine, error) {
	if opts.Source == "" {
		return nil, errors.MissingFieldError{Field: "source"}
	}
	if opts.Replica == "" {
		return nil, errors.MissingFieldError{Field: "replica"}
	}

	newHash, err := NewDigest(opts.Digest)
	if err != nil {
		return nil, err
	}

	if notifier == nil {
		notifier = NotifierFunc(func(Outcome) {})
	}

	return &Engine{
		fs:         fs,
		source:     filepath.Clean(opts.Source),
		replica:    filepath.Clean(opts.Replica),
		reconciler: NewReconciler(fs, NewComparator(fs, newHash), notifier, opts.Workers),
	}, nil
}

// Run performs one full reconciliation pass and returns every outcome it
// produced. It returns ErrPassInProgress if another pass is still running.
//
// Failures to operate on individual entries are reported as warnings rather
// than errors. An error is only returned if the pass couldn't run at all, for
// example because the source can't be listed, or if `ctx` was cancelled
// before the pass finished.
func (e *Engine) Run(ctx context.Context) ([]Outcome, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, errors.ErrPassInProgress
	}
	defer e.running.Store(false)

	logger := log.WithField("pass", newPassID())
	logger.Info("Synchronization started")
	start := time.Now()

	src, dst, err := e.listTrees()
	if err != nil {
		return nil, err
	}

	outcomes := e.reconciler.ReconcileDirs(ctx, src, dst)
	if err := ctx.Err(); err != nil {
		return outcomes, errors.WithContext(err, "reconcile directories")
	}

	outcomes = append(outcomes, e.reconciler.ReconcileFiles(ctx, src, dst)...)
	if err := ctx.Err(); err != nil {
		return outcomes, errors.WithContext(err, "reconcile files")
	}

	summary := Summarize(outcomes)
	logger.WithFields(log.Fields{
		"created":  summary.Created,
		"deleted":  summary.Deleted,
		"replaced": summary.Replaced,
		"warnings": summary.Warnings,
		"copied":   humanize.Bytes(uint64(summary.Bytes)),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Synchronization finished")
	return outcomes, nil
}

// listTrees snapshots both trees. The source must be an existing directory.
// The replica root is created if it's missing.
func (e *Engine) listTrees() (src, dst *Tree, err error) {
	fi, err := e.fs.Stat(e.source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.FileNotFound{Path: e.source}
		}
		return nil, nil, errors.WithContext(err, "stat source")
	}
	if !fi.IsDir() {
		return nil, nil, errors.NewFriendlyError("The source %q is not a directory.", e.source)
	}

	src, err = ListSource(e.fs, e.source)
	if err != nil {
		return nil, nil, errors.WithContext(err, "list source")
	}

	dst, err = ListTree(e.fs, e.replica)
	if err != nil {
		return nil, nil, errors.WithContext(err, "list replica")
	}

	if err := e.fs.MkdirAll(e.replica, dirMode); err != nil {
		return nil, nil, errors.WithContext(err, "create replica root")
	}
	return src, dst, nil
}

// Summary counts the outcomes of a pass.
type Summary struct {
	Created, Deleted, Replaced, Warnings int

	// Bytes is the total number of bytes copied.
	Bytes int64
}

// Summarize tallies `outcomes`.
func Summarize(outcomes []Outcome) (s Summary) {
	for _, o := range outcomes {
		switch o.Action {
		case Creation:
			s.Created++
		case Deletion:
			s.Deleted++
		case Replacement:
			s.Replaced++
		case Warning:
			s.Warnings++
		}
		s.Bytes += o.Bytes
	}
	return s
}
