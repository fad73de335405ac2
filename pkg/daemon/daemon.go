// Package daemon keeps a replica in sync with its source for as long as the
// process runs.
package daemon

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/sidkik/mirrord/pkg/errors"
	"github.com/sidkik/mirrord/pkg/schedule"
	"github.com/sidkik/mirrord/pkg/sync"
)

// A Runner performs a single reconciliation pass.
type Runner interface {
	Run(ctx context.Context) ([]sync.Outcome, error)
}

// Daemon runs passes on a schedule. Only one daemon may mirror into a given
// replica at a time.
type Daemon struct {
	runner    Runner
	scheduler *schedule.Scheduler
	lock      *flock.Flock
}

// Mocked for unit testing.
var userCacheDir = os.UserCacheDir

// LockPath returns the lock file guarding `replica`. It lives in the user's
// cache directory rather than next to the replica, and is named after a
// digest of the cleaned replica path.
func LockPath(replica string) string {
	dir, err := userCacheDir()
	if err != nil {
		log.WithError(err).Debug("No user cache directory. Falling back to the temp directory for locks.")
		dir = os.TempDir()
	}

	replica = filepath.Clean(replica)
	sum := blake2b.Sum256([]byte(replica))
	name := fmt.Sprintf("%s-%s.lock", lockName(replica), hex.EncodeToString(sum[:8]))
	return filepath.Join(dir, "mirrord", "locks", name)
}

// lockName returns a readable prefix for the lock file of `replica`.
func lockName(replica string) string {
	base := filepath.Base(replica)
	if base == string(filepath.Separator) || base == "." {
		return "root"
	}
	return base
}

// New returns a Daemon that calls `runner` every `interval`.
func New(runner Runner, clock clockwork.Clock, interval time.Duration, replica string) *Daemon {
	return &Daemon{
		runner:    runner,
		scheduler: schedule.New(clock, interval),
		lock:      flock.New(LockPath(replica)),
	}
}

// Run takes the replica lock and runs passes until `ctx` is cancelled. A
// cancelled context isn't considered an error.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.acquireLock(); err != nil {
		return err
	}
	defer d.releaseLock()

	if err := d.scheduler.Run(ctx, d.pass); err != nil && ctx.Err() == nil {
		return err
	}
	log.Debug("Daemon stopped")
	return nil
}

// RunOnce takes the replica lock and runs a single pass.
func (d *Daemon) RunOnce(ctx context.Context) ([]sync.Outcome, error) {
	if err := d.acquireLock(); err != nil {
		return nil, err
	}
	defer d.releaseLock()
	return d.runner.Run(ctx)
}

func (d *Daemon) acquireLock() error {
	if err := os.MkdirAll(filepath.Dir(d.lock.Path()), 0700); err != nil {
		return errors.WithContext(err, "create lock directory")
	}

	locked, err := d.lock.TryLock()
	if err != nil {
		return errors.WithContext(err, "acquire lock")
	}
	if !locked {
		return errors.NewFriendlyError("Another mirrord daemon is already syncing "+
			"into this replica.\nIf that's not the case, remove the lock file at %q.",
			d.lock.Path())
	}
	return nil
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		log.WithError(err).Warn("Failed to release replica lock")
		return
	}

	if err := os.Remove(d.lock.Path()); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Debug("Failed to remove lock file")
	}
}

func (d *Daemon) pass(ctx context.Context) {
	_, err := d.runner.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrPassInProgress):
		log.Warn("Previous synchronization is still running. Skipping this one.")
	case ctx.Err() != nil:
		log.WithError(err).Debug("Synchronization interrupted")
	default:
		log.WithError(err).Error("Synchronization failed. It will be retried at the next interval.")
	}
}
