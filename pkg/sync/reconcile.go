package sync

import (
	"context"
	"fmt"
	goSync "sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/mirrord/pkg/errors"
)

// A Reconciler performs the filesystem operations that bring a replica tree
// in line with a source tree.
type Reconciler struct {
	fs       afero.Fs
	compare  *Comparator
	notifier Notifier
	workers  int
}

// NewReconciler returns a Reconciler that operates on `fs`. Files are copied
// by up to `workers` goroutines at once.
func NewReconciler(fs afero.Fs, compare *Comparator, notifier Notifier, workers int) *Reconciler {
	if workers < 1 {
		workers = 1
	}
	return &Reconciler{fs: fs, compare: compare, notifier: notifier, workers: workers}
}

func (r *Reconciler) report(outcomes *[]Outcome, o Outcome) {
	*outcomes = append(*outcomes, o)
	r.notifier.Notify(o)
}

// ReconcileDirs makes the directories in `dst` match the directories in
// `src`. Replica directories that don't exist in the source are removed with
// everything inside them. Missing directories are created parents first.
// `dst` is updated to reflect the removed and created entries.
func (r *Reconciler) ReconcileDirs(ctx context.Context, src, dst *Tree) (outcomes []Outcome) {
	for _, dir := range dst.Dirs.Difference(src.Dirs).Sorted() {
		if ctx.Err() != nil {
			return outcomes
		}

		// The directory was removed along with one of its ancestors.
		if !dst.Dirs.Contains(dir) {
			continue
		}

		if err := r.fs.RemoveAll(dir.Join(dst.Root)); err != nil {
			r.report(&outcomes, warning(Directory, dir, errors.WithContext(err, "remove directory")))
			continue
		}
		dst.forget(dir)
		r.report(&outcomes, Outcome{Kind: Directory, Action: Deletion, Path: dir})
	}

	for _, dir := range src.Dirs.Difference(dst.Dirs).Sorted() {
		if ctx.Err() != nil {
			return outcomes
		}

		target := dir.Join(dst.Root)

		// A file in the replica is in the way of the directory.
		if dst.Files.Contains(dir) || dst.Other.Contains(dir) {
			if err := removeFile(r.fs, target); err != nil {
				r.report(&outcomes, warning(Directory, dir, errors.WithContext(err, "remove file in the way")))
				continue
			}
			dst.forget(dir)
			r.report(&outcomes, Outcome{Kind: File, Action: Deletion, Path: dir})
		}

		if err := r.fs.Mkdir(target, dirMode); err != nil {
			r.report(&outcomes, warning(Directory, dir, errors.WithContext(err, "create directory")))
			continue
		}
		dst.Dirs.Add(dir)
		r.report(&outcomes, Outcome{Kind: Directory, Action: Creation, Path: dir})
	}
	return outcomes
}

// ReconcileFiles makes the files in `dst` match the files in `src`. It
// assumes that ReconcileDirs already ran, so that every source file's parent
// exists in the replica. Stale replica files are removed before any file is
// copied.
func (r *Reconciler) ReconcileFiles(ctx context.Context, src, dst *Tree) (outcomes []Outcome) {
	stale := dst.Files.Union(dst.Other).Difference(src.Files)
	for _, file := range stale.Sorted() {
		if ctx.Err() != nil {
			return outcomes
		}

		if err := removeFile(r.fs, file.Join(dst.Root)); err != nil {
			r.report(&outcomes, warning(File, file, errors.WithContext(err, "remove file")))
			continue
		}
		dst.forget(file)
		r.report(&outcomes, Outcome{Kind: File, Action: Deletion, Path: file})
	}

	if src.Other.Len() > 0 {
		log.WithField("paths", truncateSlice(src.Other.Sorted(), 5)).Warn(
			"Skipping source entries that are neither files nor directories")
	}

	// `dst` isn't modified from here on, so the workers can safely read it
	// concurrently.
	toSync := make(chan RelPath, r.workers*2)
	results := make(chan Outcome, r.workers)

	var wg goSync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range toSync {
				if o, ok := r.syncFile(src, dst, file); ok {
					results <- o
				}
			}
		}()
	}

	go func() {
	feed:
		for _, file := range src.Files.Sorted() {
			select {
			case toSync <- file:
			case <-ctx.Done():
				break feed
			}
		}
		close(toSync)

		wg.Wait()
		close(results)
	}()

	for o := range results {
		r.report(&outcomes, o)
	}
	return outcomes
}

// syncFile brings a single replica file in line with its source. It returns
// false if the file was already up to date.
func (r *Reconciler) syncFile(src, dst *Tree, file RelPath) (Outcome, bool) {
	from, to := file.Join(src.Root), file.Join(dst.Root)

	action := Creation
	switch {
	case dst.Files.Contains(file):
		equal, err := r.compare.Equal(from, to)
		if err != nil {
			log.WithError(err).WithField("path", file.Display()).Warn(
				"Failed to compare file contents. Replacing the replica copy.")
		} else if equal {
			return Outcome{}, false
		}
		action = Replacement
	case dst.Other.Contains(file):
		action = Replacement
	}

	var n int64
	var err error
	if action == Replacement {
		n, err = replaceFile(r.fs, from, to)
	} else {
		n, err = copyFile(r.fs, from, to)
	}

	if err != nil {
		return warning(File, file, errors.WithContext(err, string(action))), true
	}
	return Outcome{Kind: File, Action: action, Path: file, Bytes: n}, true
}

// truncateSlice truncates the given slice of paths to the given length. If
// the slice is longer than `length`, a message is appended saying how many
// more items are in the slice.
func truncateSlice(paths []RelPath, length int) (truncated []string) {
	for i, p := range paths {
		if i == length {
			truncated = append(truncated, fmt.Sprintf("... %d more ...", len(paths)-length))
			break
		}
		truncated = append(truncated, string(p))
	}
	return truncated
}
