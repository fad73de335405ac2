package sync

import (
	"fmt"
)

// Kind is the type of entry an Outcome is about.
type Kind string

const (
	// Directory outcomes are about directories.
	Directory Kind = "Directory"

	// File outcomes are about regular files, and about other non-directory
	// entries found in the replica.
	File Kind = "File"
)

// Action is what happened to an entry.
type Action string

const (
	Creation    Action = "creation"
	Deletion    Action = "deletion"
	Replacement Action = "replacement"

	// Warning means that the operation failed. The entry is left as-is until
	// the next pass.
	Warning Action = "warning"
)

// An Outcome records a single operation performed on the replica.
type Outcome struct {
	Kind   Kind
	Action Action
	Path   RelPath

	// Err is the reason the operation failed. It's only set for warnings.
	Err error

	// Bytes is the number of bytes copied by file creations and
	// replacements.
	Bytes int64
}

func (o Outcome) String() string {
	return fmt.Sprintf("%s %s: %s", o.Kind, o.Action, o.Path.Display())
}

func warning(kind Kind, path RelPath, err error) Outcome {
	return Outcome{Kind: kind, Action: Warning, Path: path, Err: err}
}

// A Notifier is told about every Outcome as soon as it's produced.
type Notifier interface {
	Notify(Outcome)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Outcome)

// Notify calls f(o).
func (f NotifierFunc) Notify(o Outcome) {
	f(o)
}
