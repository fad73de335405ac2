package errors

import (
	goErrors "errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContext(t *testing.T) {
	assert.Nil(t, WithContext(nil, "ignored"))

	root := New("disk on fire")
	err := WithContext(WithContext(root, "copy"), "reconcile files")
	assert.EqualError(t, err, "reconcile files: copy: disk on fire")
	assert.Equal(t, root, RootCause(err))
	assert.True(t, goErrors.Is(err, root))
}

func TestRootCauseUnwrapped(t *testing.T) {
	err := FileNotFound{Path: "/src"}
	assert.Equal(t, err, RootCause(err))
}

func TestAsTypedError(t *testing.T) {
	err := WithContext(&os.PathError{Op: "open", Path: "/x", Err: os.ErrNotExist}, "stat")
	assert.True(t, os.IsNotExist(RootCause(err)))
	assert.True(t, Is(err, os.ErrNotExist))

	var pathErr *os.PathError
	assert.True(t, As(err, &pathErr))
	assert.Equal(t, "/x", pathErr.Path)
}

func TestFriendlyMessage(t *testing.T) {
	err := WithContext(NewFriendlyError("source %q is not a directory", "/src"), "validate")
	msg, ok := GetFriendlyMessage(err)
	assert.True(t, ok)
	assert.Equal(t, `source "/src" is not a directory`, msg)

	_, ok = GetFriendlyMessage(New("plain"))
	assert.False(t, ok)
}

func TestNewFormats(t *testing.T) {
	assert.EqualError(t, New("plain"), "plain")
	assert.EqualError(t, New("count %d", 3), "count 3")
}

func TestTypedErrors(t *testing.T) {
	assert.EqualError(t, MissingFieldError{Field: "source"}, "missing required field: source")
	assert.EqualError(t, InvalidFieldError{Field: "interval", Reason: "must be positive"},
		"invalid field interval: must be positive")
	assert.EqualError(t, FileNotFound{Path: "/src"}, `"/src" does not exist`)
}
