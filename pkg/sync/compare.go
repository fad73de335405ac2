package sync

import (
	"bytes"
	"hash"
	"io"

	"github.com/spf13/afero"

	"github.com/sidkik/mirrord/pkg/errors"
)

// A Comparator decides whether two files have the same contents.
type Comparator struct {
	fs      afero.Fs
	newHash func() hash.Hash
}

// NewComparator returns a Comparator that reads files from `fs` and compares
// their contents with digests built by `newHash`.
func NewComparator(fs afero.Fs, newHash func() hash.Hash) *Comparator {
	return &Comparator{fs: fs, newHash: newHash}
}

// Equal returns whether the files at `a` and `b` have identical contents.
// Files of different sizes are never digested. An error means the files
// couldn't be compared, and callers should treat them as different.
func (c *Comparator) Equal(a, b string) (bool, error) {
	aInfo, err := c.fs.Stat(a)
	if err != nil {
		return false, errors.WithContext(err, "stat")
	}

	bInfo, err := c.fs.Stat(b)
	if err != nil {
		return false, errors.WithContext(err, "stat")
	}

	if aInfo.Size() != bInfo.Size() {
		return false, nil
	}

	aSum, err := c.digest(a)
	if err != nil {
		return false, err
	}

	bSum, err := c.digest(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(aSum, bSum), nil
}

func (c *Comparator) digest(path string) ([]byte, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, errors.WithContext(err, "open")
	}
	defer f.Close()

	hasher := c.newHash()
	if _, err := io.Copy(hasher, f); err != nil {
		return nil, errors.WithContext(err, "read")
	}
	return hasher.Sum(nil), nil
}
