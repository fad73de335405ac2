package sync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sidkik/mirrord/pkg/errors"
)

// A Tree is a snapshot of the entries beneath a root directory.
type Tree struct {
	// Root is the directory the snapshot was taken from.
	Root string

	// Dirs and Files contain the directories and regular files beneath Root.
	Dirs  PathSet
	Files PathSet

	// Other contains the entries that are neither directories nor regular
	// files, such as symlinks, sockets and devices.
	Other PathSet
}

// NewTree returns an empty snapshot of `root`.
func NewTree(root string) *Tree {
	return &Tree{
		Root:  filepath.Clean(root),
		Dirs:  NewPathSet(),
		Files: NewPathSet(),
		Other: NewPathSet(),
	}
}

// ListTree walks `root` top-down and records every entry beneath it. A root
// that doesn't exist results in an empty tree rather than an error. Symlinks
// beneath the root are recorded in Other.
func ListTree(fs afero.Fs, root string) (*Tree, error) {
	return listTree(fs, root, false)
}

// ListSource is like ListTree, except that symlinks beneath the root are
// classified by what they point to. A link to a regular file is recorded as a
// file, so that its target's contents get copied. A link to a directory is
// recorded as a directory, but isn't descended into. Dangling links stay in
// Other.
func ListSource(fs afero.Fs, root string) (*Tree, error) {
	return listTree(fs, root, true)
}

func listTree(fs afero.Fs, root string, followLinks bool) (*Tree, error) {
	tree := NewTree(root)
	err := afero.Walk(fs, walkRoot(fs, tree.Root), func(path string, fi os.FileInfo, err error) error {
		isRoot := filepath.Clean(path) == tree.Root
		if err != nil {
			if isRoot && os.IsNotExist(err) {
				return nil
			}
			return errors.WithContext(err, fmt.Sprintf("walk %q", path))
		}

		if isRoot {
			if !fi.IsDir() {
				return errors.NewFriendlyError("%q is not a directory", path)
			}
			return nil
		}

		rel, err := Rel(tree.Root, path)
		if err != nil {
			return err
		}

		if followLinks && fi.Mode()&os.ModeSymlink != 0 {
			target, err := fs.Stat(path)
			if err != nil {
				tree.Other.Add(rel)
				return nil
			}
			fi = target
		}

		switch {
		case fi.IsDir():
			tree.Dirs.Add(rel)
		case fi.Mode().IsRegular():
			tree.Files.Add(rel)
		default:
			tree.Other.Add(rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// walkRoot returns the path to start walking `root` from. afero.Walk doesn't
// descend into a root that's a symlink, so a trailing separator is added to
// make the filesystem resolve the link.
func walkRoot(fs afero.Fs, root string) string {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return root
	}

	fi, _, err := lstater.LstatIfPossible(root)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return root
	}
	return root + string(filepath.Separator)
}

// Has returns whether the tree contains an entry of any type at p.
func (t *Tree) Has(p RelPath) bool {
	return t.Dirs.Contains(p) || t.Files.Contains(p) || t.Other.Contains(p)
}

// forget drops p and, if it was a directory, all of its descendants from the
// snapshot. It's used once the corresponding entries are gone from disk.
func (t *Tree) forget(p RelPath) {
	for _, set := range []PathSet{t.Dirs, t.Files, t.Other} {
		set.Remove(p)
		set.RemoveWithin(p)
	}
}
