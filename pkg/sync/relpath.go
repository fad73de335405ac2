package sync

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/sidkik/mirrord/pkg/errors"
)

// RelPath is the path of an entry relative to the root of its tree. It always
// uses forward slashes, never starts with a separator, and never escapes the
// root, so the same RelPath can be joined onto either the source or the
// replica root.
type RelPath string

// Rel returns the path of `target` relative to `root`. Trailing separators on
// either argument are ignored.
func Rel(root, target string) (RelPath, error) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return "", errors.WithContext(err, "relative path")
	}

	if rel == "." {
		return "", errors.New("%q is the root itself", target)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New("%q is not within %q", target, root)
	}
	return RelPath(filepath.ToSlash(rel)), nil
}

// Join returns the filesystem path of p beneath `root`.
func (p RelPath) Join(root string) string {
	return filepath.Join(root, filepath.FromSlash(string(p)))
}

// Parent returns the directory containing p, or the empty RelPath if p is a
// direct child of the root.
func (p RelPath) Parent() RelPath {
	dir := path.Dir(string(p))
	if dir == "." {
		return ""
	}
	return RelPath(dir)
}

// Within returns whether p is a strict descendant of `dir`.
func (p RelPath) Within(dir RelPath) bool {
	return strings.HasPrefix(string(p), string(dir)+"/")
}

// Display returns p the way it's shown to operators: rooted at a leading
// slash, e.g. `/sub/b.txt`.
func (p RelPath) Display() string {
	return fmt.Sprintf("/%s", p)
}
