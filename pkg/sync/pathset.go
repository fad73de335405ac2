package sync

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// PathSet is an unordered set of RelPaths. It isn't safe for concurrent
// writes, but may be read concurrently once it's no longer modified.
type PathSet struct {
	set mapset.Set[RelPath]
}

// NewPathSet returns a set containing `paths`.
func NewPathSet(paths ...RelPath) PathSet {
	return PathSet{set: mapset.NewThreadUnsafeSet(paths...)}
}

// Add adds p to the set.
func (s PathSet) Add(p RelPath) {
	s.set.Add(p)
}

// Remove removes p from the set. It's a no-op if p isn't in the set.
func (s PathSet) Remove(p RelPath) {
	s.set.Remove(p)
}

// Contains returns whether p is in the set.
func (s PathSet) Contains(p RelPath) bool {
	return s.set.Contains(p)
}

// Len returns the number of paths in the set.
func (s PathSet) Len() int {
	return s.set.Cardinality()
}

// Difference returns the paths in s that aren't in `other`.
func (s PathSet) Difference(other PathSet) PathSet {
	return PathSet{set: s.set.Difference(other.set)}
}

// Union returns the paths in either s or `other`.
func (s PathSet) Union(other PathSet) PathSet {
	return PathSet{set: s.set.Union(other.set)}
}

// Equal returns whether both sets contain exactly the same paths.
func (s PathSet) Equal(other PathSet) bool {
	return s.set.Equal(other.set)
}

// RemoveWithin removes every strict descendant of `dir` from the set.
func (s PathSet) RemoveWithin(dir RelPath) {
	for _, p := range s.set.ToSlice() {
		if p.Within(dir) {
			s.set.Remove(p)
		}
	}
}

// Sorted returns the paths in lexical order. Since a directory sorts before
// everything within it, iterating in this order visits parents before their
// children.
func (s PathSet) Sorted() []RelPath {
	paths := s.set.ToSlice()
	sort.Slice(paths, func(i, j int) bool {
		return paths[i] < paths[j]
	})
	return paths
}
