package sync

import (
	"crypto/md5"
	"crypto/sha512"
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/sidkik/mirrord/pkg/errors"
)

// The content digests that can be used to compare files.
const (
	DigestMD5     = "md5"
	DigestSHA512  = "sha512"
	DigestBlake2b = "blake2b"
)

// DefaultDigest is used when no digest is configured.
const DefaultDigest = DigestMD5

var digests = map[string]func() hash.Hash{
	DigestMD5:     md5.New,
	DigestSHA512:  sha512.New,
	DigestBlake2b: newBlake2b128,
}

// newBlake2b128 returns an unkeyed 128-bit BLAKE2b hash.
func newBlake2b128() hash.Hash {
	h, err := blake2b.New(16, nil)
	if err != nil {
		// Only possible with an invalid size or key.
		panic(err)
	}
	return h
}

// NewDigest returns the hash constructor for the digest called `name`.
func NewDigest(name string) (func() hash.Hash, error) {
	if name == "" {
		name = DefaultDigest
	}

	newHash, ok := digests[name]
	if !ok {
		return nil, errors.New("unknown digest %q", name)
	}
	return newHash, nil
}

// DigestNames returns the names accepted by NewDigest.
func DigestNames() []string {
	var names []string
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
