// Package digest names the hash functions a cipher suite can refer to.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Algorithm describes a hash function.
type Algorithm struct {
	Name string
	// Size of the digest in bytes.
	Size int
	New  func() hash.Hash
}

func (a *Algorithm) String() string {
	if a == nil {
		return ""
	}
	return a.Name
}

// Sum hashes data in one go.
func (a *Algorithm) Sum(data []byte) []byte {
	h := a.New()
	_, _ = h.Write(data)
	return h.Sum(nil)
}

var (
	SHA256 = &Algorithm{Name: "sha256", Size: sha256.Size, New: sha256.New}
	SHA384 = &Algorithm{Name: "sha384", Size: sha512.Size384, New: sha512.New384}
	// BLAKE2b256 is unkeyed BLAKE2b with a 32 byte output.
	BLAKE2b256 = &Algorithm{Name: "blake2b256", Size: blake2b.Size256, New: func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	}}
)

// Algorithms lists the supported hash functions.
func Algorithms() []*Algorithm {
	return []*Algorithm{SHA256, SHA384, BLAKE2b256}
}

// Find returns the hash function called name.
func Find(name string) (*Algorithm, error) {
	for _, a := range Algorithms() {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("digest: unknown hash %q", name)
}
