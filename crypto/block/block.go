// Package block describes block ciphers: a single keyed Context working on one
// block at a time, and the Algorithm descriptor through which raw ciphers and
// the chained modes built on top of them are handled the same way.
package block

import (
	"errors"
	"fmt"
)

// Contract violations. They are raised with panic: callers are expected to only
// ever hand whole blocks to a cipher.
var (
	ErrInputNotFullBlocks = errors.New("block: input not full blocks")
	ErrOutputTooSmall     = errors.New("block: output smaller than input")
	ErrKeyNotSet          = errors.New("block: cipher used before a key was set")
)

// Context is one instance of a block cipher. SetKey runs the key schedule,
// Encrypt and Decrypt transform exactly one block from src into dst; dst and
// src may be the same slice.
type Context interface {
	BlockSize() int
	SetKey(key []byte) error
	Encrypt(dst, src []byte)
	Decrypt(dst, src []byte)
}

// Cipher is the shape shared by every Algorithm instance, raw or chained.
// Encrypt and Decrypt process any whole number of blocks.
type Cipher interface {
	BlockSize() int
	SetKey(key []byte) error
	SetIV(iv []byte)
	Encrypt(dst, src []byte)
	Decrypt(dst, src []byte)
}

// KeySizes is the set of key lengths, in bytes, accepted by a cipher:
// every length from Min to Max in increments of Step.
type KeySizes struct {
	Min, Max, Step int
}

// Valid reports whether a key of n bytes is in the set.
func (k KeySizes) Valid(n int) bool {
	if n < k.Min || n > k.Max {
		return false
	}
	step := k.Step
	if step <= 0 {
		step = 1
	}
	return (n-k.Min)%step == 0
}

// Algorithm describes a cipher and builds fresh instances of it. Algorithms
// are created once during package initialisation and never modified.
type Algorithm struct {
	// Name of the cipher, e.g. "aes" or "aes_cbc".
	Name string
	// Mode is "ecb" for a raw block cipher, or the name of the chaining mode.
	Mode string
	// ContextSize is the in-memory size of one instance, in bytes.
	ContextSize int
	// BlockSize is the size of one block, in bytes.
	BlockSize int
	// KeySizes lists the key lengths the key schedule accepts.
	KeySizes KeySizes
	// New returns a fresh, unkeyed instance.
	New func() Cipher
}

func (a *Algorithm) String() string {
	if a == nil {
		return ""
	}
	return a.Name
}

// MustFullBlocks panics unless src is a whole number of blockSize blocks and
// dst can hold all of them.
func MustFullBlocks(blockSize int, dst, src []byte) {
	if len(src)%blockSize != 0 {
		panic(ErrInputNotFullBlocks)
	}
	if len(dst) < len(src) {
		panic(ErrOutputTooSmall)
	}
}

// Find returns the algorithm called name among algs.
func Find(name string, algs ...*Algorithm) (*Algorithm, error) {
	for _, a := range algs {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("block: unknown cipher %q", name)
}
