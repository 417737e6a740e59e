// Package chain implements cipher block chaining on top of any block.Context,
// and the composition binding it to a concrete block cipher.
//
// The mode provides confidentiality only: there is no integrity tag and no
// associated data.
package chain

import (
	"crypto/subtle"
	"errors"

	"github.com/drand/cbcsuite/crypto/block"
)

// ErrFeedbackSize is raised when the feedback buffer does not match the block size.
var ErrFeedbackSize = errors.New("chain: feedback buffer length must equal the block size")

// scratchSize covers the block size of every cipher in crypto/block without
// going to the heap.
const scratchSize = 32

// Encrypt encrypts src into dst block by block. Each plaintext block is XORed
// into feedback, the result is encrypted into dst, and that ciphertext block
// becomes the new feedback. On return feedback holds the last ciphertext
// block, so a following call continues the same chain.
//
// len(src) must be a multiple of the block size and dst at least as long;
// dst and src must overlap entirely or not at all.
func Encrypt(ctx block.Context, dst, src, feedback []byte) {
	bs := ctx.BlockSize()
	mustMatch(bs, dst, src, feedback)

	for len(src) > 0 {
		subtle.XORBytes(feedback, feedback, src[:bs])
		ctx.Encrypt(dst[:bs], feedback)
		copy(feedback, dst[:bs])

		dst, src = dst[bs:], src[bs:]
	}
}

// Decrypt reverses Encrypt. Each ciphertext block is saved before dst is
// written so that decrypting in place works; it then becomes the feedback
// for the next block.
func Decrypt(ctx block.Context, dst, src, feedback []byte) {
	bs := ctx.BlockSize()
	mustMatch(bs, dst, src, feedback)

	var scratch [scratchSize]byte
	next := scratch[:]
	if bs > scratchSize {
		next = make([]byte, bs)
	}
	next = next[:bs]

	for len(src) > 0 {
		copy(next, src[:bs])
		ctx.Decrypt(dst[:bs], src[:bs])
		subtle.XORBytes(dst[:bs], dst[:bs], feedback)
		copy(feedback, next)

		dst, src = dst[bs:], src[bs:]
	}
}

func mustMatch(bs int, dst, src, feedback []byte) {
	block.MustFullBlocks(bs, dst, src)
	if len(feedback) != bs {
		panic(ErrFeedbackSize)
	}
}
