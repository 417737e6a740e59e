package chain

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/drand/cbcsuite/crypto/block"
)

// ModeName is the mode advertised by every algorithm built by Mode.
const ModeName = "cbc"

// ErrIVNotSet is raised when a cipher is used after SetKey without a fresh SetIV.
var ErrIVNotSet = errors.New("chain: cipher used without an IV set since the last key")

// Block8 and Block16 are the feedback buffers of 8 and 16 byte block ciphers.
type (
	Block8  [8]byte
	Block16 [16]byte
)

func (b *Block8) bytes() []byte  { return b[:] }
func (b *Block16) bytes() []byte { return b[:] }

// feedback is satisfied by a pointer to one of the BlockN arrays.
type feedback[F any] interface {
	*F
	bytes() []byte
}

// rawContext is satisfied by a pointer to an underlying cipher context.
type rawContext[R any] interface {
	*R
	block.Context
}

// Cipher chains the block cipher R. The underlying context and the feedback
// buffer live inside Cipher by value; one Cipher serves one traffic direction
// and must not be used from several goroutines at once.
//
// SetKey must be followed by SetIV before the next Encrypt or Decrypt: the
// feedback left over from a previous key is never reused.
type Cipher[R any, F any, PR rawContext[R], PF feedback[F]] struct {
	raw      R
	feedback F
	keyed    bool
	ivSet    bool
}

func (c *Cipher[R, F, PR, PF]) BlockSize() int {
	return PR(&c.raw).BlockSize()
}

// SetKey passes key to the underlying key schedule and returns its error
// unchanged. The feedback buffer is left alone but marked stale.
func (c *Cipher[R, F, PR, PF]) SetKey(key []byte) error {
	c.ivSet = false
	if err := PR(&c.raw).SetKey(key); err != nil {
		c.keyed = false
		return err
	}
	c.keyed = true
	return nil
}

// SetIV overwrites the feedback buffer with the first BlockSize bytes of iv.
func (c *Cipher[R, F, PR, PF]) SetIV(iv []byte) {
	fb := PF(&c.feedback).bytes()
	copy(fb, iv[:len(fb)])
	c.ivSet = true
}

func (c *Cipher[R, F, PR, PF]) Encrypt(dst, src []byte) {
	c.mustBeReady()
	Encrypt(PR(&c.raw), dst, src, PF(&c.feedback).bytes())
}

func (c *Cipher[R, F, PR, PF]) Decrypt(dst, src []byte) {
	c.mustBeReady()
	Decrypt(PR(&c.raw), dst, src, PF(&c.feedback).bytes())
}

func (c *Cipher[R, F, PR, PF]) mustBeReady() {
	if !c.keyed {
		panic(block.ErrKeyNotSet)
	}
	if !c.ivSet {
		panic(ErrIVNotSet)
	}
}

// Mode builds the descriptor of the chained version of raw, whose context type
// is R and whose block fits F. It panics when the sizes disagree, which can
// only happen in a wrong package-level declaration.
func Mode[R any, F any, PR rawContext[R], PF feedback[F]](name string, raw *block.Algorithm) *block.Algorithm {
	var c Cipher[R, F, PR, PF]
	bs := c.BlockSize()
	if bs != raw.BlockSize || bs != len(PF(&c.feedback).bytes()) {
		panic(fmt.Sprintf("chain: %s: block size %d does not fit %s (%d) or its feedback buffer",
			name, bs, raw.Name, raw.BlockSize))
	}
	return &block.Algorithm{
		Name:        name,
		Mode:        ModeName,
		ContextSize: int(unsafe.Sizeof(c)),
		BlockSize:   bs,
		KeySizes:    raw.KeySizes,
		New:         func() block.Cipher { return new(Cipher[R, F, PR, PF]) },
	}
}
