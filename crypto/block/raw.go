package block

import (
	"crypto/aes"
	"crypto/cipher"
	"unsafe"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
	"golang.org/x/crypto/twofish"
	"golang.org/x/crypto/xtea"
)

// Schedule binds a concrete block cipher to Raw. Implementations are empty
// structs: all their information is carried by the type.
type Schedule interface {
	BlockSize() int
	NewCipher(key []byte) (cipher.Block, error)
}

// Raw is the Context of the block cipher selected by S. The zero value is
// unkeyed; it is meant to be embedded by value in a larger context.
type Raw[S Schedule] struct {
	b cipher.Block
}

func (r *Raw[S]) BlockSize() int {
	var s S
	return s.BlockSize()
}

// SetKey runs the key schedule. Errors from the underlying cipher are
// returned unchanged and leave the previous key in place.
func (r *Raw[S]) SetKey(key []byte) error {
	var s S
	b, err := s.NewCipher(key)
	if err != nil {
		return err
	}
	r.b = b
	return nil
}

func (r *Raw[S]) Encrypt(dst, src []byte) {
	if r.b == nil {
		panic(ErrKeyNotSet)
	}
	r.b.Encrypt(dst, src)
}

func (r *Raw[S]) Decrypt(dst, src []byte) {
	if r.b == nil {
		panic(ErrKeyNotSet)
	}
	r.b.Decrypt(dst, src)
}

// AES is the Schedule of AES-128/192/256, from crypto/aes.
type AES struct{}

func (AES) BlockSize() int                             { return aes.BlockSize }
func (AES) NewCipher(key []byte) (cipher.Block, error) { return aes.NewCipher(key) }

// Blowfish is the Schedule of Blowfish, from golang.org/x/crypto/blowfish.
type Blowfish struct{}

func (Blowfish) BlockSize() int                             { return blowfish.BlockSize }
func (Blowfish) NewCipher(key []byte) (cipher.Block, error) { return blowfish.NewCipher(key) }

// CAST5 is the Schedule of CAST-128, from golang.org/x/crypto/cast5.
type CAST5 struct{}

func (CAST5) BlockSize() int                             { return cast5.BlockSize }
func (CAST5) NewCipher(key []byte) (cipher.Block, error) { return cast5.NewCipher(key) }

// Twofish is the Schedule of Twofish, from golang.org/x/crypto/twofish.
type Twofish struct{}

func (Twofish) BlockSize() int                             { return twofish.BlockSize }
func (Twofish) NewCipher(key []byte) (cipher.Block, error) { return twofish.NewCipher(key) }

// XTEA is the Schedule of XTEA, from golang.org/x/crypto/xtea.
type XTEA struct{}

func (XTEA) BlockSize() int                             { return xtea.BlockSize }
func (XTEA) NewCipher(key []byte) (cipher.Block, error) { return xtea.NewCipher(key) }

// ecb runs a raw cipher over several blocks, each one on its own.
type ecb[S Schedule] struct {
	raw   Raw[S]
	keyed bool
}

func (e *ecb[S]) BlockSize() int { return e.raw.BlockSize() }

func (e *ecb[S]) SetKey(key []byte) error {
	if err := e.raw.SetKey(key); err != nil {
		e.keyed = false
		return err
	}
	e.keyed = true
	return nil
}

// SetIV is a no-op: a raw cipher carries no chaining state.
func (e *ecb[S]) SetIV([]byte) {}

func (e *ecb[S]) Encrypt(dst, src []byte) {
	bs := e.prepare(dst, src)
	for len(src) > 0 {
		e.raw.Encrypt(dst[:bs], src[:bs])
		dst, src = dst[bs:], src[bs:]
	}
}

func (e *ecb[S]) Decrypt(dst, src []byte) {
	bs := e.prepare(dst, src)
	for len(src) > 0 {
		e.raw.Decrypt(dst[:bs], src[:bs])
		dst, src = dst[bs:], src[bs:]
	}
}

func (e *ecb[S]) prepare(dst, src []byte) int {
	if !e.keyed {
		panic(ErrKeyNotSet)
	}
	bs := e.raw.BlockSize()
	MustFullBlocks(bs, dst, src)
	return bs
}

// NewRaw returns the descriptor of the raw block cipher selected by S.
func NewRaw[S Schedule](name string, keys KeySizes) *Algorithm {
	var s S
	return &Algorithm{
		Name:        name,
		Mode:        "ecb",
		ContextSize: int(unsafe.Sizeof(ecb[S]{})),
		BlockSize:   s.BlockSize(),
		KeySizes:    keys,
		New:         func() Cipher { return new(ecb[S]) },
	}
}

// Raw block ciphers available to the chaining modes.
var (
	AESAlgorithm      = NewRaw[AES]("aes", KeySizes{Min: 16, Max: 32, Step: 8})
	BlowfishAlgorithm = NewRaw[Blowfish]("blowfish", KeySizes{Min: 1, Max: 56, Step: 1})
	CAST5Algorithm    = NewRaw[CAST5]("cast5", KeySizes{Min: cast5.KeySize, Max: cast5.KeySize})
	TwofishAlgorithm  = NewRaw[Twofish]("twofish", KeySizes{Min: 16, Max: 32, Step: 8})
	XTEAAlgorithm     = NewRaw[XTEA]("xtea", KeySizes{Min: 16, Max: 16})
)

// Algorithms lists the raw block ciphers.
func Algorithms() []*Algorithm {
	return []*Algorithm{AESAlgorithm, BlowfishAlgorithm, CAST5Algorithm, TwofishAlgorithm, XTEAAlgorithm}
}
