package block

import (
	"bytes"
	"crypto/aes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestAESKnownAnswer(t *testing.T) {
	// FIPS-197 appendix C.1
	key := unhex(t, "000102030405060708090a0b0c0d0e0f")
	pt := unhex(t, "00112233445566778899aabbccddeeff")
	ct := unhex(t, "69c4e0d86a7b0430d8cdb78070b4c55a")

	c := AESAlgorithm.New()
	require.NoError(t, c.SetKey(key))

	out := make([]byte, len(pt))
	c.Encrypt(out, pt)
	require.Equal(t, ct, out)

	c.Decrypt(out, out)
	require.Equal(t, pt, out)
}

func TestRawBlocksAreIndependent(t *testing.T) {
	for _, alg := range Algorithms() {
		t.Run(alg.Name, func(t *testing.T) {
			c := alg.New()
			require.NoError(t, c.SetKey(bytes.Repeat([]byte{7}, alg.KeySizes.Max)))
			c.SetIV(bytes.Repeat([]byte{1}, alg.BlockSize))

			pt := bytes.Repeat([]byte{0x41}, 3*alg.BlockSize)
			ct := make([]byte, len(pt))
			c.Encrypt(ct, pt)

			bs := alg.BlockSize
			require.Equal(t, ct[:bs], ct[bs:2*bs])
			require.Equal(t, ct[:bs], ct[2*bs:])

			back := make([]byte, len(ct))
			c.Decrypt(back, ct)
			require.Equal(t, pt, back)
		})
	}
}

func TestSetKeyPassesErrorThrough(t *testing.T) {
	c := AESAlgorithm.New()
	err := c.SetKey(make([]byte, 5))
	require.Error(t, err)
	require.IsType(t, aes.KeySizeError(0), err)

	require.PanicsWithError(t, ErrKeyNotSet.Error(), func() {
		c.Encrypt(make([]byte, 16), make([]byte, 16))
	})
}

func TestPreconditions(t *testing.T) {
	c := XTEAAlgorithm.New()
	require.NoError(t, c.SetKey(make([]byte, 16)))

	require.PanicsWithError(t, ErrInputNotFullBlocks.Error(), func() {
		c.Encrypt(make([]byte, 16), make([]byte, 12))
	})
	require.PanicsWithError(t, ErrOutputTooSmall.Error(), func() {
		c.Decrypt(make([]byte, 8), make([]byte, 16))
	})
	require.NotPanics(t, func() {
		c.Encrypt(nil, nil)
	})
}

func TestKeySizes(t *testing.T) {
	tests := []struct {
		alg *Algorithm
		n   int
		ok  bool
	}{
		{AESAlgorithm, 16, true},
		{AESAlgorithm, 24, true},
		{AESAlgorithm, 32, true},
		{AESAlgorithm, 20, false},
		{AESAlgorithm, 64, false},
		{BlowfishAlgorithm, 1, true},
		{BlowfishAlgorithm, 56, true},
		{BlowfishAlgorithm, 57, false},
		{CAST5Algorithm, 16, true},
		{CAST5Algorithm, 32, false},
		{TwofishAlgorithm, 24, true},
		{XTEAAlgorithm, 8, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.ok, tt.alg.KeySizes.Valid(tt.n), "%s with %d bytes", tt.alg, tt.n)

		err := tt.alg.New().SetKey(make([]byte, tt.n))
		if tt.ok {
			require.NoError(t, err, "%s with %d bytes", tt.alg, tt.n)
		} else {
			require.Error(t, err, "%s with %d bytes", tt.alg, tt.n)
		}
	}
}

func TestDescriptors(t *testing.T) {
	sizes := map[string]int{"aes": 16, "blowfish": 8, "cast5": 8, "twofish": 16, "xtea": 8}
	for _, alg := range Algorithms() {
		require.Equal(t, sizes[alg.Name], alg.BlockSize, alg.Name)
		require.Equal(t, "ecb", alg.Mode)
		require.Positive(t, alg.ContextSize)
		require.Equal(t, alg.BlockSize, alg.New().BlockSize())
	}

	found, err := Find("twofish", Algorithms()...)
	require.NoError(t, err)
	require.Equal(t, TwofishAlgorithm, found)

	_, err = Find("des", Algorithms()...)
	require.Error(t, err)
}
