package chain

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/cbcsuite/crypto/block"
)

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func keyed(t *testing.T, alg *block.Algorithm, key, iv []byte) block.Cipher {
	t.Helper()
	c := alg.New()
	require.NoError(t, c.SetKey(key))
	c.SetIV(iv)
	return c
}

func randomBytes(r *rand.Rand, n int) []byte {
	b := make([]byte, n)
	_, _ = r.Read(b)
	return b
}

func TestSP80038AVector(t *testing.T) {
	// NIST SP 800-38A F.2.1 and F.2.2, CBC-AES128
	key := unhex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	iv := unhex(t, "000102030405060708090a0b0c0d0e0f")
	pt := unhex(t, "6bc1bee22e409f96e93d7e117393172a"+
		"ae2d8a571e03ac9c9eb76fac45af8e51"+
		"30c81c46a35ce411e5fbc1191a0a52ef"+
		"f69f2445df4f9b17ad2b417be66c3710")
	ct := unhex(t, "7649abac8119b246cee98e9b12e9197d"+
		"5086cb9b507219ee95db113a917678b2"+
		"73bed6b8e3c1743b7116e69e22229516"+
		"3ff1caa1681fac09120eca307586e1a7")

	out := make([]byte, len(pt))
	keyed(t, AESCBC, key, iv).Encrypt(out, pt)
	require.Equal(t, ct, out)

	keyed(t, AESCBC, key, iv).Decrypt(out, ct)
	require.Equal(t, pt, out)
}

func TestTwoBlockScenario(t *testing.T) {
	key := unhex(t, "000102030405060708090a0b0c0d0e0f")
	iv := make([]byte, 16)
	pt := bytes.Repeat([]byte{0x41}, 32)

	ct := make([]byte, len(pt))
	keyed(t, AESCBC, key, iv).Encrypt(ct, pt)

	raw, err := aes.NewCipher(key)
	require.NoError(t, err)

	in := make([]byte, 16)
	want0 := make([]byte, 16)
	for i := range in {
		in[i] = iv[i] ^ pt[i]
	}
	raw.Encrypt(want0, in)
	require.Equal(t, want0, ct[:16])

	want1 := make([]byte, 16)
	for i := range in {
		in[i] = pt[16+i] ^ ct[i]
	}
	raw.Encrypt(want1, in)
	require.Equal(t, want1, ct[16:])

	back := make([]byte, len(ct))
	keyed(t, AESCBC, key, iv).Decrypt(back, ct)
	require.Equal(t, pt, back)
}

func TestMatchesStdlibCBC(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	key := randomBytes(r, 32)
	iv := randomBytes(r, 16)
	pt := randomBytes(r, 16*37)

	b, err := aes.NewCipher(key)
	require.NoError(t, err)
	want := make([]byte, len(pt))
	cipher.NewCBCEncrypter(b, iv).CryptBlocks(want, pt)

	got := make([]byte, len(pt))
	keyed(t, AESCBC, key, iv).Encrypt(got, pt)
	require.Equal(t, want, got)
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, alg := range Algorithms() {
		for _, blocks := range []int{1, 2, 7, 64} {
			t.Run(fmt.Sprintf("%s/%d", alg.Name, blocks), func(t *testing.T) {
				key := randomBytes(r, alg.KeySizes.Min)
				iv := randomBytes(r, alg.BlockSize)
				pt := randomBytes(r, blocks*alg.BlockSize)

				ct := make([]byte, len(pt))
				keyed(t, alg, key, iv).Encrypt(ct, pt)
				require.NotEqual(t, pt, ct)

				back := make([]byte, len(ct))
				keyed(t, alg, key, iv).Decrypt(back, ct)
				require.Equal(t, pt, back)
			})
		}
	}
}

func TestFeedbackContinuation(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, alg := range Algorithms() {
		t.Run(alg.Name, func(t *testing.T) {
			bs := alg.BlockSize
			key := randomBytes(r, alg.KeySizes.Max)
			iv := randomBytes(r, bs)
			pt := randomBytes(r, 5*bs)

			whole := make([]byte, len(pt))
			keyed(t, alg, key, iv).Encrypt(whole, pt)

			split := make([]byte, len(pt))
			c := keyed(t, alg, key, iv)
			c.Encrypt(split[:2*bs], pt[:2*bs])
			c.Encrypt(split[2*bs:3*bs], pt[2*bs:3*bs])
			c.Encrypt(split[3*bs:], pt[3*bs:])
			require.Equal(t, whole, split)

			back := make([]byte, len(pt))
			d := keyed(t, alg, key, iv)
			d.Decrypt(back[:bs], whole[:bs])
			d.Decrypt(back[bs:], whole[bs:])
			require.Equal(t, pt, back)
		})
	}
}

func TestInPlace(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for _, alg := range Algorithms() {
		t.Run(alg.Name, func(t *testing.T) {
			key := randomBytes(r, alg.KeySizes.Min)
			iv := randomBytes(r, alg.BlockSize)
			pt := randomBytes(r, 9*alg.BlockSize)

			want := make([]byte, len(pt))
			keyed(t, alg, key, iv).Encrypt(want, pt)

			buf := append([]byte(nil), pt...)
			keyed(t, alg, key, iv).Encrypt(buf, buf)
			require.Equal(t, want, buf)

			keyed(t, alg, key, iv).Decrypt(buf, buf)
			require.Equal(t, pt, buf)
		})
	}
}

func TestIVSensitivity(t *testing.T) {
	for _, alg := range Algorithms() {
		t.Run(alg.Name, func(t *testing.T) {
			bs := alg.BlockSize
			key := bytes.Repeat([]byte{0x11}, alg.KeySizes.Min)
			pt := bytes.Repeat([]byte{0x41}, 3*bs)

			iv1 := make([]byte, bs)
			iv2 := make([]byte, bs)
			iv2[bs-1] = 1

			ct1 := make([]byte, len(pt))
			ct2 := make([]byte, len(pt))
			keyed(t, alg, key, iv1).Encrypt(ct1, pt)
			keyed(t, alg, key, iv2).Encrypt(ct2, pt)

			for i := 0; i < len(pt); i += bs {
				require.NotEqual(t, ct1[i:i+bs], ct2[i:i+bs], "block %d", i/bs)
			}
			// identical plaintext blocks do not repeat in the chain
			require.NotEqual(t, ct1[:bs], ct1[bs:2*bs])
		})
	}
}

func TestNewKeyNeedsNewIV(t *testing.T) {
	c := AESCBC.New()
	buf := make([]byte, 32)

	require.PanicsWithError(t, block.ErrKeyNotSet.Error(), func() { c.Encrypt(buf, buf) })

	require.NoError(t, c.SetKey(make([]byte, 16)))
	require.PanicsWithError(t, ErrIVNotSet.Error(), func() { c.Encrypt(buf, buf) })

	c.SetIV(make([]byte, 16))
	require.NotPanics(t, func() { c.Encrypt(buf, buf) })

	// a second key makes the feedback of the first one stale
	require.NoError(t, c.SetKey(bytes.Repeat([]byte{1}, 16)))
	require.PanicsWithError(t, ErrIVNotSet.Error(), func() { c.Decrypt(buf, buf) })

	// a rejected key leaves the cipher unusable until a good one is set
	require.Error(t, c.SetKey(make([]byte, 3)))
	c.SetIV(make([]byte, 16))
	require.PanicsWithError(t, block.ErrKeyNotSet.Error(), func() { c.Encrypt(buf, buf) })
}

func TestSetKeyKeepsFeedback(t *testing.T) {
	key := bytes.Repeat([]byte{9}, 16)
	iv := bytes.Repeat([]byte{3}, 16)
	pt := bytes.Repeat([]byte{0x41}, 16)

	want := make([]byte, 16)
	keyed(t, AESCBC, key, iv).Encrypt(want, pt)

	c := AESCBC.New()
	c.SetIV(iv)
	require.NoError(t, c.SetKey(key))
	c.SetIV(iv)
	got := make([]byte, 16)
	c.Encrypt(got, pt)
	require.Equal(t, want, got)
}

func TestPreconditions(t *testing.T) {
	c := keyed(t, BlowfishCBC, make([]byte, 16), make([]byte, 8))

	require.PanicsWithError(t, block.ErrInputNotFullBlocks.Error(), func() {
		c.Encrypt(make([]byte, 16), make([]byte, 15))
	})
	require.PanicsWithError(t, block.ErrOutputTooSmall.Error(), func() {
		c.Decrypt(make([]byte, 8), make([]byte, 16))
	})
	require.Panics(t, func() { c.SetIV(make([]byte, 4)) })

	raw := block.Raw[block.AES]{}
	require.NoError(t, raw.SetKey(make([]byte, 16)))
	require.PanicsWithError(t, ErrFeedbackSize.Error(), func() {
		Encrypt(&raw, make([]byte, 16), make([]byte, 16), make([]byte, 8))
	})
}

func TestModeDescriptors(t *testing.T) {
	raws := map[string]*block.Algorithm{
		"aes_cbc":      block.AESAlgorithm,
		"blowfish_cbc": block.BlowfishAlgorithm,
		"cast5_cbc":    block.CAST5Algorithm,
		"twofish_cbc":  block.TwofishAlgorithm,
		"xtea_cbc":     block.XTEAAlgorithm,
	}
	for _, alg := range Algorithms() {
		raw := raws[alg.Name]
		require.NotNil(t, raw, alg.Name)
		require.Equal(t, ModeName, alg.Mode)
		require.Equal(t, raw.BlockSize, alg.BlockSize)
		require.Equal(t, raw.KeySizes, alg.KeySizes)
		require.GreaterOrEqual(t, alg.ContextSize, alg.BlockSize)
		require.Equal(t, alg.BlockSize, alg.New().BlockSize())
	}

	require.Panics(t, func() {
		Mode[block.Raw[block.AES], Block8]("aes_bad", block.AESAlgorithm)
	})
}

func TestIndependentContextsInParallel(t *testing.T) {
	key := bytes.Repeat([]byte{5}, 16)
	iv := bytes.Repeat([]byte{6}, 16)
	pt := bytes.Repeat([]byte{0x41}, 16*16)

	want := make([]byte, len(pt))
	keyed(t, TwofishCBC, key, iv).Encrypt(want, pt)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		c := keyed(t, TwofishCBC, key, iv)
		wg.Add(1)
		go func(i int, c block.Cipher) {
			defer wg.Done()
			out := make([]byte, len(pt))
			for off := 0; off < len(pt); off += 16 {
				c.Encrypt(out[off:off+16], pt[off:off+16])
			}
			results[i] = out
		}(i, c)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, want, got)
	}
}

func BenchmarkEncrypt(b *testing.B) {
	for _, alg := range Algorithms() {
		b.Run(alg.Name, func(b *testing.B) {
			c := alg.New()
			if err := c.SetKey(make([]byte, alg.KeySizes.Min)); err != nil {
				b.Fatal(err)
			}
			c.SetIV(make([]byte, alg.BlockSize))
			buf := make([]byte, 16*1024)
			b.SetBytes(int64(len(buf)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.Encrypt(buf, buf)
			}
		})
	}
}
