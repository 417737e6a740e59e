package entropy

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/cbcsuite/internal/test/testlogger"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy today") }

func TestGetRandomDefault(t *testing.T) {
	iv1, err := GetRandom(nil, 16)
	require.NoError(t, err)
	require.Len(t, iv1, 16)

	iv2, err := GetRandom(nil, 16)
	require.NoError(t, err)
	require.False(t, bytes.Equal(iv1, iv2), "two IVs were equal, which is incredibly unlikely")
}

func TestGetRandomCustomSource(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte{0x42}, 32))
	key, err := GetRandom(src, 32)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{0x42}, 32), key)
}

func TestGetRandomFallsBack(t *testing.T) {
	b, err := GetRandom(failingReader{}, 24)
	require.NoError(t, err)
	require.Len(t, b, 24)

	// a short source is not used either
	b, err = GetRandom(bytes.NewReader([]byte{1, 2, 3}), 16)
	require.NoError(t, err)
	require.Len(t, b, 16)
}

func TestGetReaderFromSource(t *testing.T) {
	l := testlogger.New(t)
	dir := t.TempDir()
	data := []byte("0123456789abcdef0123456789abcdef")
	file := filepath.Join(dir, "seed.dat")
	require.NoError(t, os.WriteFile(file, data, 0o600))

	reader, err := GetReaderFromSource(file, l)
	require.NoError(t, err)
	got, err := GetRandom(reader, 16)
	require.NoError(t, err)
	require.Equal(t, data[:16], got)

	_, err = GetReaderFromSource(dir, l)
	require.ErrorContains(t, err, "directory")

	_, err = GetReaderFromSource(filepath.Join(dir, "missing"), l)
	require.Error(t, err)
}

func TestFileReaderMissingFile(t *testing.T) {
	r := NewFileReader(filepath.Join(t.TempDir(), "gone"))
	_, err := r.Read(make([]byte, 4))
	require.ErrorContains(t, err, "entropy: cannot open file")
}

func TestGetIVFixedSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "seed.dat")
	require.NoError(t, os.WriteFile(file, bytes.Repeat([]byte{0xee}, 16), 0o600))
	reader, err := GetReaderFromSource(file, testlogger.New(t))
	require.NoError(t, err)

	iv1, err := GetIV(reader, 16)
	require.NoError(t, err)
	require.Len(t, iv1, 16)
	iv2, err := GetIV(reader, 16)
	require.NoError(t, err)
	require.Len(t, iv2, 16)
	require.NotEqual(t, iv1, iv2)
	require.NotEqual(t, bytes.Repeat([]byte{0xee}, 16), iv1)

	iv3, err := GetIV(nil, 8)
	require.NoError(t, err)
	require.Len(t, iv3, 8)
}
