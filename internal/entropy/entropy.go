// Package entropy supplies the random bytes used for keys and initialization
// vectors, optionally from a user-provided source.
package entropy

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"os"

	"github.com/drand/cbcsuite/common/log"
)

// GetRandom reads n bytes from source. A nil source, a failing one, or one
// returning short reads is replaced by crypto/rand.
func GetRandom(source io.Reader, n uint32) ([]byte, error) {
	if source == nil {
		source = rand.Reader
	}

	randomBytes := make([]byte, n)
	bytesRead, err := io.ReadFull(source, randomBytes)
	if err != nil || uint32(bytesRead) != n {
		_, err := rand.Read(randomBytes)
		return randomBytes, err
	}
	return randomBytes, nil
}

// GetIV returns n bytes for an initialization vector. Bytes read from source
// are XORed into crypto/rand output, so a source that always yields the same
// bytes never repeats an IV.
func GetIV(source io.Reader, n uint32) ([]byte, error) {
	iv := make([]byte, n)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	if source == nil {
		return iv, nil
	}
	extra, err := GetRandom(source, n)
	if err != nil {
		return nil, err
	}
	subtle.XORBytes(iv, iv, extra)
	return iv, nil
}

// NewFileReader returns a reader that opens filePath on every Read, so that
// device files such as /dev/urandom can be used directly.
func NewFileReader(filePath string) io.Reader {
	return &fileReader{
		path: filePath,
	}
}

type fileReader struct {
	path string
}

func (r *fileReader) Read(p []byte) (n int, err error) {
	file, err := os.Open(r.path)
	if err != nil {
		return 0, fmt.Errorf("entropy: cannot open file: %w", err)
	}
	defer file.Close()

	n, err = file.Read(p)
	if err != nil {
		return 0, fmt.Errorf("entropy: error reading from file: %w", err)
	}

	return n, nil
}

// GetReaderFromSource checks that sourcePath is a regular file and returns a
// reader over it.
func GetReaderFromSource(sourcePath string, logger log.Logger) (io.Reader, error) {
	fileInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("entropy: cannot access source: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("entropy: source path is a directory, not a file")
	}

	logger.Infow("Using file for entropy source", "source", sourcePath)
	return NewFileReader(sourcePath), nil
}
