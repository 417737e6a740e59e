package cbcsuite

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/drand/cbcsuite/common/log"
	"github.com/drand/cbcsuite/internal/config"
	"github.com/drand/cbcsuite/internal/entropy"
	"github.com/drand/cbcsuite/internal/fs"
	"github.com/drand/cbcsuite/internal/metrics"
	"github.com/drand/cbcsuite/session"
	"github.com/drand/cbcsuite/suite"
)

var errNotWholeBlocks = errors.New("input is not a whole number of cipher blocks")

// cryptJSON is printed by encrypt and decrypt with --json.
type cryptJSON struct {
	Suite  string `json:"suite"`
	Code   string `json:"code"`
	IV     []byte `json:"iv"`
	Input  int    `json:"input_bytes"`
	Output int    `json:"output_bytes"`
	Out    string `json:"out"`
}

func encryptCmd(c *cli.Context, conf *config.Config) error {
	l := log.FromContextOrDefault(c.Context)
	s, key, err := suiteAndKey(c, conf)
	if err != nil {
		return err
	}
	bs := s.Cipher.BlockSize

	iv, err := ivFromFlag(c, bs)
	if err != nil {
		return err
	}
	// A generated IV travels in front of the ciphertext. A given one stays out
	// of the output, matching decrypt --iv.
	prefix := iv == nil
	if prefix {
		source, err := entropySource(conf, l)
		if err != nil {
			return err
		}
		if iv, err = entropy.GetIV(source, uint32(bs)); err != nil {
			return fmt.Errorf("could not generate IV: %w", err)
		}
	}

	in, err := os.ReadFile(c.String(inFlag.Name))
	if err != nil {
		return err
	}
	record := in
	if c.Bool(noPaddingFlag.Name) {
		if len(in)%bs != 0 {
			return fmt.Errorf("%w: %d bytes, block size %d", errNotWholeBlocks, len(in), bs)
		}
	} else {
		record = session.Pad(in, bs)
	}

	enc, err := s.NewCipher(key, iv)
	if err != nil {
		return err
	}
	out := make([]byte, len(record))
	if prefix {
		out = make([]byte, bs+len(record))
		copy(out, iv)
	}
	enc.Encrypt(out[len(out)-len(record):], record)
	metrics.CipherBytes.WithLabelValues(s.Cipher.Name, metrics.Encrypt).Add(float64(len(record)))

	path := c.String(outFlag.Name)
	if err := fs.WriteSecureFile(path, out); err != nil {
		return err
	}
	l.Infow("encrypted", "suite", s.Name, "in", len(in), "out", len(out), "path", path)
	return report(c, cryptJSON{Suite: s.Name, Code: s.CodeString(), IV: iv, Input: len(in), Output: len(out), Out: path})
}

func decryptCmd(c *cli.Context, conf *config.Config) error {
	l := log.FromContextOrDefault(c.Context)
	s, key, err := suiteAndKey(c, conf)
	if err != nil {
		return err
	}
	bs := s.Cipher.BlockSize

	iv, err := ivFromFlag(c, bs)
	if err != nil {
		return err
	}
	in, err := os.ReadFile(c.String(inFlag.Name))
	if err != nil {
		return err
	}
	ciphertext := in
	if iv == nil {
		if len(in) < bs {
			return fmt.Errorf("input too short to hold an IV: %d bytes", len(in))
		}
		iv, ciphertext = in[:bs], in[bs:]
	}
	if len(ciphertext)%bs != 0 {
		return fmt.Errorf("%w: %d bytes, block size %d", errNotWholeBlocks, len(ciphertext), bs)
	}

	dec, err := s.NewCipher(key, iv)
	if err != nil {
		return err
	}
	plain := make([]byte, len(ciphertext))
	dec.Decrypt(plain, ciphertext)
	metrics.CipherBytes.WithLabelValues(s.Cipher.Name, metrics.Decrypt).Add(float64(len(ciphertext)))

	if !c.Bool(noPaddingFlag.Name) {
		if plain, err = session.Unpad(plain, bs); err != nil {
			return fmt.Errorf("wrong key, IV or suite: %w", err)
		}
	}

	path := c.String(outFlag.Name)
	if err := fs.WriteSecureFile(path, plain); err != nil {
		return err
	}
	l.Infow("decrypted", "suite", s.Name, "in", len(in), "out", len(plain), "path", path)
	return report(c, cryptJSON{Suite: s.Name, Code: s.CodeString(), IV: iv, Input: len(in), Output: len(plain), Out: path})
}

func report(c *cli.Context, r cryptJSON) error {
	if c.Bool(jsonFlag.Name) {
		return printJSON(c, r)
	}
	_, err := fmt.Fprintf(c.App.Writer, "%s: %d bytes in, %d bytes written to %s (iv %x)\n",
		r.Suite, r.Input, r.Output, r.Out, r.IV)
	return err
}

func suiteAndKey(c *cli.Context, conf *config.Config) (*suite.Suite, []byte, error) {
	if !c.IsSet(suiteFlag.Name) {
		return nil, nil, fmt.Errorf("missing --%s", suiteFlag.Name)
	}
	s, err := conf.Registry().Parse(c.String(suiteFlag.Name))
	if err != nil {
		return nil, nil, err
	}
	key, err := hex.DecodeString(c.String(keyFlag.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid key: %w", err)
	}
	return s, key, nil
}

// ivFromFlag returns nil when no IV was given.
func ivFromFlag(c *cli.Context, blockSize int) ([]byte, error) {
	if !c.IsSet(ivFlag.Name) {
		return nil, nil
	}
	iv, err := hex.DecodeString(c.String(ivFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid iv: %w", err)
	}
	if len(iv) != blockSize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", suite.ErrIVLength, blockSize, len(iv))
	}
	return iv, nil
}

// entropySource returns nil, meaning crypto/rand, when no source is configured.
func entropySource(conf *config.Config, l log.Logger) (io.Reader, error) {
	if conf.EntropySource() == "" {
		return nil, nil
	}
	return entropy.GetReaderFromSource(conf.EntropySource(), l)
}
