package suite

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/drand/cbcsuite/crypto/block"
	"github.com/drand/cbcsuite/crypto/chain"
	"github.com/drand/cbcsuite/crypto/digest"
	"github.com/drand/cbcsuite/crypto/kex"
)

// Definition is the TOML form of a suite, with algorithms given by name.
type Definition struct {
	Code        string `toml:"code"`
	Name        string `toml:"name"`
	KeyLen      int    `toml:"key_len"`
	KeyExchange string `toml:"key_exchange"`
	Cipher      string `toml:"cipher"`
	Digest      string `toml:"digest"`
}

type definitions struct {
	Suites []Definition `toml:"suite"`
}

// DefinitionOf returns the TOML form of s.
func DefinitionOf(s *Suite) Definition {
	return Definition{
		Code:        s.CodeString(),
		Name:        s.Name,
		KeyLen:      s.KeyLen,
		KeyExchange: s.KeyExchange.String(),
		Cipher:      s.Cipher.String(),
		Digest:      s.Digest.String(),
	}
}

// Suite resolves the algorithm names of d.
func (d *Definition) Suite() (*Suite, error) {
	code, err := ParseCode(d.Code)
	if err != nil {
		return nil, err
	}
	ciphers := append(chain.Algorithms(), block.Algorithms()...)
	c, err := block.Find(d.Cipher, ciphers...)
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", d.Name, err)
	}
	h, err := digest.Find(d.Digest)
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", d.Name, err)
	}
	k, err := kex.Find(d.KeyExchange)
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", d.Name, err)
	}
	return &Suite{
		Code:        code,
		Name:        d.Name,
		KeyLen:      d.KeyLen,
		KeyExchange: k,
		Cipher:      c,
		Digest:      h,
	}, nil
}

// LoadDefinitions reads the [[suite]] tables of a TOML file. The suites are
// returned as written, without validation.
func LoadDefinitions(path string) ([]*Suite, error) {
	var defs definitions
	if _, err := toml.DecodeFile(path, &defs); err != nil {
		return nil, fmt.Errorf("suite: reading %s: %w", path, err)
	}
	out := make([]*Suite, 0, len(defs.Suites))
	for i := range defs.Suites {
		s, err := defs.Suites[i].Suite()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
