// Package suite holds the cipher-suite records negotiated on the wire and the
// registry they are looked up in.
package suite

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/drand/cbcsuite/common/log"
	"github.com/drand/cbcsuite/crypto/block"
	"github.com/drand/cbcsuite/crypto/digest"
	"github.com/drand/cbcsuite/crypto/kex"
	"github.com/drand/cbcsuite/internal/metrics"
)

var (
	ErrDuplicateCode = errors.New("suite: code already registered")
	ErrSuiteNotFound = errors.New("suite: no suite registered for this code")
	ErrKeyLength     = errors.New("suite: wrong key length")
	ErrIVLength      = errors.New("suite: wrong IV length")
)

// Suite binds a 16-bit wire code to the algorithms it stands for. Suites are
// registered once and never modified afterwards.
type Suite struct {
	// Code is the identifier exchanged during the handshake.
	Code uint16
	// Name is the IANA-style name, e.g. TLS_RSA_WITH_AES_128_CBC_SHA256.
	Name string
	// KeyLen is the length of the bulk cipher key in bytes.
	KeyLen      int
	KeyExchange *kex.Algorithm
	Cipher      *block.Algorithm
	Digest      *digest.Algorithm
}

// Wire returns the code in network byte order.
func (s *Suite) Wire() [2]byte {
	var w [2]byte
	binary.BigEndian.PutUint16(w[:], s.Code)
	return w
}

func (s *Suite) String() string {
	if s == nil {
		return ""
	}
	return s.Name
}

// CodeString formats the code the way it is written in registries, e.g. 0x003c.
func (s *Suite) CodeString() string {
	return fmt.Sprintf("0x%04x", s.Code)
}

// NewCipher returns a cipher of the suite keyed with key and primed with iv.
// Unlike the cipher itself it checks both lengths and reports them as errors.
func (s *Suite) NewCipher(key, iv []byte) (block.Cipher, error) {
	if len(key) != s.KeyLen {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrKeyLength, s.Name, s.KeyLen, len(key))
	}
	if len(iv) != s.Cipher.BlockSize {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrIVLength, s.Name, s.Cipher.BlockSize, len(iv))
	}
	c := s.Cipher.New()
	if err := c.SetKey(key); err != nil {
		return nil, fmt.Errorf("suite: %s: %w", s.Name, err)
	}
	c.SetIV(iv)
	return c, nil
}

// Registry is an append-only table of suites keyed by code. Lookups are safe
// for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byCode map[uint16]*Suite
	sorted []*Suite
	l      log.Logger
}

// NewRegistry returns an empty registry. A nil logger falls back to the
// default one.
func NewRegistry(l log.Logger) *Registry {
	return &Registry{byCode: make(map[uint16]*Suite), l: l}
}

func (r *Registry) logger() log.Logger {
	if r.l == nil {
		return log.DefaultLogger().Named("suite")
	}
	return r.l
}

// Register adds s to the registry. A code can only be registered once.
func (r *Registry) Register(s *Suite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byCode[s.Code]; ok {
		return fmt.Errorf("%w: %s is taken by %s", ErrDuplicateCode, s.CodeString(), prev.Name)
	}
	r.byCode[s.Code] = s
	i := sort.Search(len(r.sorted), func(i int) bool { return r.sorted[i].Code > s.Code })
	r.sorted = append(r.sorted, nil)
	copy(r.sorted[i+1:], r.sorted[i:])
	r.sorted[i] = s
	r.logger().Debugw("registered suite", "code", s.CodeString(), "name", s.Name, "cipher", s.Cipher.String())
	return nil
}

// MustRegister is Register for package-level tables, where a duplicate is a bug.
func (r *Registry) MustRegister(suites ...*Suite) {
	for _, s := range suites {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the suite registered under code.
func (r *Registry) Lookup(code uint16) (*Suite, error) {
	r.mu.RLock()
	s, ok := r.byCode[code]
	r.mu.RUnlock()
	if !ok {
		metrics.SuiteLookups.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: 0x%04x", ErrSuiteNotFound, code)
	}
	metrics.SuiteLookups.WithLabelValues("found").Inc()
	return s, nil
}

// LookupWire is Lookup for a code read off the wire in network byte order.
func (r *Registry) LookupWire(w [2]byte) (*Suite, error) {
	return r.Lookup(binary.BigEndian.Uint16(w[:]))
}

// LookupName returns the suite with the given name, ignoring case.
func (r *Registry) LookupName(name string) (*Suite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sorted {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSuiteNotFound, name)
}

// Parse resolves either a suite name or a code written as 0xNNNN.
func (r *Registry) Parse(nameOrCode string) (*Suite, error) {
	code, err := ParseCode(nameOrCode)
	if err == nil {
		return r.Lookup(code)
	}
	return r.LookupName(nameOrCode)
}

// List returns the registered suites ordered by code.
func (r *Registry) List() []*Suite {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Suite, len(r.sorted))
	copy(out, r.sorted)
	return out
}

// ParseCode parses a suite code written in hexadecimal with a 0x prefix.
func ParseCode(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0, fmt.Errorf("suite: code %q must start with 0x", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("suite: invalid code %q: %w", s, err)
	}
	return uint16(v), nil
}
