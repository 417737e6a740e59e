// Package session runs the bulk encryption of a connection once a suite has
// been negotiated: it derives one key and IV per traffic direction from the
// shared secret and keeps the chaining state of each direction between calls.
//
// Records are encrypted but not authenticated.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/drand/kyber"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/drand/cbcsuite/common/log"
	"github.com/drand/cbcsuite/crypto/block"
	"github.com/drand/cbcsuite/internal/metrics"
	"github.com/drand/cbcsuite/suite"
)

var (
	// ErrPartialBlock is returned for records that are not a whole number of blocks.
	ErrPartialBlock = errors.New("session: record is not a whole number of blocks")
	// ErrShortBuffer is returned when the destination cannot hold the record.
	ErrShortBuffer = errors.New("session: destination buffer too small")
	// ErrEmptySecret is returned when no secret is given to derive keys from.
	ErrEmptySecret = errors.New("session: empty secret")
)

// HKDF labels of the four traffic secrets.
const (
	clientKeyLabel = "client write key"
	serverKeyLabel = "server write key"
	clientIVLabel  = "client write iv"
	serverIVLabel  = "server write iv"
)

// Session holds the write and read state of one end of a connection. Seal
// and Open can be called concurrently with each other; calls in the same
// direction are serialized.
type Session struct {
	id       uuid.UUID
	suite    *suite.Suite
	isClient bool
	salt     []byte
	l        log.Logger

	sealMu sync.Mutex
	seal   block.Cipher
	openMu sync.Mutex
	open   block.Cipher
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger of the session.
func WithLogger(l log.Logger) Option {
	return func(s *Session) {
		s.l = l
	}
}

// WithSalt sets the HKDF salt, typically the concatenated handshake randoms.
func WithSalt(salt []byte) Option {
	return func(s *Session) {
		s.salt = salt
	}
}

// New derives the traffic keys of st from secret and returns a ready session.
// isClient selects which derived key encrypts outgoing records.
func New(st *suite.Suite, secret []byte, isClient bool, opts ...Option) (*Session, error) {
	s := &Session{
		id:       uuid.New(),
		suite:    st,
		isClient: isClient,
		seal:     st.Cipher.New(),
		open:     st.Cipher.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.l == nil {
		s.l = log.DefaultLogger()
	}
	s.l = s.l.Named("session").With("id", s.id.String(), "suite", st.Name)

	if err := s.key(secret); err != nil {
		return nil, err
	}
	metrics.SessionsCreated.WithLabelValues(st.Name).Inc()
	s.l.Debugw("session keyed", "client", isClient, "cipher", st.Cipher.Name)
	return s, nil
}

// NewFromExchange completes the suite's ephemeral key exchange with the peer's
// public point and keys a session from the resulting shared secret.
func NewFromExchange(st *suite.Suite, priv kyber.Scalar, peer []byte, isClient bool, opts ...Option) (*Session, error) {
	secret, err := st.KeyExchange.SharedSecret(priv, peer)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return New(st, secret, isClient, opts...)
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Suite is the negotiated suite.
func (s *Session) Suite() *suite.Suite {
	return s.suite
}

// Rekey derives fresh keys and IVs from secret. The chaining state of both
// directions restarts from the new IVs. On error the session must be
// discarded.
func (s *Session) Rekey(secret []byte) error {
	if err := s.key(secret); err != nil {
		return err
	}
	s.l.Infow("session rekeyed")
	return nil
}

func (s *Session) key(secret []byte) error {
	if len(secret) == 0 {
		return ErrEmptySecret
	}
	keyLen, ivLen := s.suite.KeyLen, s.suite.Cipher.BlockSize

	writeKey, readKey := clientKeyLabel, serverKeyLabel
	writeIV, readIV := clientIVLabel, serverIVLabel
	if !s.isClient {
		writeKey, readKey = readKey, writeKey
		writeIV, readIV = readIV, writeIV
	}

	s.sealMu.Lock()
	defer s.sealMu.Unlock()
	s.openMu.Lock()
	defer s.openMu.Unlock()

	if err := s.derive(s.seal, secret, writeKey, writeIV, keyLen, ivLen); err != nil {
		return err
	}
	return s.derive(s.open, secret, readKey, readIV, keyLen, ivLen)
}

func (s *Session) derive(c block.Cipher, secret []byte, keyLabel, ivLabel string, keyLen, ivLen int) error {
	key, err := s.expand(secret, keyLabel, keyLen)
	if err != nil {
		return err
	}
	iv, err := s.expand(secret, ivLabel, ivLen)
	if err != nil {
		return err
	}
	if err := c.SetKey(key); err != nil {
		return fmt.Errorf("session: %s key: %w", keyLabel, err)
	}
	c.SetIV(iv)
	return nil
}

func (s *Session) expand(secret []byte, label string, n int) ([]byte, error) {
	reader := hkdf.New(s.suite.Digest.New, secret, s.salt, []byte(label))
	out := make([]byte, n)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("session: deriving %s: %w", label, err)
	}
	return out, nil
}

// Seal encrypts plaintext into dst. plaintext must be a whole number of
// blocks, see Pad; dst and plaintext may be the same slice.
func (s *Session) Seal(dst, plaintext []byte) error {
	if err := s.check(dst, plaintext); err != nil {
		return err
	}
	s.sealMu.Lock()
	s.seal.Encrypt(dst, plaintext)
	s.sealMu.Unlock()
	metrics.CipherBytes.WithLabelValues(s.suite.Cipher.Name, metrics.Encrypt).Add(float64(len(plaintext)))
	return nil
}

// Open decrypts ciphertext into dst. dst and ciphertext may be the same slice.
func (s *Session) Open(dst, ciphertext []byte) error {
	if err := s.check(dst, ciphertext); err != nil {
		return err
	}
	s.openMu.Lock()
	s.open.Decrypt(dst, ciphertext)
	s.openMu.Unlock()
	metrics.CipherBytes.WithLabelValues(s.suite.Cipher.Name, metrics.Decrypt).Add(float64(len(ciphertext)))
	return nil
}

func (s *Session) check(dst, src []byte) error {
	if bs := s.suite.Cipher.BlockSize; len(src)%bs != 0 {
		return fmt.Errorf("%w: %d bytes with %d byte blocks", ErrPartialBlock, len(src), bs)
	}
	if len(dst) < len(src) {
		return fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(dst), len(src))
	}
	return nil
}
