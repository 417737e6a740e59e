// Package kex names the key-exchange algorithms a cipher suite can refer to,
// and runs the ephemeral Diffie-Hellman ones over kyber groups.
package kex

import (
	"errors"
	"fmt"

	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/group/edwards25519"
	"github.com/drand/kyber/util/random"
)

var (
	// ErrNoExchange is returned by algorithms whose exchange happens outside this package.
	ErrNoExchange = errors.New("kex: algorithm does not run a Diffie-Hellman exchange")
	// ErrSmallOrder is returned for peer points that the cofactor sends to the identity.
	ErrSmallOrder = errors.New("kex: peer point has small order")
)

// cofactor clears the torsion part of Ed25519 points. Points of the BLS12-381
// G1 subgroup have prime order, so only the identity maps to the identity.
const cofactor = 8

// Algorithm describes a key exchange. Group is nil for key-transport
// algorithms such as RSA.
type Algorithm struct {
	Name  string
	Group kyber.Group
}

func (a *Algorithm) String() string {
	if a == nil {
		return ""
	}
	return a.Name
}

// KeyPair is an ephemeral key pair for one exchange.
type KeyPair struct {
	Private kyber.Scalar
	Public  kyber.Point
}

// PublicBytes is the encoding of the public point sent to the peer.
func (k *KeyPair) PublicBytes() ([]byte, error) {
	return k.Public.MarshalBinary()
}

// NewKeyPair picks a fresh ephemeral key pair.
func (a *Algorithm) NewKeyPair() (*KeyPair, error) {
	if a.Group == nil {
		return nil, ErrNoExchange
	}
	priv := a.Group.Scalar().Pick(random.New())
	return &KeyPair{
		Private: priv,
		Public:  a.Group.Point().Mul(priv, nil),
	}, nil
}

// SharedSecret combines our private scalar with the peer's encoded public
// point and returns the encoding of the shared point.
func (a *Algorithm) SharedSecret(priv kyber.Scalar, peer []byte) ([]byte, error) {
	if a.Group == nil {
		return nil, ErrNoExchange
	}
	pub := a.Group.Point()
	if err := pub.UnmarshalBinary(peer); err != nil {
		return nil, fmt.Errorf("kex: invalid peer point: %w", err)
	}
	cleared := a.Group.Point().Mul(a.Group.Scalar().SetInt64(cofactor), pub)
	if cleared.Equal(a.Group.Point().Null()) {
		return nil, ErrSmallOrder
	}
	return a.Group.Point().Mul(priv, pub).MarshalBinary()
}

var (
	// RSA is key transport: the premaster secret travels encrypted under the
	// server's RSA key, which is handled by the handshake layer.
	RSA = &Algorithm{Name: "rsa"}
	// ECDHEEd25519 is ephemeral Diffie-Hellman over the Ed25519 group.
	ECDHEEd25519 = &Algorithm{Name: "ecdhe_ed25519", Group: edwards25519.NewBlakeSHA256Ed25519()}
	// ECDHEBLS12381 is ephemeral Diffie-Hellman over the G1 group of BLS12-381.
	ECDHEBLS12381 = &Algorithm{Name: "ecdhe_bls12381", Group: bls.NewBLS12381Suite().G1()}
)

// Algorithms lists the supported key exchanges.
func Algorithms() []*Algorithm {
	return []*Algorithm{RSA, ECDHEEd25519, ECDHEBLS12381}
}

// Find returns the key exchange called name.
func Find(name string) (*Algorithm, error) {
	for _, a := range Algorithms() {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("kex: unknown key exchange %q", name)
}
