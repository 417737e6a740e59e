package suite

import (
	"github.com/drand/cbcsuite/crypto/chain"
	"github.com/drand/cbcsuite/crypto/digest"
	"github.com/drand/cbcsuite/crypto/kex"
)

// Codes of the default suites. The 0xff00 range is reserved for private use.
const (
	RSAWithAES128CBCSHA256             uint16 = 0x003c
	RSAWithAES256CBCSHA256             uint16 = 0x003d
	ECDHEWithAES128CBCSHA256           uint16 = 0xc027
	ECDHEWithAES256CBCSHA384           uint16 = 0xc028
	PrivateECDHEBLSWithTwofish256BLAKE uint16 = 0xff01
)

// Default holds the suites this module ships with.
var Default = NewRegistry(nil)

func defaultSuites() []*Suite {
	return []*Suite{
		{
			Code:        RSAWithAES128CBCSHA256,
			Name:        "TLS_RSA_WITH_AES_128_CBC_SHA256",
			KeyLen:      16,
			KeyExchange: kex.RSA,
			Cipher:      chain.AESCBC,
			Digest:      digest.SHA256,
		},
		{
			Code:        RSAWithAES256CBCSHA256,
			Name:        "TLS_RSA_WITH_AES_256_CBC_SHA256",
			KeyLen:      32,
			KeyExchange: kex.RSA,
			Cipher:      chain.AESCBC,
			Digest:      digest.SHA256,
		},
		{
			Code:        ECDHEWithAES128CBCSHA256,
			Name:        "TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256",
			KeyLen:      16,
			KeyExchange: kex.ECDHEEd25519,
			Cipher:      chain.AESCBC,
			Digest:      digest.SHA256,
		},
		{
			Code:        ECDHEWithAES256CBCSHA384,
			Name:        "TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA384",
			KeyLen:      32,
			KeyExchange: kex.ECDHEEd25519,
			Cipher:      chain.AESCBC,
			Digest:      digest.SHA384,
		},
		{
			Code:        PrivateECDHEBLSWithTwofish256BLAKE,
			Name:        "PRIVATE_ECDHE_BLS12381_WITH_TWOFISH_256_CBC_BLAKE2B256",
			KeyLen:      32,
			KeyExchange: kex.ECDHEBLS12381,
			Cipher:      chain.TwofishCBC,
			Digest:      digest.BLAKE2b256,
		},
	}
}

//nolint:gochecknoinits // the default table is filled once, before any lookup
func init() {
	Default.MustRegister(defaultSuites()...)
}

// Register adds s to the default registry.
func Register(s *Suite) error {
	return Default.Register(s)
}

// Lookup returns the default suite registered under code.
func Lookup(code uint16) (*Suite, error) {
	return Default.Lookup(code)
}

// LookupWire returns the default suite for a code in network byte order.
func LookupWire(w [2]byte) (*Suite, error) {
	return Default.LookupWire(w)
}

// Parse resolves a name or 0xNNNN code against the default registry.
func Parse(nameOrCode string) (*Suite, error) {
	return Default.Parse(nameOrCode)
}

// List returns the default suites ordered by code.
func List() []*Suite {
	return Default.List()
}
