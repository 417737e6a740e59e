package chain

import "github.com/drand/cbcsuite/crypto/block"

// Chained block ciphers, one instantiation of Cipher per underlying cipher.
var (
	AESCBC      = Mode[block.Raw[block.AES], Block16]("aes_cbc", block.AESAlgorithm)
	BlowfishCBC = Mode[block.Raw[block.Blowfish], Block8]("blowfish_cbc", block.BlowfishAlgorithm)
	CAST5CBC    = Mode[block.Raw[block.CAST5], Block8]("cast5_cbc", block.CAST5Algorithm)
	TwofishCBC  = Mode[block.Raw[block.Twofish], Block16]("twofish_cbc", block.TwofishAlgorithm)
	XTEACBC     = Mode[block.Raw[block.XTEA], Block8]("xtea_cbc", block.XTEAAlgorithm)
)

// Algorithms lists the chained ciphers.
func Algorithms() []*block.Algorithm {
	return []*block.Algorithm{AESCBC, BlowfishCBC, CAST5CBC, TwofishCBC, XTEACBC}
}
