package session

import (
	"crypto/subtle"
	"errors"
)

// ErrBadPadding is returned by Unpad for data that was not produced by Pad.
var ErrBadPadding = errors.New("session: bad padding")

// Pad appends TLS style padding to data so that its length becomes a multiple
// of blockSize: n bytes of value n-1, with n between 1 and blockSize.
func Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n - 1)
	}
	return out
}

// Unpad strips the padding added by Pad.
func Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}
	v := data[len(data)-1]
	n := int(v) + 1
	if n > blockSize || n > len(data) {
		return nil, ErrBadPadding
	}
	good := 1
	for _, b := range data[len(data)-n:] {
		good &= subtle.ConstantTimeByteEq(b, v)
	}
	if good != 1 {
		return nil, ErrBadPadding
	}
	return data[:len(data)-n], nil
}
