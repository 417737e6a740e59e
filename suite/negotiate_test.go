package suite

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name       string
		offered    []uint16
		preference []uint16
		want       uint16
		err        error
	}{
		{
			name:    "registry order without preference",
			offered: []uint16{RSAWithAES256CBCSHA256, RSAWithAES128CBCSHA256},
			want:    RSAWithAES128CBCSHA256,
		},
		{
			name:       "our preference wins over the peer order",
			offered:    []uint16{RSAWithAES128CBCSHA256, ECDHEWithAES256CBCSHA384},
			preference: []uint16{ECDHEWithAES256CBCSHA384, RSAWithAES128CBCSHA256},
			want:       ECDHEWithAES256CBCSHA384,
		},
		{
			name:       "unregistered preferred codes are skipped",
			offered:    []uint16{0xc02f, RSAWithAES256CBCSHA256},
			preference: []uint16{0xc02f, RSAWithAES256CBCSHA256},
			want:       RSAWithAES256CBCSHA256,
		},
		{
			name:    "nothing in common",
			offered: []uint16{0x1301, 0x1302},
			err:     ErrNoCommonSuite,
		},
		{
			name:       "preference excludes every offer",
			offered:    []uint16{RSAWithAES128CBCSHA256},
			preference: []uint16{RSAWithAES256CBCSHA256},
			err:        ErrNoCommonSuite,
		},
		{
			name: "empty offer",
			err:  ErrNoCommonSuite,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Negotiate(tt.offered, tt.preference)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, s.Code)
		})
	}
}

func TestNegotiateLeavesPreferenceAlone(t *testing.T) {
	buf := []uint16{0xaaaa, 0xbbbb, 0xcccc}
	s, err := Negotiate([]uint16{RSAWithAES256CBCSHA256}, buf[:0])
	require.NoError(t, err)
	require.Equal(t, RSAWithAES256CBCSHA256, s.Code)
	require.Equal(t, []uint16{0xaaaa, 0xbbbb, 0xcccc}, buf)
}
