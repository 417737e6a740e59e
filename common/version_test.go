package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionString(t *testing.T) {
	tests := []struct {
		name     string
		version  Version
		expected string
	}{
		{"release", Version{Major: 1, Minor: 2, Patch: 3}, "1.2.3"},
		{"prerelease", Version{Major: 1, Minor: 2, Patch: 3, Prerelease: "-pre"}, "1.2.3-pre"},
		{"zero", Version{}, "0.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.version.String())
		})
	}
}

func TestGetAppVersion(t *testing.T) {
	v := GetAppVersion()
	require.Equal(t, version, v)
	require.NotEmpty(t, v.String())
}
