package ddn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetsMinimum(t *testing.T) {
	tests := []struct {
		version string
		minimum string
		want    bool
	}{
		{"6.2.0", "6.0.0", true},
		{"6.0.0", "6.0.0", true},
		{"5.9.1", "6.0.0", false},
		{"v6.2.0", "6.0.0", true},
		{"6.2.0-rc1", "6.2.0", false},
	}
	for _, tt := range tests {
		got, err := MeetsMinimum(tt.version, tt.minimum)
		require.NoError(t, err, "%s vs %s", tt.version, tt.minimum)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.version, tt.minimum)
	}
}

func TestMeetsMinimumRejectsGarbage(t *testing.T) {
	_, err := MeetsMinimum("not-a-version", "6.0.0")
	assert.Error(t, err)

	_, err = MeetsMinimum("6.0.0", "???")
	assert.Error(t, err)
}

func TestRequireFirmware(t *testing.T) {
	assert.NoError(t, RequireFirmware("exascaler", "6.2.0", "6.0.0"))

	err := RequireFirmware("exascaler", "5.9.0", "6.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below required")
}
