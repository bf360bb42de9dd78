package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusRoundTrip(t *testing.T) {
	for _, s := range []Status{CRH, CRNH, NMR, FirmReject} {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
}

func TestParseStatusRejectsUnset(t *testing.T) {
	_, err := ParseStatus("UNSET")
	assert.Error(t, err)
}

func TestParseStatusRejectsGarbage(t *testing.T) {
	_, err := ParseStatus("NOT_A_STATUS")
	assert.Error(t, err)
}

func TestFinal(t *testing.T) {
	assert.True(t, CRH.Final())
	assert.True(t, CRNH.Final())
	assert.True(t, NMR.Final())
	assert.False(t, FirmReject.Final())
	assert.False(t, Unset.Final())
}
