package ruleid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "InitialNMR (v1.0)", Name(InitialNMR))
	assert.Equal(t, "InsufficientExplanation (v1.0)", Name(InsufficientExplanation))
}

func TestGroupModelRange(t *testing.T) {
	assert.Equal(t, GroupModel01, GroupModel(1))
	assert.Equal(t, GroupModel14, GroupModel(14))
	assert.Equal(t, Unknown, GroupModel(0))
	assert.Equal(t, Unknown, GroupModel(15))
}

func TestSetMissing(t *testing.T) {
	have := NewSet(InitialNMR, GeneralCRH)
	need := NewSet(InitialNMR, TagOutlier)
	missing := have.Missing(need)
	assert.Equal(t, []ID{TagOutlier}, missing)
}

func TestSetContains(t *testing.T) {
	s := NewSet(InitialNMR)
	assert.True(t, s.Contains(InitialNMR))
	assert.False(t, s.Contains(GeneralCRH))
}
