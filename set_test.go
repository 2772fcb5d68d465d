package serialx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBasics(t *testing.T) {
	s := NewSet("a", "b")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))

	require.NoError(t, s.Add("a"))
	assert.Equal(t, 2, s.Len(), "adding an existing element is a no-op")

	s.Remove("a")
	assert.False(t, s.Contains("a"))
}

func TestSetRejectsNonComparableElements(t *testing.T) {
	s := NewSet()
	assert.Error(t, s.Add([]any{1}))
	assert.Error(t, s.Add(map[string]any{}))
	assert.NoError(t, s.Add(nil))
}

func TestSetEqual(t *testing.T) {
	assert.True(t, NewSet("a", "b").Equal(NewSet("b", "a")))
	assert.False(t, NewSet("a").Equal(NewSet("a", "b")))
	assert.False(t, NewSet("a").Equal(NewSet("c")))
	assert.True(t, NewSet().Equal(NewSet()))
}
