package hangouts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelNameUnique(t *testing.T) {
	namer, err := NewChannelNamer("test-salt")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		name, err := namer.ChannelName(42)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(name, "room-"))
		assert.False(t, seen[name], "duplicate channel name %s", name)
		seen[name] = true
	}
}

func TestJoinTokenHashStable(t *testing.T) {
	token, tokenHash, err := NewJoinToken()
	require.NoError(t, err)

	assert.Len(t, token, 32)
	assert.Equal(t, tokenHash, HashJoinToken(token))
	assert.NotEqual(t, tokenHash, HashJoinToken(token+"x"))
}

func TestJoinTokensDiffer(t *testing.T) {
	a, _, err := NewJoinToken()
	require.NoError(t, err)
	b, _, err := NewJoinToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
