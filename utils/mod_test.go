package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	names := []string{"alice", "bob", "alice"}

	require.Equal(t, 0, FindIndex(names, "alice"), "Should return the first match")
	require.Equal(t, 1, FindIndex(names, "bob"))
	require.Equal(t, -1, FindIndex(names, "carol"), "Should return -1 when absent")
}
