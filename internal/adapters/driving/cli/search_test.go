package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnippet(t *testing.T) {
	t.Run("short string unchanged", func(t *testing.T) {
		assert.Equal(t, "inspect the straps", snippet("inspect the straps", 120))
	})

	t.Run("never splits a rune", func(t *testing.T) {
		s := strings.Repeat("ü", 70)
		got := snippet(s, 99)

		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, strings.Repeat("ü", 49)+"...", got)
	})
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_FindsRecords(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "search", "harness", "--partition", "fall")

	require.NoError(t, err)
	assert.Contains(t, out, "Results in fall:")
	assert.Contains(t, out, "Harness Inspection")
}

func TestSearchCmd_NoMatches(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "search", "nonexistent topic", "--partition", "fall")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found in fall.")
}

func TestSearchCmd_MissingPartition(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "search", "harness", "--partition", "absent")

	assert.Error(t, err)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchJSON = false }()

	out, err := executeCommand(t, "search", "--json", "harness", "--partition", "fall")

	require.NoError(t, err)
	assert.Contains(t, out, "\"title\"")
	assert.Contains(t, out, "Harness Inspection")
}

func TestSearchCmd_LimitRestrictsResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchLimit = 10 }()

	out, err := executeCommand(t, "search", "-n", "1", "a", "--partition", "fall")

	require.NoError(t, err)
	assert.Contains(t, out, "[1]")
	assert.NotContains(t, out, "[2]")
}
