package clix

import (
	"testing"

	"servicebot/internal/models"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("limit", 0, "")
	fs.Int("offset", 0, "")
	fs.String("status", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestParsePagination(t *testing.T) {
	p, err := ParsePagination(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, PaginationParams{Limit: 20, Offset: 0}, p)

	p, err = ParsePagination(newFlags(t, "--limit=5", "--offset=-3"))
	require.NoError(t, err)
	assert.Equal(t, PaginationParams{Limit: 5, Offset: 0}, p)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(newFlags(t))
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = ParseStatus(newFlags(t, "--status", " Completed "))
	require.NoError(t, err)
	assert.Equal(t, models.ConversationStatusCompleted, s)

	_, err = ParseStatus(newFlags(t, "--status", "archived"))
	assert.Error(t, err)
}
