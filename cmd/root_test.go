package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freeman-jiang/resonant/internal/link"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"crawl", "rank", "seed", "reset-processing"} {
		require.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestCuratedSeedsAreValidLinks(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, curatedSeeds)
	seen := make(map[string]bool, len(curatedSeeds))
	for _, s := range curatedSeeds {
		l, err := link.FromURL(s.url)
		require.NoError(t, err, "seed %q", s.url)
		require.Zero(t, l.Depth)
		require.False(t, seen[l.URL], "duplicate seed %q", l.URL)
		seen[l.URL] = true
	}
}
