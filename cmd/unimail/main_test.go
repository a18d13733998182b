package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEmbed(t *testing.T) {
	t.Parallel()

	cid, path, err := parseEmbed("logo=/tmp/logo.png")
	require.NoError(t, err)
	require.Equal(t, "logo", cid)
	require.Equal(t, "/tmp/logo.png", path)

	cid, path, err = parseEmbed("hero=/srv/a=b.png")
	require.NoError(t, err)
	require.Equal(t, "hero", cid)
	require.Equal(t, "/srv/a=b.png", path)

	for _, bad := range []string{"logo", "=path.png", "logo="} {
		_, _, err := parseEmbed(bad)
		require.Error(t, err, bad)
	}
}
