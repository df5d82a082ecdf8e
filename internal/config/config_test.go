package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CARDS_CONFIG", "")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".cards"), c.Store.Dir)
	require.Equal(t, "127.0.0.1:8085", c.Server.Addr)
	require.Equal(t, 300*time.Millisecond, c.Gallery.Duration)
	require.Equal(t, DefaultRelationshipType, c.Relationships.Type)
	require.Empty(t, c.CardURL("c1"), "no server configured")
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "http://cards.example:8085/"

[urls]
card = "/api/cards/"

[gallery]
duration = "1s"
scroll_distance = 4
`), 0o644))
	t.Setenv("CARDS_CONFIG", path)
	t.Setenv("CARDS_LOG_MODE", "production")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "production", c.Log.Mode)
	require.Equal(t, time.Second, c.Gallery.Duration)
	require.Equal(t, 4, c.Gallery.ScrollDistance)
	require.Equal(t, "http://cards.example:8085/api/cards/c1", c.CardURL("c1"))
	require.Equal(t, "http://cards.example:8085/related_resources", c.RelatedResourcesURL())
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CARDS_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	_, err := Load()
	require.Error(t, err)
}
