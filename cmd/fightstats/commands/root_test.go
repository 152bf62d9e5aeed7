package commands

import (
	"os"
	"path/filepath"
	"testing"

	"fightstats-backend/lib/store"

	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	err := os.WriteFile(path, []byte(`{
		// comments are allowed
		store: { kind: "sql", sql: { file: "fightstats.db" } },
		scraper: { retries: 5, event_delay: 801 },
		linker: { max_distance: 0.25 },
	}`), 0666)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		scraper: { retries: 2 },
		timezone: "UTC",
	}`), 0666)
	require.NoError(t, err)

	config, err := readConfig(path, false)
	require.NoError(t, err)
	require.Equal(t, store.KindSql, config.Store.Kind)
	require.Equal(t, "fightstats.db", config.Store.Sql.File)
	require.Equal(t, "data", config.Store.Dir)
	require.Equal(t, 2, config.Scraper.Retries)
	require.Equal(t, 801, config.Scraper.EventDelay)
	require.Equal(t, 0.25, config.Linker.MaxDistance)
	require.Equal(t, "UTC", config.Timezone)
}

func TestReadConfigMissing(t *testing.T) {
	config, err := readConfig(filepath.Join(t.TempDir(), "config.json5"), false)
	require.NoError(t, err)
	require.Equal(t, "data", config.Store.Dir)
	require.Equal(t, "", config.Store.Kind)
}

func TestReadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	err := os.WriteFile(path, []byte(`{ store: `), 0666)
	require.NoError(t, err)

	_, err = readConfig(path, false)
	require.Error(t, err)
}
