package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string `json:"name"`
	Retries int    `json:"retries"`
	Nested  struct {
		Dir string `json:"dir"`
	} `json:"nested"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0666))
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "config.local.json5", LocalPath("config.json5"))
	require.Equal(t, filepath.Join("a", "b.local.json"), LocalPath(filepath.Join("a", "b.json")))
	require.Equal(t, "config.local", LocalPath("config"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](path)
	require.ErrorIs(t, err, os.ErrNotExist)

	write(t, path, `{ name: "base", retries: 3, nested: { dir: "data" } }`)
	config, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "base", config.Name)
	require.Equal(t, 3, config.Retries)

	write(t, LocalPath(path), `{ retries: 5 }`)
	config, err = ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "base", config.Name)
	require.Equal(t, 5, config.Retries)
	require.Equal(t, "data", config.Nested.Dir)

	require.NoError(t, os.Remove(path))
	config, err = ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, 5, config.Retries)
	require.Equal(t, "", config.Name)
}

func TestReadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	write(t, path, `{ name: `)
	_, err := ReadConfig[testConfig](path)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0777))
	write(t, filepath.Join(root, "fightstats-test.json5"), `{ name: "root" }`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})

	config, path, err := ReadRecursively[testConfig]("fightstats-test.json5")
	require.NoError(t, err)
	require.Equal(t, "root", config.Name)
	require.Equal(t, "fightstats-test.json5", filepath.Base(path))

	_, _, err = ReadRecursively[testConfig]("fightstats-missing.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}
