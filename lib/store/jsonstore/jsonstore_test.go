package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fightstats-backend/lib/records"
	"fightstats-backend/lib/store/storetest"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	storetest.Run(t, store)
}

func TestLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	err = store.Save(context.Background(), records.Snapshot{}, records.CollectionAll)
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(dir, FightersFile))
	require.NoError(t, err)
	require.Equal(t, "[]", string(contents))

	err = store.Save(context.Background(), storetest.Fixture(), records.CollectionEvents)
	require.NoError(t, err)
	contents, err = os.ReadFile(filepath.Join(dir, EventsFile))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(contents), "[\n  {\n    \"id\": 1,\n    \"slug\": \"fight-night-50\""))

	_, err = os.Stat(filepath.Join(dir, EventsFile+".tmp"))
	require.True(t, os.IsNotExist(err))
}

func TestCorruptFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, EventsFile), []byte("{not json"), 0666)
	require.NoError(t, err)

	store, err := New(dir)
	require.NoError(t, err)
	_, err = store.Load(context.Background())
	require.ErrorContains(t, err, "load events")
}
