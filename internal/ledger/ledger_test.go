package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempLedger(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ids.csv")
	store, err := New(path)
	require.NoError(t, err)
	return store, path
}

func TestNew(t *testing.T) {
	t.Run("creates the file when absent", func(t *testing.T) {
		_, path := tempLedger(t)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	})

	t.Run("preserves an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ids.csv")
		require.NoError(t, os.WriteFile(path, []byte("111,\n"), 0o644))

		store, err := New(path)
		require.NoError(t, err)

		done, err := store.IsProcessed("111")
		require.NoError(t, err)
		assert.True(t, done)
	})
}

func TestRecordAndIsProcessed(t *testing.T) {
	store, _ := tempLedger(t)

	done, err := store.IsProcessed("12345")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, store.Record("12345"))

	done, err = store.IsProcessed("12345")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = store.IsProcessed("99999")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRecordAppendsUnconditionally(t *testing.T) {
	store, path := tempLedger(t)

	require.NoError(t, store.Record("7"))
	require.NoError(t, store.Record("7"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "7,\n"))

	done, err := store.IsProcessed("7")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestIsProcessedToleratesBareLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.csv")
	require.NoError(t, os.WriteFile(path, []byte("123\n456,\n  789,\n"), 0o644))

	store, err := New(path)
	require.NoError(t, err)

	for _, id := range []string{"123", "456", "789"} {
		done, err := store.IsProcessed(id)
		require.NoError(t, err)
		assert.True(t, done, id)
	}
}

func TestNoPartialIDMatches(t *testing.T) {
	store, _ := tempLedger(t)
	require.NoError(t, store.Record("12345"))

	for _, id := range []string{"123", "2345", "1234567"} {
		done, err := store.IsProcessed(id)
		require.NoError(t, err)
		assert.False(t, done, id)
	}
}
