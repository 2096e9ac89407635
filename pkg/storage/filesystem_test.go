package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("planning-dst-2025-01-11.csv", []byte("Date,Subject\n"))
	require.NoError(t, err)
	assert.Equal(t, "planning-dst-2025-01-11.csv", name)

	data, err := store.Open("planning-dst-2025-01-11.csv")
	require.NoError(t, err)
	assert.Equal(t, "Date,Subject\n", string(data))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	_, err = store.Save("../escape.txt", []byte("x"))
	require.NoError(t, err)

	// The path is cleaned relative to the base dir, never its parent.
	_, statErr := os.Stat(filepath.Join(filepath.Dir(base), "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
	_, err = store.Open("escape.txt")
	assert.NoError(t, err)
}

func TestLocalStorageOpenMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("nope.pdf")
	require.Error(t, err)
}
