package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExist(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0600))

	exists, err := FileExist(filePath)
	assert.Nil(t, err)
	assert.True(t, exists)

	exists, err = FileExist(filepath.Join(dir, "missing.txt"))
	assert.Nil(t, err)
	assert.False(t, exists)
}

func TestWriteFileAtomic(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "nested", "logs.json")

	err := WriteFileAtomic(filePath, []byte("[]"), 0600)
	require.NoError(t, err)

	err = WriteFileAtomic(filePath, []byte("[1]"), 0600)
	require.NoError(t, err)

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(data))

	// No temp files should be left behind
	entries, err := os.ReadDir(filepath.Dir(filePath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
