package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAtomicWriter(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "students.txt")

	writer, err := NewAtomicWriter(AtomicWriterConfig{FilePath: target})
	require.NoError(t, err)

	// Staging file exists, target does not yet
	assert.FileExists(t, writer.TempPath())
	assert.NoFileExists(t, target)
	assert.Equal(t, target, writer.Path())
	assert.Equal(t, tmpDir, filepath.Dir(writer.TempPath()))

	require.NoError(t, writer.Abort())
}

func TestNewAtomicWriter_DirectoryCreation(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "nested", "deep", "path")

	writer, err := NewAtomicWriter(AtomicWriterConfig{FilePath: filepath.Join(nestedDir, "students.txt")})
	require.NoError(t, err)
	defer writer.Abort()

	assert.DirExists(t, nestedDir)
}

func TestAtomicWriter_Commit(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "students.txt")
	require.NoError(t, os.WriteFile(target, []byte("old contents\n"), 0600))

	writer, err := NewAtomicWriter(AtomicWriterConfig{FilePath: target, BufferSize: 16})
	require.NoError(t, err)

	_, err = writer.Write([]byte("new contents that exceed the buffer\n"))
	require.NoError(t, err)

	// Not visible before commit
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old contents\n", string(data))

	require.NoError(t, writer.Commit())

	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new contents that exceed the buffer\n", string(data))
	assert.NoFileExists(t, writer.TempPath())

	// Writer is finished
	_, err = writer.Write([]byte("more"))
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.ErrorIs(t, writer.Commit(), os.ErrClosed)
	assert.NoError(t, writer.Abort())
}

func TestAtomicWriter_Abort(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "students.txt")
	require.NoError(t, os.WriteFile(target, []byte("keep me\n"), 0600))

	writer, err := NewAtomicWriter(AtomicWriterConfig{FilePath: target})
	require.NoError(t, err)

	_, err = writer.Write([]byte("discard me\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Abort())

	assert.NoFileExists(t, writer.TempPath())
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep me\n", string(data))
}

func TestAtomicWriter_CommitRenameFailure(t *testing.T) {
	tmpDir := t.TempDir()
	// Target is a non-empty directory, so rename must fail
	target := filepath.Join(tmpDir, "students.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0750))

	writer, err := NewAtomicWriter(AtomicWriterConfig{FilePath: target})
	require.NoError(t, err)

	_, err = writer.Write([]byte("data\n"))
	require.NoError(t, err)

	assert.Error(t, writer.Commit())
	assert.NoFileExists(t, writer.TempPath())
	assert.DirExists(t, target)
}
