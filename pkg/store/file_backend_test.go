package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ssargent/rollcall/pkg/codec"
	"github.com/ssargent/rollcall/pkg/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const annRecord = "Ann Lee\na@x.com\n1234567890\nA\nB\nC\n"

func testStudent(name, id string) roster.Student {
	return roster.Student{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@x.com",
		ID:           id,
		Presentation: roster.GradeA,
		Essay:        roster.GradeB,
		Project:      roster.GradeC,
	}
}

func newTestBackend(t *testing.T, path string) *FileBackend {
	t.Helper()
	backend, err := NewFileBackend(FileBackendConfig{
		Path:      path,
		Validator: roster.NewValidator(roster.DecimalIDs),
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestNewFileBackend_RequiresPath(t *testing.T) {
	backend, err := NewFileBackend(FileBackendConfig{})
	assert.Error(t, err)
	assert.Nil(t, backend)
}

func TestFileBackend_LoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "students.txt")
	backend := newTestBackend(t, path)

	students, err := backend.Load()
	require.NoError(t, err)
	assert.Empty(t, students)

	// Created empty
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestFileBackend_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.txt")
	backend := newTestBackend(t, path)

	want := []roster.Student{
		testStudent("Ann Lee", "1234567890"),
		testStudent("Bo Chen", "2234567890"),
		testStudent("Cy Diaz", "3234567890"),
	}
	require.NoError(t, backend.Save(want))

	got, err := backend.Load()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("roster mismatch (-want +got):\n%s", diff)
	}

	// A fresh backend sees the same file
	reopened := newTestBackend(t, path)
	got, err = reopened.Load()
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFileBackend_SaveAfterRemoveShrinksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.txt")
	backend := newTestBackend(t, path)

	students := []roster.Student{
		testStudent("Ann Lee", "1234567890"),
		testStudent("Bo Chen", "2234567890"),
		testStudent("Cy Diaz", "3234567890"),
	}
	require.NoError(t, backend.Save(students))

	// Drop the middle record and persist again
	require.NoError(t, backend.Save([]roster.Student{students[0], students[2]}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, lines, 2*codec.LinesPerRecord)
	assert.Equal(t, "Ann Lee", lines[0])
	assert.Equal(t, "Cy Diaz", lines[codec.LinesPerRecord])
}

func TestFileBackend_SaveLeavesNoTempFiles(t *testing.T) {
	tmpDir := t.TempDir()
	backend := newTestBackend(t, filepath.Join(tmpDir, "students.txt"))

	for i := 0; i < 3; i++ {
		require.NoError(t, backend.Save([]roster.Student{testStudent("Ann Lee", "1234567890")}))
	}

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "students.txt", entries[0].Name())
}

func TestFileBackend_SaveRejectsInvalidGrade(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "students.txt")
	require.NoError(t, os.WriteFile(path, []byte(annRecord), 0600))
	backend := newTestBackend(t, path)

	bad := testStudent("Bo Chen", "2234567890")
	bad.Project = roster.GradeInvalid

	err := backend.Save([]roster.Student{bad})
	assert.ErrorIs(t, err, roster.ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrIO)

	// Target untouched and staging file removed
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, annRecord, string(data))
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileBackend_SaveUnwritableDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	// A regular file where the parent directory should be
	blocker := filepath.Join(tmpDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	backend := newTestBackend(t, filepath.Join(blocker, "students.txt"))

	err := backend.Save([]roster.Student{testStudent("Ann Lee", "1234567890")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "save", ioErr.Op)
}

func TestFileBackend_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.txt")
	require.NoError(t, os.WriteFile(path, []byte(annRecord+"Bo Chen\nb@x.com\n"), 0600))
	backend := newTestBackend(t, path)

	students, err := backend.Load()
	assert.ErrorIs(t, err, codec.ErrCorruptData)
	assert.NotErrorIs(t, err, ErrIO)
	assert.Len(t, students, 1)
}

func TestFileBackend_Recover(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "students.txt")
	damaged := annRecord + "Bo Chen\nb@x.com\n2234567890\nQ\nB\nC\n" + annRecord
	require.NoError(t, os.WriteFile(path, []byte(damaged), 0600))
	backend := newTestBackend(t, path)

	result, err := backend.Recover()
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsKept)
	assert.Equal(t, 12, result.LinesDropped)
	assert.Equal(t, int64(len(damaged)), result.SizeBefore)
	assert.Equal(t, int64(len(annRecord)), result.SizeAfter)
	assert.True(t, strings.HasPrefix(filepath.Base(result.BackupPath), "students.txt.corrupt-"))

	// Backup holds the original bytes
	backup, err := os.ReadFile(result.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, damaged, string(backup))

	// The file now loads cleanly
	students, err := backend.Load()
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ann Lee", students[0].Name)
}

func TestFileBackend_RecoverKeepsRecordsBeforeLongLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.txt")
	valid := annRecord + "Bo Chen\nb@x.com\n2234567890\nF\nD\nA\n"
	damaged := valid + strings.Repeat("x", 70*1024) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(damaged), 0600))
	backend := newTestBackend(t, path)

	students, err := backend.Load()
	assert.ErrorIs(t, err, codec.ErrCorruptData)
	assert.Len(t, students, 2)

	result, err := backend.Recover()
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordsKept)
	assert.Equal(t, 1, result.LinesDropped)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, valid, string(data))
}

func TestFileBackend_RecoverIntactFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "students.txt")
	require.NoError(t, os.WriteFile(path, []byte(annRecord), 0600))
	backend := newTestBackend(t, path)

	result, err := backend.Recover()
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsKept)
	assert.Zero(t, result.LinesDropped)
	assert.Empty(t, result.BackupPath)

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileBackend_RecoverMissingFile(t *testing.T) {
	backend := newTestBackend(t, filepath.Join(t.TempDir(), "students.txt"))

	result, err := backend.Recover()
	require.NoError(t, err)
	assert.Zero(t, result.RecordsKept)
}

func TestFileBackend_Closed(t *testing.T) {
	backend := newTestBackend(t, filepath.Join(t.TempDir(), "students.txt"))
	require.NoError(t, backend.Close())

	_, err := backend.Load()
	assert.ErrorIs(t, err, ErrBackendClosed)
	assert.ErrorIs(t, err, ErrIO)

	err = backend.Save(nil)
	assert.ErrorIs(t, err, ErrBackendClosed)

	_, err = backend.Recover()
	assert.ErrorIs(t, err, ErrBackendClosed)
}

func TestIOError(t *testing.T) {
	cause := os.ErrPermission
	err := &IOError{Op: "save", Path: "/tmp/students.txt", Err: cause}

	assert.Equal(t, "failed to save /tmp/students.txt: permission denied", err.Error())
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrPermission)
}
