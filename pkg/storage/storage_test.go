package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/rollcall/pkg/codec"
	"github.com/ssargent/rollcall/pkg/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestBackend(t *testing.T) *PebbleBackend {
	t.Helper()
	backend, err := NewPebbleBackend(Config{
		Dir:       filepath.Join(t.TempDir(), "roster.pebble"),
		Validator: roster.NewValidator(roster.DecimalIDs),
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func makeStudents(n int) []roster.Student {
	students := make([]roster.Student, n)
	for i := range students {
		students[i] = roster.Student{
			Name:         fmt.Sprintf("Student %d", i),
			Email:        fmt.Sprintf("s%d@x.com", i),
			ID:           fmt.Sprintf("%010d", i),
			Presentation: roster.Grade(i % 5),
			Essay:        roster.GradeB,
			Project:      roster.GradeA,
		}
	}
	return students
}

func TestNewPebbleBackend_RequiresDir(t *testing.T) {
	backend, err := NewPebbleBackend(Config{})
	assert.Error(t, err)
	assert.Nil(t, backend)
}

func TestPebbleBackend_LoadEmpty(t *testing.T) {
	backend := newTestBackend(t)

	students, err := backend.Load()
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestPebbleBackend_SaveLoadPreservesOrder(t *testing.T) {
	backend := newTestBackend(t)

	want := makeStudents(250)
	require.NoError(t, backend.Save(want))

	got, err := backend.Load()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("roster mismatch (-want +got):\n%s", diff)
	}
}

func TestPebbleBackend_SaveReplacesPrevious(t *testing.T) {
	backend := newTestBackend(t)

	students := makeStudents(3)
	require.NoError(t, backend.Save(students))

	// Remove the middle student
	require.NoError(t, backend.Save([]roster.Student{students[0], students[2]}))

	got, err := backend.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, students[0], got[0])
	assert.Equal(t, students[2], got[1])

	require.NoError(t, backend.Save(nil))
	got, err = backend.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPebbleBackend_SaveRejectsInvalidGrade(t *testing.T) {
	backend := newTestBackend(t)

	students := makeStudents(2)
	require.NoError(t, backend.Save(students))

	bad := makeStudents(1)
	bad[0].Essay = roster.GradeInvalid
	assert.ErrorIs(t, backend.Save(bad), roster.ErrInvalidInput)

	// Nothing replaced
	got, err := backend.Load()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPebbleBackend_Recover(t *testing.T) {
	backend := newTestBackend(t)

	students := makeStudents(3)
	require.NoError(t, backend.Save(students))

	// Plant a damaged record between the valid ones
	iter, err := backend.newIter()
	require.NoError(t, err)
	require.True(t, iter.First())
	require.True(t, iter.Next())
	damagedKey := append([]byte{}, iter.Key()...)
	require.NoError(t, iter.Close())
	require.NoError(t, backend.db.Set(damagedKey, []byte("Bo\nb@x\n12\nZ\n"), pebble.Sync))

	_, err = backend.Load()
	assert.ErrorIs(t, err, codec.ErrCorruptData)

	result, err := backend.Recover()
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordsKept)
	assert.Equal(t, 1, result.RecordsDropped)

	got, err := backend.Load()
	require.NoError(t, err)
	if diff := cmp.Diff([]roster.Student{students[0], students[2]}, got); diff != "" {
		t.Errorf("roster mismatch (-want +got):\n%s", diff)
	}

	// Second pass finds nothing
	result, err = backend.Recover()
	require.NoError(t, err)
	assert.Zero(t, result.RecordsDropped)
}

func TestPebbleBackend_IgnoresForeignKeys(t *testing.T) {
	backend := newTestBackend(t)

	require.NoError(t, backend.db.Set([]byte("meta/version"), []byte("1"), pebble.Sync))
	require.NoError(t, backend.db.Set([]byte("studentz"), []byte("x"), pebble.Sync))
	require.NoError(t, backend.Save(makeStudents(1)))

	got, err := backend.Load()
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Save leaves keys outside the student prefix alone
	value, closer, err := backend.db.Get([]byte("meta/version"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(value))
	require.NoError(t, closer.Close())
}

func TestPebbleBackend_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "roster.pebble")

	first, err := NewPebbleBackend(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, first.Save(makeStudents(4)))
	require.NoError(t, first.Close())

	second, err := NewPebbleBackend(Config{Dir: dir})
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Load()
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, dir, second.Path())
}

func TestStudentKey(t *testing.T) {
	seq := ksuid.Sequence{Seed: ksuid.New()}
	a, err := seq.Next()
	require.NoError(t, err)
	b, err := seq.Next()
	require.NoError(t, err)

	ka, kb := studentKey(a), studentKey(b)
	assert.Equal(t, "student/"+a.String(), string(ka))
	assert.Less(t, string(ka), string(kb))
}
