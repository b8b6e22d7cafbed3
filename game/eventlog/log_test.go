package eventlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l, err := NewLogger(path, zerolog.Nop())
	require.NoError(t, err)
	return l, path
}

func TestRecordAndReadBack(t *testing.T) {
	l, path := newTestLogger(t)

	l.Record("ABC123", "room_created", nil)
	l.Record("ABC123", "joined", map[string]string{"name": "ada"})
	l.Record("XYZ789", "rolled", map[string]int{"value": 6})

	require.NoError(t, l.Close())

	entries, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "room_created", entries[0].Kind)
	assert.Equal(t, "ABC123", entries[0].Room)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Time.IsZero())

	data, ok := entries[1].Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ada", data["name"])

	assert.Equal(t, "XYZ789", entries[2].Room)
}

func TestAppendsAcrossReopen(t *testing.T) {
	l, path := newTestLogger(t)
	l.Record("ROOM01", "room_created", nil)
	require.NoError(t, l.Close())

	l2, err := NewLogger(path, zerolog.Nop())
	require.NoError(t, err)
	l2.Record("ROOM01", "game_started", nil)
	require.NoError(t, l2.Close())

	entries, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "room_created", entries[0].Kind)
	assert.Equal(t, "game_started", entries[1].Kind)
}

func TestCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "events.jsonl")
	l, err := NewLogger(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRecordAfterCloseIsIgnored(t *testing.T) {
	l, path := newTestLogger(t)
	l.Record("ROOM01", "room_created", nil)
	require.NoError(t, l.Close())

	// Must not panic, must not write.
	l.Record("ROOM01", "joined", nil)
	require.NoError(t, l.Close())

	entries, err := ReadAll(path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUnmarshalableDataIsDroppedNotFatal(t *testing.T) {
	l, path := newTestLogger(t)

	l.Record("ROOM01", "bad", make(chan int))
	l.Record("ROOM01", "good", nil)
	require.NoError(t, l.Close())

	entries, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "good", entries[0].Kind)
}

func TestReadAllMissingFile(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestDroppedStartsAtZero(t *testing.T) {
	l, _ := newTestLogger(t)
	defer l.Close()

	assert.Equal(t, uint64(0), l.Dropped())
}
