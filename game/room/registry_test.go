package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barikade/game/board"
	"barikade/game/config"
	"barikade/game/engine"
)

type staticBoards struct {
	def *board.Definition
}

func (b staticBoards) GetDefault() *board.Definition { return b.def }

func newTestRegistry() *Registry {
	return NewRegistry(staticBoards{def: config.MinimalDefinition()})
}

func TestRegistryCreate(t *testing.T) {
	reg := newTestRegistry()

	r, err := reg.Create()
	require.NoError(t, err)
	assert.Len(t, r.Code, roomCodeLen)
	assert.Equal(t, 1, reg.Count())

	r2, err := reg.Create()
	require.NoError(t, err)
	assert.NotEqual(t, r.Code, r2.Code)

	got, err := reg.Get(r.Code)
	require.NoError(t, err)
	assert.Same(t, r, got)
}

func TestRegistryGetNormalizesCode(t *testing.T) {
	reg := newTestRegistry()
	r, err := reg.Create()
	require.NoError(t, err)

	got, err := reg.Get("  " + r.Code + " ")
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = reg.Get("NOSUCH")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	var re *engine.RuleError
	_, err = reg.Get("bad code!")
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeBadRoomCode, re.Code)

	_, err = reg.Get("")
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeBadRoomCode, re.Code)
}

func TestRegistryGetOrCreate(t *testing.T) {
	reg := newTestRegistry()

	// Joining an unknown code creates the room under it.
	r, created, err := reg.GetOrCreate("friends")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "FRIENDS", r.Code)

	again, created, err := reg.GetOrCreate("FRIENDS")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, r, again)
}

func TestRegistryCleanupIdle(t *testing.T) {
	reg := newTestRegistry()

	idle, err := reg.Create()
	require.NoError(t, err)
	idle.mu.Lock()
	idle.lastActivity = time.Now().Add(-time.Hour)
	idle.mu.Unlock()

	occupied, err := reg.Create()
	require.NoError(t, err)
	occupied.Join("s1", "ana")
	occupied.mu.Lock()
	occupied.lastActivity = time.Now().Add(-time.Hour)
	occupied.mu.Unlock()

	fresh, err := reg.Create()
	require.NoError(t, err)

	removed := reg.CleanupIdle(30 * time.Minute)
	assert.Equal(t, 1, removed)

	_, err = reg.Get(idle.Code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = reg.Get(occupied.Code)
	assert.NoError(t, err, "connected players keep the room alive")
	_, err = reg.Get(fresh.Code)
	assert.NoError(t, err)
}

func TestNormalizeCode(t *testing.T) {
	code, err := NormalizeCode("abc123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", code)

	_, err = NormalizeCode("this-has-dashes")
	assert.Error(t, err)

	_, err = NormalizeCode("WAYTOOLONGFORACODE")
	assert.Error(t, err)
}
