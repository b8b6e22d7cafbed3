package room

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"barikade/game/board"
	"barikade/game/engine"
)

var ErrRoomNotFound = errors.New("room not found")

const (
	roomCodeLen      = 6
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// MaxRoomCodeLen bounds client-presented codes on join
	MaxRoomCodeLen = 12
)

// BoardSource supplies the board a freshly created room plays on
type BoardSource interface {
	GetDefault() *board.Definition
}

// Registry holds every live room, keyed by room code
type Registry struct {
	boards BoardSource

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry drawing boards from boards
func NewRegistry(boards BoardSource) *Registry {
	return &Registry{
		boards: boards,
		rooms:  make(map[string]*Room),
	}
}

// Create makes a room under a fresh code and returns it
func (g *Registry) Create() (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	code, err := g.freeCodeLocked()
	if err != nil {
		return nil, err
	}
	r, err := newRoom(code, g.boards.GetDefault(), "")
	if err != nil {
		return nil, err
	}
	g.rooms[code] = r
	return r, nil
}

// Get returns the room under code, normalizing case
func (g *Registry) Get(code string) (*Room, error) {
	norm, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, exists := g.rooms[norm]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// GetOrCreate returns the room under code, creating it if absent. Joining a
// code nobody hosts yet spins the room up, so a group can share a code out
// of band without caring who connects first.
func (g *Registry) GetOrCreate(code string) (*Room, bool, error) {
	norm, err := NormalizeCode(code)
	if err != nil {
		return nil, false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if r, exists := g.rooms[norm]; exists {
		return r, false, nil
	}
	r, err := newRoom(norm, g.boards.GetDefault(), "")
	if err != nil {
		return nil, false, err
	}
	g.rooms[norm] = r
	return r, true, nil
}

// List returns all live rooms
func (g *Registry) List() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		result = append(result, r)
	}
	return result
}

// Count returns the number of live rooms
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// CleanupIdle removes rooms with no connected players and no activity
// within maxAge, returning how many were dropped. Seats inside surviving
// rooms are pruned on the same sweep.
func (g *Registry) CleanupIdle(maxAge time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for code, r := range g.rooms {
		if r.Empty() && r.LastActivity().Before(cutoff) {
			delete(g.rooms, code)
			removed++
			continue
		}
		r.PruneExpired()
	}
	return removed
}

// NormalizeCode uppercases and validates a client-presented room code
func NormalizeCode(code string) (string, error) {
	norm := strings.ToUpper(strings.TrimSpace(code))
	if norm == "" || len(norm) > MaxRoomCodeLen {
		return "", engine.NewRuleError(CodeBadRoomCode, "room codes are 1 to 12 characters")
	}
	for _, c := range norm {
		if !strings.ContainsRune(roomCodeAlphabet, c) {
			return "", engine.NewRuleError(CodeBadRoomCode, "room codes use letters and digits only")
		}
	}
	return norm, nil
}

// freeCodeLocked generates an unused room code
func (g *Registry) freeCodeLocked() (string, error) {
	for attempt := 0; attempt < 64; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if _, taken := g.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not find a free room code")
}

func randomCode() (string, error) {
	buf := make([]byte, roomCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, roomCodeLen)
	for i, b := range buf {
		out[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(out), nil
}
