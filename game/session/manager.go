package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// MaxSessionIDLen bounds client-presented session IDs
const MaxSessionIDLen = 128

// Conn is the live network connection bound to a session. The transport
// implements it; the manager only ever asks it to close when a newer
// connection takes over the session.
type Conn interface {
	Close(reason string)
}

// Session is one client identity. It survives disconnects: the ID is handed
// to the client on connect and presented again on reconnect to resume the
// seat. ConnSeq increments on every attach so that close notifications from
// a replaced connection can be recognized as stale and ignored.
type Session struct {
	ID         string
	Name       string
	RoomCode   string
	CreatedAt  time.Time
	LastSeenAt time.Time

	conn    Conn
	connSeq uint64
}

// Online reports whether a live connection is bound to the session
func (s *Session) Online() bool {
	return s.conn != nil
}

// Manager tracks client sessions and their live connections
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Issue returns a fresh session ID without registering anything. The server
// offers it in the connect greeting; the session is only recorded when the
// client attaches with it.
func (m *Manager) Issue() string {
	return uuid.NewString()
}

// Attach binds conn to the session identified by id, creating the session
// if the ID is unknown and minting a fresh ID when none is presented. If
// another connection already holds the session the old one is closed after
// the new one is bound, so the latest connection always wins. The returned
// sequence number identifies this binding for Detach.
func (m *Manager) Attach(id string, conn Conn) (*Session, uint64) {
	if id == "" || len(id) > MaxSessionIDLen {
		id = m.Issue()
	}

	m.mu.Lock()
	s, exists := m.sessions[id]
	if !exists {
		s = &Session{
			ID:        id,
			CreatedAt: time.Now(),
		}
		m.sessions[id] = s
	}

	var stale Conn
	if s.conn != nil && s.conn != conn {
		stale = s.conn
	}
	s.conn = conn
	s.connSeq++
	s.LastSeenAt = time.Now()
	seq := s.connSeq
	m.mu.Unlock()

	// Close outside the lock; the transport's close path may call back in.
	if stale != nil {
		stale.Close("session taken over by a new connection")
	}
	return s, seq
}

// Detach unbinds the connection identified by seq from the session. A close
// arriving for a connection that has already been replaced carries an old
// sequence number and is ignored, which keeps a reconnect from being torn
// down by its predecessor's shutdown.
func (m *Manager) Detach(id string, seq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[id]
	if !exists || s.connSeq != seq {
		return false
	}
	s.conn = nil
	s.LastSeenAt = time.Now()
	return true
}

// Get retrieves a session by ID
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Rename sets the session's display name
func (m *Manager) Rename(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}
	s.Name = name
	return nil
}

// SetRoom records which room the session currently occupies
func (m *Manager) SetRoom(id, roomCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}
	s.RoomCode = roomCode
	return nil
}

// Touch updates the session's last-seen time
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, exists := m.sessions[id]; exists {
		s.LastSeenAt = time.Now()
	}
}

// List returns all known sessions
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}

// Count returns the number of known sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpired removes offline sessions that have not been seen within
// maxAge and returns how many were dropped. Sessions with a live connection
// are never touched.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, s := range m.sessions {
		if s.conn == nil && s.LastSeenAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
