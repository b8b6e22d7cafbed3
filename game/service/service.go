package service

import (
	"time"

	"github.com/rs/zerolog"

	"barikade/game/board"
	"barikade/game/config"
	"barikade/game/room"
	"barikade/game/session"
)

// ClientConn is the service's view of one websocket connection. The
// transport implements it and carries the per-connection state the
// dispatcher needs: the bound session, the binding's sequence number, and
// the room the connection currently sits in.
type ClientConn interface {
	// Send enqueues a server message; it never blocks the dispatcher.
	Send(msg interface{})
	// Close tears the connection down. Satisfies session.Conn so the
	// session manager can retire a superseded connection directly.
	Close(reason string)

	SessionID() string
	SetSessionID(id string)
	ConnSeq() uint64
	SetConnSeq(seq uint64)
	RoomCode() string
	SetRoomCode(code string)
}

// Broadcaster fans a server message out to every connection in a room
type Broadcaster interface {
	BroadcastRoom(code string, msg interface{})
}

// EventSink receives a record of every committed room event. Sinks are
// write-behind: a failing or slow sink never affects game state.
type EventSink interface {
	Record(roomCode, kind string, data interface{})
}

// BoardCatalog lists and loads the server's board definitions
type BoardCatalog interface {
	GetDefault() *board.Definition
	LoadBoard(name string) (*board.Definition, error)
	ListBoards() ([]*config.BoardInfo, error)
}

// Service dispatches decoded client intents against rooms and sessions and
// broadcasts the resulting snapshots. One Service serves all rooms.
type Service struct {
	sessions *session.Manager
	rooms    *room.Registry
	boards   BoardCatalog
	hub      Broadcaster
	events   EventSink
	log      zerolog.Logger
}

// NewService creates the dispatcher. events may be nil; hub must not be.
func NewService(sessions *session.Manager, rooms *room.Registry, boards BoardCatalog, hub Broadcaster, events EventSink, log zerolog.Logger) *Service {
	return &Service{
		sessions: sessions,
		rooms:    rooms,
		boards:   boards,
		hub:      hub,
		events:   events,
		log:      log,
	}
}

// RoomInfo summarizes one room for the read-only HTTP listing
type RoomInfo struct {
	Code         string    `json:"code"`
	Phase        string    `json:"phase"`
	Players      int       `json:"players"`
	Connected    int       `json:"connected"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// ListRooms returns a summary of every live room
func (s *Service) ListRooms() []*RoomInfo {
	rooms := s.rooms.List()
	result := make([]*RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		snap := r.Snapshot()
		info := &RoomInfo{
			Code:         snap.Code,
			Phase:        string(snap.Phase),
			Players:      len(snap.Players),
			CreatedAt:    r.CreatedAt,
			LastActivity: r.LastActivity(),
		}
		for _, p := range snap.Players {
			if p.Connected {
				info.Connected++
			}
		}
		result = append(result, info)
	}
	return result
}

// GetRoomSnapshot returns the full snapshot of one room
func (s *Service) GetRoomSnapshot(code string) (*room.Snapshot, error) {
	r, err := s.rooms.Get(code)
	if err != nil {
		return nil, err
	}
	return r.Snapshot(), nil
}

// ListBoards returns the loadable board definitions
func (s *Service) ListBoards() ([]*config.BoardInfo, error) {
	return s.boards.ListBoards()
}

// GetBoard returns one board definition by name
func (s *Service) GetBoard(name string) (*board.Definition, error) {
	return s.boards.LoadBoard(name)
}

// record forwards an event to the sink, if one is configured
func (s *Service) record(roomCode, kind string, data interface{}) {
	if s.events != nil {
		s.events.Record(roomCode, kind, data)
	}
}
