package room

import (
	"sort"
	"sync"
	"time"

	"barikade/game/board"
	"barikade/game/engine"
)

// ClaimTTL is how long a disconnected player's color and seat are reserved
// for reconnection before anyone else may take them.
const ClaimTTL = 10 * time.Minute

// Room-level error codes, surfaced to clients the same way engine rule
// rejections are
const (
	CodeRoomNotFound = "room_not_found"
	CodeBadRoomCode  = "bad_room_code"
	CodeBadBoard     = "bad_board"
	CodeNotInRoom    = "not_in_room"
	CodeNotHost      = "not_host"
	CodeUnknownColor = "unknown_color"
	CodeColorTaken   = "color_taken"
	CodeNoColor      = "no_color_claimed"
)

// Player is one seat in a room, keyed by session ID
type Player struct {
	SessionID string
	Name      string
	Color     engine.Color // "" until claimed
	Connected bool
	JoinedAt  time.Time
}

// reservation holds a disconnected player's color until expiry
type reservation struct {
	sessionID string
	expiresAt time.Time
}

// Room is the aggregate for one game: the roster, color claims, the host
// seat, and the engine. All methods are safe for concurrent use; every
// mutating method either commits fully or returns a *engine.RuleError.
type Room struct {
	Code      string
	CreatedAt time.Time

	mu            sync.Mutex
	hostSessionID string
	players       map[string]*Player
	reservations  map[engine.Color]reservation
	eng           *engine.Engine
	boardName     string
	lastActivity  time.Time
}

func newRoom(code string, def *board.Definition, boardName string) (*Room, error) {
	g, err := board.NewGraph(def)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Room{
		Code:         code,
		CreatedAt:    now,
		players:      make(map[string]*Player),
		reservations: make(map[engine.Color]reservation),
		eng:          engine.NewEngine(g),
		boardName:    boardName,
		lastActivity: now,
	}, nil
}

// JoinResult reports what Join did
type JoinResult struct {
	IsHost   bool
	Rejoined bool
}

// Join seats the session in the room, or refreshes the seat if it is
// already there. The first player into an empty room becomes host. A
// returning session gets its old seat back, color included, as long as the
// reservation has not lapsed to someone else.
func (r *Room) Join(sessionID, name string) *JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()
	r.pruneLocked(time.Now())

	p, rejoined := r.players[sessionID]
	if !rejoined {
		p = &Player{
			SessionID: sessionID,
			JoinedAt:  time.Now(),
		}
		r.players[sessionID] = p
	}
	p.Connected = true
	if name != "" {
		p.Name = name
	}

	// A live player again; the color no longer needs a reservation.
	if p.Color != "" {
		if res, ok := r.reservations[p.Color]; ok && res.sessionID == sessionID {
			delete(r.reservations, p.Color)
		}
	}

	if r.hostSessionID == "" {
		r.hostSessionID = sessionID
	}

	return &JoinResult{
		IsHost:   r.hostSessionID == sessionID,
		Rejoined: rejoined,
	}
}

// Disconnect marks the seat offline and reserves its color for ClaimTTL.
// The seat itself stays; the host seat stays too, even offline.
func (r *Room) Disconnect(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[sessionID]
	if !ok {
		return
	}
	p.Connected = false
	if p.Color != "" {
		r.reservations[p.Color] = reservation{
			sessionID: sessionID,
			expiresAt: time.Now().Add(ClaimTTL),
		}
	}
	r.touch()
}

// ClaimColor gives the session the color if it is free. A color held by a
// connected player, or reserved for a disconnected one whose window has not
// lapsed, is taken. Claiming a new color releases the session's old one.
func (r *Room) ClaimColor(sessionID string, color engine.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()
	now := time.Now()
	r.pruneLocked(now)

	p, ok := r.players[sessionID]
	if !ok {
		return engine.NewRuleError(CodeNotInRoom, "join the room first")
	}
	if !engine.IsColor(color.String()) {
		return engine.NewRuleError(CodeUnknownColor, "no such color: "+color.String())
	}
	if r.eng.State().Phase != engine.PhaseLobby {
		return engine.NewRuleError(engine.CodeNotInLobby, "colors are claimed in the lobby")
	}
	if p.Color == color {
		return nil
	}

	if holder := r.colorHolderLocked(color, now); holder != nil && holder.SessionID != sessionID {
		return engine.NewRuleError(CodeColorTaken, "color is already claimed")
	}

	// Strip the color from any lapsed holder before handing it over.
	for _, other := range r.players {
		if other.Color == color {
			other.Color = ""
		}
	}
	delete(r.reservations, color)

	if p.Color != "" {
		delete(r.reservations, p.Color)
	}
	p.Color = color
	return nil
}

// colorHolderLocked returns the player who still effectively owns color:
// connected, or disconnected with a live reservation.
func (r *Room) colorHolderLocked(color engine.Color, now time.Time) *Player {
	for _, p := range r.players {
		if p.Color != color {
			continue
		}
		if p.Connected {
			return p
		}
		if res, ok := r.reservations[color]; ok && res.sessionID == p.SessionID && now.Before(res.expiresAt) {
			return p
		}
		return nil
	}
	return nil
}

// SetBoard replaces the room's board. Host only, lobby only.
func (r *Room) SetBoard(sessionID string, def *board.Definition, boardName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	if err := r.requireHostLocked(sessionID); err != nil {
		return err
	}
	g, err := board.NewGraph(def)
	if err != nil {
		return engine.NewRuleError(CodeBadBoard, err.Error())
	}
	if err := r.eng.SetBoard(g); err != nil {
		return err
	}
	r.boardName = boardName
	return nil
}

// Start begins the game. Host only; the engine enforces the player minimum.
func (r *Room) Start(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	if err := r.requireHostLocked(sessionID); err != nil {
		return err
	}
	return r.eng.Start(r.claimedColorsLocked())
}

// Reset returns the room to the lobby. Host only. With keepPlayers the
// roster and color claims survive; without it every claim is released and
// only the seats themselves remain.
func (r *Room) Reset(sessionID string, keepPlayers bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	if err := r.requireHostLocked(sessionID); err != nil {
		return err
	}
	r.eng.Reset()
	if !keepPlayers {
		for _, p := range r.players {
			p.Color = ""
		}
		r.reservations = make(map[engine.Color]reservation)
	}
	return nil
}

// Roll rolls the die for the session's color
func (r *Room) Roll(sessionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	color, err := r.sessionColorLocked(sessionID)
	if err != nil {
		return 0, err
	}
	return r.eng.Roll(color)
}

// Move moves the session's piece to toNode
func (r *Room) Move(sessionID string, pieceIndex int, toNode string) (*engine.MoveOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	color, err := r.sessionColorLocked(sessionID)
	if err != nil {
		return nil, err
	}
	return r.eng.Move(color, pieceIndex, toNode)
}

// PlaceBarricade places the session's picked-up barricade on nodeID
func (r *Room) PlaceBarricade(sessionID, nodeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	color, err := r.sessionColorLocked(sessionID)
	if err != nil {
		return err
	}
	return r.eng.PlaceBarricade(color, nodeID)
}

// SetDice swaps the room engine's die, for tests and debugging
func (r *Room) SetDice(dice func() int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eng.SetDice(dice)
}

// HostSessionID returns the current host's session ID
func (r *Room) HostSessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostSessionID
}

// PruneExpired drops disconnected seats whose reservation window has
// passed and returns how many were removed. A pruned host seat passes to
// the longest-seated remaining player.
func (r *Room) PruneExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked(time.Now())
}

func (r *Room) pruneLocked(now time.Time) int {
	removed := 0
	inGame := r.eng.State().Phase == engine.PhaseGame
	for id, p := range r.players {
		if p.Connected {
			continue
		}
		if p.Color == "" {
			// Colorless seats hold nothing anyone else needs; they linger
			// until the idle-room sweep collects the whole room.
			continue
		}
		if inGame {
			// A colored seat stays through a running game even past its
			// reservation, so the turn rotation never points at a vanished
			// player. The snapshot reports the room as paused until the
			// player returns; the idle-room sweep collects abandoned rooms.
			continue
		}
		res, ok := r.reservations[p.Color]
		if ok && res.sessionID == id && now.Before(res.expiresAt) {
			continue
		}
		delete(r.players, id)
		delete(r.reservations, p.Color)
		removed++
	}
	if _, hostAlive := r.players[r.hostSessionID]; !hostAlive && r.hostSessionID != "" {
		r.hostSessionID = ""
		var oldest *Player
		for _, p := range r.players {
			if oldest == nil || p.JoinedAt.Before(oldest.JoinedAt) {
				oldest = p
			}
		}
		if oldest != nil {
			r.hostSessionID = oldest.SessionID
		}
	}
	return removed
}

// Empty reports whether no seat has a live connection
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.Connected {
			return false
		}
	}
	return true
}

// LastActivity returns when the room last processed an operation
func (r *Room) LastActivity() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity
}

func (r *Room) touch() {
	r.lastActivity = time.Now()
}

func (r *Room) requireHostLocked(sessionID string) error {
	if _, ok := r.players[sessionID]; !ok {
		return engine.NewRuleError(CodeNotInRoom, "join the room first")
	}
	if r.hostSessionID != sessionID {
		return engine.NewRuleError(CodeNotHost, "only the host can do that")
	}
	return nil
}

func (r *Room) sessionColorLocked(sessionID string) (engine.Color, error) {
	p, ok := r.players[sessionID]
	if !ok {
		return "", engine.NewRuleError(CodeNotInRoom, "join the room first")
	}
	if p.Color == "" {
		return "", engine.NewRuleError(CodeNoColor, "claim a color first")
	}
	return p.Color, nil
}

func (r *Room) claimedColorsLocked() []engine.Color {
	colors := make([]engine.Color, 0, len(r.players))
	for _, p := range r.players {
		if p.Color != "" {
			colors = append(colors, p.Color)
		}
	}
	return colors
}

// PlayerInfo is the public view of one seat
type PlayerInfo struct {
	SessionID string       `json:"sessionId"`
	Name      string       `json:"name,omitempty"`
	Color     engine.Color `json:"color,omitempty"`
	Connected bool         `json:"connected"`
	Host      bool         `json:"host,omitempty"`
}

// Snapshot is the full room state sent to every member after each change.
// Clients rebuild their view from it; there are no incremental updates.
type Snapshot struct {
	Code                 string            `json:"code"`
	Phase                engine.GamePhase  `json:"phase"`
	Paused               bool              `json:"paused,omitempty"`
	BoardName            string            `json:"boardName,omitempty"`
	Board                *board.Definition `json:"board"`
	Players              []PlayerInfo      `json:"players"`
	Pieces               map[engine.Color][]engine.Piece `json:"pieces"`
	Barricades           []string          `json:"barricades"`
	Turn                 engine.Turn       `json:"turn"`
	Winner               engine.Color      `json:"winner,omitempty"`
	PendingBarricadeFrom string            `json:"pendingBarricadeFrom,omitempty"`
}

// Snapshot captures the room for broadcast. It deep-copies everything the
// caller could race on, so the result is safe to marshal outside the lock.
func (r *Room) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.eng.State()
	snap := &Snapshot{
		Code:                 r.Code,
		Phase:                s.Phase,
		BoardName:            r.boardName,
		Board:                r.eng.Board().Definition().Clone(),
		Turn:                 s.Turn,
		Winner:               s.Winner,
		PendingBarricadeFrom: s.PendingBarricadeFrom,
		Pieces:               make(map[engine.Color][]engine.Piece, len(s.Pieces)),
		Barricades:           make([]string, 0, len(s.Barricades)),
	}
	if s.Turn.LastAction != nil {
		la := *s.Turn.LastAction
		snap.Turn.LastAction = &la
	}
	for c, pieces := range s.Pieces {
		cp := make([]engine.Piece, len(pieces))
		copy(cp, pieces)
		snap.Pieces[c] = cp
	}
	for id := range s.Barricades {
		snap.Barricades = append(snap.Barricades, id)
	}
	sort.Strings(snap.Barricades)

	snap.Players = make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		snap.Players = append(snap.Players, PlayerInfo{
			SessionID: p.SessionID,
			Name:      p.Name,
			Color:     p.Color,
			Connected: p.Connected,
			Host:      p.SessionID == r.hostSessionID,
		})
		if s.Phase == engine.PhaseGame && p.Color != "" && !p.Connected {
			snap.Paused = true
		}
	}
	sort.Slice(snap.Players, func(i, j int) bool {
		return snap.Players[i].SessionID < snap.Players[j].SessionID
	})

	return snap
}
