package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"barikade/game/board"
	"barikade/game/engine"
	"barikade/game/room"
)

// Client message types
const (
	TypeHostRoom       = "HOST_ROOM"
	TypeJoinRoom       = "JOIN_ROOM"
	TypeClaimColor     = "CLAIM_COLOR"
	TypeStartGame      = "START_GAME"
	TypeResetRoom      = "RESET_ROOM"
	TypeBoardSet       = "BOARD_SET"
	TypeRequestRoll    = "REQUEST_ROLL"
	TypeMove           = "MOVE"
	TypePlaceBarricade = "PLACE_BARRICADE"
	TypePing           = "PING"
)

// Server message types
const (
	TypeHello    = "HELLO"
	TypeRoomCode = "ROOM_CODE"
	TypeState    = "STATE"
	TypeErr      = "ERR"
	TypePong     = "PONG"
)

// Decode error codes
const (
	CodeBadMessage  = "bad_message"
	CodeUnknownType = "unknown_type"
)

// envelope is the tag every client message carries
type envelope struct {
	T string `json:"t"`
}

// HostRoom asks the server to create a room and seat the sender as host
type HostRoom struct {
	Name      string `json:"name,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// JoinRoom seats the sender in the room under Code, creating it if needed.
// SessionID, when present, resumes a previously issued session.
type JoinRoom struct {
	Code      string `json:"code"`
	Name      string `json:"name,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// ClaimColor claims a playing color in the lobby
type ClaimColor struct {
	Color string `json:"color"`
}

// StartGame starts the game (host only)
type StartGame struct{}

// ResetRoom returns the room to the lobby (host only)
type ResetRoom struct {
	KeepPlayers bool `json:"keepPlayers"`
}

// BoardSet replaces the room's board with an inline definition (host only)
type BoardSet struct {
	Name  string            `json:"name,omitempty"`
	Board *board.Definition `json:"board"`
}

// RequestRoll rolls the die for the sender's color
type RequestRoll struct{}

// Move relocates the sender's piece to ToNode
type Move struct {
	PieceIndex int    `json:"pieceIndex"`
	ToNode     string `json:"toNode"`
}

// PlaceBarricade places the sender's picked-up barricade
type PlaceBarricade struct {
	NodeID string `json:"nodeId"`
}

// Ping is an application-level liveness probe; the websocket control-frame
// ping/pong runs alongside it, but browser clients cannot emit control
// frames themselves.
type Ping struct{}

// ErrMalformedEnvelope marks a frame that is not valid JSON or carries no
// type tag. Such frames cannot be attributed to any intent and are dropped
// without a reply; the connection stays open.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// Decode parses one client message into its typed intent. Unknown types and
// malformed payloads of a known type come back as *engine.RuleError so the
// caller can relay them to the client unchanged; frames that fail to parse
// at all come back as ErrMalformedEnvelope.
func Decode(data []byte) (interface{}, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrMalformedEnvelope
	}

	var (
		intent interface{}
		err    error
	)
	switch env.T {
	case TypeHostRoom:
		m := &HostRoom{}
		err = json.Unmarshal(data, m)
		intent = m
	case TypeJoinRoom:
		m := &JoinRoom{}
		err = json.Unmarshal(data, m)
		intent = m
	case TypeClaimColor:
		m := &ClaimColor{}
		err = json.Unmarshal(data, m)
		intent = m
	case TypeStartGame:
		intent = &StartGame{}
	case TypeResetRoom:
		m := &ResetRoom{}
		err = json.Unmarshal(data, m)
		intent = m
	case TypeBoardSet:
		m := &BoardSet{}
		err = json.Unmarshal(data, m)
		intent = m
	case TypeRequestRoll:
		intent = &RequestRoll{}
	case TypeMove:
		m := &Move{}
		err = json.Unmarshal(data, m)
		intent = m
	case TypePlaceBarricade:
		m := &PlaceBarricade{}
		err = json.Unmarshal(data, m)
		intent = m
	case TypePing:
		intent = &Ping{}
	case "":
		return nil, ErrMalformedEnvelope
	default:
		return nil, engine.NewRuleError(CodeUnknownType, fmt.Sprintf("unknown message type %q", env.T))
	}
	if err != nil {
		return nil, engine.NewRuleError(CodeBadMessage, "malformed "+env.T+" payload")
	}
	return intent, nil
}

// Hello greets a fresh connection with its offered session ID
type Hello struct {
	T         string `json:"t"`
	SessionID string `json:"sessionId"`
}

// RoomCode confirms room creation to the host
type RoomCode struct {
	T    string `json:"t"`
	Code string `json:"code"`
}

// State carries a full room snapshot; clients rebuild their view from it
type State struct {
	T    string         `json:"t"`
	Room *room.Snapshot `json:"room"`
}

// Pong answers a PING
type Pong struct {
	T string `json:"t"`
}

// ErrMsg reports a rejected request to its sender only
type ErrMsg struct {
	T       string `json:"t"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// NewHello builds a HELLO message
func NewHello(sessionID string) *Hello {
	return &Hello{T: TypeHello, SessionID: sessionID}
}

// NewRoomCode builds a ROOM_CODE message
func NewRoomCode(code string) *RoomCode {
	return &RoomCode{T: TypeRoomCode, Code: code}
}

// NewPong builds a PONG message
func NewPong() *Pong {
	return &Pong{T: TypePong}
}

// NewState builds a STATE message
func NewState(snap *room.Snapshot) *State {
	return &State{T: TypeState, Room: snap}
}

// NewError builds an ERR message from any error, preserving rule codes.
// Non-rule errors are flattened to an internal_error so internals never
// leak to clients.
func NewError(err error) *ErrMsg {
	var re *engine.RuleError
	if errors.As(err, &re) {
		return &ErrMsg{T: TypeErr, Code: re.Code, Message: re.Message}
	}
	return &ErrMsg{T: TypeErr, Code: "internal_error"}
}

// Encode marshals a server message for the wire
func Encode(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}
