package engine

// Color identifies one of the four player colors
type Color string

const (
	Blue   Color = "blue"
	Red    Color = "red"
	Green  Color = "green"
	Yellow Color = "yellow"
)

// Colors is the fixed rotation order. Turn order among claimed colors always
// follows this sequence.
var Colors = []Color{Blue, Red, Green, Yellow}

// String returns the color's wire name
func (c Color) String() string { return string(c) }

// IsColor reports whether s names a known color
func IsColor(s string) bool {
	for _, c := range Colors {
		if Color(s) == c {
			return true
		}
	}
	return false
}

const (
	// PiecesPerColor is the number of pieces each color plays with.
	PiecesPerColor = 4

	// MaxDie is the highest die face; rolling it grants a bonus turn.
	MaxDie = 6

	// DefaultBarricadeCount is how many barricades are seeded at game start
	// when the board definition does not carry its own set.
	DefaultBarricadeCount = 11

	// MinPlayers is the minimum number of claimed colors to start a game.
	MinPlayers = 2
)

// GamePhase is the coarse lifecycle of a room's game
type GamePhase string

const (
	PhaseLobby    GamePhase = "LOBBY"
	PhaseGame     GamePhase = "GAME"
	PhaseFinished GamePhase = "FINISHED"
)

// TurnStep is the fine-grained phase within the active color's turn
type TurnStep string

const (
	StepRoll           TurnStep = "ROLL"
	StepMove           TurnStep = "MOVE"
	StepBarricadePlace TurnStep = "BARRICADE_PLACE"
)

// Piece is one token of a color. Exactly one of House or Node is set: House
// while the piece waits off-board, Node once it has entered play.
type Piece struct {
	House string `json:"house,omitempty"`
	Node  string `json:"node,omitempty"`
}

// AtHouse reports whether the piece is still in its holding area
func (p Piece) AtHouse() bool {
	return p.Node == ""
}

// Action records the last committed transition for display purposes
type Action struct {
	Type       string `json:"type"`
	Color      Color  `json:"color,omitempty"`
	PieceIndex int    `json:"pieceIndex,omitempty"`
	Node       string `json:"node,omitempty"`
	Roll       int    `json:"roll,omitempty"`
}

// Action types
const (
	ActionStart           = "START"
	ActionRoll            = "ROLL"
	ActionMove            = "MOVE"
	ActionPickupBarricade = "PICKUP_BARRICADE"
	ActionPlaceBarricade  = "PLACE_BARRICADE"
	ActionWin             = "WIN"
	ActionForfeit         = "FORFEIT"
	ActionReset           = "RESET"
)

// Turn tracks whose turn it is and where within that turn the game stands.
// It is meaningful only while the phase is GAME.
type Turn struct {
	ActiveColor Color    `json:"activeColor,omitempty"`
	Step        TurnStep `json:"step"`
	Roll        int      `json:"roll,omitempty"`
	LastRoll    int      `json:"lastRoll,omitempty"`
	LastAction  *Action  `json:"lastAction,omitempty"`
}

// State is the complete mutable game state of one room
type State struct {
	Phase                GamePhase         `json:"phase"`
	Pieces               map[Color][]Piece `json:"pieces"`
	Barricades           map[string]bool   `json:"barricades"`
	Turn                 Turn              `json:"turn"`
	Rotation             []Color           `json:"rotation,omitempty"`
	Winner               Color             `json:"winner,omitempty"`
	PendingBarricadeFrom string            `json:"pendingBarricadeFrom,omitempty"`
}

// MoveOutcome describes what a committed move did beyond relocating a piece
type MoveOutcome struct {
	PickedUpBarricade bool
	Won               bool
}

// RuleError is a structured game-rule rejection. Code is machine-readable
// and stable; it is surfaced verbatim to the offending client inside an ERR
// message. A RuleError never accompanies a state change.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// NewRuleError builds a RuleError. Other layers use it to reject requests
// with the same shape the engine's own rejections have.
func NewRuleError(code, message string) *RuleError {
	return &RuleError{Code: code, Message: message}
}

func ruleErr(code, message string) *RuleError {
	return NewRuleError(code, message)
}

// Rule error codes
const (
	CodeNotInLobby          = "not_in_lobby"
	CodeNotInGame           = "not_in_game"
	CodeNotEnoughPlayers    = "not_enough_players"
	CodeNotInRollPhase      = "not_in_roll_phase"
	CodeNotInMovePhase      = "not_in_move_phase"
	CodeNotInBarricadePlace = "not_in_barricade_place"
	CodeNotYourTurn         = "not_your_turn"
	CodeBadPieceIndex       = "bad_piece_index"
	CodeMissingStartNode    = "missing_start_node"
	CodeHomeOnlyEnterStart  = "home_can_only_enter_start"
	CodeStartOccupied       = "start_occupied"
	CodeNotReachable        = "not_reachable_in_exact_steps"
	CodeNodeMissing         = "node_missing"
	CodeNotOnBoardKind      = "not_on_board_kind"
	CodeOccupied            = "occupied"
	CodeForbidden           = "forbidden"
	CodeAlreadyHasBarricade = "already_has_barricade"
)
