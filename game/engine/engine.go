package engine

import (
	"fmt"
	"math/rand"

	"barikade/game/board"
)

// Engine drives the rules of a single game on one board. It owns a State and
// mutates it through validated operations; every mutating method either
// commits a complete transition or returns a *RuleError and leaves the state
// untouched. The engine is not safe for concurrent use, callers serialize
// access (the room holds a lock around it).
type Engine struct {
	board *board.Graph
	state *State

	// dice returns the next die face in [1, MaxDie]. Tests replace it.
	dice func() int
}

// NewEngine creates an engine in the lobby phase on the given board
func NewEngine(g *board.Graph) *Engine {
	e := &Engine{
		board: g,
		dice:  func() int { return rand.Intn(MaxDie) + 1 },
	}
	e.state = e.initialState()
	return e
}

// initialState builds a fresh lobby state with every piece at its house
func (e *Engine) initialState() *State {
	s := &State{
		Phase:      PhaseLobby,
		Pieces:     make(map[Color][]Piece, len(Colors)),
		Barricades: make(map[string]bool),
	}
	for _, c := range Colors {
		houses := e.board.HouseNodes(c.String())
		pieces := make([]Piece, PiecesPerColor)
		for i := range pieces {
			if i < len(houses) {
				pieces[i].House = houses[i]
			} else {
				pieces[i].House = fmt.Sprintf("h_%s_%d", c, i+1)
			}
		}
		s.Pieces[c] = pieces
	}
	return s
}

// State returns the live game state. Callers must not mutate it; use
// Snapshot for a copy that can leave the room's lock.
func (e *Engine) State() *State {
	return e.state
}

// Board returns the graph the engine is playing on
func (e *Engine) Board() *board.Graph {
	return e.board
}

// SetBoard swaps the board definition. Only allowed in the lobby, where no
// piece is on the board yet; the piece roster is rebuilt against the new
// board's house nodes.
func (e *Engine) SetBoard(g *board.Graph) error {
	if e.state.Phase != PhaseLobby {
		return ruleErr(CodeNotInLobby, "board can only change in the lobby")
	}
	e.board = g
	e.state = e.initialState()
	return nil
}

// SetDice replaces the die for deterministic play
func (e *Engine) SetDice(dice func() int) {
	e.dice = dice
}

// Start begins the game with the given claimed colors. Rotation order
// follows the fixed Colors sequence regardless of claim order, and the
// first color in that order opens with a roll.
func (e *Engine) Start(claimed []Color) error {
	if e.state.Phase != PhaseLobby {
		return ruleErr(CodeNotInLobby, "game already started")
	}
	rotation := make([]Color, 0, len(claimed))
	for _, c := range Colors {
		for _, cl := range claimed {
			if cl == c {
				rotation = append(rotation, c)
				break
			}
		}
	}
	if len(rotation) < MinPlayers {
		return ruleErr(CodeNotEnoughPlayers, fmt.Sprintf("need at least %d claimed colors", MinPlayers))
	}

	e.state.Phase = PhaseGame
	e.state.Rotation = rotation
	e.state.Barricades = e.seedBarricades()
	e.state.Winner = ""
	e.state.PendingBarricadeFrom = ""
	e.state.Turn = Turn{
		ActiveColor: rotation[0],
		Step:        StepRoll,
		LastAction:  &Action{Type: ActionStart},
	}
	return nil
}

// seedBarricades chooses the starting barricade set. A board definition
// that carries its own barricade list wins; otherwise run-flagged nodes are
// taken first and the highest-degree plain board nodes fill up to
// DefaultBarricadeCount.
func (e *Engine) seedBarricades() map[string]bool {
	seeded := make(map[string]bool)
	if defs := e.board.Definition().Barricades; len(defs) > 0 {
		for _, id := range defs {
			seeded[id] = true
		}
		return seeded
	}
	for _, id := range e.board.RunNodes() {
		if len(seeded) >= DefaultBarricadeCount {
			return seeded
		}
		if e.board.IsLegalBarricadeTarget(id) {
			seeded[id] = true
		}
	}
	for _, id := range e.board.BoardNodesByDegree() {
		if len(seeded) >= DefaultBarricadeCount {
			break
		}
		if !seeded[id] && e.board.IsLegalBarricadeTarget(id) {
			seeded[id] = true
		}
	}
	return seeded
}

// Reset returns the game to the lobby. Pieces go back to their houses,
// barricades and turn state are cleared.
func (e *Engine) Reset() {
	e.state = e.initialState()
	e.state.Turn.LastAction = &Action{Type: ActionReset}
}

// Roll rolls the die for the active color and advances the turn to the move
// step. The rolled value stays pinned on the turn until the move commits.
func (e *Engine) Roll(color Color) (int, error) {
	if e.state.Phase != PhaseGame {
		return 0, ruleErr(CodeNotInGame, "no game in progress")
	}
	if e.state.Turn.Step != StepRoll {
		return 0, ruleErr(CodeNotInRollPhase, "not waiting for a roll")
	}
	if color != e.state.Turn.ActiveColor {
		return 0, ruleErr(CodeNotYourTurn, "another color is active")
	}

	roll := e.dice()
	e.state.Turn.Roll = roll
	e.state.Turn.Step = StepMove

	// A color with nothing to do forfeits the roll and play moves on. The
	// bonus for a six is skipped too; nothing on the board can change
	// before the same color would roll again, so honoring it would pin the
	// turn on a stuck player.
	if !e.hasAnyMove(color, roll) {
		e.state.Turn.LastAction = &Action{Type: ActionForfeit, Color: color, Roll: roll}
		e.state.Turn.Roll = 0
		e.state.Turn.Step = StepRoll
		e.state.Turn.ActiveColor = e.nextColor(color)
		return roll, nil
	}
	e.state.Turn.LastAction = &Action{Type: ActionRoll, Color: color, Roll: roll}
	return roll, nil
}

// Move relocates the indexed piece of the active color to toNode, which must
// be a legal destination for the pinned roll. Landing on a barricade removes
// it and suspends the turn until the barricade is re-placed; landing on the
// goal ends the game.
func (e *Engine) Move(color Color, pieceIndex int, toNode string) (*MoveOutcome, error) {
	if e.state.Phase != PhaseGame || e.state.Turn.Step != StepMove {
		return nil, ruleErr(CodeNotInMovePhase, "not waiting for a move")
	}
	if color != e.state.Turn.ActiveColor {
		return nil, ruleErr(CodeNotYourTurn, "another color is active")
	}
	if pieceIndex < 0 || pieceIndex >= len(e.state.Pieces[color]) {
		return nil, ruleErr(CodeBadPieceIndex, fmt.Sprintf("no piece %d", pieceIndex))
	}

	roll := e.state.Turn.Roll
	piece := e.state.Pieces[color][pieceIndex]

	if piece.AtHouse() {
		start, ok := e.board.StartNode(color.String())
		if !ok {
			return nil, ruleErr(CodeMissingStartNode, "board has no start node for "+color.String())
		}
		if toNode != start {
			return nil, ruleErr(CodeHomeOnlyEnterStart, "a house piece can only enter at its start node")
		}
		if e.occupiedBy(start) != "" {
			return nil, ruleErr(CodeStartOccupied, "start node is occupied")
		}
	} else {
		dests := e.Destinations(piece.Node, roll)
		if !containsNode(dests, toNode) {
			return nil, ruleErr(CodeNotReachable, fmt.Sprintf("%s is not reachable in exactly %d steps", toNode, roll))
		}
	}

	e.state.Pieces[color][pieceIndex] = Piece{Node: toNode}
	outcome := &MoveOutcome{}

	if e.state.Barricades[toNode] {
		delete(e.state.Barricades, toNode)
		outcome.PickedUpBarricade = true
		e.state.PendingBarricadeFrom = toNode
		e.state.Turn.Step = StepBarricadePlace
		e.state.Turn.LastRoll = roll
		e.state.Turn.Roll = 0
		e.state.Turn.LastAction = &Action{Type: ActionPickupBarricade, Color: color, PieceIndex: pieceIndex, Node: toNode, Roll: roll}
		return outcome, nil
	}

	if goal := e.board.GoalNode(); goal != "" && toNode == goal {
		outcome.Won = true
		e.state.Phase = PhaseFinished
		e.state.Winner = color
		e.state.Turn.LastAction = &Action{Type: ActionWin, Color: color, PieceIndex: pieceIndex, Node: toNode, Roll: roll}
		return outcome, nil
	}

	e.state.Turn.LastAction = &Action{Type: ActionMove, Color: color, PieceIndex: pieceIndex, Node: toNode, Roll: roll}
	e.advanceTurn(roll)
	return outcome, nil
}

// PlaceBarricade puts the picked-up barricade on nodeID and resumes the
// turn rotation using the roll that earned the pickup.
func (e *Engine) PlaceBarricade(color Color, nodeID string) error {
	if e.state.Phase != PhaseGame || e.state.Turn.Step != StepBarricadePlace {
		return ruleErr(CodeNotInBarricadePlace, "no barricade to place")
	}
	if color != e.state.Turn.ActiveColor {
		return ruleErr(CodeNotYourTurn, "another color is active")
	}
	node, ok := e.board.Node(nodeID)
	if !ok {
		return ruleErr(CodeNodeMissing, "no such node: "+nodeID)
	}
	if node.Kind != board.KindBoard {
		return ruleErr(CodeNotOnBoardKind, "barricades only go on board nodes")
	}
	if e.occupiedBy(nodeID) != "" {
		return ruleErr(CodeOccupied, "node is occupied by a piece")
	}
	if !e.board.IsLegalBarricadeTarget(nodeID) {
		return ruleErr(CodeForbidden, "barricades are not allowed on "+nodeID)
	}
	if e.state.Barricades[nodeID] {
		return ruleErr(CodeAlreadyHasBarricade, "node already holds a barricade")
	}

	e.state.Barricades[nodeID] = true
	e.state.PendingBarricadeFrom = ""
	e.state.Turn.LastAction = &Action{Type: ActionPlaceBarricade, Color: color, Node: nodeID, Roll: e.state.Turn.LastRoll}
	e.advanceTurn(e.state.Turn.LastRoll)
	return nil
}

// advanceTurn returns the turn to the roll step, rotating to the next color
// unless the committed roll was the maximum die face.
func (e *Engine) advanceTurn(roll int) {
	e.state.Turn.LastRoll = roll
	e.state.Turn.Roll = 0
	e.state.Turn.Step = StepRoll
	if roll != MaxDie {
		e.state.Turn.ActiveColor = e.nextColor(e.state.Turn.ActiveColor)
	}
}

// nextColor returns the color after c in the game's rotation
func (e *Engine) nextColor(c Color) Color {
	for i, rc := range e.state.Rotation {
		if rc == c {
			return e.state.Rotation[(i+1)%len(e.state.Rotation)]
		}
	}
	if len(e.state.Rotation) > 0 {
		return e.state.Rotation[0]
	}
	return c
}

// hasAnyMove reports whether color could commit any legal move for roll
func (e *Engine) hasAnyMove(color Color, roll int) bool {
	start, hasStart := e.board.StartNode(color.String())
	for _, p := range e.state.Pieces[color] {
		if p.AtHouse() {
			if hasStart && e.occupiedBy(start) == "" {
				return true
			}
			continue
		}
		if len(e.Destinations(p.Node, roll)) > 0 {
			return true
		}
	}
	return false
}

// occupiedBy returns the color whose piece sits on nodeID, or "" when free
func (e *Engine) occupiedBy(nodeID string) Color {
	for _, c := range Colors {
		for _, p := range e.state.Pieces[c] {
			if p.Node == nodeID {
				return c
			}
		}
	}
	return ""
}

func containsNode(nodes []string, id string) bool {
	for _, n := range nodes {
		if n == id {
			return true
		}
	}
	return false
}
