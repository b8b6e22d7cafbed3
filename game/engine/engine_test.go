package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barikade/game/board"
)

// testDefinition builds a small board: a six-node cycle p1..p6 with the goal
// hanging off p1, start nodes for red (at p4) and blue (at p6), and four
// house slots per color.
func testDefinition() *board.Definition {
	nodes := []board.Node{
		{ID: "goal", Kind: board.KindBoard, Flags: board.Flags{Goal: true, NoBarricade: true}},
		{ID: "p1", Kind: board.KindBoard},
		{ID: "p2", Kind: board.KindBoard},
		{ID: "p3", Kind: board.KindBoard, Flags: board.Flags{Run: true}},
		{ID: "p4", Kind: board.KindBoard},
		{ID: "p5", Kind: board.KindBoard, Flags: board.Flags{Run: true}},
		{ID: "p6", Kind: board.KindBoard},
		{ID: "start_red", Kind: board.KindBoard, Flags: board.Flags{StartColor: "red"}},
		{ID: "start_blue", Kind: board.KindBoard, Flags: board.Flags{StartColor: "blue"}},
	}
	for _, color := range []string{"red", "blue"} {
		for slot := 1; slot <= 4; slot++ {
			nodes = append(nodes, board.Node{
				ID:    "h_" + color + "_" + string(rune('0'+slot)),
				Kind:  board.KindHouse,
				Flags: board.Flags{HouseColor: color, HouseSlot: slot},
			})
		}
	}
	return &board.Definition{
		Name:  "Test Board",
		Nodes: nodes,
		Edges: []board.Edge{
			{"goal", "p1"},
			{"p1", "p2"},
			{"p2", "p3"},
			{"p3", "p4"},
			{"p4", "p5"},
			{"p5", "p6"},
			{"p6", "p1"},
			{"start_red", "p4"},
			{"start_blue", "p6"},
		},
		Barricades:              []string{},
		StartNodes:              map[string]string{"red": "start_red", "blue": "start_blue"},
		ForbiddenBarricadeNodes: []string{"goal"},
		GoalNode:                "goal",
	}
}

func newTestEngine(t *testing.T, def *board.Definition) *Engine {
	t.Helper()
	g, err := board.NewGraph(def)
	require.NoError(t, err)
	return NewEngine(g)
}

// newStartedEngine returns an engine mid-game with blue to roll
func newStartedEngine(t *testing.T, def *board.Definition) *Engine {
	t.Helper()
	e := newTestEngine(t, def)
	require.NoError(t, e.Start([]Color{Red, Blue}))
	return e
}

func fixedDice(faces ...int) func() int {
	i := 0
	return func() int {
		v := faces[i%len(faces)]
		i++
		return v
	}
}

func TestNewEngineLobbyState(t *testing.T) {
	e := newTestEngine(t, testDefinition())
	s := e.State()

	assert.Equal(t, PhaseLobby, s.Phase)
	assert.Empty(t, s.Barricades)
	require.Len(t, s.Pieces[Blue], PiecesPerColor)
	assert.Equal(t, "h_blue_1", s.Pieces[Blue][0].House)
	assert.Equal(t, "h_red_4", s.Pieces[Red][3].House)
	for _, p := range s.Pieces[Blue] {
		assert.True(t, p.AtHouse())
	}
}

func TestStart(t *testing.T) {
	e := newTestEngine(t, testDefinition())

	err := e.Start([]Color{Red})
	var re *RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNotEnoughPlayers, re.Code)
	assert.Equal(t, PhaseLobby, e.State().Phase)

	require.NoError(t, e.Start([]Color{Red, Blue}))
	s := e.State()
	assert.Equal(t, PhaseGame, s.Phase)
	// Rotation follows the fixed color order, not claim order.
	assert.Equal(t, []Color{Blue, Red}, s.Rotation)
	assert.Equal(t, Blue, s.Turn.ActiveColor)
	assert.Equal(t, StepRoll, s.Turn.Step)

	err = e.Start([]Color{Red, Blue})
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNotInLobby, re.Code)
}

func TestStartSeedsDefinitionBarricades(t *testing.T) {
	def := testDefinition()
	def.Barricades = []string{"p2", "p5"}
	e := newStartedEngine(t, def)

	assert.Equal(t, map[string]bool{"p2": true, "p5": true}, e.State().Barricades)
}

func TestStartSeedsRunNodesFirst(t *testing.T) {
	e := newStartedEngine(t, testDefinition())

	seeded := e.State().Barricades
	assert.True(t, seeded["p3"], "run node p3")
	assert.True(t, seeded["p5"], "run node p5")
	// The board has only six legal targets, fewer than the default count.
	assert.Len(t, seeded, 6)
	assert.False(t, seeded["goal"])
	assert.False(t, seeded["start_red"])
}

func TestRoll(t *testing.T) {
	def := testDefinition()
	def.Barricades = []string{"p2"}
	e := newStartedEngine(t, def)
	e.SetDice(fixedDice(3))

	_, err := e.Roll(Red)
	var re *RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNotYourTurn, re.Code)

	roll, err := e.Roll(Blue)
	require.NoError(t, err)
	assert.Equal(t, 3, roll)
	assert.Equal(t, StepMove, e.State().Turn.Step)
	assert.Equal(t, 3, e.State().Turn.Roll)

	_, err = e.Roll(Blue)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNotInRollPhase, re.Code)
}

func TestRollForfeitsWhenNoMove(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	e.State().Barricades = map[string]bool{}
	e.SetDice(fixedDice(3))

	// Blue has every piece at home and its start node blocked, so the roll
	// is forfeited and red is up.
	e.State().Pieces[Red][0] = Piece{Node: "start_blue"}

	roll, err := e.Roll(Blue)
	require.NoError(t, err)
	assert.Equal(t, 3, roll)
	assert.Equal(t, Red, e.State().Turn.ActiveColor)
	assert.Equal(t, StepRoll, e.State().Turn.Step)

	// The snapshot says who was skipped and why.
	require.NotNil(t, e.State().Turn.LastAction)
	assert.Equal(t, ActionForfeit, e.State().Turn.LastAction.Type)
	assert.Equal(t, Blue, e.State().Turn.LastAction.Color)
	assert.Equal(t, 3, e.State().Turn.LastAction.Roll)
}

func TestRollForfeitOnSixStillRotates(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	e.State().Barricades = map[string]bool{}
	e.SetDice(fixedDice(6))
	e.State().Pieces[Red][0] = Piece{Node: "start_blue"}

	// A stuck color gets no bonus roll; the board cannot change before it
	// would roll again.
	_, err := e.Roll(Blue)
	require.NoError(t, err)
	assert.Equal(t, Red, e.State().Turn.ActiveColor)
	assert.Equal(t, ActionForfeit, e.State().Turn.LastAction.Type)
}

func TestEnterFromHouse(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	e.State().Barricades = map[string]bool{}
	e.SetDice(fixedDice(2))

	_, err := e.Roll(Blue)
	require.NoError(t, err)

	_, err = e.Move(Blue, 0, "p6")
	var re *RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeHomeOnlyEnterStart, re.Code)

	out, err := e.Move(Blue, 0, "start_blue")
	require.NoError(t, err)
	assert.False(t, out.PickedUpBarricade)
	assert.Equal(t, "start_blue", e.State().Pieces[Blue][0].Node)
	assert.Equal(t, Red, e.State().Turn.ActiveColor)

	// Red's start entry is blocked once a piece already sits there. A red
	// piece out on the board keeps the turn from being forfeited, so the
	// rejection is explicit.
	e.State().Pieces[Blue][1] = Piece{Node: "start_red"}
	e.State().Pieces[Red][1] = Piece{Node: "p2"}
	_, err = e.Roll(Red)
	require.NoError(t, err)
	assert.Equal(t, StepMove, e.State().Turn.Step)
	_, err = e.Move(Red, 0, "start_red")
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeStartOccupied, re.Code)
}

func TestDestinationsExactSteps(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	e.State().Barricades = map[string]bool{}
	e.State().Pieces[Blue][0] = Piece{Node: "p1"}

	// One hop out of p1.
	assert.Equal(t, []string{"goal", "p2", "p6"}, e.Destinations("p1", 1))

	// Two hops: the occupied origin is never re-entered, and the goal is a
	// dead end, so only the far side of each fork remains.
	assert.Equal(t, []string{"p3", "p5", "start_blue"}, e.Destinations("p1", 2))

	assert.Nil(t, e.Destinations("p1", 0))
	assert.Nil(t, e.Destinations("missing", 3))
}

func TestDestinationsBarricadeBlocksMidPath(t *testing.T) {
	def := testDefinition()
	def.Barricades = []string{"p2"}
	e := newStartedEngine(t, def)
	e.State().Pieces[Blue][0] = Piece{Node: "p1"}

	// The barricade is a legal final hop.
	assert.Equal(t, []string{"goal", "p2", "p6"}, e.Destinations("p1", 1))

	// But never a pass-through: p3 is unreachable in two.
	assert.Equal(t, []string{"p5", "start_blue"}, e.Destinations("p1", 2))
}

func TestDestinationsOccupiedBlocksLanding(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	e.State().Barricades = map[string]bool{}
	e.State().Pieces[Blue][0] = Piece{Node: "p1"}
	e.State().Pieces[Red][0] = Piece{Node: "p2"}

	assert.Equal(t, []string{"goal", "p6"}, e.Destinations("p1", 1))
}

func TestMoveRejectsUnreachable(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	e.State().Barricades = map[string]bool{}
	e.SetDice(fixedDice(2))
	e.State().Pieces[Blue][0] = Piece{Node: "p1"}

	_, err := e.Roll(Blue)
	require.NoError(t, err)

	_, err = e.Move(Blue, 0, "goal")
	var re *RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNotReachable, re.Code)

	_, err = e.Move(Blue, 9, "p3")
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeBadPieceIndex, re.Code)

	_, err = e.Move(Red, 0, "p3")
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNotYourTurn, re.Code)

	// Nothing committed.
	assert.Equal(t, "p1", e.State().Pieces[Blue][0].Node)
	assert.Equal(t, StepMove, e.State().Turn.Step)
}

func TestBarricadePickupAndPlacement(t *testing.T) {
	def := testDefinition()
	def.Barricades = []string{"p3"}
	e := newStartedEngine(t, def)
	e.SetDice(fixedDice(2))
	e.State().Pieces[Blue][0] = Piece{Node: "p1"}

	_, err := e.Roll(Blue)
	require.NoError(t, err)

	out, err := e.Move(Blue, 0, "p3")
	require.NoError(t, err)
	assert.True(t, out.PickedUpBarricade)

	s := e.State()
	assert.False(t, s.Barricades["p3"])
	assert.Equal(t, "p3", s.PendingBarricadeFrom)
	assert.Equal(t, StepBarricadePlace, s.Turn.Step)
	assert.Equal(t, Blue, s.Turn.ActiveColor)

	var re *RuleError
	require.ErrorAs(t, e.PlaceBarricade(Red, "p6"), &re)
	assert.Equal(t, CodeNotYourTurn, re.Code)

	require.ErrorAs(t, e.PlaceBarricade(Blue, "nope"), &re)
	assert.Equal(t, CodeNodeMissing, re.Code)

	require.ErrorAs(t, e.PlaceBarricade(Blue, "h_red_1"), &re)
	assert.Equal(t, CodeNotOnBoardKind, re.Code)

	require.ErrorAs(t, e.PlaceBarricade(Blue, "p3"), &re)
	assert.Equal(t, CodeOccupied, re.Code, "own piece sits on the pickup node")

	require.ErrorAs(t, e.PlaceBarricade(Blue, "goal"), &re)
	assert.Equal(t, CodeForbidden, re.Code)

	require.ErrorAs(t, e.PlaceBarricade(Blue, "start_red"), &re)
	assert.Equal(t, CodeForbidden, re.Code)

	require.NoError(t, e.PlaceBarricade(Blue, "p6"))
	s = e.State()
	assert.True(t, s.Barricades["p6"])
	assert.Empty(t, s.PendingBarricadeFrom)
	assert.Equal(t, Red, s.Turn.ActiveColor)
	assert.Equal(t, StepRoll, s.Turn.Step)

	require.ErrorAs(t, e.PlaceBarricade(Blue, "p2"), &re)
	assert.Equal(t, CodeNotInBarricadePlace, re.Code)
}

func TestPlaceBarricadeRejectsDoubled(t *testing.T) {
	def := testDefinition()
	def.Barricades = []string{"p3", "p5"}
	e := newStartedEngine(t, def)
	e.SetDice(fixedDice(2))
	e.State().Pieces[Blue][0] = Piece{Node: "p1"}

	_, err := e.Roll(Blue)
	require.NoError(t, err)
	_, err = e.Move(Blue, 0, "p3")
	require.NoError(t, err)

	var re *RuleError
	require.ErrorAs(t, e.PlaceBarricade(Blue, "p5"), &re)
	assert.Equal(t, CodeAlreadyHasBarricade, re.Code)
}

func TestBonusRollOnMaxDie(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	e.State().Barricades = map[string]bool{}
	e.SetDice(fixedDice(MaxDie, 1))

	_, err := e.Roll(Blue)
	require.NoError(t, err)
	_, err = e.Move(Blue, 0, "start_blue")
	require.NoError(t, err)

	// Rolling the max face keeps the turn.
	s := e.State()
	assert.Equal(t, Blue, s.Turn.ActiveColor)
	assert.Equal(t, StepRoll, s.Turn.Step)
	assert.Equal(t, MaxDie, s.Turn.LastRoll)

	_, err = e.Roll(Blue)
	require.NoError(t, err)
	_, err = e.Move(Blue, 0, "p6")
	require.NoError(t, err)
	assert.Equal(t, Red, e.State().Turn.ActiveColor)
}

func TestBonusRollAfterBarricadePlacement(t *testing.T) {
	def := testDefinition()
	def.Barricades = []string{"p5"}
	e := newStartedEngine(t, def)
	e.SetDice(fixedDice(MaxDie))
	e.State().Pieces[Blue][0] = Piece{Node: "p3"}

	_, err := e.Roll(Blue)
	require.NoError(t, err)
	// A six-hop walk out of p3 can double back and close on the barricade.
	dests := e.Destinations("p3", MaxDie)
	require.Contains(t, dests, "p5")

	out, err := e.Move(Blue, 0, "p5")
	require.NoError(t, err)
	require.True(t, out.PickedUpBarricade)

	require.NoError(t, e.PlaceBarricade(Blue, "p2"))
	// The pickup roll was the max face, so blue keeps the turn.
	assert.Equal(t, Blue, e.State().Turn.ActiveColor)
	assert.Equal(t, StepRoll, e.State().Turn.Step)
}

func TestWinOnGoal(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	e.State().Barricades = map[string]bool{}
	e.SetDice(fixedDice(1))
	e.State().Pieces[Blue][2] = Piece{Node: "p1"}

	_, err := e.Roll(Blue)
	require.NoError(t, err)

	out, err := e.Move(Blue, 2, "goal")
	require.NoError(t, err)
	assert.True(t, out.Won)

	s := e.State()
	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, Blue, s.Winner)
	assert.Equal(t, ActionWin, s.Turn.LastAction.Type)

	_, err = e.Roll(Red)
	var re *RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNotInGame, re.Code)
}

func TestReset(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	e.State().Pieces[Blue][0] = Piece{Node: "p1"}

	e.Reset()
	s := e.State()
	assert.Equal(t, PhaseLobby, s.Phase)
	assert.Empty(t, s.Barricades)
	assert.Empty(t, s.Rotation)
	assert.True(t, s.Pieces[Blue][0].AtHouse())
	assert.Equal(t, ActionReset, s.Turn.LastAction.Type)
}

func TestSetBoardOnlyInLobby(t *testing.T) {
	e := newTestEngine(t, testDefinition())

	g, err := board.NewGraph(testDefinition())
	require.NoError(t, err)
	require.NoError(t, e.SetBoard(g))

	require.NoError(t, e.Start([]Color{Red, Blue}))
	err = e.SetBoard(g)
	var re *RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNotInLobby, re.Code)
}

func TestRollRange(t *testing.T) {
	e := newStartedEngine(t, testDefinition())
	for i := 0; i < 100; i++ {
		roll := e.dice()
		assert.GreaterOrEqual(t, roll, 1)
		assert.LessOrEqual(t, roll, MaxDie)
	}
}
