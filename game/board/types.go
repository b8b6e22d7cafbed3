package board

// NodeKind distinguishes playable board nodes from house (holding) nodes
type NodeKind string

const (
	KindBoard NodeKind = "board"
	KindHouse NodeKind = "house"

	// Validation constants
	MinNodes     = 2
	HouseSlots   = 5
	MaxNodeIDLen = 64
)

// Flags carries the per-node markers from the board definition
type Flags struct {
	Run         bool   `json:"run,omitempty"`         // default barricade-bearing location
	Goal        bool   `json:"goal,omitempty"`        // terminal node
	StartColor  string `json:"startColor,omitempty"`  // board entry point for this color
	NoBarricade bool   `json:"noBarricade,omitempty"` // barricades may never sit here
	HouseColor  string `json:"houseColor,omitempty"`  // owning color, house nodes only
	HouseSlot   int    `json:"houseSlot,omitempty"`   // 1..5, house nodes only
}

// Node is a single position on the board graph with a positional hint for rendering
type Node struct {
	ID    string   `json:"id"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Kind  NodeKind `json:"kind"`
	Flags Flags    `json:"flags"`
}

// Edge is an unordered pair of node IDs
type Edge [2]string

// Definition is the JSON schema for a board, as stored on disk and as sent
// by a host via BOARD_SET
type Definition struct {
	Name                    string            `json:"name,omitempty"`
	Description             string            `json:"description,omitempty"`
	Nodes                   []Node            `json:"nodes"`
	Edges                   []Edge            `json:"edges"`
	Barricades              []string          `json:"barricades"`
	StartNodes              map[string]string `json:"startNodes"`
	ForbiddenBarricadeNodes []string          `json:"forbiddenBarricadeNodes"`
	GoalNode                string            `json:"goalNode"`
}

// Clone returns a deep copy of the definition so the caller can mutate it
// without affecting the cached original
func (d *Definition) Clone() *Definition {
	out := &Definition{
		Name:                    d.Name,
		Description:             d.Description,
		Nodes:                   make([]Node, len(d.Nodes)),
		Edges:                   make([]Edge, len(d.Edges)),
		Barricades:              make([]string, len(d.Barricades)),
		StartNodes:              make(map[string]string, len(d.StartNodes)),
		ForbiddenBarricadeNodes: make([]string, len(d.ForbiddenBarricadeNodes)),
		GoalNode:                d.GoalNode,
	}
	copy(out.Nodes, d.Nodes)
	copy(out.Edges, d.Edges)
	copy(out.Barricades, d.Barricades)
	copy(out.ForbiddenBarricadeNodes, d.ForbiddenBarricadeNodes)
	for color, id := range d.StartNodes {
		out.StartNodes[color] = id
	}
	return out
}
