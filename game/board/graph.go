package board

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrNoGoalNode   = errors.New("board has no goal node")
)

// Graph is the immutable adjacency view over a sanitized board definition.
// It is built once per room (and rebuilt on a host board edit in the lobby)
// and only ever read during a game.
type Graph struct {
	def       *Definition
	nodes     map[string]*Node
	adj       map[string]map[string]bool
	starts    map[string]string
	forbidden map[string]bool
	goal      string
}

// NewGraph sanitizes the definition and builds the adjacency index.
// The definition is cloned first; the caller's copy is never mutated.
func NewGraph(def *Definition) (*Graph, error) {
	def = def.Clone()
	if err := Sanitize(def); err != nil {
		return nil, err
	}

	g := &Graph{
		def:       def,
		nodes:     make(map[string]*Node, len(def.Nodes)),
		adj:       make(map[string]map[string]bool, len(def.Nodes)),
		starts:    make(map[string]string, len(def.StartNodes)),
		forbidden: make(map[string]bool, len(def.ForbiddenBarricadeNodes)),
		goal:      def.GoalNode,
	}

	for i := range def.Nodes {
		n := &def.Nodes[i]
		g.nodes[n.ID] = n
		g.adj[n.ID] = make(map[string]bool)
	}
	for _, e := range def.Edges {
		g.adj[e[0]][e[1]] = true
		g.adj[e[1]][e[0]] = true
	}
	for color, id := range def.StartNodes {
		g.starts[color] = id
	}
	for _, id := range def.ForbiddenBarricadeNodes {
		g.forbidden[id] = true
	}

	return g, nil
}

// Definition returns the sanitized definition backing this graph
func (g *Graph) Definition() *Definition {
	return g.def
}

// Node returns the node with the given ID
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Neighbors returns the IDs adjacent to the given node, sorted for
// deterministic iteration
func (g *Graph) Neighbors(id string) []string {
	set, ok := g.adj[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for nid := range set {
		out = append(out, nid)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of edges incident to the node
func (g *Graph) Degree(id string) int {
	return len(g.adj[id])
}

// Classify returns the kind and flags of a node
func (g *Graph) Classify(id string) (NodeKind, Flags, error) {
	n, ok := g.nodes[id]
	if !ok {
		return "", Flags{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n.Kind, n.Flags, nil
}

// IsLegalBarricadeTarget reports whether a barricade may structurally sit on
// the node: it must be a BOARD node that is not the goal, not a start node,
// not flagged noBarricade, and not in the forbidden set. Occupancy by pieces
// or an existing barricade is game state and is checked by the engine.
func (g *Graph) IsLegalBarricadeTarget(id string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	if n.Kind != KindBoard {
		return false
	}
	if n.Flags.Goal || n.Flags.NoBarricade || n.Flags.StartColor != "" {
		return false
	}
	if g.forbidden[id] {
		return false
	}
	return true
}

// StartNode returns the board entry node for a color
func (g *Graph) StartNode(color string) (string, bool) {
	id, ok := g.starts[color]
	return id, ok
}

// GoalNode returns the terminal node ID
func (g *Graph) GoalNode() string {
	return g.goal
}

// HouseNodes returns the house node IDs for a color, ordered by slot
func (g *Graph) HouseNodes(color string) []string {
	type slotted struct {
		id   string
		slot int
	}
	var houses []slotted
	for _, n := range g.def.Nodes {
		if n.Kind == KindHouse && n.Flags.HouseColor == color {
			houses = append(houses, slotted{n.ID, n.Flags.HouseSlot})
		}
	}
	sort.Slice(houses, func(i, j int) bool { return houses[i].slot < houses[j].slot })
	out := make([]string, len(houses))
	for i, h := range houses {
		out[i] = h.id
	}
	return out
}

// RunNodes returns the IDs of board nodes flagged as default barricade
// locations, sorted for determinism
func (g *Graph) RunNodes() []string {
	var out []string
	for _, n := range g.def.Nodes {
		if n.Kind == KindBoard && n.Flags.Run {
			out = append(out, n.ID)
		}
	}
	sort.Strings(out)
	return out
}

// BoardNodesByDegree returns board node IDs sorted by descending degree,
// ties broken by ID. Used as the seeding fallback when too few run nodes
// exist.
func (g *Graph) BoardNodesByDegree() []string {
	var out []string
	for _, n := range g.def.Nodes {
		if n.Kind == KindBoard {
			out = append(out, n.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := g.Degree(out[i]), g.Degree(out[j])
		if di != dj {
			return di > dj
		}
		return out[i] < out[j]
	})
	return out
}
