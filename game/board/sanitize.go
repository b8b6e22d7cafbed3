package board

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBoard      = errors.New("board definition has no nodes")
	ErrBadGoal         = errors.New("goal node missing or not a board node")
	ErrBadStartNode    = errors.New("start node missing or not a board node")
	ErrBarricadeOnNode = errors.New("barricade on an illegal node")
)

// Sanitize normalizes a board definition in place: it drops nodes with empty
// or oversized IDs, collapses duplicate nodes and edges, removes edges whose
// endpoints are missing or identical, and filters barricade/forbidden lists
// down to known nodes. It then verifies the structural invariants that the
// rest of the system relies on. Host-supplied BOARD_SET payloads go through
// here before a graph is rebuilt.
func Sanitize(def *Definition) error {
	if len(def.Nodes) == 0 {
		return ErrEmptyBoard
	}

	// Collapse duplicate nodes, first occurrence wins.
	seen := make(map[string]bool, len(def.Nodes))
	nodes := def.Nodes[:0]
	for _, n := range def.Nodes {
		if n.ID == "" || len(n.ID) > MaxNodeIDLen || seen[n.ID] {
			continue
		}
		if n.Kind != KindBoard && n.Kind != KindHouse {
			n.Kind = KindBoard
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
	}
	def.Nodes = nodes
	if len(def.Nodes) < MinNodes {
		return ErrEmptyBoard
	}

	// Edges must connect two distinct existing nodes; duplicates collapse
	// regardless of endpoint order.
	edgeSeen := make(map[Edge]bool, len(def.Edges))
	edges := def.Edges[:0]
	for _, e := range def.Edges {
		a, b := e[0], e[1]
		if a == b || !seen[a] || !seen[b] {
			continue
		}
		if a > b {
			a, b = b, a
		}
		key := Edge{a, b}
		if edgeSeen[key] {
			continue
		}
		edgeSeen[key] = true
		edges = append(edges, key)
	}
	def.Edges = edges

	byID := make(map[string]*Node, len(def.Nodes))
	for i := range def.Nodes {
		byID[def.Nodes[i].ID] = &def.Nodes[i]
	}

	if def.GoalNode == "" {
		return ErrNoGoalNode
	}
	if n, ok := byID[def.GoalNode]; !ok || n.Kind != KindBoard {
		return fmt.Errorf("%w: %q", ErrBadGoal, def.GoalNode)
	}

	for color, id := range def.StartNodes {
		n, ok := byID[id]
		if !ok || n.Kind != KindBoard {
			return fmt.Errorf("%w: color %s -> %q", ErrBadStartNode, color, id)
		}
	}

	forbidden := make(map[string]bool, len(def.ForbiddenBarricadeNodes))
	kept := def.ForbiddenBarricadeNodes[:0]
	for _, id := range def.ForbiddenBarricadeNodes {
		if !seen[id] || forbidden[id] {
			continue
		}
		forbidden[id] = true
		kept = append(kept, id)
	}
	def.ForbiddenBarricadeNodes = kept

	starts := make(map[string]bool, len(def.StartNodes))
	for _, id := range def.StartNodes {
		starts[id] = true
	}

	// A node in the barricade set must be a plain board node. Anything else
	// indicates a corrupt or adversarial definition.
	barrSeen := make(map[string]bool, len(def.Barricades))
	barricades := def.Barricades[:0]
	for _, id := range def.Barricades {
		if barrSeen[id] {
			continue
		}
		n, ok := byID[id]
		if !ok {
			continue
		}
		if n.Kind != KindBoard || n.Flags.Goal || n.Flags.NoBarricade ||
			n.Flags.StartColor != "" || forbidden[id] || starts[id] {
			return fmt.Errorf("%w: %q", ErrBarricadeOnNode, id)
		}
		barrSeen[id] = true
		barricades = append(barricades, id)
	}
	def.Barricades = barricades

	return nil
}
