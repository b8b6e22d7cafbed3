package engine

import (
	"sort"

	"barikade/game/board"
)

// Destinations returns every node reachable from `from` in exactly `steps`
// hops, sorted by ID. This is the authority on legal moves: forks and
// back-and-forth paths are implicit in the set, so a client never has to
// describe its route, only the endpoint.
//
// Traversal rules:
//   - only board-kind nodes are traversable; house nodes never appear
//   - a node occupied by any piece is impassable, which also blocks
//     finishing there
//   - a barricaded node is impassable mid-path but may be the final hop,
//     which is how barricades get picked up
func (e *Engine) Destinations(from string, steps int) []string {
	if steps <= 0 {
		return nil
	}
	if _, ok := e.board.Node(from); !ok {
		return nil
	}

	frontier := map[string]bool{from: true}
	for i := 1; i <= steps; i++ {
		next := make(map[string]bool)
		last := i == steps
		for node := range frontier {
			for _, nb := range e.board.Neighbors(node) {
				n, ok := e.board.Node(nb)
				if !ok || n.Kind != board.KindBoard {
					continue
				}
				if e.occupiedBy(nb) != "" {
					continue
				}
				if e.state.Barricades[nb] && !last {
					continue
				}
				next[nb] = true
			}
		}
		frontier = next
		if len(frontier) == 0 {
			return nil
		}
	}

	dests := make([]string, 0, len(frontier))
	for id := range frontier {
		dests = append(dests, id)
	}
	sort.Strings(dests)
	return dests
}
