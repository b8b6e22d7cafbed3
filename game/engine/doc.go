// Package engine implements the rules of Barricade on an arbitrary board
// graph.
//
// The engine package is pure game logic: it knows nothing about rooms,
// players, or transports. It implements:
//   - The turn state machine (roll, move, barricade placement)
//   - Exact-step destination computation over the board graph
//   - Barricade pickup and re-placement
//   - Bonus turns on the maximum die face and win detection
//
// Core Types:
//
// Engine drives one game and owns its State. State is the complete,
// JSON-serializable game position: piece locations per color, the barricade
// set, the turn, and the winner. Every mutating Engine method validates
// fully before touching state and reports rejections as *RuleError values
// with stable machine-readable codes.
//
// Usage:
//
//	g, err := board.NewGraph(def)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng := engine.NewEngine(g)
//	if err := eng.Start([]engine.Color{engine.Blue, engine.Red}); err != nil {
//		log.Fatal(err)
//	}
//
//	roll, _ := eng.Roll(engine.Blue)
//	_, err = eng.Move(engine.Blue, 0, targetNode)
//
// Game Rules:
//
// Each color moves pieces from its house onto the board at its start node
// and races them toward the goal. A roll must be spent in full on exactly
// that many hops; occupied nodes block movement entirely, and barricaded
// nodes block it except as a landing spot, which picks the barricade up for
// immediate re-placement anywhere legal. Rolling the maximum face grants
// another turn. The first piece to land on the goal wins.
package engine
