// Package config provides board definition management for the Barricade
// server.
//
// The config package handles:
//   - Loading board definitions from JSON files
//   - Structural validation before a board is handed to a room
//   - Default board selection with a built-in fallback
//   - Board discovery and listing
//
// Board Format:
//
// Boards are stored as JSON files in the boards directory. Each definition
// carries the node list (board and house nodes with their flags), the
// undirected edge list, per-color start nodes, the goal node, the forbidden
// barricade locations, and optionally a fixed starting barricade set.
//
// Usage:
//
//	manager, err := config.NewManager("boards")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific board
//	def, err := manager.LoadBoard("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get the default board
//	def = manager.GetDefault()
//
//	// List available boards
//	boards, err := manager.ListBoards()
//
// Validation:
//
// Every board is run through board.NewGraph before it is cached, which
// sanitizes duplicate nodes and edges and rejects boards with no playable
// nodes, a missing goal, or start nodes that are not plain board nodes.
package config
