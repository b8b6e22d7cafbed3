// Package board models the Barikade board as a node/edge graph.
//
// The board package implements:
//   - The JSON Definition schema shared by board files and BOARD_SET edits
//   - Sanitization of host-supplied definitions
//   - An immutable adjacency Graph with classification queries
//   - Structural barricade-target legality
//
// Core Types:
//
// Definition mirrors the on-disk JSON: a node list (board and house nodes
// with per-node flags), an undirected edge list, the initial barricade set,
// per-color start nodes, the forbidden-barricade list, and the goal node.
//
// Graph is built from a sanitized Definition and answers adjacency and
// classification queries. It is effectively immutable: during a game nothing
// mutates it, and a lobby-time board edit replaces the whole graph.
//
// Invariants:
//
// Neighbors is symmetric by construction (edges are stored unordered).
// Barricades can only reference plain board nodes that are not the goal, a
// start node, flagged noBarricade, or listed as forbidden. Edges always
// connect two distinct existing nodes and duplicates collapse.
package board
