// Package service is the dispatch layer between the websocket transport and
// the rooms.
//
// The service package implements:
//   - Intent dispatch for every client message type
//   - Session attach on host/join, with reconnect resumption
//   - Snapshot broadcast to the room after every accepted change
//   - Per-sender ERR replies carrying stable rule codes
//   - Event recording through a write-behind sink
//
// Core Interfaces:
//
// ClientConn is the service's view of one connection; the websocket layer
// implements it. Broadcaster fans snapshots out to a room. EventSink
// receives committed events, and BoardCatalog supplies board definitions
// for the read-only HTTP queries.
//
// Architecture:
//
// The service holds no game state of its own. Rooms own their state behind
// a mutex, the session manager owns identities, and the service wires
// messages from a connection to the right room, then hands the room's
// fresh snapshot to the hub. Any rejection flows back only to the sender;
// everyone in the room sees either a new STATE or nothing.
package service
