// Package websocket is the network transport for the Barricade server.
//
// The websocket package implements:
//   - Connection upgrade and lifecycle management
//   - Room-addressed broadcasting of STATE snapshots
//   - Per-connection outbound queues with slow-peer eviction
//   - Per-connection inbound rate limiting
//   - Ping/pong keepalive with read deadlines
//
// Architecture:
//
// The package uses a hub-and-spoke model. The Hub tracks every live
// connection and fans room broadcasts out to the connections whose bound
// room matches. Each connection runs a read pump and a write pump on their
// own goroutines; all game logic happens in the dispatcher, which the read
// pump calls with each decoded-ready message.
//
// Message Protocol:
//
// Frames carry the JSON messages defined in transport/protocol. The write
// pump may batch several queued messages into one text frame separated by
// newlines, so clients split frames on '\n'.
//
// Connection Lifecycle:
//
// 1. Client connects and is greeted with HELLO carrying an offered session ID
// 2. HOST_ROOM or JOIN_ROOM binds the connection to a session and a room
// 3. Gameplay messages flow through the dispatcher; every accepted change
// comes back as a room-wide STATE broadcast
// 4. Disconnection detaches the session binding; a stale close left over
// from a reconnect takeover is recognized and ignored
//
// Concurrency:
//
// The hub loop owns the client set. Disconnect handling runs on the
// connection's read goroutine so that dispatcher work triggered by a close,
// including broadcasts, never re-enters the hub loop. Peers that stop
// draining their queue are dropped rather than allowed to stall a room.
package websocket
