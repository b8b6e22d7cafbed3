// Package room manages game rooms: rosters, color claims, the host seat,
// and the engine behind each room.
//
// The room package implements:
//   - Room lifecycle from creation through idle cleanup
//   - Seat management keyed by session ID, surviving disconnects
//   - Color claims with a reconnect reservation window
//   - Host-gated operations (start, reset, board changes)
//   - Full-state snapshots for broadcast after every change
//
// Core Types:
//
// Registry holds every live room under its shareable code; joining an
// unknown code creates the room on the spot. Room serializes all access to
// its engine behind one mutex, so gameplay messages for a room apply in
// arrival order no matter which connection they came from.
//
// Reconnects:
//
// Disconnecting never frees a seat immediately. The seat and its color are
// reserved for ClaimTTL; a session that rejoins within the window resumes
// exactly where it left off, and the snapshot marks the game paused while
// a seated color is offline. Only after the window lapses can another
// player take the color, and lapsed seats are pruned on the cleanup sweep.
// The host seat is retained across disconnects and passes to the
// longest-seated player only if the host's seat is pruned.
package room
