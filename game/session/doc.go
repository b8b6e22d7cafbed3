// Package session tracks client identities across websocket connections.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - UUID session identifiers offered on connect and adopted on attach
//   - Last-connect-wins takeover when a session reconnects
//   - Stale-close suppression through per-binding sequence numbers
//   - Cleanup of offline sessions past their reconnect window
//
// Core Types:
//
// Manager is the registry of all known sessions. Session is one client
// identity: display name, current room, and the live connection if any.
// The Conn interface is the manager's only view of the transport, so the
// websocket layer can plug in without a dependency cycle.
//
// Reconnects:
//
// The server greets every new connection with a fresh session ID. A client
// that presents a previously issued ID on join resumes that session: the
// new connection is bound first and the superseded one is closed, and the
// old connection's eventual close notification is recognized by its stale
// sequence number and dropped. A presented ID the server has never seen is
// adopted as-is.
//
// Concurrency:
//
// The manager is safe for concurrent use. Connection takeover closes the
// replaced connection outside the registry lock because the transport's
// close path calls back into Detach.
package session
