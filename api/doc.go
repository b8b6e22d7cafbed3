// Package api provides the HTTP surface of the Barricade session server.
//
// All gameplay flows over the websocket protocol; the REST endpoints are
// read-only observers plus a health probe:
//
//   - GET /health - liveness probe
//   - GET /ws - websocket upgrade
//   - GET /api/rooms - summary of every live room
//   - GET /api/rooms/{code} - full snapshot of one room
//   - GET /api/boards - list of loadable board definitions
//   - GET /api/boards/{name} - one board definition
//
// All endpoints return JSON. Errors carry an appropriate status code and a
// body of the form:
//
//	{
//	  "error": "error message"
//	}
package api
