// Package protocol defines the JSON messages exchanged over the websocket.
//
// Every message is a JSON object tagged by a "t" field. Clients send
// intents (HOST_ROOM, JOIN_ROOM, CLAIM_COLOR, START_GAME, RESET_ROOM,
// BOARD_SET, REQUEST_ROLL, MOVE, PLACE_BARRICADE); the server answers with
// HELLO on connect, ROOM_CODE after hosting, ERR to the offending sender,
// and STATE broadcasts carrying the complete room snapshot after every
// accepted change. There are no incremental updates: a client that missed
// messages is fully caught up by the next STATE.
//
// Decode turns raw client bytes into typed intent structs and reports
// malformed or unknown messages as rule errors, which flow back to the
// client through the same ERR shape as game-rule rejections.
package protocol
