// Package websocket provides WebSocket transport for Color Rails.
//
// The websocket package implements:
//   - Real-time push of game state to connected clients
//   - Session-aware WebSocket connections
//   - Automatic state broadcasting after every select, click, or advance
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by dedicated
// read and write goroutines that manage pumping, ping/pong, and cleanup.
//
// Message Protocol:
//
// Outgoing messages are JSON-encoded:
//   - state_update: {session_id, event: "state_update", game_state, events}
//   - train_move: {session_id, event: "train_move", move} where move holds
//     the train, its target and the world-space trajectory of an accepted
//     click, pushed before the state update so viewers animate the run
//   - custom events from BroadcastEvent carry an arbitrary data payload
//
// The events slice carries the notifications (pickup, win, lose, click
// rejection) produced by the operation that triggered the broadcast, so a
// client can animate them without diffing snapshots.
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?session=ab3f) when establishing the connection.
// State updates are broadcast only to clients connected to the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive broadcasts
// simultaneously without blocking each other.
package websocket
