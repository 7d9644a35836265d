// Package api provides HTTP REST API handlers for Color Rails.
//
// The api package implements:
//   - RESTful endpoints for game operations
//   - Session management endpoints
//   - Level listing and inspection
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (optional {"level_id": "..."})
//   - GET /api/sessions - List sessions (sort, order, limit query params)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/select - Select a train {"train_id": "..."}
//   - POST /api/sessions/{id}/click - Click a target point {"point_id": "..."}
//   - POST /api/sessions/{id}/advance - Run the clock {"ticks": N}
//   - GET /api/sessions/{id}/events - Paginated event log
//
// Levels:
//   - GET /api/levels - List available levels
//   - GET /api/levels/{name} - Get a level definition
//
// The click endpoint returns the full click outcome: whether the move was
// accepted, the path cost and the world-space trajectory for animation. A
// click issued while the selected train is still moving returns 409; advance
// the clock first.
//
// All endpoints accept and return JSON. Errors come back as:
//
//	{"error": "error message"}
//
// Every state-changing endpoint also broadcasts the fresh game state to
// WebSocket clients subscribed to the session via /ws?session={id}.
package api
