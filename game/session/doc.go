// Package session provides game session lifecycle management for Color Rails.
//
// The session package handles:
//   - Session creation with auto-generated 4-character IDs
//   - Case-insensitive session lookup
//   - Session expiration and cleanup
//   - Thread-safe concurrent access
//
// Sessions live in memory only. There is no save-state: restarting the
// process discards every playthrough, which matches the game's
// short-session design.
//
// Session IDs:
//
// Auto-generated session IDs are 4 hexadecimal characters (e.g. "a3f2"),
// drawn from crypto/rand. IDs are matched case-insensitively so clients can
// be sloppy about casing.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a session on a level
//	sess, err := manager.Create("", level)
//
//	// Look it up later
//	sess, err = manager.Get(sess.ID)
//
//	// Periodic cleanup of idle sessions
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
