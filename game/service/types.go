package service

import (
	"time"

	"github.com/colorrails/colorrails/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	LevelID        string              `json:"level_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	Level          *engine.LevelConfig `json:"level"`
}

// ClickOutcome contains the result of a click operation
type ClickOutcome struct {
	Click     *engine.ClickResult `json:"click"`
	GameState *engine.GameState   `json:"game_state"`
	Events    []GameEvent         `json:"events,omitempty"`
}

// AdvanceResult contains the result of advancing the simulation clock
type AdvanceResult struct {
	TicksRequested int               `json:"ticks_requested"`
	TicksRun       int               `json:"ticks_run"`
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	Events         []GameEvent       `json:"events"`
	GameState      *engine.GameState `json:"game_state"`
	GameOver       bool              `json:"game_over"`
	Victory        bool              `json:"victory"`
	LoseReason     string            `json:"lose_reason,omitempty"`
	Message        string            `json:"message,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "select", "move_started", "pickup", "win", "lose", "click_rejected"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Tick      int64     `json:"tick"`
	TrainID   string    `json:"train_id,omitempty"`
	PointID   string    `json:"point_id,omitempty"`
	Count     int       `json:"count,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	BlockerID string    `json:"blocker_id,omitempty"`
}

// EventLogOptions configures event log retrieval
type EventLogOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// EventLogResponse contains a paginated slice of the session's event log
type EventLogResponse struct {
	Events      []GameEvent `json:"events"`
	TotalEvents int         `json:"total_events"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

// LevelInfo provides information about an available level
type LevelInfo struct {
	Filename    string `json:"filename,omitempty"`
	LevelID     string `json:"level_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	GridWidth   int    `json:"grid_width"`
	GridHeight  int    `json:"grid_height"`
	Trains      int    `json:"trains"`
	Waiting     int    `json:"waiting"`
}
