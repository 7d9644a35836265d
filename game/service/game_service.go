package service

import (
	"context"
	"time"

	"github.com/colorrails/colorrails/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SelectTrain(ctx context.Context, sessionID, trainID string) (*engine.GameState, error)
	ClickPoint(ctx context.Context, sessionID, pointID string) (*ClickOutcome, error)
	Advance(ctx context.Context, sessionID string, ticks int) (*AdvanceResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetEventLog(ctx context.Context, sessionID string, opts EventLogOptions) (*EventLogResponse, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, levelName string) (*engine.LevelConfig, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, level *engine.LevelConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, level *engine.LevelConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Count() int
}

// LevelManager handles level loading
type LevelManager interface {
	LoadLevel(name string) (*engine.LevelConfig, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *engine.LevelConfig
}

// Session represents an active game session. Sessions live in memory only and
// vanish on process exit.
type Session struct {
	ID             string
	Sim            *engine.Simulation
	Level          *engine.LevelConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Events         []GameEvent
}
