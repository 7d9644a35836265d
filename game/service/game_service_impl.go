package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/colorrails/colorrails/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

// getLevelID returns the level_id for a given level display name, used for
// consistent API responses.
func (s *gameServiceImpl) getLevelID(levelName string) string {
	available, err := s.levels.ListLevels()
	if err == nil {
		for _, lvl := range available {
			if lvl.Name == levelName {
				return lvl.LevelID
			}
		}
	}
	if levelName == "" {
		return "default"
	}
	return levelName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var level *engine.LevelConfig
	var err error
	if levelName != "" {
		level, err = s.levels.LoadLevel(levelName)
		if err != nil {
			available, listErr := s.levels.ListLevels()
			if listErr == nil && len(available) > 0 {
				var levelIDs []string
				for _, lvl := range available {
					levelIDs = append(levelIDs, lvl.LevelID)
				}
				return nil, fmt.Errorf("level '%s' not found. Available levels: %v", levelName, levelIDs)
			}
			return nil, fmt.Errorf("failed to load level %s: %w", levelName, err)
		}
	} else {
		level = s.levels.GetDefault()
	}

	// Let the session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	levelID := levelName
	if levelID == "" {
		levelID = s.getLevelID(level.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		LevelID:        levelID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Sim.Snapshot(),
		Level:          session.Level,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		LevelID:        s.getLevelID(session.Level.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Sim.Snapshot(),
		Level:          session.Level,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			LevelID:        s.getLevelID(sess.Level.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Sim.Snapshot(),
			Level:          sess.Level,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// SelectTrain marks a train as the subject of the next click
func (s *gameServiceImpl) SelectTrain(ctx context.Context, sessionID, trainID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Sim.SelectTrain(trainID); err != nil {
		return nil, err
	}

	s.appendEvent(sess, GameEvent{
		Type:    "select",
		Message: fmt.Sprintf("Train %s selected", trainID),
		TrainID: trainID,
	})
	return sess.Sim.Snapshot(), nil
}

// ClickPoint confirms a move for the selected train toward the clicked point
func (s *gameServiceImpl) ClickPoint(ctx context.Context, sessionID, pointID string) (*ClickOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	click, err := sess.Sim.OnPointClicked(pointID)
	if err != nil {
		if errors.Is(err, engine.ErrMoveInProgress) {
			return nil, fmt.Errorf("train is still moving, advance the clock first: %w", err)
		}
		return nil, err
	}

	outcome := &ClickOutcome{
		Click:     click,
		GameState: sess.Sim.Snapshot(),
	}
	if click.Accepted {
		outcome.Events = append(outcome.Events, s.appendEvent(sess, GameEvent{
			Type:    "move_started",
			Message: fmt.Sprintf("Train %s is heading to %s", click.TrainID, click.TargetID),
			TrainID: click.TrainID,
			PointID: click.TargetID,
		}))
	} else {
		outcome.Events = append(outcome.Events, s.appendEvent(sess, GameEvent{
			Type:    "click_rejected",
			Message: click.Reason,
			PointID: pointID,
		}))
	}
	return outcome, nil
}

// Advance runs the simulation clock for up to ticks steps, stopping early on
// a terminal outcome or once every train is idle.
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, ticks int) (*AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &AdvanceResult{
		TicksRequested: ticks,
		Events:         make([]GameEvent, 0),
	}
	if ticks < 1 {
		ticks = 1
	}
	if ticks > engine.MaxAdvanceTicks {
		result.Truncated = true
		result.Limit = engine.MaxAdvanceTicks
		ticks = engine.MaxAdvanceTicks
	}

	for i := 0; i < ticks; i++ {
		if sess.Sim.Terminal() {
			break
		}
		notifications := sess.Sim.Tick()
		result.TicksRun++

		for _, n := range notifications {
			result.Events = append(result.Events, s.appendEvent(sess, GameEvent{
				Type:      n.Type,
				Message:   n.Message,
				TrainID:   n.TrainID,
				PointID:   n.PointID,
				Count:     n.Count,
				Reason:    n.Reason,
				BlockerID: n.BlockerID,
			}))
		}
		if !sess.Sim.AnyMoving() {
			break
		}
	}

	state := sess.Sim.Snapshot()
	result.GameState = state
	result.GameOver = state.GameOver
	result.Victory = state.Victory
	result.LoseReason = state.LoseReason
	result.Message = state.Message
	return result, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Sim.Snapshot(), nil
}

// GetEventLog returns a paginated view of the session's event log
func (s *gameServiceImpl) GetEventLog(ctx context.Context, sessionID string, opts EventLogOptions) (*EventLogResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	log := sess.Events
	total := len(log)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var events []GameEvent
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			events = append(events, log[i])
		}
	} else {
		if start < total {
			events = log[start:end]
		}
	}
	if events == nil {
		events = []GameEvent{}
	}

	return &EventLogResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListLevels returns available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// LoadLevel loads a specific level definition
func (s *gameServiceImpl) LoadLevel(ctx context.Context, levelName string) (*engine.LevelConfig, error) {
	return s.levels.LoadLevel(levelName)
}

// appendEvent stamps an event and appends it to the session's log
func (s *gameServiceImpl) appendEvent(sess *Session, event GameEvent) GameEvent {
	event.ID = uuid.New().String()
	event.Timestamp = time.Now()
	event.Tick = sess.Sim.CurrentTick()
	sess.Events = append(sess.Events, event)
	return event
}
