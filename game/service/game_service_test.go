package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/colorrails/colorrails/game/engine"
	"github.com/colorrails/colorrails/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, level *engine.LevelConfig) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	sim, err := engine.NewSimulation(level)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Sim:            sim,
		Level:          level,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, level *engine.LevelConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, level)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Count() int {
	return len(m.sessions)
}

// MockLevelManager implements service.LevelManager for testing
type MockLevelManager struct {
	levels map[string]*engine.LevelConfig
}

func NewMockLevelManager() *MockLevelManager {
	return &MockLevelManager{
		levels: map[string]*engine.LevelConfig{
			"default": engine.DefaultLevel(),
		},
	}
}

func (m *MockLevelManager) LoadLevel(name string) (*engine.LevelConfig, error) {
	level, exists := m.levels[name]
	if !exists {
		return nil, errors.New("level not found")
	}
	return level, nil
}

func (m *MockLevelManager) ListLevels() ([]*service.LevelInfo, error) {
	var infos []*service.LevelInfo
	for id, level := range m.levels {
		infos = append(infos, &service.LevelInfo{
			LevelID:     id,
			Name:        level.Name,
			Description: level.Description,
			GridWidth:   level.GridWidth,
			GridHeight:  level.GridHeight,
			Trains:      len(level.Trains),
		})
	}
	return infos, nil
}

func (m *MockLevelManager) GetDefault() *engine.LevelConfig {
	return m.levels["default"]
}

func newTestService() service.GameService {
	return service.NewGameService(NewMockSessionManager(), NewMockLevelManager())
}

func TestCreateSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	t.Run("with default level", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.ID == "" {
			t.Error("Expected a session ID")
		}
		if info.LevelID != "default" {
			t.Errorf("Expected level_id 'default', got '%s'", info.LevelID)
		}
		if info.GameState == nil || info.GameState.TotalWaiting != 2 {
			t.Errorf("Expected the default level's initial state, got %+v", info.GameState)
		}
	})

	t.Run("with named level", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "default")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.LevelID != "default" {
			t.Errorf("Expected level_id 'default', got '%s'", info.LevelID)
		}
	})

	t.Run("with unknown level", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "no-such-level")
		if err == nil {
			t.Error("Expected an error for an unknown level")
		}
	})
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Expected session '%s', got '%s'", created.ID, got.ID)
	}

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 session, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, created.ID); err == nil {
		t.Error("Expected an error for a deleted session")
	}
}

func TestSelectAndClick(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	state, err := svc.SelectTrain(ctx, info.ID, "train_red")
	if err != nil {
		t.Fatalf("SelectTrain failed: %v", err)
	}
	if state.SelectedTrain != "train_red" {
		t.Errorf("Expected train_red selected, got '%s'", state.SelectedTrain)
	}

	outcome, err := svc.ClickPoint(ctx, info.ID, "station_red")
	if err != nil {
		t.Fatalf("ClickPoint failed: %v", err)
	}
	if !outcome.Click.Accepted {
		t.Fatalf("Expected the click to be accepted: %s", outcome.Click.Reason)
	}
	if len(outcome.Events) != 1 || outcome.Events[0].Type != "move_started" {
		t.Errorf("Expected a move_started event, got %+v", outcome.Events)
	}

	t.Run("unknown train", func(t *testing.T) {
		if _, err := svc.SelectTrain(ctx, info.ID, "ghost"); !errors.Is(err, engine.ErrTrainNotFound) {
			t.Errorf("Expected ErrTrainNotFound, got %v", err)
		}
	})

	t.Run("click while moving", func(t *testing.T) {
		if _, err := svc.SelectTrain(ctx, info.ID, "train_red"); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.ClickPoint(ctx, info.ID, "depot_red"); !errors.Is(err, engine.ErrMoveInProgress) {
			t.Errorf("Expected ErrMoveInProgress, got %v", err)
		}
	})
}

func TestClickRejectedWithoutSelection(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := svc.ClickPoint(ctx, info.ID, "station_red")
	if err != nil {
		t.Fatalf("ClickPoint failed: %v", err)
	}
	if outcome.Click.Accepted {
		t.Error("Expected the click to be rejected with no selection")
	}
	if len(outcome.Events) != 1 || outcome.Events[0].Type != "click_rejected" {
		t.Errorf("Expected a click_rejected event, got %+v", outcome.Events)
	}
}

func TestAdvanceToVictory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	// Leg one: station pickup.
	if _, err := svc.SelectTrain(ctx, info.ID, "train_red"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ClickPoint(ctx, info.ID, "station_red"); err != nil {
		t.Fatal(err)
	}
	result, err := svc.Advance(ctx, info.ID, 100)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if result.TicksRun == 0 || result.TicksRun > 100 {
		t.Errorf("Unexpected tick count %d", result.TicksRun)
	}
	if len(result.Events) == 0 || result.Events[0].Type != engine.NotifyPickup {
		t.Fatalf("Expected a pickup event, got %+v", result.Events)
	}

	// Leg two: home to the depot.
	if _, err := svc.SelectTrain(ctx, info.ID, "train_red"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ClickPoint(ctx, info.ID, "depot_red"); err != nil {
		t.Fatal(err)
	}
	result, err = svc.Advance(ctx, info.ID, 100)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if !result.GameOver || !result.Victory {
		t.Errorf("Expected a won game, got over=%v victory=%v", result.GameOver, result.Victory)
	}

	// The event log recorded the whole playthrough in order.
	log, err := svc.GetEventLog(ctx, info.ID, service.EventLogOptions{Order: "asc", Limit: 100})
	if err != nil {
		t.Fatalf("GetEventLog failed: %v", err)
	}
	var types []string
	for _, ev := range log.Events {
		types = append(types, ev.Type)
		if ev.ID == "" {
			t.Error("Every event must carry an ID")
		}
	}
	want := []string{"select", "move_started", "pickup", "select", "move_started", "win"}
	if len(types) != len(want) {
		t.Fatalf("Expected events %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("Expected events %v, got %v", want, types)
		}
	}
}

func TestAdvanceClampsTickBudget(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	result, err := svc.Advance(ctx, info.ID, engine.MaxAdvanceTicks*10)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if !result.Truncated || result.Limit != engine.MaxAdvanceTicks {
		t.Errorf("Expected the tick budget to be clamped, got %+v", result)
	}
	// Nothing is moving, so the loop stops after a single tick.
	if result.TicksRun != 1 {
		t.Errorf("Expected 1 tick with no trains moving, got %d", result.TicksRun)
	}
}

func TestEventLogPagination(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	// Generate a handful of events.
	for i := 0; i < 5; i++ {
		if _, err := svc.SelectTrain(ctx, info.ID, "train_red"); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.GetEventLog(ctx, info.ID, service.EventLogOptions{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("GetEventLog failed: %v", err)
	}
	if page.TotalEvents != 5 {
		t.Errorf("Expected 5 total events, got %d", page.TotalEvents)
	}
	if len(page.Events) != 2 {
		t.Errorf("Expected 2 events on the page, got %d", len(page.Events))
	}
	if page.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", page.TotalPages)
	}
	if !page.HasNext || page.HasPrevious {
		t.Errorf("Unexpected pagination flags: %+v", page)
	}
}

func TestListLevels(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	levels, err := svc.ListLevels(ctx)
	if err != nil {
		t.Fatalf("ListLevels failed: %v", err)
	}
	if len(levels) != 1 || levels[0].LevelID != "default" {
		t.Errorf("Expected the default level, got %+v", levels)
	}
}
