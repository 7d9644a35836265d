package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/colorrails/colorrails/game/engine"
	"github.com/colorrails/colorrails/game/service"
	"github.com/colorrails/colorrails/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc func(ctx context.Context, levelName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	SelectTrainFunc func(ctx context.Context, sessionID, trainID string) (*engine.GameState, error)
	ClickPointFunc  func(ctx context.Context, sessionID, pointID string) (*service.ClickOutcome, error)
	AdvanceFunc     func(ctx context.Context, sessionID string, ticks int) (*service.AdvanceResult, error)

	GetGameStateFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetEventLogFunc  func(ctx context.Context, sessionID string, opts service.EventLogOptions) (*service.EventLogResponse, error)

	ListLevelsFunc func(ctx context.Context) ([]*service.LevelInfo, error)
	LoadLevelFunc  func(ctx context.Context, levelName string) (*engine.LevelConfig, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, levelName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, levelName)
	}
	return &service.SessionInfo{ID: "test-session", LevelID: levelName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, LevelID: "default", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) SelectTrain(ctx context.Context, sessionID, trainID string) (*engine.GameState, error) {
	if m.SelectTrainFunc != nil {
		return m.SelectTrainFunc(ctx, sessionID, trainID)
	}
	return &engine.GameState{SelectedTrain: trainID}, nil
}

func (m *MockGameService) ClickPoint(ctx context.Context, sessionID, pointID string) (*service.ClickOutcome, error) {
	if m.ClickPointFunc != nil {
		return m.ClickPointFunc(ctx, sessionID, pointID)
	}
	return &service.ClickOutcome{
		Click:     &engine.ClickResult{Accepted: true, TargetID: pointID},
		GameState: &engine.GameState{},
	}, nil
}

func (m *MockGameService) Advance(ctx context.Context, sessionID string, ticks int) (*service.AdvanceResult, error) {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, sessionID, ticks)
	}
	return &service.AdvanceResult{TicksRequested: ticks, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetEventLog(ctx context.Context, sessionID string, opts service.EventLogOptions) (*service.EventLogResponse, error) {
	if m.GetEventLogFunc != nil {
		return m.GetEventLogFunc(ctx, sessionID, opts)
	}
	return &service.EventLogResponse{
		Events:     []service.GameEvent{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ListLevels(ctx context.Context) ([]*service.LevelInfo, error) {
	if m.ListLevelsFunc != nil {
		return m.ListLevelsFunc(ctx)
	}
	return []*service.LevelInfo{}, nil
}

func (m *MockGameService) LoadLevel(ctx context.Context, levelName string) (*engine.LevelConfig, error) {
	if m.LoadLevelFunc != nil {
		return m.LoadLevelFunc(ctx, levelName)
	}
	return &engine.LevelConfig{Name: levelName}, nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestCreateSessionEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default level",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, levelName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "a3f2", LevelID: "default", CreatedAt: time.Now()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "a3f2" {
					t.Errorf("Expected session ID a3f2, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with named level",
			requestBody: map[string]string{"level_id": "branch_line"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, levelName string) (*service.SessionInfo, error) {
					if levelName != "branch_line" {
						t.Errorf("Expected level 'branch_line', got %s", levelName)
					}
					return &service.SessionInfo{ID: "b001", LevelID: levelName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.LevelID != "branch_line" {
					t.Errorf("Expected level 'branch_line', got %s", resp.LevelID)
				}
			},
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, levelName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessionsEndpoint(t *testing.T) {
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "s1", LevelID: "default", LastAccessedAt: time.Now().Add(-time.Hour)},
				{ID: "s2", LevelID: "default", LastAccessedAt: time.Now()},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	parseResponse(t, w, &resp)
	if resp["count"].(float64) != 2 {
		t.Errorf("Expected count 2, got %v", resp["count"])
	}
	// Default sort: most recently accessed first.
	sessions := resp["sessions"].([]interface{})
	first := sessions[0].(map[string]interface{})
	if first["id"] != "s2" {
		t.Errorf("Expected s2 first in accessed-desc order, got %v", first["id"])
	}
}

func TestSelectTrainEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := setupTestServer(&MockGameService{})
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a3f2/select", map[string]string{"train_id": "train_red"}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp engine.GameState
		parseResponse(t, w, &resp)
		if resp.SelectedTrain != "train_red" {
			t.Errorf("Expected train_red selected, got %s", resp.SelectedTrain)
		}
	})

	t.Run("missing train_id", func(t *testing.T) {
		server := setupTestServer(&MockGameService{})
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a3f2/select", map[string]string{}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestClickPointEndpoint(t *testing.T) {
	t.Run("accepted click", func(t *testing.T) {
		server := setupTestServer(&MockGameService{})
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a3f2/click", map[string]string{"point_id": "station_red"}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp service.ClickOutcome
		parseResponse(t, w, &resp)
		if !resp.Click.Accepted || resp.Click.TargetID != "station_red" {
			t.Errorf("Unexpected click outcome: %+v", resp.Click)
		}
	})

	t.Run("move in progress maps to conflict", func(t *testing.T) {
		mockService := &MockGameService{
			ClickPointFunc: func(ctx context.Context, sessionID, pointID string) (*service.ClickOutcome, error) {
				return nil, engine.ErrMoveInProgress
			},
		}
		server := setupTestServer(mockService)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a3f2/click", map[string]string{"point_id": "depot_red"}))

		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", w.Code)
		}
	})

	t.Run("missing point_id", func(t *testing.T) {
		server := setupTestServer(&MockGameService{})
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a3f2/click", map[string]string{}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestAdvanceEndpoint(t *testing.T) {
	mockService := &MockGameService{
		AdvanceFunc: func(ctx context.Context, sessionID string, ticks int) (*service.AdvanceResult, error) {
			if ticks != 25 {
				t.Errorf("Expected 25 ticks, got %d", ticks)
			}
			return &service.AdvanceResult{
				TicksRequested: ticks,
				TicksRun:       12,
				GameState:      &engine.GameState{},
				Events: []service.GameEvent{
					{Type: "pickup", Count: 2},
				},
			}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/a3f2/advance", map[string]int{"ticks": 25}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.AdvanceResult
	parseResponse(t, w, &resp)
	if resp.TicksRun != 12 || len(resp.Events) != 1 {
		t.Errorf("Unexpected advance result: %+v", resp)
	}
}

func TestGetEventsEndpoint(t *testing.T) {
	mockService := &MockGameService{
		GetEventLogFunc: func(ctx context.Context, sessionID string, opts service.EventLogOptions) (*service.EventLogResponse, error) {
			if opts.Page != 2 || opts.Limit != 5 || opts.Order != "asc" {
				t.Errorf("Unexpected pagination options: %+v", opts)
			}
			return &service.EventLogResponse{Events: []service.GameEvent{}, Page: opts.Page}, nil
		},
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/a3f2/events?page=2&limit=5&order=asc", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestLevelEndpoints(t *testing.T) {
	mockService := &MockGameService{
		ListLevelsFunc: func(ctx context.Context) ([]*service.LevelInfo, error) {
			return []*service.LevelInfo{{LevelID: "default", Name: "First Departure"}}, nil
		},
	}

	server := setupTestServer(mockService)

	t.Run("list levels", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/levels", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp []*service.LevelInfo
		parseResponse(t, w, &resp)
		if len(resp) != 1 || resp[0].LevelID != "default" {
			t.Errorf("Unexpected level list: %+v", resp)
		}
	})

	t.Run("get level", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/levels/branch_line", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp engine.LevelConfig
		parseResponse(t, w, &resp)
		if resp.Name != "branch_line" {
			t.Errorf("Expected level 'branch_line', got %s", resp.Name)
		}
	})
}

func TestDeleteSessionEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := setupTestServer(&MockGameService{})
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/a3f2", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		mockService := &MockGameService{
			DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
				return fmt.Errorf("session not found")
			},
		}
		server := setupTestServer(mockService)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/zzzz", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(&MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %s", resp["status"])
	}
}
