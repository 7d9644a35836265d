// Package service defines the game service layer for Color Rails.
//
// The service package sits between the transports (REST, WebSocket, MCP) and
// the simulation core. It owns:
//   - Session-scoped game operations (select, click, advance)
//   - The per-session event log with unique event IDs
//   - Level listing and loading through the LevelManager interface
//   - Serialisable result types shared by every transport
//
// Interfaces:
//
//   - GameService: the full operation surface the transports call
//   - SessionManager: session storage, implemented by game/session
//   - LevelManager: level loading, implemented by game/config
//
// The concrete implementation guards every operation with a service-level
// mutex, so one session is never mutated by two transports at once.
//
// Usage:
//
//	sessions := session.NewManager()
//	levels, _ := config.NewManager("levels")
//	svc := service.NewGameService(sessions, levels)
//
//	info, _ := svc.CreateSession(ctx, "")
//	svc.SelectTrain(ctx, info.ID, "train_red")
//	svc.ClickPoint(ctx, info.ID, "station_red")
//	svc.Advance(ctx, info.ID, 50)
package service
