// Package mcp provides a Model Context Protocol interface for Color Rails.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for game operations
//   - Session-aware command execution
//   - Thin proxying to the REST API
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - game_state: Get current simulation state with track map
//   - select_train: Select a train before routing it
//   - click_point: Route the selected train to a network point
//   - advance: Run the simulation clock forward
//   - event_log: Retrieve game events with pagination
//   - create_session: Create new game session with level selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_levels: List available levels
//   - describe_point: Inspect one network point in detail
//   - game_instructions: Get comprehensive game instructions and rules
//
// Architecture:
//
// The client does not embed the game engine. Every tool call is translated
// into a REST call against the running API server, so the MCP process and the
// web server share session state without any coordination beyond HTTP.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Autonomously play the game
//   - Develop and test routing strategies
//   - Analyze queue order and plan color-correct pickups
//   - Manage multiple game sessions
//   - Learn from the event log
package mcp
