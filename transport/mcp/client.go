package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/colorrails/colorrails/game/engine"
	"github.com/colorrails/colorrails/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Color Rails",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Color Rails - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Route color-coded trains along the rail network to pick up waiting passengers
at stations and deliver them to the matching depot. Deliver everyone to win.

AVAILABLE TOOLS:
- game_state: Get current simulation state with track map
- select_train: Select a train before routing it - requires intent explanation
- click_point: Send the selected train to a clicked point - requires intent explanation
- advance: Advance the simulation clock so moving trains progress
- event_log: View past game events with pagination
- create_session: Create new game session
- get_session: Get session details
- list_sessions: List all active sessions
- list_levels: List available levels
- describe_point: Get detailed info about a specific network point
- game_instructions: Get comprehensive game instructions and rules

NOTE: The 'intent' parameter on select_train/click_point tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Name of the level to load (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_train",
		Description: "Select a train. A train must be selected before click_point can route it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"train_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the train to select",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this selection (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "train_id"},
		},
	}, c.handleSelectTrain)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "click_point",
		Description: "Click a network point to route the selected train there. The click is rejected when no train is selected, no path exists, or the train is still moving.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"point_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the point to send the selected train to",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "point_id"},
		},
	}, c.handleClickPoint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: "Advance the simulation clock by a number of ticks so moving trains progress along their trajectories. Stops early when all trains are idle or the game ends.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": "Number of ticks to run (default 1, capped by the server)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_log",
		Description: "Get the event log for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEventLog)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_point",
		Description: "Get detailed information about a specific network point, including its kind (track, station, depot), color, and waiting passengers. Useful for planning routes.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"point_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the point to describe",
				},
			},
			Required: []string{"session_id", "point_id"},
		},
	}, c.handleDescribePoint)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	level, _ := args["level"].(string)

	body := map[string]string{}
	if level != "" {
		body["level_id"] = level
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n", session.ID, session.LevelID)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Level: %s, Created: %s)\n",
			s.ID, s.LevelID, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSelectTrain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	trainID, _ := args["train_id"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"train_id": trainID,
	}

	var state engine.GameState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/select", sessionID), body, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Selected train: %s\n\n%s", state.SelectedTrain, formatGameState(&state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleClickPoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	pointID, _ := args["point_id"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"point_id": pointID,
	}

	var outcome service.ClickOutcome
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/click", sessionID), body, &outcome)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatClickOutcome(&outcome)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	ticks := 1
	if t, ok := args["ticks"].(float64); ok {
		ticks = int(t)
	}

	body := map[string]interface{}{
		"ticks": ticks,
	}

	var result service.AdvanceResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/advance", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatAdvanceResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleEventLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var log service.EventLogResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/events%s", sessionID, params), nil, &log)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatEventLog(&log)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []*service.LevelInfo
	err := c.apiCall("GET", "/api/levels", nil, &levels)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Levels:\n\n"
	for _, level := range levels {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Grid: %dx%d, Trains: %d, Waiting passengers: %d\n\n",
			level.Name, level.LevelID, level.Description,
			level.GridWidth, level.GridHeight, level.Trains, level.Waiting)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🚂 Color Rails - Complete Instructions

GAME OBJECTIVE:
Route every color-coded train to pick up its waiting passengers at stations
and deliver them to the depot of the matching color. Deliver everyone to win.

GAME MECHANICS:
• Selection: A train must be selected before it can be routed
• Clicking: Clicking a reachable point routes the selected train along the
  cheapest path; the click is rejected when no path exists
• Advancing: Trains only move while the clock advances - call advance after
  every accepted click until the train arrives
• Pickup: When a train stops at a station it picks up the longest run of
  passengers at the head of the queue whose color matches the train
• Delivery: A train entering its own depot with carts wins its cargo home

MAP LEGEND:
• T - Train (current position)
• S - Station (passengers wait here in a queue)
• D - Depot (a train's final destination, color-matched)
• + - Track point (junction between rail parts)
• . - Empty cell (no rail)

🤖 AI AGENTS - CRITICAL SUCCESS STRATEGIES:

🎨 COLOR MATCHING (MOST COMMON FAILURE POINT):
1. **Check queue order before routing**: Stations serve passengers strictly
   from the HEAD of the queue. A red train at a station whose queue starts
   with a blue passenger picks up NOTHING.
2. **Head-streak pickup**: The train takes consecutive matching passengers
   from the head only. Queue [red, red, blue, red] gives a red train 2
   passengers, not 3 - the trailing red stays behind the blue.
3. **Route other colors first** when they block the head of a queue you need.

⚠️ DEPOT DISCIPLINE:
- Entering the WRONG color depot loses the game immediately
- Entering your OWN depot too early loses when passengers of your color are
  still waiting anywhere on the map
- Enter your depot only when every passenger of your color has been picked up

🕐 CLOCK MANAGEMENT:
- Clicks are instantaneous route confirmations; motion happens on advance
- A train that is still moving rejects new clicks - advance until it arrives
- advance stops early once every train is idle, so large tick counts are safe

💥 COLLISION AVOIDANCE:
- Two trains touching while one moves ends the game in a loss
- Stagger movements: move one train to safety before routing another
- Use describe_point to check positions before committing to a route

🗺️ SYSTEMATIC ROUTE PLANNING:
- Use game_state to see the full map, all queues, and all train positions
- Use describe_point on every station to learn its exact queue order
- Plan the complete pickup order for each color before the first click
- Clicks follow the cheapest path automatically - you choose destinations,
  not individual track segments

🔄 ITERATIVE PLAY LOOP:
1. **Analysis**: game_state + describe_point on stations and depots
2. **Planning**: Decide per-train pickup order respecting queue heads
3. **Execution**: select_train, click_point, advance until arrival
4. **Verification**: Confirm pickup events in the response before continuing

🚨 CRITICAL PITFALLS TO AVOID:
- ❌ Sending a train to its depot while its color still waits at a station
- ❌ Entering a depot of the wrong color - instant loss
- ❌ Clicking while the train is still moving - advance first
- ❌ Ignoring queue order and expecting a full station pickup
- ❌ Routing two trains through the same junction at the same time

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has unique 4-character ID
- Sessions maintain independent state and level
- Use session-specific tools for multi-game management

Remember: Success requires matching queue heads to train colors, finishing
all pickups before any depot visit, and advancing the clock after every
accepted click. Good luck on the rails! 🚂🎨🏁`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribePoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	pointID, _ := args["point_id"].(string)

	// Get the current game state to access the network
	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var point *engine.PointState
	for i := range state.Points {
		if state.Points[i].ID == pointID {
			point = &state.Points[i]
			break
		}
	}
	if point == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Point %q not found. Use game_state to list all points.", pointID)), nil
	}

	var kindDesc string
	switch point.Kind {
	case engine.Station:
		kindDesc = "Station - passengers wait here in queue order"
	case engine.Depot:
		kindDesc = "Depot - final destination for the matching train color, entering the wrong one loses"
	default:
		kindDesc = "Track point - a junction between rail parts, safe to route through"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Point %s:\n", point.ID))
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")
	b.WriteString(fmt.Sprintf("Kind: %s\n", point.Kind))
	b.WriteString(fmt.Sprintf("Position: (%.2f, %.2f)\n", point.Position.X, point.Position.Y))
	b.WriteString(fmt.Sprintf("Facing: %s\n", point.Direction))
	if point.Kind == engine.Station || point.Kind == engine.Depot {
		b.WriteString(fmt.Sprintf("Color index: %d\n", point.ColorIndex))
	}
	if point.Kind == engine.Station {
		b.WriteString(fmt.Sprintf("Waiting queue (head first): %v\n", point.Waiting))
	}
	b.WriteString(fmt.Sprintf("Description: %s\n", kindDesc))

	// Note trains currently at or near this point
	for _, train := range state.Trains {
		if train.AtPointID == point.ID {
			b.WriteString(fmt.Sprintf("\n🚂 Train %s (%s) is at this point", train.ID, train.ColorName))
			if train.Moving {
				b.WriteString(" and still moving toward it")
			}
			b.WriteString("\n")
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\n\n%s",
		session.ID, session.LevelID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	// Header
	result.WriteString(fmt.Sprintf("Level: %s | Tick: %d | Waiting passengers: %d\n",
		state.LevelName, state.Tick, state.TotalWaiting))
	if state.SelectedTrain != "" {
		result.WriteString(fmt.Sprintf("Selected train: %s\n", state.SelectedTrain))
	}
	result.WriteString("\n")

	// Map
	result.WriteString(formatMap(state))

	// Trains
	result.WriteString("\nTrains:\n")
	for _, train := range state.Trains {
		status := "idle"
		if train.Moving {
			status = "moving"
		}
		result.WriteString(fmt.Sprintf("- %s (%s) at %s (%.2f, %.2f) carts=%d %s\n",
			train.ID, train.ColorName, train.AtPointID,
			train.Position.X, train.Position.Y, train.CarriedCarts, status))
	}

	// Stations and depots
	result.WriteString("\nStations and depots:\n")
	for _, point := range state.Points {
		switch point.Kind {
		case engine.Station:
			result.WriteString(fmt.Sprintf("- %s station color=%d queue=%v\n",
				point.ID, point.ColorIndex, point.Waiting))
		case engine.Depot:
			result.WriteString(fmt.Sprintf("- %s depot color=%d\n",
				point.ID, point.ColorIndex))
		}
	}

	// Status
	if state.GameOver {
		if state.Victory {
			result.WriteString("\n🎉 VICTORY!")
		} else {
			result.WriteString(fmt.Sprintf("\n💀 GAME OVER (%s)", state.LoseReason))
		}
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

// formatMap renders a coarse cell-level view of the network. Each cell shows
// the most interesting occupant: trains over depots over stations over track.
func formatMap(state *engine.GameState) string {
	width, height := 0, 0
	for _, p := range state.Points {
		if x := int(p.Position.X) + 1; x > width {
			width = x
		}
		if y := int(p.Position.Y) + 1; y > height {
			height = y
		}
	}
	if width == 0 || height == 0 {
		return ""
	}

	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = make([]rune, width)
		for x := range grid[y] {
			grid[y][x] = '.'
		}
	}

	rank := func(r rune) int {
		switch r {
		case 'T':
			return 3
		case 'D':
			return 2
		case 'S':
			return 1
		case '+':
			return 0
		}
		return -1
	}
	place := func(x, y int, r rune) {
		if x < 0 || y < 0 || x >= width || y >= height {
			return
		}
		if rank(r) > rank(grid[y][x]) {
			grid[y][x] = r
		}
	}

	for _, p := range state.Points {
		switch p.Kind {
		case engine.Station:
			place(int(p.Position.X), int(p.Position.Y), 'S')
		case engine.Depot:
			place(int(p.Position.X), int(p.Position.Y), 'D')
		default:
			place(int(p.Position.X), int(p.Position.Y), '+')
		}
	}
	for _, t := range state.Trains {
		place(int(t.Position.X), int(t.Position.Y), 'T')
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		b.WriteString(string(grid[y]))
		b.WriteString("\n")
	}
	return b.String()
}

func formatClickOutcome(outcome *service.ClickOutcome) string {
	response := ""
	if outcome.Click != nil && outcome.Click.Accepted {
		response = fmt.Sprintf("✓ Move started: %s → %s (path cost %.2f)\n",
			outcome.Click.TrainID, outcome.Click.TargetID, outcome.Click.PathCost)
		response += "Advance the clock so the train progresses along its route.\n"
	} else {
		reason := ""
		if outcome.Click != nil {
			reason = outcome.Click.Reason
		}
		response = fmt.Sprintf("✗ Click rejected: %s\n", reason)
	}

	if len(outcome.Events) > 0 {
		response += "Events:\n"
		for _, event := range outcome.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	response += "\n" + formatGameState(outcome.GameState)
	return response
}

func formatAdvanceResult(result *service.AdvanceResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Advanced %d/%d ticks\n", result.TicksRun, result.TicksRequested))
	if result.Truncated {
		b.WriteString(fmt.Sprintf("Request capped at %d ticks\n", result.Limit))
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			line := fmt.Sprintf("- [tick %d] %s: %s", event.Tick, event.Type, event.Message)
			if event.Count > 0 {
				line += fmt.Sprintf(" (picked up %d)", event.Count)
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatEventLog(log *service.EventLogResponse) string {
	result := fmt.Sprintf("Event Log (Page %d/%d) — Total: %d\n\n",
		log.Page, log.TotalPages, log.TotalEvents)

	for i, event := range log.Events {
		num := (log.Page-1)*log.PageSize + i + 1
		result += fmt.Sprintf("%d. [tick %d] %s", num, event.Tick, event.Type)
		if event.TrainID != "" {
			result += fmt.Sprintf(" train=%s", event.TrainID)
		}
		if event.PointID != "" {
			result += fmt.Sprintf(" point=%s", event.PointID)
		}
		if event.Message != "" {
			result += fmt.Sprintf(" — %s", event.Message)
		}
		result += "\n"
	}

	return result
}
