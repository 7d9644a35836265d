package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Local mirrors of the server's JSON payloads. The bot is a standalone module
// and talks to the REST API only, so it does not import the game engine.

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TrainState struct {
	ID           string `json:"id"`
	ColorIndex   int    `json:"color_index"`
	ColorName    string `json:"color_name"`
	AtPointID    string `json:"at_point_id"`
	CarriedCarts int    `json:"carried_carts"`
	Position     Vec2   `json:"position"`
	Moving       bool   `json:"moving"`
}

type PointState struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	ColorIndex int    `json:"color_index"`
	Position   Vec2   `json:"position"`
	Waiting    []int  `json:"waiting_people"`
}

type GameState struct {
	LevelName     string       `json:"level_name"`
	Tick          int64        `json:"tick"`
	Message       string       `json:"message"`
	SelectedTrain string       `json:"selected_train,omitempty"`
	GameOver      bool         `json:"game_over"`
	Victory       bool         `json:"victory"`
	LoseReason    string       `json:"lose_reason,omitempty"`
	TotalWaiting  int          `json:"total_waiting"`
	Trains        []TrainState `json:"trains"`
	Points        []PointState `json:"points"`
}

type SessionResponse struct {
	ID        string     `json:"id"`
	LevelID   string     `json:"level_id"`
	GameState *GameState `json:"game_state"`
}

type ClickResult struct {
	Accepted bool    `json:"accepted"`
	Reason   string  `json:"reason,omitempty"`
	TrainID  string  `json:"train_id,omitempty"`
	TargetID string  `json:"target_id,omitempty"`
	PathCost float64 `json:"path_cost,omitempty"`
}

type ClickOutcome struct {
	Click     *ClickResult `json:"click"`
	GameState *GameState   `json:"game_state"`
}

type AdvanceResult struct {
	TicksRun  int        `json:"ticks_run"`
	GameState *GameState `json:"game_state"`
	GameOver  bool       `json:"game_over"`
	Victory   bool       `json:"victory"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(level string) (*GameState, error) {
	var reqBody []byte
	var err error

	if level != "" {
		reqBody, err = json.Marshal(map[string]string{"level_id": level})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState() (*GameState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/state", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	var state GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return &state, nil
}

func (c *Client) Select(trainID string) (*GameState, error) {
	body, err := json.Marshal(map[string]string{"train_id": trainID})
	if err != nil {
		return nil, fmt.Errorf("marshal select: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/select", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("select train: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("select train failed: %s - %s", resp.Status, string(data))
	}

	var state GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse select response: %w", err)
	}

	return &state, nil
}

func (c *Client) Click(pointID string) (*ClickOutcome, error) {
	body, err := json.Marshal(map[string]string{"point_id": pointID})
	if err != nil {
		return nil, fmt.Errorf("marshal click: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/click", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("click point: %w", err)
	}
	defer resp.Body.Close()

	var outcome ClickOutcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return nil, fmt.Errorf("parse click response: %w", err)
	}

	return &outcome, nil
}

func (c *Client) Advance(ticks int) (*AdvanceResult, error) {
	body, err := json.Marshal(map[string]int{"ticks": ticks})
	if err != nil {
		return nil, fmt.Errorf("marshal advance: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/advance", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("advance: %w", err)
	}
	defer resp.Body.Close()

	var result AdvanceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse advance response: %w", err)
	}

	return &result, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	level := flag.String("level", "", "Level name (empty = server default)")
	maxActions := flag.Int("max-actions", 200, "Maximum routed moves per attempt")
	maxAttempts := flag.Int("max-attempts", 10, "Maximum attempts before giving up")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between actions in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	for attempt := 1; attempt <= *maxAttempts; attempt++ {
		// There is no reset endpoint; every attempt plays a fresh session
		state, err := client.CreateSession(*level)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("\n=== 🚂 Attempt %d/%d — session %s ===", attempt, *maxAttempts, client.sessionID)
		log.Printf("Level: %s, trains: %d, waiting passengers: %d",
			state.LevelName, len(state.Trains), state.TotalWaiting)

		planner := NewPlanner()

		actions := 0
		for !state.GameOver && actions < *maxActions {
			action, ok := planner.NextAction(state)
			if !ok {
				log.Printf("⚠️  No useful action available, giving up this attempt")
				break
			}

			if *verbose {
				log.Printf("Action: train %s -> %s (%s)", action.TrainID, action.PointID, action.Goal)
			}

			if _, err := client.Select(action.TrainID); err != nil {
				log.Printf("Select failed: %v", err)
				break
			}

			outcome, err := client.Click(action.PointID)
			if err != nil {
				log.Printf("Click failed: %v", err)
				break
			}
			actions++
			if outcome.Click == nil || !outcome.Click.Accepted {
				reason := ""
				if outcome.Click != nil {
					reason = outcome.Click.Reason
				}
				if *verbose {
					log.Printf("Click rejected (%s), blacklisting target", reason)
				}
				planner.MarkUnreachable(action.TrainID, action.PointID)
				state = outcome.GameState
				continue
			}

			// Run the clock until the train arrives or the game ends
			result, err := client.Advance(1000)
			if err != nil {
				log.Printf("Advance failed: %v", err)
				break
			}
			state = result.GameState

			if *delayMs > 0 {
				time.Sleep(time.Duration(*delayMs) * time.Millisecond)
			}
		}

		log.Printf("Attempt %d: actions=%d, waiting=%d, tick=%d",
			attempt, actions, state.TotalWaiting, state.Tick)

		if state.Victory {
			log.Printf("\n🎉 VICTORY! Won in attempt %d after %d routed moves", attempt, actions)
			log.Printf("Session: %s", client.sessionID)
			os.Exit(0)
		}
		if state.GameOver {
			log.Printf("💀 Lost: %s", state.LoseReason)
		}
	}

	log.Printf("\n❌ Failed to win after %d attempts", *maxAttempts)
	os.Exit(1)
}
