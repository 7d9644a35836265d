package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PartConfig describes one placed track part in a level file
type PartConfig struct {
	Type     string    `json:"type" yaml:"type"`
	Rotation int       `json:"rotation" yaml:"rotation"`
	GridX    int       `json:"grid_x" yaml:"grid_x"`
	GridY    int       `json:"grid_y" yaml:"grid_y"`
	Exits    [2]string `json:"exits" yaml:"exits,flow"`
	Splines  [][]Vec2  `json:"splines,omitempty" yaml:"splines,omitempty"`
}

// PointConfig describes one grid point in a level file
type PointConfig struct {
	ID         string    `json:"id" yaml:"id"`
	Kind       PointKind `json:"kind" yaml:"kind"`
	GridX      int       `json:"grid_x" yaml:"grid_x"`
	GridY      int       `json:"grid_y" yaml:"grid_y"`
	Anchor     Vec2      `json:"anchor" yaml:"anchor"`
	Direction  Heading   `json:"direction,omitempty" yaml:"direction,omitempty"`
	ColorIndex int       `json:"color_index" yaml:"color_index"`
	Waiting    []int     `json:"waiting_people,omitempty" yaml:"waiting_people,omitempty"`
}

// TrainConfig describes one train in a level file
type TrainConfig struct {
	ID         string `json:"id" yaml:"id"`
	ColorIndex int    `json:"color_index" yaml:"color_index"`
	StartPoint string `json:"start_point" yaml:"start_point"`
}

// LevelMessages holds the notification templates for a level
type LevelMessages struct {
	Welcome            string `json:"welcome" yaml:"welcome"`
	Pickup             string `json:"pickup" yaml:"pickup"`
	NothingPicked      string `json:"nothing_picked" yaml:"nothing_picked"`
	Win                string `json:"win" yaml:"win"`
	LoseCollision      string `json:"lose_collision" yaml:"lose_collision"`
	LoseWrongDepot     string `json:"lose_wrong_depot" yaml:"lose_wrong_depot"`
	LosePrematureDepot string `json:"lose_premature_depot" yaml:"lose_premature_depot"`
	NoPath             string `json:"no_path" yaml:"no_path"`
	NothingSelected    string `json:"nothing_selected" yaml:"nothing_selected"`
}

// LevelConfig is the serialisable definition of a playable level. The core
// treats everything here as read-only after the network is built, except the
// waiting queues and point directions which mutate during play.
type LevelConfig struct {
	Name              string        `json:"name" yaml:"name"`
	Description       string        `json:"description" yaml:"description"`
	GridWidth         int           `json:"grid_width" yaml:"grid_width"`
	GridHeight        int           `json:"grid_height" yaml:"grid_height"`
	Palette           []string      `json:"palette" yaml:"palette,flow"`
	TrainSpeed        float64       `json:"train_speed" yaml:"train_speed"`
	CollisionRadius   float64       `json:"collision_radius" yaml:"collision_radius"`
	SamplesPerSegment int           `json:"samples_per_segment" yaml:"samples_per_segment"`
	Parts             []PartConfig  `json:"parts" yaml:"parts"`
	Points            []PointConfig `json:"points" yaml:"points"`
	Trains            []TrainConfig `json:"trains" yaml:"trains"`
	Messages          LevelMessages `json:"messages" yaml:"messages"`
}

// ValidateLevelConfig validates a level definition for correctness and
// playability. Rotation and exit-pin violations are reported with the
// contract-violation sentinels so callers can distinguish corrupted level
// data from ordinary config mistakes.
func ValidateLevelConfig(config *LevelConfig) error {
	if config.Name == "" {
		return fmt.Errorf("level validation: name is required")
	}
	if config.GridWidth < MinGridSize || config.GridWidth > MaxGridSize {
		return fmt.Errorf("level validation: grid_width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridWidth)
	}
	if config.GridHeight < MinGridSize || config.GridHeight > MaxGridSize {
		return fmt.Errorf("level validation: grid_height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridHeight)
	}
	if len(config.Palette) == 0 || len(config.Palette) > MaxPaletteSize {
		return fmt.Errorf("level validation: palette must hold 1 to %d colors, got %d", MaxPaletteSize, len(config.Palette))
	}
	if config.TrainSpeed <= 0 {
		return fmt.Errorf("level validation: train_speed must be positive, got %v", config.TrainSpeed)
	}
	if config.CollisionRadius <= 0 {
		return fmt.Errorf("level validation: collision_radius must be positive, got %v", config.CollisionRadius)
	}
	if config.SamplesPerSegment < 1 {
		return fmt.Errorf("level validation: samples_per_segment must be at least 1, got %d", config.SamplesPerSegment)
	}

	points := make(map[string]PointConfig, len(config.Points))
	for i, pt := range config.Points {
		if pt.ID == "" {
			return fmt.Errorf("level validation: point %d is missing an id", i)
		}
		if _, dup := points[pt.ID]; dup {
			return fmt.Errorf("level validation: duplicate point id %q", pt.ID)
		}
		switch pt.Kind {
		case Track, Station, Depot:
		default:
			return fmt.Errorf("level validation: point %q has unknown kind %q", pt.ID, pt.Kind)
		}
		if pt.GridX < 0 || pt.GridX >= config.GridWidth || pt.GridY < 0 || pt.GridY >= config.GridHeight {
			return fmt.Errorf("level validation: point %q is outside the %dx%d grid", pt.ID, config.GridWidth, config.GridHeight)
		}
		if pt.Kind != Track {
			if pt.ColorIndex < 0 || pt.ColorIndex >= len(config.Palette) {
				return fmt.Errorf("level validation: point %q color_index %d is outside the palette", pt.ID, pt.ColorIndex)
			}
		}
		for _, c := range pt.Waiting {
			if c < 0 || c >= len(config.Palette) {
				return fmt.Errorf("level validation: point %q has waiting passenger color %d outside the palette", pt.ID, c)
			}
		}
		if len(pt.Waiting) > MaxWaitingPeople {
			return fmt.Errorf("level validation: point %q holds %d waiting passengers, max is %d", pt.ID, len(pt.Waiting), MaxWaitingPeople)
		}
		if pt.Kind != Station && len(pt.Waiting) > 0 {
			return fmt.Errorf("level validation: point %q is a %s but declares waiting passengers", pt.ID, pt.Kind)
		}
		points[pt.ID] = pt
	}

	if len(config.Parts) == 0 {
		return fmt.Errorf("level validation: at least one track part is required")
	}
	for i, part := range config.Parts {
		if _, ok := headingTable[part.Rotation]; !ok {
			return fmt.Errorf("level validation: part %d rotation %d: %w", i, part.Rotation, ErrInvalidPartState)
		}
		if part.Exits[0] == "" || part.Exits[1] == "" || part.Exits[0] == part.Exits[1] {
			return fmt.Errorf("level validation: part %d: %w", i, ErrMalformedPart)
		}
		for _, exit := range part.Exits {
			if _, ok := points[exit]; !ok {
				return fmt.Errorf("level validation: part %d references unknown point %q", i, exit)
			}
		}
		if part.GridX < 0 || part.GridX >= config.GridWidth || part.GridY < 0 || part.GridY >= config.GridHeight {
			return fmt.Errorf("level validation: part %d is outside the %dx%d grid", i, config.GridWidth, config.GridHeight)
		}
		if len(part.Splines) > PinCount {
			return fmt.Errorf("level validation: part %d declares %d splines, max is %d", i, len(part.Splines), PinCount)
		}
		for j, spline := range part.Splines {
			// A one-point spline cannot carry a train; trajectory compilation
			// would produce nothing to animate while the logical move confirms.
			if len(spline) < 2 {
				return fmt.Errorf("level validation: part %d spline %d holds %d points, need at least 2: %w", i, j, len(spline), ErrMalformedPart)
			}
		}
		if _, ok := localSplines[part.Type]; !ok && len(part.Splines) == 0 {
			return fmt.Errorf("level validation: part %d has unknown type %q and no explicit splines", i, part.Type)
		}
	}

	stationCount := 0
	depotCount := 0
	for _, pt := range config.Points {
		switch pt.Kind {
		case Station:
			stationCount++
		case Depot:
			depotCount++
		}
	}
	if stationCount == 0 {
		return fmt.Errorf("level validation: at least one station is required")
	}
	if depotCount == 0 {
		return fmt.Errorf("level validation: at least one depot is required")
	}

	if len(config.Trains) == 0 {
		return fmt.Errorf("level validation: at least one train is required")
	}
	seenTrains := make(map[string]bool, len(config.Trains))
	for i, train := range config.Trains {
		if train.ID == "" {
			return fmt.Errorf("level validation: train %d is missing an id", i)
		}
		if seenTrains[train.ID] {
			return fmt.Errorf("level validation: duplicate train id %q", train.ID)
		}
		seenTrains[train.ID] = true
		if train.ColorIndex < 0 || train.ColorIndex >= len(config.Palette) {
			return fmt.Errorf("level validation: train %q color_index %d is outside the palette", train.ID, train.ColorIndex)
		}
		start, ok := points[train.StartPoint]
		if !ok {
			return fmt.Errorf("level validation: train %q starts at unknown point %q", train.ID, train.StartPoint)
		}
		if start.Kind != Track {
			return fmt.Errorf("level validation: train %q must start on a track point, got %s %q", train.ID, start.Kind, start.ID)
		}
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("level validation: messages.welcome is required")
	}
	if config.Messages.Win == "" {
		return fmt.Errorf("level validation: messages.win is required")
	}
	if config.Messages.Pickup != "" && !strings.Contains(config.Messages.Pickup, "%d") {
		return fmt.Errorf("level validation: messages.pickup must contain %%d for the pickup count")
	}

	return nil
}

// LoadLevelConfig loads a level definition from a JSON or YAML file and
// validates it.
func LoadLevelConfig(filename string) (*LevelConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config LevelConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse level file %q: %w", filename, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse level file %q: %w", filename, err)
		}
	}

	applyLevelDefaults(&config)
	if err := ValidateLevelConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyLevelDefaults fills motion and sampling parameters that level files may
// leave out.
func applyLevelDefaults(config *LevelConfig) {
	if config.TrainSpeed == 0 {
		config.TrainSpeed = DefaultTrainSpeed
	}
	if config.CollisionRadius == 0 {
		config.CollisionRadius = DefaultCollisionRadius
	}
	if config.SamplesPerSegment == 0 {
		config.SamplesPerSegment = DefaultSamplesPerSegment
	}
	if config.Messages.Welcome == "" {
		config.Messages.Welcome = "Route every passenger home, then bring each train to its depot."
	}
	if config.Messages.Pickup == "" {
		config.Messages.Pickup = "Picked up %d passengers"
	}
	if config.Messages.NothingPicked == "" {
		config.Messages.NothingPicked = "No matching passengers at the head of the queue"
	}
	if config.Messages.Win == "" {
		config.Messages.Win = "All stations cleared. You win!"
	}
	if config.Messages.LoseCollision == "" {
		config.Messages.LoseCollision = "Trains collided. Game over!"
	}
	if config.Messages.LoseWrongDepot == "" {
		config.Messages.LoseWrongDepot = "Wrong depot for this train. Game over!"
	}
	if config.Messages.LosePrematureDepot == "" {
		config.Messages.LosePrematureDepot = "Reached the depot with passengers still waiting. Game over!"
	}
	if config.Messages.NoPath == "" {
		config.Messages.NoPath = "No route to that point"
	}
	if config.Messages.NothingSelected == "" {
		config.Messages.NothingSelected = "Select a train first"
	}
}

// DefaultLevel returns the built-in level used when no level directory is
// available: a single east-west line with a red depot on the left, a red
// station on the right and one train between them.
func DefaultLevel() *LevelConfig {
	config := &LevelConfig{
		Name:        "First Departure",
		Description: "A single line: collect the red passengers, then head home.",
		GridWidth:   8,
		GridHeight:  4,
		Palette:     []string{"red", "blue", "green", "yellow"},
		Parts: []PartConfig{
			{Type: "straight", Rotation: 90, GridX: 1, GridY: 1, Exits: [2]string{"depot_red", "j1"}},
			{Type: "straight", Rotation: 90, GridX: 2, GridY: 1, Exits: [2]string{"j1", "j2"}},
			{Type: "straight", Rotation: 90, GridX: 3, GridY: 1, Exits: [2]string{"j2", "j3"}},
			{Type: "straight", Rotation: 90, GridX: 4, GridY: 1, Exits: [2]string{"j3", "station_red"}},
		},
		Points: []PointConfig{
			{ID: "depot_red", Kind: Depot, GridX: 1, GridY: 1, Anchor: Vec2{X: 0, Y: 0.5}, ColorIndex: 0, Direction: HeadingLeft},
			{ID: "j1", Kind: Track, GridX: 2, GridY: 1, Anchor: Vec2{X: 0, Y: 0.5}, Direction: HeadingRight},
			{ID: "j2", Kind: Track, GridX: 3, GridY: 1, Anchor: Vec2{X: 0, Y: 0.5}, Direction: HeadingRight},
			{ID: "j3", Kind: Track, GridX: 4, GridY: 1, Anchor: Vec2{X: 0, Y: 0.5}, Direction: HeadingRight},
			{ID: "station_red", Kind: Station, GridX: 5, GridY: 1, Anchor: Vec2{X: 0, Y: 0.5}, ColorIndex: 0, Direction: HeadingRight, Waiting: []int{0, 0}},
		},
		Trains: []TrainConfig{
			{ID: "train_red", ColorIndex: 0, StartPoint: "j1"},
		},
	}
	applyLevelDefaults(config)
	return config
}
