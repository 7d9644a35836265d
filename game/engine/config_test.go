package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLevelIsValid(t *testing.T) {
	if err := ValidateLevelConfig(DefaultLevel()); err != nil {
		t.Fatalf("the built-in level must validate: %v", err)
	}
}

func TestValidateRejectsBadRotation(t *testing.T) {
	for _, rotation := range []int{45, -90, 360, 1} {
		config := DefaultLevel()
		config.Parts[0].Rotation = rotation
		err := ValidateLevelConfig(config)
		if !errors.Is(err, ErrInvalidPartState) {
			t.Errorf("rotation %d: expected ErrInvalidPartState, got %v", rotation, err)
		}
	}
}

func TestValidateRejectsMalformedExits(t *testing.T) {
	config := DefaultLevel()
	config.Parts[0].Exits = [2]string{"j1", "j1"}
	if err := ValidateLevelConfig(config); !errors.Is(err, ErrMalformedPart) {
		t.Errorf("duplicate exits: expected ErrMalformedPart, got %v", err)
	}

	config = DefaultLevel()
	config.Parts[0].Exits = [2]string{"depot_red", ""}
	if err := ValidateLevelConfig(config); !errors.Is(err, ErrMalformedPart) {
		t.Errorf("empty exit: expected ErrMalformedPart, got %v", err)
	}
}

func TestValidateRejectsSinglePointSpline(t *testing.T) {
	config := DefaultLevel()
	config.Parts[0].Splines = [][]Vec2{{{X: 0.5, Y: 0.5}}}
	if err := ValidateLevelConfig(config); !errors.Is(err, ErrMalformedPart) {
		t.Errorf("single-point spline: expected ErrMalformedPart, got %v", err)
	}

	config = DefaultLevel()
	config.Parts[0].Splines = [][]Vec2{{}}
	if err := ValidateLevelConfig(config); !errors.Is(err, ErrMalformedPart) {
		t.Errorf("empty spline: expected ErrMalformedPart, got %v", err)
	}
}

func TestValidateRejectsOutOfGridPlacement(t *testing.T) {
	// The grid is 0-indexed; a coordinate equal to the width is one past it.
	config := DefaultLevel()
	config.Points[1].GridX = config.GridWidth
	if err := ValidateLevelConfig(config); err == nil {
		t.Error("a point at grid_x == grid_width must be rejected")
	}

	config = DefaultLevel()
	config.Parts[0].GridY = config.GridHeight
	if err := ValidateLevelConfig(config); err == nil {
		t.Error("a part at grid_y == grid_height must be rejected")
	}

	config = DefaultLevel()
	config.Parts[0].GridX = -1
	if err := ValidateLevelConfig(config); err == nil {
		t.Error("a part at a negative coordinate must be rejected")
	}
}

func TestValidateRejectsTrainOffTrack(t *testing.T) {
	config := DefaultLevel()
	config.Trains[0].StartPoint = "depot_red"
	if err := ValidateLevelConfig(config); err == nil {
		t.Error("a train starting on a depot must be rejected")
	}
}

func TestValidateRejectsWaitingOutsidePalette(t *testing.T) {
	config := DefaultLevel()
	config.Points[4].Waiting = []int{0, 9}
	if err := ValidateLevelConfig(config); err == nil {
		t.Error("a waiting color outside the palette must be rejected")
	}
}

func TestValidateRejectsWaitingOnTrackPoint(t *testing.T) {
	config := DefaultLevel()
	config.Points[1].Waiting = []int{0}
	if err := ValidateLevelConfig(config); err == nil {
		t.Error("waiting passengers on a plain track point must be rejected")
	}
}

func TestLoadLevelConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.json")
	body := `{
		"name": "Test Line",
		"grid_width": 8,
		"grid_height": 4,
		"palette": ["red"],
		"parts": [
			{"type": "straight", "rotation": 90, "grid_x": 1, "grid_y": 1, "exits": ["depot", "mid"]},
			{"type": "straight", "rotation": 90, "grid_x": 2, "grid_y": 1, "exits": ["mid", "station"]}
		],
		"points": [
			{"id": "depot", "kind": "depot", "grid_x": 1, "grid_y": 1, "anchor": {"x": 0, "y": 0.5}},
			{"id": "mid", "kind": "track", "grid_x": 2, "grid_y": 1, "anchor": {"x": 0, "y": 0.5}},
			{"id": "station", "kind": "station", "grid_x": 3, "grid_y": 1, "anchor": {"x": 0, "y": 0.5}, "waiting_people": [0]}
		],
		"trains": [{"id": "t1", "color_index": 0, "start_point": "mid"}]
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadLevelConfig(path)
	if err != nil {
		t.Fatalf("LoadLevelConfig failed: %v", err)
	}
	if config.Name != "Test Line" {
		t.Errorf("unexpected level name %q", config.Name)
	}
	if config.TrainSpeed != DefaultTrainSpeed {
		t.Errorf("train speed should default to %v, got %v", DefaultTrainSpeed, config.TrainSpeed)
	}
	if config.Messages.Welcome == "" {
		t.Error("messages should receive defaults")
	}
	if _, err := NewSimulation(config); err != nil {
		t.Errorf("loaded level should start a simulation: %v", err)
	}
}

func TestLoadLevelConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.yaml")
	body := `
name: Branch Line
grid_width: 8
grid_height: 4
palette: [red, blue]
parts:
  - {type: straight, rotation: 90, grid_x: 1, grid_y: 1, exits: [depot, mid]}
  - {type: straight, rotation: 90, grid_x: 2, grid_y: 1, exits: [mid, station]}
points:
  - {id: depot, kind: depot, grid_x: 1, grid_y: 1, anchor: {x: 0, y: 0.5}}
  - {id: mid, kind: track, grid_x: 2, grid_y: 1, anchor: {x: 0, y: 0.5}}
  - {id: station, kind: station, grid_x: 3, grid_y: 1, anchor: {x: 0, y: 0.5}, waiting_people: [0, 1]}
trains:
  - {id: t1, color_index: 0, start_point: mid}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadLevelConfig(path)
	if err != nil {
		t.Fatalf("LoadLevelConfig failed: %v", err)
	}
	if config.Name != "Branch Line" {
		t.Errorf("unexpected level name %q", config.Name)
	}
	if len(config.Points) != 3 || config.Points[2].Waiting[1] != 1 {
		t.Errorf("yaml points did not round-trip: %+v", config.Points)
	}
}

func TestLoadLevelConfigRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLevelConfig(path); err == nil {
		t.Error("a malformed level file must fail to load")
	}
	if _, err := LoadLevelConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("a missing level file must fail to load")
	}
}
