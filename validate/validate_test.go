package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/colorrails/colorrails/game/engine"
)

func writeLevel(t *testing.T, level *engine.LevelConfig) string {
	t.Helper()
	data, err := json.Marshal(level)
	if err != nil {
		t.Fatalf("Failed to marshal level: %v", err)
	}
	path := filepath.Join(t.TempDir(), "level.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	return path
}

func TestValidateLevel_ValidLevel(t *testing.T) {
	path := writeLevel(t, engine.DefaultLevel())

	result := validateLevel(path)
	if !result.Valid {
		t.Errorf("Expected valid level, but got errors: %v", result.Errors)
	}

	if result.File != filepath.Base(path) {
		t.Errorf("Expected file name %s, got %s", filepath.Base(path), result.File)
	}

	found := false
	for _, info := range result.Errors {
		if strings.Contains(info, "Connectivity: All") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected connectivity confirmation, got: %v", result.Errors)
	}
}

func TestValidateLevel_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"name": "test", invalid json}`), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}

	result := validateLevel(path)
	if result.Valid {
		t.Error("Expected invalid result for broken JSON")
	}
	if len(result.Errors) == 0 {
		t.Error("Expected error messages for broken JSON")
	}
}

func TestValidateLevel_MissingFile(t *testing.T) {
	result := validateLevel("/non/existent/level.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
}

func TestValidateLevel_UnreachableStation(t *testing.T) {
	level := engine.DefaultLevel()
	level.Points = append(level.Points, engine.PointConfig{
		ID:         "island",
		Kind:       engine.Station,
		GridX:      7,
		GridY:      3,
		Anchor:     engine.Vec2{X: 0, Y: 0.5},
		ColorIndex: 0,
		Waiting:    []int{0},
	})
	path := writeLevel(t, level)

	result := validateLevel(path)
	if result.Valid {
		t.Error("Expected invalid result for unreachable station")
	}

	found := false
	for _, msg := range result.Errors {
		if strings.Contains(msg, "Unreachable: island") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected unreachable station report, got: %v", result.Errors)
	}
}

func TestValidateLevel_NoWaitingPassengers(t *testing.T) {
	level := engine.DefaultLevel()
	for i := range level.Points {
		level.Points[i].Waiting = nil
	}
	path := writeLevel(t, level)

	result := validateLevel(path)
	if result.Valid {
		t.Error("Expected invalid result for a level with no passengers")
	}
}

func TestValidateLevel_MissingTrainForColor(t *testing.T) {
	level := engine.DefaultLevel()
	// Blue passenger joins the queue but no blue train exists
	for i := range level.Points {
		if level.Points[i].ID == "station_red" {
			level.Points[i].Waiting = append(level.Points[i].Waiting, 1)
		}
	}
	path := writeLevel(t, level)

	result := validateLevel(path)
	if result.Valid {
		t.Error("Expected invalid result when a waiting color has no train")
	}

	found := false
	for _, msg := range result.Errors {
		if strings.Contains(msg, `Color "blue"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected blue coverage error, got: %v", result.Errors)
	}
}

func TestColorHasTrain(t *testing.T) {
	level := engine.DefaultLevel()
	if !colorHasTrain(level, 0) {
		t.Error("Expected red train")
	}
	if colorHasTrain(level, 3) {
		t.Error("Expected no yellow train")
	}
}

func TestColorHasDepot(t *testing.T) {
	level := engine.DefaultLevel()
	if !colorHasDepot(level, 0) {
		t.Error("Expected red depot")
	}
	if colorHasDepot(level, 1) {
		t.Error("Expected no blue depot")
	}
}

func TestValidateConnectivity(t *testing.T) {
	level := engine.DefaultLevel()
	net, err := engine.BuildNetwork(level)
	if err != nil {
		t.Fatalf("Failed to build network: %v", err)
	}

	result := validateConnectivity(net, level)
	if !result.Valid {
		t.Errorf("Expected connected level, got: %v", result.Errors)
	}
}
