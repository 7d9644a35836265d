// Command validate provides a small CLI that validates level files in the
// ../levels directory (or one given as argument). It checks:
//   - JSON/YAML structure and required fields
//   - Grid bounds, palette indices, part rotations and exit pins
//   - Presence of at least one station, depot and train
//   - Color coverage: every waiting color has a train and a depot
//   - Connectivity: all stations and depots are reachable over the rail network
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/colorrails/colorrails/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateLevel loads and validates a single level file. Structural checks
// come from the engine's own level validation; coverage and connectivity
// checks run on top of the built network.
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	level, err := engine.LoadLevelConfig(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load level: %v", err))
		return result
	}

	net, err := engine.BuildNetwork(level)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to build network: %v", err))
		return result
	}

	stations := 0
	depots := 0
	waitingByColor := make([]int, len(level.Palette))
	totalWaiting := 0
	for _, pt := range level.Points {
		switch pt.Kind {
		case engine.Station:
			stations++
		case engine.Depot:
			depots++
		}
		for _, c := range pt.Waiting {
			waitingByColor[c]++
			totalWaiting++
		}
	}

	if totalWaiting == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "No waiting passengers; the level would be won immediately")
	}

	// Color coverage: every waiting color needs a train and a depot
	for i, count := range waitingByColor {
		if count == 0 {
			continue
		}
		if !colorHasTrain(level, i) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Color %q has %d waiting passengers but no train", level.Palette[i], count))
		}
		if !colorHasDepot(level, i) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Color %q has no depot, its train cannot finish", level.Palette[i]))
		}
	}

	// Connectivity: every station and depot reachable from at least one train
	connectivity := validateConnectivity(net, level)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", level.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", level.GridWidth, level.GridHeight))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Parts: %d", len(level.Parts)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Stations: %d", stations))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Depots: %d", depots))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Trains: %d", len(level.Trains)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Waiting passengers: %d", totalWaiting))
	}

	return result
}

// validateConnectivity ensures every station and depot can be reached from at
// least one train start over the rail network. It reports any unreachable
// points and returns an aggregated ValidationResult.
func validateConnectivity(net *engine.Network, level *engine.LevelConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	targets := 0
	unreachable := []string{}
	for _, pt := range level.Points {
		if pt.Kind == engine.Track {
			continue
		}
		targets++

		reached := false
		for _, train := range level.Trains {
			if path := engine.FindPath(net, train.StartPoint, pt.ID); path.Success {
				reached = true
				break
			}
		}
		if !reached {
			unreachable = append(unreachable, fmt.Sprintf("%s at (%d,%d)", pt.ID, pt.GridX, pt.GridY))
		}
	}

	if len(unreachable) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: %d/%d stations/depots unreachable from every train", len(unreachable), targets))
		for _, id := range unreachable {
			result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: %s", id))
		}
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: All %d stations/depots reachable", targets))
	}

	return result
}

func colorHasTrain(level *engine.LevelConfig, color int) bool {
	for _, train := range level.Trains {
		if train.ColorIndex == color {
			return true
		}
	}
	return false
}

func colorHasDepot(level *engine.LevelConfig, color int) bool {
	for _, pt := range level.Points {
		if pt.Kind == engine.Depot && pt.ColorIndex == color {
			return true
		}
	}
	return false
}

// main scans ../levels (or the directory given as first argument) for level
// files and validates each one, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	levelDir := "../levels"
	if len(os.Args) > 1 {
		levelDir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(levelDir, pattern))
		if err != nil {
			fmt.Printf("Error finding level files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		fmt.Printf("No level files found in %s\n", levelDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
