// Command analyze prints quick, human-readable heuristics about level files
// in the project's levels directory. It summarizes grid dimensions, part and
// point counts, waiting passengers per color, and highlights stations or
// depots that no train can reach over the rail network.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/colorrails/colorrails/game/engine"
)

func main() {
	levelDir := "levels"
	if len(os.Args) > 1 {
		levelDir = os.Args[1]
	}

	fmt.Println("\n=== Analyzing built-in level ===")
	analyzeLevel(engine.DefaultLevel())

	entries, err := os.ReadDir(levelDir)
	if err != nil {
		fmt.Printf("No level directory at %q, built-in level only\n", levelDir)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}
		fmt.Printf("\n=== Analyzing %s ===\n", entry.Name())
		analyzeFile(filepath.Join(levelDir, entry.Name()))
	}
}

func isLevelFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func analyzeFile(path string) {
	level, err := engine.LoadLevelConfig(path)
	if err != nil {
		fmt.Printf("Error loading level: %v\n", err)
		return
	}
	analyzeLevel(level)
}

func analyzeLevel(level *engine.LevelConfig) {
	fmt.Printf("Name: %s\n", level.Name)
	fmt.Printf("Grid: %d x %d\n", level.GridWidth, level.GridHeight)
	fmt.Printf("Palette: %s\n", strings.Join(level.Palette, ", "))
	fmt.Printf("Parts: %d, Points: %d, Trains: %d\n",
		len(level.Parts), len(level.Points), len(level.Trains))

	// Waiting passengers per color
	waitingByColor := make([]int, len(level.Palette))
	total := 0
	stations := 0
	depots := 0
	for _, pt := range level.Points {
		switch pt.Kind {
		case engine.Station:
			stations++
		case engine.Depot:
			depots++
		}
		for _, c := range pt.Waiting {
			waitingByColor[c]++
			total++
		}
	}
	fmt.Printf("Stations: %d, Depots: %d\n", stations, depots)
	fmt.Printf("Waiting passengers: %d total\n", total)
	for i, count := range waitingByColor {
		if count > 0 {
			fmt.Printf("  %s: %d\n", level.Palette[i], count)
		}
	}

	// Every color with waiting passengers needs a train and a depot
	for i, count := range waitingByColor {
		if count == 0 {
			continue
		}
		if !hasTrainOfColor(level, i) {
			fmt.Printf("⚠️  WARNING: %d %s passengers but no %s train\n",
				count, level.Palette[i], level.Palette[i])
		}
		if !hasDepotOfColor(level, i) {
			fmt.Printf("⚠️  WARNING: %s train has no depot to finish at\n", level.Palette[i])
		}
	}

	// Reachability over the actual rail network
	net, err := engine.BuildNetwork(level)
	if err != nil {
		fmt.Printf("Error building network: %v\n", err)
		return
	}

	unreachable := 0
	for _, pt := range level.Points {
		if pt.Kind == engine.Track {
			continue
		}
		if !reachableByAnyTrain(net, level, pt.ID) {
			unreachable++
			fmt.Printf("⚠️  WARNING: %s %q is unreachable from every train start\n", pt.Kind, pt.ID)
		}
	}
	if unreachable == 0 {
		fmt.Println("✅ Every station and depot is reachable from at least one train")
	} else {
		fmt.Printf("⚠️  CRITICAL: %d stations/depots cannot be reached, the level may be unwinnable\n", unreachable)
	}
}

func hasTrainOfColor(level *engine.LevelConfig, color int) bool {
	for _, train := range level.Trains {
		if train.ColorIndex == color {
			return true
		}
	}
	return false
}

func hasDepotOfColor(level *engine.LevelConfig, color int) bool {
	for _, pt := range level.Points {
		if pt.Kind == engine.Depot && pt.ColorIndex == color {
			return true
		}
	}
	return false
}

func reachableByAnyTrain(net *engine.Network, level *engine.LevelConfig, pointID string) bool {
	for _, train := range level.Trains {
		if train.StartPoint == pointID {
			return true
		}
		if result := engine.FindPath(net, train.StartPoint, pointID); result.Success {
			return true
		}
	}
	return false
}
