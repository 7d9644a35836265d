// Package config provides level management for Color Rails.
//
// The config package handles:
//   - Loading level definitions from JSON and YAML files
//   - Level validation via the engine's level checks
//   - Default level management with a built-in fallback
//   - Level discovery and listing
//
// Level Format:
//
// Levels are stored as .json, .yaml or .yml files in the levels directory.
// Each level defines:
//   - Grid dimensions and the color palette
//   - Track parts with their rotations and exit wiring
//   - Grid points (track, stations with waiting queues, depots)
//   - Trains and their starting points
//   - Message templates for pickups, wins and losses
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific level
//	level, err := manager.LoadLevel("branch_line")
//
//	// Get the default level
//	defaultLevel := manager.GetDefault()
//
//	// List available levels
//	levels, err := manager.ListLevels()
//
// A file named "default" (any supported extension) in the level directory
// overrides the built-in default level. When no level directory is configured
// the manager still serves the built-in level.
package config
