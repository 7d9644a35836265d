// Package engine implements the core rail-puzzle simulation for Color Rails.
//
// The engine package implements the game mechanics including:
//   - The rail network model: grid points, rotatable two-pin track parts
//   - Pathfinding over part connectivity with deterministic tie-breaking
//   - Compiling a discrete path into a continuous world-space trajectory
//   - Per-train move execution with collision detection
//   - The rule engine deriving pickup, win and lose outcomes from arrivals
//
// Core Types:
//
// Simulation is the dependency-injected context for one playthrough, owning
// the Network, the Train registry, one MoveExecutor per train and the
// RuleEngine. LevelConfig defines a level loaded from JSON or YAML files.
//
// Usage:
//
//	config, err := engine.LoadLevelConfig("levels/first_departure.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sim, err := engine.NewSimulation(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sim.SelectTrain("train_red")
//	result, err := sim.OnPointClicked("station_red")
//	for !sim.Terminal() && sim.AnyMoving() {
//		notifications := sim.Tick()
//		_ = notifications
//	}
//
// Game Rules:
//
// Trains travel along rotatable track parts between stations and depots,
// picking up color-matching passengers from station queue heads. The player
// wins by emptying every station and delivering each train to its matching
// depot; a wrong-color delivery, a premature depot arrival, or a train
// collision ends the session immediately.
package engine
