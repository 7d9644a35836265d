package engine

import "math"

// costEpsilon bounds float comparison noise when comparing path costs
const costEpsilon = 1e-9

// step records how a point was reached during search
type step struct {
	fromID     string
	part       *PartModel
	enteredPin int
	cost       float64
}

// FindPath computes a traversal sequence from start to goal over the two-pin
// part connectivity graph using uniform-cost search. Stations and depots are
// terminal nodes: they can begin or end a path but are never crossed. The cost
// of one traversal is the Euclidean distance between the part's two pin
// points, which is monotone non-negative; ties between equal-cost paths break
// toward the lowest predecessor point ID so results are reproducible.
//
// "No path" is an expected, frequently-occurring outcome, so a disconnected
// start/goal pair (or start == goal) yields Success=false with an empty
// traversal sequence rather than an error.
func FindPath(net *Network, startID, goalID string) PathResult {
	failed := PathResult{Success: false, Traversals: []Traversal{}}

	if _, ok := net.Point(startID); !ok {
		return failed
	}
	if _, ok := net.Point(goalID); !ok {
		return failed
	}
	if startID == goalID {
		return failed
	}

	dist := map[string]float64{startID: 0}
	prev := map[string]step{}
	visited := map[string]bool{}

	for {
		// Deterministic extraction: smallest distance, then smallest ID.
		// Levels are puzzle-sized, so a linear scan beats maintaining a heap.
		currentID := ""
		best := math.Inf(1)
		for _, id := range net.PointIDs() {
			d, reached := dist[id]
			if !reached || visited[id] {
				continue
			}
			if d < best-costEpsilon || (math.Abs(d-best) <= costEpsilon && (currentID == "" || id < currentID)) {
				best = d
				currentID = id
			}
		}
		if currentID == "" {
			return failed
		}
		if currentID == goalID {
			break
		}
		visited[currentID] = true

		current := net.Points[currentID]
		// Stations and depots are terminal-only: expand them only when they
		// are the start of the query.
		if current.Kind != Track && currentID != startID {
			continue
		}

		for _, part := range net.PartsAt(currentID) {
			pin, ok := part.PinOf(currentID)
			if !ok {
				continue
			}
			nextID := part.OtherExit(pin)
			if visited[nextID] {
				continue
			}
			next := net.Points[nextID]
			cost := pointDistance(current.WorldPos(), next.WorldPos())
			candidate := dist[currentID] + cost

			existing, reached := dist[nextID]
			better := !reached || candidate < existing-costEpsilon
			tie := reached && math.Abs(candidate-existing) <= costEpsilon && currentID < prev[nextID].fromID
			if better || tie {
				dist[nextID] = candidate
				prev[nextID] = step{fromID: currentID, part: part, enteredPin: pin, cost: cost}
			}
		}
	}

	// Reconstruct the traversal sequence goal -> start, then reverse.
	var reversed []Traversal
	for id := goalID; id != startID; {
		s, ok := prev[id]
		if !ok {
			return failed
		}
		reversed = append(reversed, Traversal{Part: s.part, EnteredPin: s.enteredPin, Cost: s.cost})
		id = s.fromID
	}

	traversals := make([]Traversal, len(reversed))
	for i := range reversed {
		traversals[i] = reversed[len(reversed)-1-i]
	}
	return PathResult{Success: true, Traversals: traversals, TotalCost: dist[goalID]}
}

// pointDistance returns the Euclidean distance between two world positions
func pointDistance(a, b Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return math.Sqrt(dx*dx + dy*dy)
}
