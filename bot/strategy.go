package main

import "fmt"

// Action is one planned select-and-click step
type Action struct {
	TrainID string
	PointID string
	Goal    string // "pickup" or "finish"
}

// Planner picks the next station or depot to route a train to. It plays a
// greedy head-matching strategy: pick up wherever a queue head matches an
// idle train's color, and head for a depot once every queue is empty. Targets
// the server rejected are blacklisted so the bot does not loop on them.
type Planner struct {
	unreachable map[string]bool
}

func NewPlanner() *Planner {
	return &Planner{
		unreachable: make(map[string]bool),
	}
}

// MarkUnreachable blacklists a train/target pair after a rejected click
func (p *Planner) MarkUnreachable(trainID, pointID string) {
	p.unreachable[pairKey(trainID, pointID)] = true
}

// NextAction returns the next useful move, or false when the planner sees
// nothing worth doing (every remaining queue head mismatches every train, or
// all targets were rejected).
func (p *Planner) NextAction(state *GameState) (Action, bool) {
	if state == nil || state.GameOver {
		return Action{}, false
	}

	// Pickups first: a station queue is served strictly from the head, so
	// only a head-color match makes the trip worthwhile.
	for _, point := range state.Points {
		if point.Kind != "station" || len(point.Waiting) == 0 {
			continue
		}
		head := point.Waiting[0]
		for _, train := range state.Trains {
			if train.Moving || train.ColorIndex != head {
				continue
			}
			if train.AtPointID == point.ID {
				// Already there with a mismatched residue behind the head;
				// another color must clear the queue first.
				continue
			}
			if p.unreachable[pairKey(train.ID, point.ID)] {
				continue
			}
			return Action{TrainID: train.ID, PointID: point.ID, Goal: "pickup"}, true
		}
	}

	// Once every station is empty, the first train home wins the game
	if state.TotalWaiting == 0 {
		for _, train := range state.Trains {
			if train.Moving {
				continue
			}
			depot := findDepot(state, train.ColorIndex)
			if depot == "" || depot == train.AtPointID {
				continue
			}
			if p.unreachable[pairKey(train.ID, depot)] {
				continue
			}
			return Action{TrainID: train.ID, PointID: depot, Goal: "finish"}, true
		}
	}

	return Action{}, false
}

func findDepot(state *GameState, color int) string {
	for _, point := range state.Points {
		if point.Kind == "depot" && point.ColorIndex == color {
			return point.ID
		}
	}
	return ""
}

func pairKey(trainID, pointID string) string {
	return fmt.Sprintf("%s->%s", trainID, pointID)
}
