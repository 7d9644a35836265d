package engine

import (
	"fmt"
	"log"
)

// RuleEngine consumes move-completion events, mutates station and train
// passenger state, and derives the win/lose outcome. Terminal outcomes are
// successful completions of the evaluation, not errors, and are delivered
// exactly once per playthrough session.
type RuleEngine struct {
	net      *Network
	messages LevelMessages
	palette  []string

	terminal   bool
	victory    bool
	loseReason string
}

// NewRuleEngine creates a rule engine bound to a network and its level's
// message templates.
func NewRuleEngine(net *Network, config *LevelConfig) *RuleEngine {
	return &RuleEngine{
		net:      net,
		messages: config.Messages,
		palette:  config.Palette,
	}
}

// Terminal reports whether a win or lose outcome has been delivered
func (r *RuleEngine) Terminal() bool {
	return r.terminal
}

// Victory reports whether the delivered terminal outcome was a win
func (r *RuleEngine) Victory() bool {
	return r.victory
}

// LoseReason returns the lose reason, empty unless the session was lost
func (r *RuleEngine) LoseReason() string {
	return r.loseReason
}

// OnMoveCompleted applies the rules for one completed move and returns the
// notifications to surface. Completions arriving after a terminal outcome are
// ignored: the earlier outcome is conclusive.
func (r *RuleEngine) OnMoveCompleted(train *Train, completion MoveCompletion, destination *GridPoint) []Notification {
	if r.terminal {
		return nil
	}

	if completion.Outcome == OutcomeBlocked {
		// No grid mutation on a collision; the session simply ends.
		return []Notification{r.lose(LoseCollision, r.messages.LoseCollision, train.ID, completion.BlockerID, "")}
	}

	if destination == nil {
		// Should not occur under correct sequencing; ignore defensively.
		log.Printf("rules: arrival for train %s with no destination point", train.ID)
		return nil
	}

	switch destination.Kind {
	case Station:
		return r.arriveAtStation(train, destination)
	case Depot:
		return r.arriveAtDepot(train, destination)
	}
	return nil
}

// arriveAtStation removes the maximal prefix of waiting passengers matching
// the train's color: a head-streak pickup that stops at the first mismatch
// and never skips over it. Zero removals is a legal, silent outcome.
func (r *RuleEngine) arriveAtStation(train *Train, station *GridPoint) []Notification {
	picked := 0
	for {
		head, ok := station.Waiting.Peek()
		if !ok || head != train.ColorIndex {
			break
		}
		station.Waiting.Pop()
		train.CarriedCarts++
		picked++
	}

	if picked == 0 {
		log.Printf("rules: train %s at station %s: %s", train.ID, station.ID, r.messages.NothingPicked)
		return nil
	}
	return []Notification{{
		Type:    NotifyPickup,
		Message: fmt.Sprintf(r.messages.Pickup, picked),
		TrainID: train.ID,
		PointID: station.ID,
		Count:   picked,
	}}
}

// arriveAtDepot applies the depot rules: a color mismatch loses outright,
// arriving "home" while the same color still waits anywhere loses as a
// premature arrival, and a clean arrival wins only once every station is
// empty of every color.
func (r *RuleEngine) arriveAtDepot(train *Train, depot *GridPoint) []Notification {
	if depot.ColorIndex != train.ColorIndex {
		return []Notification{r.lose(LoseWrongDepot, r.messages.LoseWrongDepot, train.ID, "", depot.ID)}
	}
	if r.net.StationsHoldColor(train.ColorIndex) {
		return []Notification{r.lose(LosePrematureDepot, r.messages.LosePrematureDepot, train.ID, "", depot.ID)}
	}
	if r.net.AllStationsEmpty() {
		r.terminal = true
		r.victory = true
		return []Notification{{
			Type:    NotifyWin,
			Message: r.messages.Win,
			TrainID: train.ID,
			PointID: depot.ID,
		}}
	}
	// Other colors are still pending elsewhere; nothing terminal.
	return nil
}

func (r *RuleEngine) lose(reason, message, trainID, blockerID, pointID string) Notification {
	r.terminal = true
	r.loseReason = reason
	return Notification{
		Type:      NotifyLose,
		Message:   message,
		TrainID:   trainID,
		PointID:   pointID,
		Reason:    reason,
		BlockerID: blockerID,
	}
}

// ColorName returns the palette name for a color index, or a numeric
// placeholder for out-of-palette values.
func (r *RuleEngine) ColorName(index int) string {
	if index >= 0 && index < len(r.palette) {
		return r.palette[index]
	}
	return fmt.Sprintf("color-%d", index)
}
