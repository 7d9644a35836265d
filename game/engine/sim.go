package engine

import (
	"fmt"
	"log"
	"sort"
)

// ClickResult is the outcome of one target click. A rejected click carries a
// human-readable reason; an accepted click carries the world-space trajectory
// the presentation layer should animate.
type ClickResult struct {
	Accepted   bool       `json:"accepted"`
	Reason     string     `json:"reason,omitempty"`
	TrainID    string     `json:"train_id,omitempty"`
	TargetID   string     `json:"target_id,omitempty"`
	PathCost   float64    `json:"path_cost,omitempty"`
	Trajectory Trajectory `json:"trajectory,omitempty"`
}

// TrainState is a serialisable view of one train
type TrainState struct {
	ID           string  `json:"id"`
	ColorIndex   int     `json:"color_index"`
	ColorName    string  `json:"color_name"`
	AtPointID    string  `json:"at_point_id"`
	CarriedCarts int     `json:"carried_carts"`
	Position     Vec2    `json:"position"`
	Moving       bool    `json:"moving"`
	Direction    Heading `json:"direction"`
}

// PointState is a serialisable view of one grid point
type PointState struct {
	ID         string    `json:"id"`
	Kind       PointKind `json:"kind"`
	ColorIndex int       `json:"color_index"`
	Direction  Heading   `json:"direction"`
	Position   Vec2      `json:"position"`
	Waiting    []int     `json:"waiting_people"`
}

// GameState is the complete serialisable simulation state
type GameState struct {
	LevelName     string       `json:"level_name"`
	Description   string       `json:"description"`
	Tick          int64        `json:"tick"`
	Message       string       `json:"message"`
	SelectedTrain string       `json:"selected_train,omitempty"`
	GameOver      bool         `json:"game_over"`
	Victory       bool         `json:"victory"`
	LoseReason    string       `json:"lose_reason,omitempty"`
	TotalWaiting  int          `json:"total_waiting"`
	Trains        []TrainState `json:"trains"`
	Points        []PointState `json:"points"`
}

// Simulation is the explicit dependency-injected context for one playthrough:
// it owns the grid model, the train registry, the per-train move executors and
// the rule engine. There is no process-wide mutable state; every session holds
// its own Simulation.
//
// The selection and pending-target fields are UI-adjacent state scoped to one
// interaction in flight; they are reset to empty on every terminal branch
// (path not found, move start, block) since a stale pending target is a
// correctness bug.
type Simulation struct {
	config *LevelConfig
	net    *Network
	rules  *RuleEngine

	trains   map[string]*Train
	trainIDs []string // sorted, for deterministic tick order
	execs    map[string]*MoveExecutor

	selected      string
	pendingTarget string
	pendingPath   *PathResult

	tick    int64
	message string
}

// NewSimulation validates a level config, builds its network, and places the
// trains at their start points.
func NewSimulation(config *LevelConfig) (*Simulation, error) {
	applyLevelDefaults(config)
	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}
	net, err := BuildNetwork(config)
	if err != nil {
		return nil, err
	}

	sim := &Simulation{
		config:  config,
		net:     net,
		rules:   NewRuleEngine(net, config),
		trains:  make(map[string]*Train, len(config.Trains)),
		execs:   make(map[string]*MoveExecutor, len(config.Trains)),
		message: config.Messages.Welcome,
	}

	for _, tc := range config.Trains {
		start := net.Points[tc.StartPoint]
		train := &Train{
			ID:         tc.ID,
			ColorIndex: tc.ColorIndex,
			AtPointID:  tc.StartPoint,
			Point: &GridPoint{
				ID:         tc.ID + "@logical",
				GridX:      start.GridX,
				GridY:      start.GridY,
				Kind:       Track,
				Anchor:     start.Anchor,
				Part:       start.Part,
				Direction:  start.Direction,
				ColorIndex: tc.ColorIndex,
			},
		}
		sim.trains[tc.ID] = train
		sim.trainIDs = append(sim.trainIDs, tc.ID)
		sim.execs[tc.ID] = NewMoveExecutor(tc.ID, start.WorldPos(), config.TrainSpeed, config.CollisionRadius)
	}
	sort.Strings(sim.trainIDs)

	return sim, nil
}

// Network exposes the rail network, read-only by convention
func (s *Simulation) Network() *Network {
	return s.net
}

// Config returns the level definition this simulation runs
func (s *Simulation) Config() *LevelConfig {
	return s.config
}

// Train returns a train by ID
func (s *Simulation) Train(id string) (*Train, bool) {
	t, ok := s.trains[id]
	return t, ok
}

// SelectTrain marks a train as the subject of the next target click
func (s *Simulation) SelectTrain(id string) error {
	if _, ok := s.trains[id]; !ok {
		return fmt.Errorf("%w: %q", ErrTrainNotFound, id)
	}
	s.selected = id
	return nil
}

// SelectedTrain returns the currently selected train ID, empty when none
func (s *Simulation) SelectedTrain() string {
	return s.selected
}

// OnPointClicked confirms a move for the selected train toward the clicked
// point. Clicking with no train selected is a warning no-op, and an
// unreachable target is an expected rejection; both come back as a
// non-accepted ClickResult. A click while the selected train is still moving
// is a contract violation: the click protocol gates a second click behind a
// completed interaction.
func (s *Simulation) OnPointClicked(pointID string) (*ClickResult, error) {
	target, ok := s.net.Point(pointID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPointNotFound, pointID)
	}
	if s.rules.Terminal() {
		return &ClickResult{Accepted: false, Reason: "session is over"}, nil
	}
	if s.selected == "" {
		log.Printf("sim: click on %s with no train selected", pointID)
		return &ClickResult{Accepted: false, Reason: s.config.Messages.NothingSelected}, nil
	}

	train := s.trains[s.selected]
	exec := s.execs[train.ID]
	if exec.State() == ExecMoving {
		return nil, ErrMoveInProgress
	}

	s.pendingTarget = pointID
	path := FindPath(s.net, train.AtPointID, pointID)
	if !path.Success {
		s.resetInteraction()
		log.Printf("sim: no path from %s to %s for train %s", train.AtPointID, pointID, train.ID)
		return &ClickResult{Accepted: false, Reason: s.config.Messages.NoPath, TrainID: train.ID, TargetID: pointID}, nil
	}
	s.pendingPath = &path

	// Compile the animation before touching any state. A degenerate trajectory
	// means the executor would never run the move, and confirming the logical
	// position anyway would strand the train: logically arrived, visually
	// parked, no completion event ever dispatched to the rules.
	traj := CompileTrajectory(path)
	if len(traj) < 2 {
		s.resetInteraction()
		return nil, fmt.Errorf("compiling trajectory to %s: %w", pointID, ErrMalformedPart)
	}

	// The move is confirmed. The destination's facing and the train's logical
	// point update now, before motion starts, so the next pathfinding query
	// originates from the orientation the train will visually have on arrival.
	last := path.Traversals[len(path.Traversals)-1]
	heading, err := ResolveDirection(last.Part.Rotation, last.EnteredPin)
	if err != nil {
		s.resetInteraction()
		return nil, fmt.Errorf("confirming move to %s: %w", pointID, err)
	}
	target.Direction = heading

	train.Point.GridX = target.GridX
	train.Point.GridY = target.GridY
	train.Point.Anchor = target.Anchor
	train.Point.Part = target.Part
	train.Point.Direction = heading
	train.AtPointID = target.ID

	if err := exec.MoveAlongPath(traj); err != nil {
		s.resetInteraction()
		return nil, err
	}

	result := &ClickResult{
		Accepted:   true,
		TrainID:    train.ID,
		TargetID:   pointID,
		PathCost:   path.TotalCost,
		Trajectory: traj,
	}
	s.resetInteraction()
	return result, nil
}

// resetInteraction clears the one-interaction-in-flight state
func (s *Simulation) resetInteraction() {
	s.selected = ""
	s.pendingTarget = ""
	s.pendingPath = nil
}

// Tick advances the simulation clock by one step. Every executor advances
// against the position snapshot taken at the start of the tick, so collision
// checks never read a position written earlier in the same tick. Completions
// are dispatched to the rule engine after all trains have advanced, which
// keeps the grid model single-writer: rule mutations run strictly between
// motion updates.
func (s *Simulation) Tick() []Notification {
	if s.rules.Terminal() {
		return nil
	}
	s.tick++

	snapshot := make(map[string]Vec2, len(s.trainIDs))
	for _, id := range s.trainIDs {
		snapshot[id] = s.execs[id].Position()
	}

	type pending struct {
		train      *Train
		completion MoveCompletion
	}
	var completed []pending
	for _, id := range s.trainIDs {
		if completion, done := s.execs[id].Tick(snapshot); done {
			completed = append(completed, pending{train: s.trains[id], completion: completion})
		}
	}

	var notifications []Notification
	for _, p := range completed {
		destination := s.net.Points[p.train.AtPointID]
		notifications = append(notifications, s.rules.OnMoveCompleted(p.train, p.completion, destination)...)
	}
	if len(notifications) > 0 {
		s.message = notifications[len(notifications)-1].Message
	}
	return notifications
}

// CurrentTick returns the simulation clock value
func (s *Simulation) CurrentTick() int64 {
	return s.tick
}

// AnyMoving reports whether any train currently has a move in flight
func (s *Simulation) AnyMoving() bool {
	for _, id := range s.trainIDs {
		if s.execs[id].State() == ExecMoving {
			return true
		}
	}
	return false
}

// Terminal reports whether the session reached a win or lose outcome
func (s *Simulation) Terminal() bool {
	return s.rules.Terminal()
}

// Snapshot returns the complete serialisable game state in deterministic
// order.
func (s *Simulation) Snapshot() *GameState {
	state := &GameState{
		LevelName:     s.config.Name,
		Description:   s.config.Description,
		Tick:          s.tick,
		Message:       s.message,
		SelectedTrain: s.selected,
		GameOver:      s.rules.Terminal(),
		Victory:       s.rules.Victory(),
		LoseReason:    s.rules.LoseReason(),
		TotalWaiting:  s.net.TotalWaiting(),
	}

	for _, id := range s.trainIDs {
		train := s.trains[id]
		exec := s.execs[id]
		state.Trains = append(state.Trains, TrainState{
			ID:           train.ID,
			ColorIndex:   train.ColorIndex,
			ColorName:    s.rules.ColorName(train.ColorIndex),
			AtPointID:    train.AtPointID,
			CarriedCarts: train.CarriedCarts,
			Position:     exec.Position(),
			Moving:       exec.State() == ExecMoving,
			Direction:    train.Point.Direction,
		})
	}

	for _, id := range s.net.PointIDs() {
		point := s.net.Points[id]
		state.Points = append(state.Points, PointState{
			ID:         point.ID,
			Kind:       point.Kind,
			ColorIndex: point.ColorIndex,
			Direction:  point.Direction,
			Position:   point.WorldPos(),
			Waiting:    point.Waiting.Colors(),
		})
	}
	return state
}
