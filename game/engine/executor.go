package engine

import (
	"log"
	"math"
	"sort"
)

// ExecutorState is the executor's lifecycle phase
type ExecutorState string

const (
	ExecIdle   ExecutorState = "idle"
	ExecMoving ExecutorState = "moving"
)

// MoveExecutor drives one train along a compiled trajectory. One long-lived
// instance exists per train and is reused across moves: Idle -> Moving ->
// {Arrived | Blocked} -> Idle. Executors never share mutable motion state;
// the only shared input is the read-only position snapshot used for collision
// checks, taken at the start of each tick.
type MoveExecutor struct {
	trainID string
	speed   float64 // world units advanced per tick
	radius  float64 // collision tolerance

	state   ExecutorState
	traj    Trajectory
	segment int
	offset  float64 // distance travelled along the current segment
	pos     Vec2
}

// NewMoveExecutor creates an idle executor positioned at start
func NewMoveExecutor(trainID string, start Vec2, speed, radius float64) *MoveExecutor {
	return &MoveExecutor{
		trainID: trainID,
		speed:   speed,
		radius:  radius,
		state:   ExecIdle,
		pos:     start,
	}
}

// State returns the executor's current lifecycle phase
func (e *MoveExecutor) State() ExecutorState {
	return e.state
}

// Position returns the train's current world-space position
func (e *MoveExecutor) Position() Vec2 {
	return e.pos
}

// TrainID returns the owning train's ID
func (e *MoveExecutor) TrainID() string {
	return e.trainID
}

// MoveAlongPath starts traversing a trajectory. A trajectory with fewer than
// two points is an expected degenerate case: it is logged and ignored.
// Re-issuing a move while one is in flight is a contract violation; the click
// protocol gates a second click behind a completed interaction, so this fails
// loudly instead of silently abandoning the active trajectory.
func (e *MoveExecutor) MoveAlongPath(traj Trajectory) error {
	if e.state == ExecMoving {
		return ErrMoveInProgress
	}
	if len(traj) < 2 {
		log.Printf("executor %s: ignoring trajectory with %d points", e.trainID, len(traj))
		return nil
	}
	e.traj = traj
	e.segment = 0
	e.offset = 0
	e.pos = traj[0]
	e.state = ExecMoving
	return nil
}

// Tick advances the train by one scheduling step. snapshot holds every
// train's position at the start of the tick, keyed by train ID; the executor
// ignores its own entry. When the move finishes this tick, Tick returns the
// completion event and true, and the executor is back in Idle before the
// caller sees the event.
func (e *MoveExecutor) Tick(snapshot map[string]Vec2) (MoveCompletion, bool) {
	if e.state != ExecMoving {
		return MoveCompletion{}, false
	}

	lastSafe := e.pos
	budget := e.speed
	arrived := false

	for budget > 0 {
		from := e.traj[e.segment]
		to := e.traj[e.segment+1]
		segLen := pointDistance(from, to)
		remaining := segLen - e.offset

		if budget < remaining {
			e.offset += budget
			t := e.offset / segLen
			e.pos = Vec2{X: from.X + (to.X-from.X)*t, Y: from.Y + (to.Y-from.Y)*t}
			budget = 0
			break
		}

		budget -= remaining
		e.segment++
		e.offset = 0
		e.pos = to
		if e.segment >= len(e.traj)-1 {
			arrived = true
			break
		}
	}

	if blocker, hit := e.collides(snapshot); hit {
		// Freeze at the last safe position; motion halts immediately.
		e.pos = lastSafe
		e.reset()
		return MoveCompletion{Outcome: OutcomeBlocked, BlockerID: blocker}, true
	}

	if arrived {
		e.pos = e.traj[len(e.traj)-1]
		e.reset()
		return MoveCompletion{Outcome: OutcomeArrived}, true
	}
	return MoveCompletion{}, false
}

// collides reports the closest other train within the collision tolerance
// radius, scanning in sorted ID order for reproducible blocker attribution.
func (e *MoveExecutor) collides(snapshot map[string]Vec2) (string, bool) {
	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		if id != e.trainID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	blocker := ""
	best := math.Inf(1)
	for _, id := range ids {
		if d := pointDistance(e.pos, snapshot[id]); d <= e.radius && d < best {
			best = d
			blocker = id
		}
	}
	return blocker, blocker != ""
}

// reset returns the executor to Idle, keeping its position
func (e *MoveExecutor) reset() {
	e.state = ExecIdle
	e.traj = nil
	e.segment = 0
	e.offset = 0
}
