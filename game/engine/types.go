package engine

// PointKind represents the role a grid point plays in the rail network
type PointKind string

const (
	Track   PointKind = "track"
	Station PointKind = "station"
	Depot   PointKind = "depot"

	// Validation constants
	MinGridSize      = 2
	MaxGridSize      = 50
	MaxPaletteSize   = 8
	MaxWaitingPeople = 32
	MaxAdvanceTicks  = 1000

	// PinCount is the number of connection pins every part has. Entering a
	// part at one pin always means exiting at the other.
	PinCount = 2

	// Motion defaults, in grid cell units per tick
	DefaultTrainSpeed      = 0.25
	DefaultCollisionRadius = 0.30

	// Spline defaults
	DefaultSamplesPerSegment = 12
	// TangentPull is the fraction of segment length used as Bezier tangent
	// magnitude when smoothing raw waypoints.
	TangentPull = 0.25
)

// Heading is one of the four cardinal directions a train can face
type Heading string

const (
	HeadingUp    Heading = "up"
	HeadingDown  Heading = "down"
	HeadingLeft  Heading = "left"
	HeadingRight Heading = "right"
)

// Vec2 is a world-space position measured in grid cell units
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GridPoint is a clickable location on the rail network. Points sit at part
// pins; a point never owns its part (the Part reference is shared).
type GridPoint struct {
	ID         string      `json:"id"`
	GridX      int         `json:"grid_x"`
	GridY      int         `json:"grid_y"`
	Kind       PointKind   `json:"kind"`
	Anchor     Vec2        `json:"anchor"` // sub-cell offset within the part's cell
	Part       *PartModel  `json:"-"`
	Direction  Heading     `json:"direction"`
	ColorIndex int         `json:"color_index"` // meaningful for stations and depots
	Waiting    *ColorQueue `json:"waiting_people,omitempty"`
}

// WorldPos returns the point's absolute world-space position
func (p *GridPoint) WorldPos() Vec2 {
	return Vec2{X: float64(p.GridX) + p.Anchor.X, Y: float64(p.GridY) + p.Anchor.Y}
}

// PartModel is a grid-aligned, rotatable piece of rail with exactly two
// connection pins and one or two local-space splines.
type PartModel struct {
	Type     string    `json:"type"`
	Rotation int       `json:"rotation"` // always one of 0, 90, 180, 270
	GridX    int       `json:"grid_x"`
	GridY    int       `json:"grid_y"`
	Exits    [2]string `json:"exits"` // point IDs at pins 0 and 1
	Splines  [][]Vec2  `json:"splines,omitempty"`

	// worldSplines are precomputed by BuildNetwork: local splines oriented by
	// Rotation and anchored at (GridX, GridY), always stored pin0 -> pin1.
	worldSplines [][]Vec2
}

// PinOf returns which pin the given point ID sits at, or (-1, false) when the
// point is not one of this part's exits.
func (pm *PartModel) PinOf(pointID string) (int, bool) {
	for pin, id := range pm.Exits {
		if id == pointID {
			return pin, true
		}
	}
	return -1, false
}

// OtherExit returns the point ID at the opposite pin
func (pm *PartModel) OtherExit(pin int) string {
	return pm.Exits[1-pin]
}

// WorldSpline returns the precomputed world-space curve for the given track
// index (0 for single-track parts, 0 or 1 for double-track parts).
func (pm *PartModel) WorldSpline(track int) []Vec2 {
	if track < 0 || track >= len(pm.worldSplines) {
		return nil
	}
	return pm.worldSplines[track]
}

// Traversal is one part-crossing step within a computed path, recording which
// pin was entered and the cost of the crossing.
type Traversal struct {
	Part       *PartModel `json:"-"`
	EnteredPin int        `json:"entered_pin"`
	Cost       float64    `json:"cost"`
}

// PathResult is the immutable outcome of a single pathfinding query. A failed
// query has Success=false and no traversals; results are never mutated after
// creation.
type PathResult struct {
	Success    bool        `json:"success"`
	Traversals []Traversal `json:"traversals"`
	TotalCost  float64     `json:"total_cost"`
}

// Train is a movable unit on the network. AtPointID is the authoritative
// logical position, updated at move start rather than at arrival so that the
// next pathfinding query originates from the post-click intended orientation.
// Point is the train's own logical point; its grid position, anchor, part and
// direction are copied from the destination when a move is confirmed.
type Train struct {
	ID           string     `json:"id"`
	ColorIndex   int        `json:"color_index"`
	AtPointID    string     `json:"at_point_id"`
	Point        *GridPoint `json:"-"`
	CarriedCarts int        `json:"carried_carts"` // mutated only by the rule engine
}

// Outcome classifies how a move finished
type Outcome string

const (
	OutcomeArrived Outcome = "arrived"
	OutcomeBlocked Outcome = "blocked"
)

// MoveCompletion is the event value a move executor emits exactly once per
// move. It is consumed by the rule engine and then discarded; BlockerID is set
// only for blocked outcomes.
type MoveCompletion struct {
	Outcome   Outcome `json:"outcome"`
	BlockerID string  `json:"blocker_id,omitempty"`
}

// Lose reasons reported in terminal notifications
const (
	LoseCollision      = "collision"
	LoseWrongDepot     = "wrong-depot"
	LosePrematureDepot = "premature-depot"
)

// Notification types emitted toward the presentation layer
const (
	NotifyPickup = "pickup"
	NotifyWin    = "win"
	NotifyLose   = "lose"
)

// Notification is a presentation-facing event produced by the rule engine.
// The core does not know how these are rendered.
type Notification struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	TrainID   string `json:"train_id,omitempty"`
	PointID   string `json:"point_id,omitempty"`
	Count     int    `json:"count,omitempty"`  // pickup count
	Reason    string `json:"reason,omitempty"` // lose reason
	BlockerID string `json:"blocker_id,omitempty"`
}
