package engine

import (
	"fmt"
	"sort"
)

// localSplines holds the built-in local-space curves per part type, expressed
// for rotation 0 (pin 0 on the bottom edge, pin 1 on the top edge) and always
// running pin0 -> pin1. Parts publish tangent-continuous curves so the motion
// compiler can concatenate them without re-smoothing across part boundaries.
var localSplines = map[string][][]Vec2{
	"straight": {
		{{X: 0.5, Y: 1}, {X: 0.5, Y: 0.5}, {X: 0.5, Y: 0}},
	},
	"curve": {
		{{X: 0.5, Y: 1}, {X: 0.65, Y: 0.5}, {X: 0.5, Y: 0}},
	},
	"double": {
		{{X: 0.35, Y: 1}, {X: 0.35, Y: 0.5}, {X: 0.35, Y: 0}},
		{{X: 0.65, Y: 1}, {X: 0.65, Y: 0.5}, {X: 0.65, Y: 0}},
	},
}

// Network is the immutable rail graph for one level. The core mutates only
// each point's Waiting queue and Direction during play.
type Network struct {
	Points map[string]*GridPoint
	Parts  []*PartModel

	// partsAt indexes the parts touching each point, in declaration order,
	// giving pathfinding a deterministic edge expansion order.
	partsAt map[string][]*PartModel

	// pointIDs is the sorted ID list used for reproducible iteration.
	pointIDs []string
}

// BuildNetwork constructs the rail network for a validated level config,
// precomputing every part's world-space splines.
func BuildNetwork(config *LevelConfig) (*Network, error) {
	net := &Network{
		Points:  make(map[string]*GridPoint, len(config.Points)),
		Parts:   make([]*PartModel, 0, len(config.Parts)),
		partsAt: make(map[string][]*PartModel),
	}

	for _, pc := range config.Points {
		point := &GridPoint{
			ID:         pc.ID,
			GridX:      pc.GridX,
			GridY:      pc.GridY,
			Kind:       pc.Kind,
			Anchor:     pc.Anchor,
			Direction:  pc.Direction,
			ColorIndex: pc.ColorIndex,
		}
		if pc.Kind == Station {
			point.Waiting = NewColorQueue(pc.Waiting...)
		}
		net.Points[pc.ID] = point
		net.pointIDs = append(net.pointIDs, pc.ID)
	}
	sort.Strings(net.pointIDs)

	for i, pc := range config.Parts {
		locals := pc.Splines
		if len(locals) == 0 {
			locals = localSplines[pc.Type]
		}
		if len(locals) == 0 {
			return nil, fmt.Errorf("part %d (%s): no spline data: %w", i, pc.Type, ErrMalformedPart)
		}
		part := &PartModel{
			Type:     pc.Type,
			Rotation: pc.Rotation,
			GridX:    pc.GridX,
			GridY:    pc.GridY,
			Exits:    pc.Exits,
			Splines:  locals,
		}
		if _, ok := headingTable[part.Rotation]; !ok {
			return nil, fmt.Errorf("part %d rotation %d: %w", i, part.Rotation, ErrInvalidPartState)
		}

		part.worldSplines = make([][]Vec2, len(locals))
		for track, spline := range locals {
			world := make([]Vec2, len(spline))
			for j, p := range spline {
				world[j] = part.toWorld(p)
			}
			part.worldSplines[track] = world
		}

		for _, exit := range part.Exits {
			point, ok := net.Points[exit]
			if !ok {
				return nil, fmt.Errorf("part %d references unknown point %q", i, exit)
			}
			// The first part touching a point becomes its owning part; the
			// reference stays shared either way.
			if point.Part == nil {
				point.Part = part
			}
			net.partsAt[exit] = append(net.partsAt[exit], part)
		}

		net.Parts = append(net.Parts, part)
	}

	return net, nil
}

// toWorld rotates a local-space spline point about the cell center by the
// part's rotation (clockwise, in 90 degree steps) and anchors it at the part's
// grid cell.
func (pm *PartModel) toWorld(p Vec2) Vec2 {
	x, y := p.X-0.5, p.Y-0.5
	for i := 0; i < pm.Rotation/90; i++ {
		x, y = -y, x
	}
	return Vec2{X: x + 0.5 + float64(pm.GridX), Y: y + 0.5 + float64(pm.GridY)}
}

// Point returns a point by ID
func (n *Network) Point(id string) (*GridPoint, bool) {
	point, ok := n.Points[id]
	return point, ok
}

// PointIDs returns all point IDs in sorted order
func (n *Network) PointIDs() []string {
	return n.pointIDs
}

// PartsAt returns the parts whose exits include the given point, in
// declaration order.
func (n *Network) PartsAt(pointID string) []*PartModel {
	return n.partsAt[pointID]
}

// StationsHoldColor reports whether any station still has a waiting passenger
// of the given color.
func (n *Network) StationsHoldColor(color int) bool {
	for _, id := range n.pointIDs {
		point := n.Points[id]
		if point.Kind != Station {
			continue
		}
		for _, c := range point.Waiting.Colors() {
			if c == color {
				return true
			}
		}
	}
	return false
}

// AllStationsEmpty reports whether every station has an empty waiting queue
func (n *Network) AllStationsEmpty() bool {
	for _, id := range n.pointIDs {
		point := n.Points[id]
		if point.Kind == Station && point.Waiting.Len() > 0 {
			return false
		}
	}
	return true
}

// TotalWaiting returns the number of waiting passengers across all stations
func (n *Network) TotalWaiting() int {
	total := 0
	for _, id := range n.pointIDs {
		point := n.Points[id]
		if point.Kind == Station {
			total += point.Waiting.Len()
		}
	}
	return total
}
