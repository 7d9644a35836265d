package engine

import "math"

// Trajectory is an ordered sequence of world-space points a train follows
type Trajectory []Vec2

// Length returns the total polyline length of the trajectory
func (t Trajectory) Length() float64 {
	total := 0.0
	for i := 1; i < len(t); i++ {
		total += pointDistance(t[i-1], t[i])
	}
	return total
}

// CompileTrajectory converts a path result into a world-space trajectory. Each
// traversed part contributes its own precomputed world spline in traversal
// order, reversed when the part was entered at pin 1. The compiler only
// concatenates: smoothness comes from each part publishing tangent-continuous
// curves, not from re-smoothing across part boundaries. Degenerate input
// (fewer than two key points overall) yields an empty trajectory.
func CompileTrajectory(path PathResult) Trajectory {
	if !path.Success || len(path.Traversals) == 0 {
		return Trajectory{}
	}

	var out Trajectory
	for _, tr := range path.Traversals {
		track := 0
		if len(tr.Part.worldSplines) > 1 {
			track = tr.EnteredPin
		}
		spline := tr.Part.WorldSpline(track)
		if len(spline) == 0 {
			continue
		}

		oriented := spline
		if tr.EnteredPin == 1 {
			oriented = make([]Vec2, len(spline))
			for i, p := range spline {
				oriented[len(spline)-1-i] = p
			}
		}

		for _, p := range oriented {
			// Part boundaries repeat the shared pin point; keep one copy.
			if n := len(out); n > 0 && pointDistance(out[n-1], p) < costEpsilon {
				continue
			}
			out = append(out, p)
		}
	}

	if len(out) < 2 {
		return Trajectory{}
	}
	return out
}

// SmoothWaypoints turns an arbitrary ordered waypoint list into a smooth
// sequence of cubic-Bezier-sampled points. It is used wherever a raw waypoint
// list, rather than a compiled rail path, needs visual smoothing.
//
// Tangents at interior points follow the direction between the neighbours two
// positions apart; at the endpoints the tangent equals the segment direction.
// Tangent magnitude is TangentPull of the segment length, a quarter-length
// pull toward the neighbour that bends gently without overshoot. Each segment
// contributes samplesPerSegment points; the exact final key point closes the
// sequence.
func SmoothWaypoints(points []Vec2, samplesPerSegment int) []Vec2 {
	if len(points) < 2 || samplesPerSegment < 1 {
		return []Vec2{}
	}

	out := make([]Vec2, 0, (len(points)-1)*samplesPerSegment+1)
	for i := 0; i < len(points)-1; i++ {
		p0 := points[i]
		p3 := points[i+1]
		segLen := pointDistance(p0, p3)

		c1 := vecAdd(p0, vecScale(tangentAt(points, i), TangentPull*segLen))
		c2 := vecSub(p3, vecScale(tangentAt(points, i+1), TangentPull*segLen))

		for j := 0; j < samplesPerSegment; j++ {
			t := float64(j) / float64(samplesPerSegment)
			out = append(out, cubicBezier(p0, c1, c2, p3, t))
		}
	}
	// Endpoint inclusion is exact, not approximate.
	out = append(out, points[len(points)-1])
	return out
}

// tangentAt returns the unit tangent direction for waypoint i: interior
// points use the direction spanning their two neighbours, endpoints fall back
// to the adjacent segment direction.
func tangentAt(points []Vec2, i int) Vec2 {
	switch {
	case i == 0:
		return vecNorm(vecSub(points[1], points[0]))
	case i == len(points)-1:
		return vecNorm(vecSub(points[i], points[i-1]))
	default:
		return vecNorm(vecSub(points[i+1], points[i-1]))
	}
}

// cubicBezier evaluates the cubic Bezier curve at parameter t
func cubicBezier(p0, c1, c2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Vec2{
		X: b0*p0.X + b1*c1.X + b2*c2.X + b3*p3.X,
		Y: b0*p0.Y + b1*c1.Y + b2*c2.Y + b3*p3.Y,
	}
}

func vecAdd(a, b Vec2) Vec2 { return Vec2{X: a.X + b.X, Y: a.Y + b.Y} }
func vecSub(a, b Vec2) Vec2 { return Vec2{X: a.X - b.X, Y: a.Y - b.Y} }

func vecScale(v Vec2, s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

func vecNorm(v Vec2) Vec2 {
	mag := math.Sqrt(v.X*v.X + v.Y*v.Y)
	if mag == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / mag, Y: v.Y / mag}
}
