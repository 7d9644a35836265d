package engine

// headingTable maps (rotation, pin) to the outgoing heading. A two-pin part
// has a fixed local axis; rotation rigidly rotates that axis, so the result is
// a lookup rather than a trigonometric computation, keeping headings snapped
// to the four cardinal directions used throughout the grid model.
var headingTable = map[int][2]Heading{
	0:   {HeadingDown, HeadingUp},
	90:  {HeadingLeft, HeadingRight},
	180: {HeadingUp, HeadingDown},
	270: {HeadingRight, HeadingLeft},
}

// ResolveDirection maps a part rotation and an entered exit pin to the
// outgoing heading. It is total over rotation in {0, 90, 180, 270} and pin in
// {0, 1}; any other rotation is an input-contract violation reported as
// ErrInvalidPartState.
func ResolveDirection(partRotation, enteredExitPin int) (Heading, error) {
	pair, ok := headingTable[partRotation]
	if !ok {
		return "", ErrInvalidPartState
	}
	if enteredExitPin != 0 && enteredExitPin != 1 {
		return "", ErrMalformedPart
	}
	return pair[enteredExitPin], nil
}

// HeadingDelta returns the unit grid offset for a heading
func HeadingDelta(h Heading) (dx, dy int) {
	switch h {
	case HeadingUp:
		return 0, -1
	case HeadingDown:
		return 0, 1
	case HeadingLeft:
		return -1, 0
	case HeadingRight:
		return 1, 0
	}
	return 0, 0
}
