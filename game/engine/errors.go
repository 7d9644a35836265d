package engine

import "errors"

// Contract violations indicate corrupted level data or a broken caller. They
// fail the operation fast and loud. Expected outcomes (no path, zero pickups,
// click with nothing selected) are never represented as errors.
var (
	// ErrInvalidPartState reports a part rotation outside {0, 90, 180, 270}.
	ErrInvalidPartState = errors.New("invalid part state: rotation must be 0, 90, 180 or 270")

	// ErrMalformedPart reports part geometry that cannot carry a train:
	// missing or duplicate exit pins, or an explicit spline with fewer than
	// two points.
	ErrMalformedPart = errors.New("malformed part geometry")

	// ErrMoveInProgress reports a re-entrant move start. Silently abandoning
	// an in-flight trajectory would corrupt the logical/visual position
	// invariant, so the executor refuses instead.
	ErrMoveInProgress = errors.New("move already in progress")

	// ErrPointNotFound reports a click or query against an unknown point ID.
	ErrPointNotFound = errors.New("grid point not found")

	// ErrTrainNotFound reports a selection of an unknown train ID.
	ErrTrainNotFound = errors.New("train not found")
)
