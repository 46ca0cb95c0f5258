package track

import "errors"

var (
	// ErrMissingEssentialField means position data was expected but cannot
	// be resolved, or the time field is absent.
	ErrMissingEssentialField = errors.New("missing essential field")
	// ErrInterpolation means a field has no samples to interpolate from.
	ErrInterpolation = errors.New("cannot interpolate from all missing values")
	// ErrInconsistentTrack means cumulative distance decreased.
	ErrInconsistentTrack = errors.New("inconsistent track")
	// ErrLengthMismatch means fields of different lengths were supplied.
	ErrLengthMismatch = errors.New("fields have different lengths")
	// ErrMissingField means a field is neither stored nor derivable.
	ErrMissingField = errors.New("field not available")
	// ErrEmptyField means an aggregate was requested over no samples.
	ErrEmptyField = errors.New("no values to aggregate")
	// ErrDependencyCycle guards the derivation graph.
	ErrDependencyCycle = errors.New("derived field dependency cycle")
)
