package model

import "github.com/pkg/errors"

// Construction errors. Failures wrap one of these with context; match them with errors.Is.
// Tick and Draw never fail.
var (
	// ErrInconsistentData reports mesh data that references vertices that do not exist.
	ErrInconsistentData = errors.New("inconsistent mesh data")

	// ErrCountMismatch reports a mesh list and motion list of different lengths.
	ErrCountMismatch = errors.New("mesh and motion counts differ")

	// ErrShapeMismatch reports a motion that cannot drive the mesh's skeleton.
	ErrShapeMismatch = errors.New("motion does not match skeleton")
)
