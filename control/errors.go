package control

import "github.com/pkg/errors"

// Faults reported by Controller.Compute.  They are wrapped with context, so
// compare with errors.Is.
var (
	ErrInvalidMode      = errors.New("invalid control mode")
	ErrNonFinite        = errors.New("angular velocity error is not finite")
	ErrDegenerateThrust = errors.New("desired force vector has zero norm")
)

// Input and configuration errors.
var (
	ErrZeroHeading         = errors.New("desired heading must be a nonzero vector")
	ErrInactiveVariant     = errors.New("feedback for an actuation variant that is not enabled")
	ErrConflictingVariants = errors.New("mass control and manipulator control are mutually exclusive")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrStartupTimeout      = errors.New("timed out waiting for clock and sensors")
)
