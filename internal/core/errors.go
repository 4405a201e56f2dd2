package core

import "errors"

// Sentinel errors for configuration validation. All are rejected before a
// simulation starts and are recoverable by the caller correcting input.
var (
	// ErrGridSize indicates a grid dimension outside [MinGridSize, MaxGridSize].
	ErrGridSize = errors.New("core: grid size out of range")
	// ErrOutOfBounds indicates a placement outside the grid.
	ErrOutOfBounds = errors.New("core: position out of bounds")
	// ErrOverlapsWall indicates an agent or goal placed on a wall cell.
	ErrOverlapsWall = errors.New("core: position overlaps wall")
	// ErrDuplicatePosition indicates a repeated position within one placement set.
	ErrDuplicatePosition = errors.New("core: duplicate position")
	// ErrInsufficientGoals indicates fewer goals than agents at start.
	ErrInsufficientGoals = errors.New("core: insufficient goals for agent count")
)

// Grid size bounds.
const (
	MinGridSize     = 5
	MaxGridSize     = 50
	DefaultGridSize = 10
)
