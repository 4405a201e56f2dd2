package sim

import (
	"fmt"

	"github.com/elektrokombinacija/progmatter/internal/assign"
	"github.com/elektrokombinacija/progmatter/internal/core"
	"github.com/elektrokombinacija/progmatter/internal/search"
)

// Config holds the complete simulation setup.
type Config struct {
	// Grid layout.
	GridSize int
	Walls    []core.Pos
	Agents   []core.Pos
	Goals    []core.Pos

	// Modes.
	Topology core.Topology
	Strategy search.Strategy
	Movement core.MovementMode
	Decision core.DecisionMode

	// Assignment method.
	Assignment assign.Method

	// Depth for the depth-bounded planners; <= 0 uses search.DefaultDepth.
	MinimaxDepth int

	// VisibilityRadius applies in Distributed decision mode; ignored in
	// Centralized mode.
	VisibilityRadius int

	// Seed for the random-move fallback, for reproducibility.
	Seed int64
}

// DefaultConfig returns a runnable baseline configuration.
func DefaultConfig() Config {
	return Config{
		GridSize:         core.DefaultGridSize,
		Topology:         core.VonNeumann,
		Strategy:         search.AStar,
		Movement:         core.Parallel,
		Decision:         core.Centralized,
		Assignment:       assign.Greedy,
		MinimaxDepth:     search.DefaultDepth,
		VisibilityRadius: 3,
		Seed:             42,
	}
}

// buildGrid validates the configuration and constructs the grid with walls
// and goals placed. Agents are placed by the caller.
func (c Config) buildGrid() (*core.Grid, error) {
	g, err := core.NewGrid(c.GridSize)
	if err != nil {
		return nil, err
	}
	for _, w := range c.Walls {
		if err := g.SetWall(w); err != nil {
			return nil, err
		}
	}
	seen := make(map[core.Pos]bool, len(c.Agents))
	for _, p := range c.Agents {
		if seen[p] {
			return nil, fmt.Errorf("%w: agent at %v", core.ErrDuplicatePosition, p)
		}
		seen[p] = true
		if !g.InBounds(p) {
			return nil, fmt.Errorf("%w: agent at %v", core.ErrOutOfBounds, p)
		}
		if g.Kind(p) == core.Wall {
			return nil, fmt.Errorf("%w: agent at %v", core.ErrOverlapsWall, p)
		}
	}
	seen = make(map[core.Pos]bool, len(c.Goals))
	for _, p := range c.Goals {
		if seen[p] {
			return nil, fmt.Errorf("%w: goal at %v", core.ErrDuplicatePosition, p)
		}
		seen[p] = true
		if err := g.AddGoal(p); err != nil {
			return nil, err
		}
	}
	return g, nil
}
