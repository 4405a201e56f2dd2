// Package search implements the interchangeable path planners.
//
// Every planner shares one contract: FindPath returns an ordered sequence of
// positions from start to goal inclusive, or nil when unreachable. A
// one-element result means start == goal. Callers treat an empty or
// single-element result as "no plan" and escalate; it is never an error.
package search

import (
	"github.com/elektrokombinacija/progmatter/internal/core"
)

// Strategy selects a planner implementation.
type Strategy int

const (
	AStar Strategy = iota
	BFS
	Greedy
	Minimax
	Expectimax
)

func (s Strategy) String() string {
	return [...]string{"AStar", "BFS", "Greedy", "Minimax", "Expectimax"}[s]
}

// Strategies lists all planner strategies.
func Strategies() []Strategy {
	return []Strategy{AStar, BFS, Greedy, Minimax, Expectimax}
}

// Planner is the capability shared by all strategies.
type Planner interface {
	// FindPath plans from start to goal over the masked view.
	FindPath(v *core.View, start, goal core.Pos) []core.Pos

	// Name returns the strategy name.
	Name() string
}

// DefaultDepth is the game-tree search depth for Minimax and Expectimax.
const DefaultDepth = 5

// ForStrategy returns the planner for a strategy. Depth applies to the
// depth-bounded planners and falls back to DefaultDepth when <= 0.
func ForStrategy(s Strategy, depth int) Planner {
	if depth <= 0 {
		depth = DefaultDepth
	}
	switch s {
	case BFS:
		return &BFSPlanner{}
	case Greedy:
		return &GreedyPlanner{}
	case Minimax:
		return &MinimaxPlanner{Depth: depth}
	case Expectimax:
		return &ExpectimaxPlanner{Depth: depth}
	default:
		return &AStarPlanner{}
	}
}
