package core

import (
	"fmt"
	"sort"
)

// CellKind classifies a grid cell.
type CellKind uint8

const (
	Empty CellKind = iota
	Wall
	Occupied // exactly one agent's position equals this cell
)

func (k CellKind) String() string {
	return [...]string{"Empty", "Wall", "Occupied"}[k]
}

// Grid is a fixed-size N×N cell matrix plus a separate set of goal cells.
// The goal set is disjoint from wall cells; goals may coincide with
// occupied or empty cells.
type Grid struct {
	n     int
	cells [][]CellKind
	goals map[Pos]struct{}
}

// NewGrid creates an empty n×n grid.
func NewGrid(n int) (*Grid, error) {
	if n < MinGridSize || n > MaxGridSize {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrGridSize, n, MinGridSize, MaxGridSize)
	}
	cells := make([][]CellKind, n)
	for i := range cells {
		cells[i] = make([]CellKind, n)
	}
	return &Grid{n: n, cells: cells, goals: make(map[Pos]struct{})}, nil
}

// Size returns the grid dimension N.
func (g *Grid) Size() int { return g.n }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < g.n && p.Col >= 0 && p.Col < g.n
}

// Kind returns the cell kind at p. Out-of-bounds cells read as Wall so
// callers can treat them uniformly as impassable.
func (g *Grid) Kind(p Pos) CellKind {
	if !g.InBounds(p) {
		return Wall
	}
	return g.cells[p.Row][p.Col]
}

// SetWall marks p as a wall. A wall cell cannot be a goal.
func (g *Grid) SetWall(p Pos) error {
	if !g.InBounds(p) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	if _, ok := g.goals[p]; ok {
		return fmt.Errorf("%w: goal at %v", ErrOverlapsWall, p)
	}
	g.cells[p.Row][p.Col] = Wall
	return nil
}

// SetOccupied marks p as occupied by an agent.
func (g *Grid) SetOccupied(p Pos) error {
	if !g.InBounds(p) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	if g.cells[p.Row][p.Col] == Wall {
		return fmt.Errorf("%w: %v", ErrOverlapsWall, p)
	}
	g.cells[p.Row][p.Col] = Occupied
	return nil
}

// Clear resets p to Empty.
func (g *Grid) Clear(p Pos) {
	if g.InBounds(p) {
		g.cells[p.Row][p.Col] = Empty
	}
}

// AddGoal adds p to the goal set.
func (g *Grid) AddGoal(p Pos) error {
	if !g.InBounds(p) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	if g.cells[p.Row][p.Col] == Wall {
		return fmt.Errorf("%w: %v", ErrOverlapsWall, p)
	}
	g.goals[p] = struct{}{}
	return nil
}

// RemoveGoal deletes p from the goal set.
func (g *Grid) RemoveGoal(p Pos) {
	delete(g.goals, p)
}

// IsGoal reports whether p is a goal cell.
func (g *Grid) IsGoal(p Pos) bool {
	_, ok := g.goals[p]
	return ok
}

// Goals returns the goal set in row-major order for deterministic iteration.
func (g *Grid) Goals() []Pos {
	out := make([]Pos, 0, len(g.goals))
	for p := range g.goals {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// GoalCount returns the number of goal cells.
func (g *Grid) GoalCount() int { return len(g.goals) }

// OccupiedCount returns the number of occupied cells.
func (g *Grid) OccupiedCount() int {
	count := 0
	for _, row := range g.cells {
		for _, k := range row {
			if k == Occupied {
				count++
			}
		}
	}
	return count
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([][]CellKind, g.n)
	for i := range cells {
		cells[i] = make([]CellKind, g.n)
		copy(cells[i], g.cells[i])
	}
	goals := make(map[Pos]struct{}, len(g.goals))
	for p := range g.goals {
		goals[p] = struct{}{}
	}
	return &Grid{n: g.n, cells: cells, goals: goals}
}
