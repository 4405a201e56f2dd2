package core

import "math"

// OccupancyRule controls how a View treats cells occupied by agents.
type OccupancyRule int

const (
	// OccupancyHard treats occupied cells as impassable obstacles.
	OccupancyHard OccupancyRule = iota
	// OccupancySoft keeps occupied cells passable but adds a step penalty.
	OccupancySoft
	// OccupancyIgnore treats occupied cells as empty; walls only.
	OccupancyIgnore
)

// DiagonalCost is the step cost of a diagonal move under Moore topology.
var DiagonalCost = math.Sqrt2

// View is a read-only masked projection of a Grid used by every planner and
// escalation tactic. It applies, in one place, the wall filter, the agent
// occupancy rule, the distributed-mode visibility mask, and the soft-penalty
// cost model, so callers never copy-and-mask the grid themselves.
type View struct {
	grid *Grid
	topo Topology

	rule    OccupancyRule
	penalty float64 // extra step cost under OccupancySoft

	masked bool // radius-limited visibility active
	center Pos
	radius int

	goal    Pos // always visible and passable, even outside the radius
	hasGoal bool

	self    Pos // planning agent's own cell reads as empty
	hasSelf bool
}

// NewView creates a full-visibility view with hard occupancy.
func NewView(g *Grid, topo Topology) *View {
	return &View{grid: g, topo: topo, rule: OccupancyHard}
}

// SoftAgents switches to soft occupancy with the given step penalty.
func (v *View) SoftAgents(penalty float64) *View {
	v.rule = OccupancySoft
	v.penalty = penalty
	return v
}

// IgnoreAgents makes only walls impassable.
func (v *View) IgnoreAgents() *View {
	v.rule = OccupancyIgnore
	return v
}

// Masked limits visibility to cells within radius (Chebyshev) of center.
// A radius <= 0 means unbounded and leaves the view unmasked.
func (v *View) Masked(center Pos, radius int) *View {
	if radius > 0 {
		v.masked = true
		v.center = center
		v.radius = radius
	}
	return v
}

// ForGoal marks the planning goal, which stays visible through any mask.
func (v *View) ForGoal(goal Pos) *View {
	v.goal = goal
	v.hasGoal = true
	return v
}

// ExceptSelf treats the planning agent's own cell as empty.
func (v *View) ExceptSelf(p Pos) *View {
	v.self = p
	v.hasSelf = true
	return v
}

// Grid returns the underlying grid.
func (v *View) Grid() *Grid { return v.grid }

// Topology returns the view's topology.
func (v *View) Topology() Topology { return v.topo }

// Visible reports whether p can be observed under the visibility mask.
// The planning goal is always visible.
func (v *View) Visible(p Pos) bool {
	if !v.masked {
		return true
	}
	if v.hasGoal && p == v.goal {
		return true
	}
	return v.center.Chebyshev(p) <= v.radius
}

// Passable reports whether a planner may step onto p. Cells beyond the
// visibility mask are impassable, matching distributed-mode planning.
func (v *View) Passable(p Pos) bool {
	if !v.grid.InBounds(p) {
		return false
	}
	if !v.Visible(p) {
		return false
	}
	switch v.grid.Kind(p) {
	case Wall:
		return false
	case Occupied:
		if v.hasSelf && p == v.self {
			return true
		}
		// The goal cell gets no exemption here: under the hard rule an
		// occupied goal blocks planning, which makes a yielding agent hold
		// position until the occupant clears instead of oscillating.
		return v.rule != OccupancyHard
	}
	return true
}

// Occupied reports whether p holds an agent this view can see.
func (v *View) Occupied(p Pos) bool {
	if v.hasSelf && p == v.self {
		return false
	}
	return v.Visible(p) && v.grid.Kind(p) == Occupied
}

// StepCost returns the cost of moving from one cell to an adjacent one:
// 1 orthogonal, √2 diagonal, plus the soft penalty when entering a cell
// occupied under OccupancySoft.
func (v *View) StepCost(from, to Pos) float64 {
	cost := 1.0
	if from.Row != to.Row && from.Col != to.Col {
		cost = DiagonalCost
	}
	if v.rule == OccupancySoft && v.Occupied(to) {
		cost += v.penalty
	}
	return cost
}

// Neighbors enumerates in-bounds, passable cells adjacent to p.
func (v *View) Neighbors(p Pos) []Pos {
	candidates := v.topo.Neighbors(p, v.grid.Size())
	out := candidates[:0]
	for _, q := range candidates {
		if v.Passable(q) {
			out = append(out, q)
		}
	}
	return out
}

// OpenNeighborCount returns how many adjacent cells are not walls.
// Used by the expectimax transition weighting.
func (v *View) OpenNeighborCount(p Pos) int {
	count := 0
	for _, q := range v.topo.Neighbors(p, v.grid.Size()) {
		if v.grid.Kind(q) != Wall {
			count++
		}
	}
	return count
}
