package core

// Agent is a mobile unit on the grid. Identity is a stable small integer,
// immutable once assigned. Position and path are mutated only by the tick
// scheduler; goal and flags by the assignment and deadlock subsystems.
type Agent struct {
	ID   int
	Pos  Pos
	Goal *Pos  // nil until assignment runs
	Path []Pos // Path[0] always equals Pos when non-empty

	// Transient flags.
	Retreating    bool
	PendingReturn bool // on a temporary goal, original goal to be restored
	ReturnGoal    *Pos // original goal while PendingReturn is set
	GoalCooldown  int  // ticks to hold a temporary goal before returning

	// Visibility. Radius <= 0 means unbounded (centralized mode).
	Radius      int
	boostRadius int
	boostExpiry int // tick at which the temporary widening reverts
}

// NewAgent creates an agent at p with no goal and an empty path.
func NewAgent(id int, p Pos) *Agent {
	return &Agent{ID: id, Pos: p}
}

// EffectiveGoal returns the goal the agent ultimately has to reach: the
// original goal while a temporary displacement is pending, the assigned
// goal otherwise.
func (a *Agent) EffectiveGoal() *Pos {
	if a.PendingReturn {
		return a.ReturnGoal
	}
	return a.Goal
}

// AtGoal reports whether the agent sits on its assigned goal.
func (a *Agent) AtGoal() bool {
	return a.Goal != nil && a.Pos == *a.Goal
}

// SetGoal assigns a goal and resets the path to the single-element prefix.
func (a *Agent) SetGoal(goal Pos) {
	g := goal
	a.Goal = &g
	a.Path = []Pos{a.Pos}
}

// SetPath installs a planned path. Paths not anchored at the agent's current
// position are rejected by truncating to the required single-element prefix,
// preserving the path-prefix invariant.
func (a *Agent) SetPath(path []Pos) {
	if len(path) == 0 || path[0] != a.Pos {
		a.Path = []Pos{a.Pos}
		return
	}
	a.Path = path
}

// NextCell returns the next planned cell, if any.
func (a *Agent) NextCell() (Pos, bool) {
	if len(a.Path) < 2 {
		return Pos{}, false
	}
	return a.Path[1], true
}

// Advance commits the move to the next planned cell.
func (a *Agent) Advance() {
	if len(a.Path) < 2 {
		return
	}
	a.Path = a.Path[1:]
	a.Pos = a.Path[0]
}

// EffectiveRadius returns the visibility radius in force at the given tick,
// accounting for any temporary widening still active.
func (a *Agent) EffectiveRadius(tick int) int {
	if a.boostRadius > 0 && tick < a.boostExpiry {
		return a.boostRadius
	}
	return a.Radius
}

// BoostVisibility temporarily widens the radius until the expiry tick.
// The scheduler checks and reverts it each step; there is no timer.
func (a *Agent) BoostVisibility(radius, untilTick int) {
	if radius > a.Radius {
		a.boostRadius = radius
		a.boostExpiry = untilTick
	}
}

// ExpireBoost reverts an elapsed visibility widening.
func (a *Agent) ExpireBoost(tick int) {
	if a.boostRadius > 0 && tick >= a.boostExpiry {
		a.boostRadius = 0
		a.boostExpiry = 0
	}
}
