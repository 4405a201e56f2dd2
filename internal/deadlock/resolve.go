package deadlock

import (
	"github.com/elektrokombinacija/progmatter/internal/core"
	"github.com/elektrokombinacija/progmatter/internal/search"
)

// Tactic identifies which rung of the resolution ladder succeeded.
type Tactic int

const (
	TacticNone       Tactic = iota
	TacticSoftReplan        // replan with other agents as soft penalties
	TacticRetreat           // one step to the least-bad unoccupied neighbor
	TacticLastResort        // replan ignoring all agents, walls only
)

func (t Tactic) String() string {
	return [...]string{"None", "SoftReplan", "Retreat", "LastResort"}[t]
}

// DefaultSoftPenalty is the extra step cost of crossing an occupied cell
// during a soft replan. High enough to route around settled agents, low
// enough that a forced crossing stays cheaper than an unreachable verdict.
const DefaultSoftPenalty = 4.0

// Resolver applies the escalating per-agent resolution ladder. Replans use
// A* regardless of the configured strategy: the ladder needs the
// soft-penalty cost model, which only the exact planner honors.
type Resolver struct {
	Grid        *core.Grid
	Topo        core.Topology
	SoftPenalty float64

	// Radius returns the visibility radius for an agent; <= 0 means
	// unbounded (centralized mode). Nil means unbounded for everyone.
	Radius func(a *core.Agent) int
}

// NewResolver creates a resolver with the default soft penalty.
func NewResolver(g *core.Grid, topo core.Topology) *Resolver {
	return &Resolver{Grid: g, Topo: topo, SoftPenalty: DefaultSoftPenalty}
}

func (r *Resolver) radius(a *core.Agent) int {
	if r.Radius == nil {
		return 0
	}
	return r.Radius(a)
}

func (r *Resolver) view(a *core.Agent) *core.View {
	v := core.NewView(r.Grid, r.Topo).ExceptSelf(a.Pos)
	if a.Goal != nil {
		v.ForGoal(*a.Goal)
	}
	v.Masked(a.Pos, r.radius(a))
	return v
}

// Resolve tries the ladder for one deadlocked agent, in order: soft-penalty
// replan, one-step retreat, walls-only replan. Returns the first tactic
// that produced a fresh plan, or TacticNone when all fail.
func (r *Resolver) Resolve(a *core.Agent) Tactic {
	if a.Goal == nil || a.AtGoal() {
		return TacticNone
	}

	if r.softReplan(a) {
		return TacticSoftReplan
	}
	if r.retreat(a) {
		return TacticRetreat
	}
	if r.lastResort(a) {
		return TacticLastResort
	}
	return TacticNone
}

// softReplan routes around other agents by pricing their cells instead of
// blocking them.
func (r *Resolver) softReplan(a *core.Agent) bool {
	penalty := r.SoftPenalty
	if penalty <= 0 {
		penalty = DefaultSoftPenalty
	}
	v := r.view(a).SoftAgents(penalty)
	path := (&search.AStarPlanner{}).FindPath(v, a.Pos, *a.Goal)
	if len(path) < 2 {
		return false
	}
	// A plan whose first step is into an occupied cell resolves nothing.
	if v.Occupied(path[1]) {
		return false
	}
	a.SetPath(path)
	a.Retreating = false
	return true
}

// retreat moves one step to the unoccupied neighbor minimizing the
// resulting distance to goal, then lets the scheduler resume toward the
// original goal.
func (r *Resolver) retreat(a *core.Agent) bool {
	v := r.view(a)
	best := core.Pos{}
	bestDist := -1
	for _, nb := range v.Neighbors(a.Pos) {
		if v.Occupied(nb) {
			continue
		}
		d := r.Topo.Distance(nb, *a.Goal)
		if bestDist < 0 || d < bestDist {
			best, bestDist = nb, d
		}
	}
	if bestDist < 0 {
		return false
	}
	a.SetPath([]core.Pos{a.Pos, best})
	a.Retreating = true
	return true
}

// lastResort replans over walls only, accepting that the path may conflict
// with other agents later; those conflicts will be re-resolved when they
// occur.
func (r *Resolver) lastResort(a *core.Agent) bool {
	v := r.view(a).IgnoreAgents()
	path := (&search.AStarPlanner{}).FindPath(v, a.Pos, *a.Goal)
	if len(path) < 2 {
		return false
	}
	a.SetPath(path)
	a.Retreating = false
	return true
}
