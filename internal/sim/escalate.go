package sim

import (
	"github.com/elektrokombinacija/progmatter/internal/assign"
	"github.com/elektrokombinacija/progmatter/internal/core"
	"github.com/elektrokombinacija/progmatter/internal/events"
	"github.com/elektrokombinacija/progmatter/internal/search"
)

// escalate runs the tick-level resolution ladder after a tick with no
// movement. Tactics are tried in strict order; the first one that changes
// any agent's goal or plan ends the ladder for this tick. Returns false
// when every tactic failed, which terminates the simulation as stuck.
func (s *Simulation) escalate() bool {
	switch {
	case s.chainReassign():
	case s.fullReassign():
	case s.displaceBlocker():
	case s.pairwiseSwap():
	case s.waypointReplan():
	case s.randomMoves():
	default:
		return false
	}
	return true
}

// wallsOnlyPath plans from the agent to its goal over walls only. Nil when
// the goal is structurally unreachable; no agent-level tactic can help then.
func (s *Simulation) wallsOnlyPath(a *core.Agent) []core.Pos {
	if a.Goal == nil {
		return nil
	}
	v := core.NewView(s.grid, s.cfg.Topology).IgnoreAgents()
	return (&search.AStarPlanner{}).FindPath(v, a.Pos, *a.Goal)
}

// freeGoals returns goal cells not assigned to any agent, row-major. A
// displaced agent's temporary cell does not release its original goal.
func (s *Simulation) freeGoals() []core.Pos {
	assigned := make(map[core.Pos]bool, len(s.agents))
	for _, a := range s.agents {
		if g := a.EffectiveGoal(); g != nil {
			assigned[*g] = true
		}
	}
	var out []core.Pos
	for _, g := range s.grid.Goals() {
		if !assigned[g] {
			out = append(out, g)
		}
	}
	return out
}

// chainReassign moves an agent already at its goal onto a free goal when
// its cell sits on a blocked agent's walls-only route. Tried before plain
// reassignment so a single settled blocker does not force rebuilding every
// assignment.
func (s *Simulation) chainReassign() bool {
	free := s.freeGoals()
	if len(free) == 0 {
		return false
	}
	for _, blocked := range s.agents {
		if blocked.AtGoal() || blocked.Goal == nil {
			continue
		}
		route := s.wallsOnlyPath(blocked)
		if len(route) < 2 {
			continue
		}
		onRoute := make(map[core.Pos]bool, len(route))
		for _, p := range route[1:] {
			onRoute[p] = true
		}
		for _, settled := range s.agents {
			if !settled.AtGoal() || settled.PendingReturn || !onRoute[settled.Pos] {
				continue
			}
			for _, g := range free {
				v := s.planView(settled).ForGoal(g)
				path := (&search.AStarPlanner{}).FindPath(v, settled.Pos, g)
				if len(path) < 2 {
					continue
				}
				settled.SetGoal(g)
				settled.SetPath(path)
				s.emit(events.Event{
					Type:   events.TypeReassigned,
					Agent:  settled.ID,
					To:     g,
					Detail: "chain",
				})
				return true
			}
		}
	}
	return false
}

// fullReassign reruns assignment from scratch over all agents and goals.
// The tactic succeeds only when some agent ends up with a different goal
// than the one it was already pursuing; a repeat of the standing
// assignment resolves nothing and hands the tick to the next rung. The
// mapping is computed first and committed only on success, so a no-op
// rerun leaves agents and the event stream untouched.
func (s *Simulation) fullReassign() bool {
	goals := s.grid.Goals()
	result, err := assign.Plan(s.grid, s.cfg.Topology, s.agents, goals, s.cfg.Assignment)
	if err != nil {
		return false
	}

	changed := false
	for i, j := range result {
		standing := s.agents[i].EffectiveGoal()
		if standing == nil || *standing != goals[j] {
			changed = true
			break
		}
	}
	if !changed {
		return false
	}

	for _, a := range s.agents {
		a.PendingReturn = false
		a.ReturnGoal = nil
		a.GoalCooldown = 0
	}
	assign.Apply(s.grid, s.cfg.Topology, result, s.agents, goals)
	for _, pair := range result.AgentsByIndex() {
		a := s.agents[pair[0]]
		s.emit(events.Event{
			Type:  events.TypeAssigned,
			Agent: a.ID,
			From:  a.Pos,
			To:    goals[pair[1]],
		})
	}
	s.emit(events.Event{Type: events.TypeReassigned, Agent: -1, Detail: "full"})
	return true
}

// displaceBlocker pushes an at-goal agent sitting on a blocked agent's
// walls-only route one step aside, preferring a cell off that route. The
// displaced agent holds the adjacent cell as a temporary goal and returns
// after a short cooldown.
func (s *Simulation) displaceBlocker() bool {
	for _, blocked := range s.agents {
		if blocked.AtGoal() || blocked.Goal == nil {
			continue
		}
		route := s.wallsOnlyPath(blocked)
		if len(route) < 2 {
			continue
		}

		var settled *core.Agent
		for _, p := range route[1:] {
			if a := s.agentAt(p); a != nil && a.AtGoal() && !a.PendingReturn {
				settled = a
				break
			}
		}
		if settled == nil {
			continue
		}

		onRoute := make(map[core.Pos]bool, len(route))
		for _, p := range route {
			onRoute[p] = true
		}
		var target *core.Pos
		for _, adj := range s.cfg.Topology.Neighbors(settled.Pos, s.grid.Size()) {
			if s.grid.Kind(adj) != core.Empty {
				continue
			}
			if !onRoute[adj] {
				adj := adj
				target = &adj
				break
			}
			if target == nil {
				adj := adj
				target = &adj
			}
		}
		if target == nil {
			continue
		}

		settled.ReturnGoal = settled.Goal
		settled.PendingReturn = true
		settled.GoalCooldown = waitReplanTicks
		settled.SetGoal(*target)
		settled.SetPath([]core.Pos{settled.Pos, *target})
		s.emit(events.Event{
			Type:   events.TypeDisplaced,
			Agent:  settled.ID,
			From:   settled.Pos,
			To:     *target,
			Detail: "goal blocker",
		})
		return true
	}
	return false
}

// pairwiseSwap exchanges the positions of two adjacent agents when the swap
// strictly reduces their combined remaining distance. Distances are taken
// to each agent's effective goal, so a temporarily displaced agent can be
// swapped straight back onto the goal it has to return to.
func (s *Simulation) pairwiseSwap() bool {
	for i, a := range s.agents {
		ga := a.EffectiveGoal()
		if ga == nil || a.Pos == *ga {
			continue
		}
		for _, b := range s.agents[i+1:] {
			gb := b.EffectiveGoal()
			if gb == nil || b.Pos == *gb {
				continue
			}
			if s.cfg.Topology.Distance(a.Pos, b.Pos) != 1 {
				continue
			}
			cur := a.Pos.Manhattan(*ga) + b.Pos.Manhattan(*gb)
			swapped := b.Pos.Manhattan(*ga) + a.Pos.Manhattan(*gb)
			if swapped >= cur {
				continue
			}
			a.Pos, b.Pos = b.Pos, a.Pos
			s.restoreGoal(a)
			s.restoreGoal(b)
			a.SetPath(nil)
			b.SetPath(nil)
			s.replan(a)
			s.replan(b)
			s.emit(events.Event{
				Type:   events.TypeDisplaced,
				Agent:  a.ID,
				From:   b.Pos,
				To:     a.Pos,
				Detail: "swap",
			})
			s.emit(events.Event{
				Type:   events.TypeDisplaced,
				Agent:  b.ID,
				From:   a.Pos,
				To:     b.Pos,
				Detail: "swap",
			})
			return true
		}
	}
	return false
}

// restoreGoal drops a pending temporary displacement and puts the agent
// back on its original goal.
func (s *Simulation) restoreGoal(a *core.Agent) {
	if !a.PendingReturn {
		return
	}
	orig := *a.ReturnGoal
	a.PendingReturn = false
	a.ReturnGoal = nil
	a.GoalCooldown = 0
	a.SetGoal(orig)
}

// waypointReplan routes a blocked agent in two phases through an
// intermediate cell chosen away from goal-sitting agents, then on to the
// goal.
func (s *Simulation) waypointReplan() bool {
	var settled []core.Pos
	for _, a := range s.agents {
		if a.AtGoal() {
			settled = append(settled, a.Pos)
		}
	}
	planner := &search.AStarPlanner{}
	for _, a := range s.agents {
		if a.AtGoal() || a.Goal == nil {
			continue
		}
		if len(s.wallsOnlyPath(a)) < 2 {
			continue
		}
		w, ok := s.waypointFor(a, settled)
		if !ok {
			continue
		}
		leg1 := planner.FindPath(s.planView(a), a.Pos, w)
		if len(leg1) < 2 {
			continue
		}
		v := core.NewView(s.grid, s.cfg.Topology).IgnoreAgents().ForGoal(*a.Goal)
		leg2 := planner.FindPath(v, w, *a.Goal)
		if len(leg2) < 2 {
			continue
		}
		a.SetPath(append(leg1, leg2[1:]...))
		s.emit(events.Event{
			Type:   events.TypePathPlanned,
			Agent:  a.ID,
			From:   a.Pos,
			To:     *a.Goal,
			Detail: "waypoint",
		})
		return true
	}
	return false
}

// waypointFor picks the empty cell near the agent that maximizes the
// minimum distance to any goal-sitting agent.
func (s *Simulation) waypointFor(a *core.Agent, settled []core.Pos) (core.Pos, bool) {
	const reach = 3
	best := core.Pos{}
	bestScore := -1
	for dr := -reach; dr <= reach; dr++ {
		for dc := -reach; dc <= reach; dc++ {
			p := core.Pos{Row: a.Pos.Row + dr, Col: a.Pos.Col + dc}
			if p == a.Pos || s.grid.Kind(p) != core.Empty {
				continue
			}
			score := s.grid.Size() * 2
			for _, q := range settled {
				if d := p.Manhattan(q); d < score {
					score = d
				}
			}
			if score > bestScore {
				best, bestScore = p, score
			}
		}
	}
	return best, bestScore > 0
}

// randomMoves hands every movable off-goal agent a uniformly random legal
// one-step path. Agents whose goals are structurally unreachable are
// excluded; randomness cannot route through a wall.
func (s *Simulation) randomMoves() bool {
	any := false
	for _, a := range s.agents {
		if a.AtGoal() || a.Goal == nil {
			continue
		}
		if len(s.wallsOnlyPath(a)) < 2 {
			continue
		}
		var open []core.Pos
		for _, nb := range s.cfg.Topology.Neighbors(a.Pos, s.grid.Size()) {
			if s.grid.Kind(nb) == core.Empty {
				open = append(open, nb)
			}
		}
		if len(open) == 0 {
			continue
		}
		nb := open[s.rng.Intn(len(open))]
		a.SetPath([]core.Pos{a.Pos, nb})
		a.Retreating = true // resume toward goal after the step
		s.emit(events.Event{
			Type:   events.TypePathPlanned,
			Agent:  a.ID,
			From:   a.Pos,
			To:     nb,
			Detail: "random",
		})
		any = true
	}
	return any
}
