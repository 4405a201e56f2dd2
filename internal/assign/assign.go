// Package assign maps agents one-to-one onto goal cells.
//
// The default method is greedy nearest-available-goal selection over an
// A*-derived cost matrix. This approximates a minimum-cost bipartite
// matching; swapping in a true O(n³) matching is a documented upgrade, not
// a behavioral requirement. An epsilon-price auction is available as an
// alternate method.
package assign

import (
	"fmt"
	"sort"

	"github.com/elektrokombinacija/progmatter/internal/core"
	"github.com/elektrokombinacija/progmatter/internal/search"
)

// Method selects the assignment strategy.
type Method int

const (
	Greedy Method = iota
	Auction
)

func (m Method) String() string {
	return [...]string{"Greedy", "Auction"}[m]
}

// UnreachablePenalty scales the Manhattan distance used as cost when no
// path exists, discouraging but not forbidding infeasible pairings.
const UnreachablePenalty = 10

// Assignment maps agent index to goal index, one-to-one.
type Assignment map[int]int

// CostMatrix holds cost[i][j] for agent i reaching goal j.
type CostMatrix [][]float64

// BuildCostMatrix computes path-length costs on a walls-only view: other
// agents are expected to move, so occupancy is ignored for assignment.
// Matching is a coordinator step, so the view is not visibility-masked even
// in distributed mode; only re-planning is.
// Cost(i,j) = len(A* path) − 1, or UnreachablePenalty × Manhattan distance
// when unreachable.
func BuildCostMatrix(g *core.Grid, topo core.Topology, agents []*core.Agent, goals []core.Pos) CostMatrix {
	planner := &search.AStarPlanner{}
	m := make(CostMatrix, len(agents))
	for i, a := range agents {
		m[i] = make([]float64, len(goals))
		for j, goal := range goals {
			v := core.NewView(g, topo).IgnoreAgents()
			path := planner.FindPath(v, a.Pos, goal)
			if len(path) == 0 {
				m[i][j] = float64(UnreachablePenalty * a.Pos.Manhattan(goal))
			} else {
				m[i][j] = float64(len(path) - 1)
			}
		}
	}
	return m
}

// Plan produces a one-to-one agent→goal mapping minimizing total cost under
// the selected method without touching the agents, so a caller can inspect
// the outcome before committing to it. Fails with ErrInsufficientGoals when
// there are fewer goals than agents.
func Plan(g *core.Grid, topo core.Topology, agents []*core.Agent, goals []core.Pos, method Method) (Assignment, error) {
	if len(goals) < len(agents) {
		return nil, fmt.Errorf("%w: %d goals for %d agents",
			core.ErrInsufficientGoals, len(goals), len(agents))
	}
	if len(agents) == 0 {
		return Assignment{}, nil
	}

	costs := BuildCostMatrix(g, topo, agents, goals)
	switch method {
	case Auction:
		return auction(costs), nil
	default:
		return greedy(costs), nil
	}
}

// Assign runs Plan and commits the result: each agent's goal and initial
// path are set.
func Assign(g *core.Grid, topo core.Topology, agents []*core.Agent, goals []core.Pos, method Method) (Assignment, error) {
	result, err := Plan(g, topo, agents, goals, method)
	if err != nil {
		return nil, err
	}
	Apply(g, topo, result, agents, goals)
	return result, nil
}

// Apply sets each mapped agent's goal and plans its initial walls-only
// path. The path is the coordinator's route handed to the agent; in
// distributed mode subsequent re-planning is what gets masked.
func Apply(g *core.Grid, topo core.Topology, result Assignment, agents []*core.Agent, goals []core.Pos) {
	planner := &search.AStarPlanner{}
	for i, j := range result {
		a := agents[i]
		a.SetGoal(goals[j])
		v := core.NewView(g, topo).IgnoreAgents().ForGoal(goals[j])
		if path := planner.FindPath(v, a.Pos, goals[j]); len(path) > 0 {
			a.SetPath(path)
		}
	}
}

// greedy assigns each agent, in index order, its nearest still-available
// goal.
func greedy(costs CostMatrix) Assignment {
	result := make(Assignment, len(costs))
	taken := make(map[int]bool)

	for i := range costs {
		best, bestCost := -1, 0.0
		for j, c := range costs[i] {
			if taken[j] {
				continue
			}
			if best == -1 || c < bestCost {
				best, bestCost = j, c
			}
		}
		if best >= 0 {
			result[i] = best
			taken[best] = true
		}
	}
	return result
}

// auctionEpsilon is the per-round price increment; small enough that price
// never overrides a full-step cost difference.
const auctionEpsilon = 0.01

// auction runs a simple epsilon-price auction: unassigned agents repeatedly
// bid on the goal with the best net utility (negative cost minus price),
// raising its price each round.
func auction(costs CostMatrix) Assignment {
	n := len(costs)
	nGoals := len(costs[0])

	prices := make([]float64, nGoals)
	result := make(Assignment, n)
	taken := make(map[int]bool)

	for len(result) < n {
		unassigned := -1
		for i := 0; i < n; i++ {
			if _, ok := result[i]; !ok {
				unassigned = i
				break
			}
		}
		if unassigned < 0 {
			break
		}

		best, bestNet := -1, 0.0
		for j := 0; j < nGoals; j++ {
			if taken[j] {
				continue
			}
			net := -costs[unassigned][j] - prices[j]
			if best == -1 || net > bestNet {
				best, bestNet = j, net
			}
		}
		if best < 0 {
			break
		}
		result[unassigned] = best
		taken[best] = true
		prices[best] += auctionEpsilon
	}
	return result
}

// AgentsByIndex returns assignment pairs sorted by agent index, for
// deterministic iteration and logging.
func (a Assignment) AgentsByIndex() [][2]int {
	out := make([][2]int, 0, len(a))
	for i, j := range a {
		out = append(out, [2]int{i, j})
	}
	sort.Slice(out, func(x, y int) bool { return out[x][0] < out[y][0] })
	return out
}
