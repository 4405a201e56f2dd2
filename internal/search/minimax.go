package search

import (
	"math"

	"github.com/elektrokombinacija/progmatter/internal/core"
)

// goalValue dominates any positional score so reaching the goal within the
// search horizon always wins the comparison. Remaining depth is added to
// prefer earlier arrivals.
const goalValue = 1000.0

// MinimaxPlanner treats the environment as adversarial: the agent's own
// moves are MAX nodes and a hypothetical adversary's move is MIN, explored
// over the same neighbor set with alpha-beta pruning. The adversary has no
// concrete model; the MIN ply is a pessimism bias toward open space, not a
// two-player game. When the depth-bounded walk does not reach the goal the
// remainder is delegated to A*.
type MinimaxPlanner struct {
	Depth int
}

func (p *MinimaxPlanner) Name() string { return "Minimax" }

func (p *MinimaxPlanner) FindPath(v *core.View, start, goal core.Pos) []core.Pos {
	return boundedWalk(v, start, goal, p.depth(), p.step)
}

func (p *MinimaxPlanner) depth() int {
	if p.Depth <= 0 {
		return DefaultDepth
	}
	return p.Depth
}

// step picks the best next cell from pos via depth-bounded alpha-beta.
func (p *MinimaxPlanner) step(v *core.View, pos, goal core.Pos, visited map[core.Pos]bool) (core.Pos, bool) {
	best := math.Inf(-1)
	var bestMove core.Pos
	found := false

	alpha, beta := math.Inf(-1), math.Inf(1)
	for _, next := range v.Neighbors(pos) {
		if visited[next] {
			continue
		}
		visited[next] = true
		value := p.search(v, next, goal, p.depth()-1, alpha, beta, false, visited)
		delete(visited, next)

		if value > best {
			best = value
			bestMove = next
			found = true
		}
		if best > alpha {
			alpha = best
		}
	}

	// A move that leaves us strictly worse than standing still is not an
	// improving move; report no plan and let the caller escalate.
	if found && bestMove != goal && best <= eval(v, pos, goal) {
		return core.Pos{}, false
	}
	return bestMove, found
}

func (p *MinimaxPlanner) search(v *core.View, pos, goal core.Pos, depth int, alpha, beta float64, maximizing bool, visited map[core.Pos]bool) float64 {
	if pos == goal {
		return goalValue + float64(depth)
	}
	if depth == 0 {
		return eval(v, pos, goal)
	}

	expanded := false
	var value float64
	if maximizing {
		value = math.Inf(-1)
	} else {
		value = math.Inf(1)
	}

	for _, next := range v.Neighbors(pos) {
		if visited[next] {
			continue
		}
		expanded = true
		visited[next] = true
		child := p.search(v, next, goal, depth-1, alpha, beta, !maximizing, visited)
		delete(visited, next)

		if maximizing {
			if child > value {
				value = child
			}
			if value > alpha {
				alpha = value
			}
		} else {
			if child < value {
				value = child
			}
			if value < beta {
				beta = value
			}
		}
		if alpha >= beta {
			break
		}
	}

	if !expanded {
		return eval(v, pos, goal)
	}
	return value
}

// eval scores a position by negated distance to goal under the topology's
// metric, nudged by local openness so corridors score below open space.
func eval(v *core.View, pos, goal core.Pos) float64 {
	d := float64(v.Topology().Distance(pos, goal))
	open := float64(v.OpenNeighborCount(pos))
	return -d + 0.1*open
}

// boundedWalk advances one cell at a time using the supplied step function,
// then completes the remainder with A*. Returns nil when no plan exists.
func boundedWalk(
	v *core.View,
	start, goal core.Pos,
	depth int,
	step func(v *core.View, pos, goal core.Pos, visited map[core.Pos]bool) (core.Pos, bool),
) []core.Pos {
	if start == goal {
		return []core.Pos{start}
	}

	path := []core.Pos{start}
	visited := map[core.Pos]bool{start: true}
	cur := start

	for i := 0; i < depth; i++ {
		next, ok := step(v, cur, goal, visited)
		if !ok {
			break
		}
		visited[next] = true
		path = append(path, next)
		cur = next
		if cur == goal {
			return path
		}
	}

	rest := (&AStarPlanner{}).FindPath(v, cur, goal)
	if rest == nil {
		return nil
	}
	return append(path, rest[1:]...)
}
