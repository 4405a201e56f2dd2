package search

import (
	"math"

	"github.com/elektrokombinacija/progmatter/internal/core"
)

// ExpectimaxPlanner is structurally like Minimax but replaces the
// adversary's MIN node with an expectation over neighbor transitions. The
// transition weight favors moves that reduce Manhattan distance to the goal
// and that sit in open space (few walled neighbors). Falls back to A* for
// path completion like Minimax.
type ExpectimaxPlanner struct {
	Depth int
}

func (p *ExpectimaxPlanner) Name() string { return "Expectimax" }

func (p *ExpectimaxPlanner) FindPath(v *core.View, start, goal core.Pos) []core.Pos {
	return boundedWalk(v, start, goal, p.depth(), p.step)
}

func (p *ExpectimaxPlanner) depth() int {
	if p.Depth <= 0 {
		return DefaultDepth
	}
	return p.Depth
}

func (p *ExpectimaxPlanner) step(v *core.View, pos, goal core.Pos, visited map[core.Pos]bool) (core.Pos, bool) {
	best := math.Inf(-1)
	var bestMove core.Pos
	found := false

	for _, next := range v.Neighbors(pos) {
		if visited[next] {
			continue
		}
		visited[next] = true
		value := p.search(v, next, goal, p.depth()-1, false, visited)
		delete(visited, next)

		if value > best {
			best = value
			bestMove = next
			found = true
		}
	}

	if found && bestMove != goal && best <= eval(v, pos, goal) {
		return core.Pos{}, false
	}
	return bestMove, found
}

func (p *ExpectimaxPlanner) search(v *core.View, pos, goal core.Pos, depth int, maximizing bool, visited map[core.Pos]bool) float64 {
	if pos == goal {
		return goalValue + float64(depth)
	}
	if depth == 0 {
		return eval(v, pos, goal)
	}

	if maximizing {
		value := math.Inf(-1)
		expanded := false
		for _, next := range v.Neighbors(pos) {
			if visited[next] {
				continue
			}
			expanded = true
			visited[next] = true
			child := p.search(v, next, goal, depth-1, false, visited)
			delete(visited, next)
			if child > value {
				value = child
			}
		}
		if !expanded {
			return eval(v, pos, goal)
		}
		return value
	}

	// Chance node: expectation over neighbor transitions.
	var sum, weightSum float64
	for _, next := range v.Neighbors(pos) {
		if visited[next] {
			continue
		}
		w := transitionWeight(v, pos, next, goal)
		visited[next] = true
		child := p.search(v, next, goal, depth-1, true, visited)
		delete(visited, next)
		sum += w * child
		weightSum += w
	}
	if weightSum == 0 {
		return eval(v, pos, goal)
	}
	return sum / weightSum
}

// transitionWeight estimates how likely a transition into next is: base
// weight 1, a bonus when the move reduces Manhattan distance to the goal,
// and a smaller bonus per open (non-wall) neighbor of the destination.
func transitionWeight(v *core.View, pos, next, goal core.Pos) float64 {
	w := 1.0
	if next.Manhattan(goal) < pos.Manhattan(goal) {
		w += 1.5
	}
	w += 0.25 * float64(v.OpenNeighborCount(next))
	return w
}
