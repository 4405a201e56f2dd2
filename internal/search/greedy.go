package search

import (
	"container/heap"

	"github.com/elektrokombinacija/progmatter/internal/core"
)

// GreedyPlanner is greedy best-first search: the frontier is ordered by the
// heuristic alone, so it expands far fewer nodes than A* but gives no
// shortest-path guarantee.
type GreedyPlanner struct{}

func (p *GreedyPlanner) Name() string { return "Greedy" }

func (p *GreedyPlanner) FindPath(v *core.View, start, goal core.Pos) []core.Pos {
	if start == goal {
		return []core.Pos{start}
	}

	topo := v.Topology()
	h := func(q core.Pos) float64 {
		return float64(topo.Distance(q, goal))
	}

	open := &astarHeap{}
	heap.Init(open)
	order := 0
	heap.Push(open, &astarNode{pos: start, f: h(start), order: order})

	seen := map[core.Pos]bool{start: true}

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)

		if current.pos == goal {
			return reconstruct(current)
		}

		for _, next := range v.Neighbors(current.pos) {
			if seen[next] {
				continue
			}
			seen[next] = true
			order++
			heap.Push(open, &astarNode{
				pos:    next,
				f:      h(next),
				order:  order,
				parent: current,
			})
		}
	}

	return nil
}
