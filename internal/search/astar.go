package search

import (
	"container/heap"

	"github.com/elektrokombinacija/progmatter/internal/core"
)

// astarNode for priority queue.
type astarNode struct {
	pos    core.Pos
	g      float64 // Cost so far
	f      float64 // g + h
	order  int     // Insertion order for stable tie-break
	parent *astarNode
	index  int // heap index
}

// astarHeap implements heap.Interface ordered by f, then insertion order.
type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].order < h[j].order
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// AStarPlanner finds the shortest path under the step-cost model
// (orthogonal 1, diagonal √2, plus soft occupancy penalties). The heuristic
// is Manhattan distance under Von Neumann topology and Chebyshev under
// Moore, both admissible for their cost models.
type AStarPlanner struct{}

func (p *AStarPlanner) Name() string { return "AStar" }

func (p *AStarPlanner) FindPath(v *core.View, start, goal core.Pos) []core.Pos {
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
	heap.Push(open, &astarNode{pos: start, g: 0, f: h(start), order: order})

	gScore := map[core.Pos]float64{start: 0}
	closed := make(map[core.Pos]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)

		if current.pos == goal {
			return reconstruct(current)
		}
		if closed[current.pos] {
			continue
		}
		closed[current.pos] = true

		for _, next := range v.Neighbors(current.pos) {
			if closed[next] {
				continue
			}
			tentative := current.g + v.StepCost(current.pos, next)
			if best, seen := gScore[next]; seen && tentative >= best {
				continue
			}
			gScore[next] = tentative
			order++
			heap.Push(open, &astarNode{
				pos:    next,
				g:      tentative,
				f:      tentative + h(next),
				order:  order,
				parent: current,
			})
		}
	}

	return nil // No path found
}

func reconstruct(node *astarNode) []core.Pos {
	var path []core.Pos
	for n := node; n != nil; n = n.parent {
		path = append(path, n.pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
