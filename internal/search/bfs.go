package search

import (
	"github.com/elektrokombinacija/progmatter/internal/core"
)

// BFSPlanner finds an unweighted shortest path by hop count. It ignores the
// diagonal-cost nuance and soft penalties; used as a cheaper alternate
// planner.
type BFSPlanner struct{}

func (p *BFSPlanner) Name() string { return "BFS" }

func (p *BFSPlanner) FindPath(v *core.View, start, goal core.Pos) []core.Pos {
	if start == goal {
		return []core.Pos{start}
	}

	queue := []core.Pos{start}
	parent := map[core.Pos]core.Pos{start: start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range v.Neighbors(cur) {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			if next == goal {
				return backtrack(parent, start, goal)
			}
			queue = append(queue, next)
		}
	}

	return nil
}

func backtrack(parent map[core.Pos]core.Pos, start, goal core.Pos) []core.Pos {
	var path []core.Pos
	for p := goal; ; p = parent[p] {
		path = append(path, p)
		if p == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
