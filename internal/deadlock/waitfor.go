package deadlock

import (
	"sort"

	"github.com/elektrokombinacija/progmatter/internal/core"
)

// WaitForCycles builds the wait-for graph (agent A points to agent B when
// B currently occupies A's next planned cell) and returns the IDs of every
// agent on a cycle, ascending. Cycles mark livelocks before the idle
// timeout fires, independent of idle time.
func WaitForCycles(agents []*core.Agent) []int {
	byPos := make(map[core.Pos]*core.Agent, len(agents))
	for _, a := range agents {
		byPos[a.Pos] = a
	}

	// Each agent has at most one successor (its unique next cell has at
	// most one occupant), so the wait-for graph is functional and cycles
	// are found by walking successor chains with tri-color marking.
	next := make(map[int]int, len(agents))
	for _, a := range agents {
		cell, ok := a.NextCell()
		if !ok {
			continue
		}
		if b, occupied := byPos[cell]; occupied && b.ID != a.ID {
			next[a.ID] = b.ID
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // on current walk
		black = 2 // finished
	)
	color := make(map[int]int, len(agents))
	onCycle := make(map[int]bool)

	for _, a := range agents {
		if color[a.ID] != white {
			continue
		}
		var chain []int
		id := a.ID
		for {
			color[id] = gray
			chain = append(chain, id)
			succ, ok := next[id]
			if !ok || color[succ] == black {
				break
			}
			if color[succ] == gray {
				// Found a cycle: everything from succ onward in the chain.
				start := 0
				for i, c := range chain {
					if c == succ {
						start = i
						break
					}
				}
				for _, c := range chain[start:] {
					onCycle[c] = true
				}
				break
			}
			id = succ
		}
		for _, c := range chain {
			color[c] = black
		}
	}

	out := make([]int, 0, len(onCycle))
	for id := range onCycle {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
