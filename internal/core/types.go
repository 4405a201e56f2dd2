// Package core defines the grid domain model for progmatter.
package core

import "strconv"

// Pos is a cell coordinate on the grid.
type Pos struct {
	Row, Col int
}

func (p Pos) String() string {
	return "(" + strconv.Itoa(p.Row) + "," + strconv.Itoa(p.Col) + ")"
}

// Manhattan returns the L1 distance to q.
func (p Pos) Manhattan(q Pos) int {
	return abs(p.Row-q.Row) + abs(p.Col-q.Col)
}

// Chebyshev returns the L∞ distance to q.
func (p Pos) Chebyshev(q Pos) int {
	dr, dc := abs(p.Row-q.Row), abs(p.Col-q.Col)
	if dr > dc {
		return dr
	}
	return dc
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Topology selects the admissible step vectors.
type Topology int

const (
	VonNeumann Topology = iota // 4-connected: orthogonal steps only
	Moore                      // 8-connected: orthogonal + diagonal
)

func (t Topology) String() string {
	return [...]string{"VonNeumann", "Moore"}[t]
}

var vonNeumannOffsets = [][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
var mooreOffsets = [][2]int{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {1, -1}, {-1, -1}, {-1, 1},
}

// Offsets returns the step vectors for the topology.
// Orthogonal steps come first so insertion-order tie-breaks stay stable.
func (t Topology) Offsets() [][2]int {
	if t == Moore {
		return mooreOffsets
	}
	return vonNeumannOffsets
}

// Neighbors enumerates in-bounds cells adjacent to p on an n×n grid.
// Out-of-bounds candidates are silently dropped.
func (t Topology) Neighbors(p Pos, n int) []Pos {
	offsets := t.Offsets()
	out := make([]Pos, 0, len(offsets))
	for _, d := range offsets {
		q := Pos{Row: p.Row + d[0], Col: p.Col + d[1]}
		if q.Row >= 0 && q.Row < n && q.Col >= 0 && q.Col < n {
			out = append(out, q)
		}
	}
	return out
}

// Distance returns the heuristic distance matching the topology:
// Manhattan for VonNeumann, Chebyshev for Moore.
func (t Topology) Distance(p, q Pos) int {
	if t == Moore {
		return p.Chebyshev(q)
	}
	return p.Manhattan(q)
}

// DecisionMode selects planning visibility.
type DecisionMode int

const (
	Centralized DecisionMode = iota // full-grid visibility
	Distributed                     // radius-limited visibility
)

func (m DecisionMode) String() string {
	return [...]string{"Centralized", "Distributed"}[m]
}

// MovementMode selects how many agents may commit a move per tick.
type MovementMode int

const (
	Parallel   MovementMode = iota // all eligible agents, priority-ordered
	Sequential                     // exactly one agent per tick
)

func (m MovementMode) String() string {
	return [...]string{"Parallel", "Sequential"}[m]
}
