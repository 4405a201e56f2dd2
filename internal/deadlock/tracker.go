// Package deadlock tracks per-agent idle time, detects blocking (timeouts
// and wait-for cycles), and drives the per-agent resolution ladder.
// A deadlock is a tracked, self-healing condition, never an error.
package deadlock

import (
	"hash/fnv"
	"sort"

	"github.com/elektrokombinacija/progmatter/internal/core"
)

// IdleThreshold is the idle tick count that marks a candidate deadlock.
const IdleThreshold = 3

// Tracker records per-agent idle duration and the repeated-deadlock
// signature across ticks.
type Tracker struct {
	idle    map[int]int
	prev    map[int]core.Pos
	lastSig uint64
	repeats int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		idle: make(map[int]int),
		prev: make(map[int]core.Pos),
	}
}

// Update compares each agent's position to the previous tick's record:
// unchanged increments the idle counter, movement resets it to zero.
func (t *Tracker) Update(agents []*core.Agent) {
	for _, a := range agents {
		if prev, ok := t.prev[a.ID]; ok && prev == a.Pos {
			t.idle[a.ID]++
		} else {
			t.idle[a.ID] = 0
		}
		t.prev[a.ID] = a.Pos
	}
}

// Idle returns the idle tick count for an agent.
func (t *Tracker) Idle(id int) int { return t.idle[id] }

// TimedOut returns IDs of off-goal agents idle for at least the threshold,
// in ascending ID order.
func (t *Tracker) TimedOut(agents []*core.Agent, threshold int) []int {
	var out []int
	for _, a := range agents {
		if a.AtGoal() {
			continue
		}
		if t.idle[a.ID] >= threshold {
			out = append(out, a.ID)
		}
	}
	sort.Ints(out)
	return out
}

// Reset clears all tracking state.
func (t *Tracker) Reset() {
	t.idle = make(map[int]int)
	t.prev = make(map[int]core.Pos)
	t.lastSig = 0
	t.repeats = 0
}

// Signature hashes the agent→position→goal tuples so the same deadlock
// recurring across ticks can be recognized.
func Signature(agents []*core.Agent) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 16)
	put := func(vals ...int) {
		buf = buf[:0]
		for _, v := range vals {
			buf = append(buf,
				byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
		}
		_, _ = h.Write(buf)
	}
	for _, a := range agents {
		gr, gc := -1, -1
		if a.Goal != nil {
			gr, gc = a.Goal.Row, a.Goal.Col
		}
		put(a.ID, a.Pos.Row, a.Pos.Col, gr, gc)
	}
	return h.Sum64()
}

// ObserveDeadlock records a deadlock signature and reports whether the same
// configuration was already seen on the previous observation.
func (t *Tracker) ObserveDeadlock(sig uint64) (repeated bool) {
	if sig == t.lastSig {
		t.repeats++
		return true
	}
	t.lastSig = sig
	t.repeats = 0
	return false
}

// Repeats returns how many consecutive times the current signature recurred.
func (t *Tracker) Repeats() int { return t.repeats }
