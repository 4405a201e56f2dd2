package deadlock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/progmatter/internal/core"
)

func corridor(t *testing.T) *core.Grid {
	t.Helper()
	// 5×5 grid with a single open row at r=2.
	g, err := core.NewGrid(5)
	require.NoError(t, err)
	for r := 0; r < 5; r++ {
		if r == 2 {
			continue
		}
		for c := 0; c < 5; c++ {
			require.NoError(t, g.SetWall(core.Pos{Row: r, Col: c}))
		}
	}
	return g
}

func TestTrackerIdleCounting(t *testing.T) {
	a := core.NewAgent(0, core.Pos{Row: 1, Col: 1})
	b := core.NewAgent(1, core.Pos{Row: 2, Col: 2})
	agents := []*core.Agent{a, b}

	tr := NewTracker()
	tr.Update(agents) // first sighting: counters at 0
	require.Equal(t, 0, tr.Idle(0))

	tr.Update(agents) // unchanged
	tr.Update(agents)
	require.Equal(t, 2, tr.Idle(0))

	a.Pos = core.Pos{Row: 1, Col: 2}
	tr.Update(agents)
	require.Equal(t, 0, tr.Idle(0), "movement resets the idle counter")
	require.Equal(t, 3, tr.Idle(1))
}

func TestTrackerTimedOutSkipsAtGoal(t *testing.T) {
	a := core.NewAgent(0, core.Pos{Row: 1, Col: 1})
	a.SetGoal(core.Pos{Row: 1, Col: 1}) // already at goal
	b := core.NewAgent(1, core.Pos{Row: 2, Col: 2})
	b.SetGoal(core.Pos{Row: 4, Col: 4})
	agents := []*core.Agent{a, b}

	tr := NewTracker()
	for i := 0; i < IdleThreshold+1; i++ {
		tr.Update(agents)
	}
	require.Equal(t, []int{1}, tr.TimedOut(agents, IdleThreshold))
}

func TestSignatureRepeatDetection(t *testing.T) {
	a := core.NewAgent(0, core.Pos{Row: 1, Col: 1})
	a.SetGoal(core.Pos{Row: 3, Col: 3})
	agents := []*core.Agent{a}

	tr := NewTracker()
	sig := Signature(agents)
	require.False(t, tr.ObserveDeadlock(sig))
	require.True(t, tr.ObserveDeadlock(Signature(agents)))
	require.Equal(t, 1, tr.Repeats())

	a.Pos = core.Pos{Row: 1, Col: 2}
	require.False(t, tr.ObserveDeadlock(Signature(agents)))
	require.Equal(t, 0, tr.Repeats())
}

func TestWaitForCycleHeadOn(t *testing.T) {
	// Two agents facing each other: each plans into the other's cell.
	a := core.NewAgent(0, core.Pos{Row: 2, Col: 1})
	a.SetGoal(core.Pos{Row: 2, Col: 4})
	a.SetPath([]core.Pos{{Row: 2, Col: 1}, {Row: 2, Col: 2}})
	b := core.NewAgent(1, core.Pos{Row: 2, Col: 2})
	b.SetGoal(core.Pos{Row: 2, Col: 0})
	b.SetPath([]core.Pos{{Row: 2, Col: 2}, {Row: 2, Col: 1}})

	require.Equal(t, []int{0, 1}, WaitForCycles([]*core.Agent{a, b}))
}

func TestWaitForChainWithoutCycleIsClean(t *testing.T) {
	// A waits on B, B has a free next cell: a chain, not a cycle.
	a := core.NewAgent(0, core.Pos{Row: 2, Col: 1})
	a.SetPath([]core.Pos{{Row: 2, Col: 1}, {Row: 2, Col: 2}})
	b := core.NewAgent(1, core.Pos{Row: 2, Col: 2})
	b.SetPath([]core.Pos{{Row: 2, Col: 2}, {Row: 2, Col: 3}})

	require.Empty(t, WaitForCycles([]*core.Agent{a, b}))
}

func TestWaitForThreeCycle(t *testing.T) {
	a := core.NewAgent(0, core.Pos{Row: 0, Col: 0})
	a.SetPath([]core.Pos{{Row: 0, Col: 0}, {Row: 0, Col: 1}})
	b := core.NewAgent(1, core.Pos{Row: 0, Col: 1})
	b.SetPath([]core.Pos{{Row: 0, Col: 1}, {Row: 1, Col: 1}})
	c := core.NewAgent(2, core.Pos{Row: 1, Col: 1})
	c.SetPath([]core.Pos{{Row: 1, Col: 1}, {Row: 0, Col: 0}})
	// A bystander waiting on the cycle but not on it.
	d := core.NewAgent(3, core.Pos{Row: 1, Col: 0})
	d.SetPath([]core.Pos{{Row: 1, Col: 0}, {Row: 0, Col: 0}})

	require.Equal(t, []int{0, 1, 2}, WaitForCycles([]*core.Agent{a, b, c, d}))
}

func TestResolveSoftReplanRoutesAround(t *testing.T) {
	g, err := core.NewGrid(5)
	require.NoError(t, err)
	blocker := core.Pos{Row: 2, Col: 2}
	require.NoError(t, g.SetOccupied(blocker))

	a := core.NewAgent(0, core.Pos{Row: 2, Col: 0})
	require.NoError(t, g.SetOccupied(a.Pos))
	a.SetGoal(core.Pos{Row: 2, Col: 4})
	a.SetPath([]core.Pos{{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 3}, {Row: 2, Col: 4}})

	r := NewResolver(g, core.VonNeumann)
	require.Equal(t, TacticSoftReplan, r.Resolve(a))
	require.Greater(t, len(a.Path), 1)
	require.Equal(t, a.Pos, a.Path[0])
	for _, p := range a.Path {
		require.NotEqual(t, blocker, p, "fresh plan should route around the blocker")
	}
}

func TestResolveRetreatInCorridor(t *testing.T) {
	g := corridor(t)
	// Corridor row 2: agent at (2,1) blocked ahead at (2,2) and behind at
	// (2,0); only unoccupied neighbor... none. Open up (2,0).
	a := core.NewAgent(0, core.Pos{Row: 2, Col: 1})
	require.NoError(t, g.SetOccupied(a.Pos))
	require.NoError(t, g.SetOccupied(core.Pos{Row: 2, Col: 2}))
	a.SetGoal(core.Pos{Row: 2, Col: 4})
	a.SetPath([]core.Pos{{Row: 2, Col: 1}, {Row: 2, Col: 2}})

	r := NewResolver(g, core.VonNeumann)
	tactic := r.Resolve(a)
	require.Equal(t, TacticRetreat, tactic)
	require.True(t, a.Retreating)
	next, ok := a.NextCell()
	require.True(t, ok)
	require.Equal(t, core.Pos{Row: 2, Col: 0}, next, "retreat steps to the only unoccupied neighbor")
}

func TestResolveLastResortIgnoresAgents(t *testing.T) {
	g := corridor(t)
	// Fully boxed in: neighbors occupied, no retreat possible.
	a := core.NewAgent(0, core.Pos{Row: 2, Col: 1})
	require.NoError(t, g.SetOccupied(a.Pos))
	require.NoError(t, g.SetOccupied(core.Pos{Row: 2, Col: 0}))
	require.NoError(t, g.SetOccupied(core.Pos{Row: 2, Col: 2}))
	a.SetGoal(core.Pos{Row: 2, Col: 4})
	a.SetPath([]core.Pos{{Row: 2, Col: 1}, {Row: 2, Col: 2}})

	r := NewResolver(g, core.VonNeumann)
	require.Equal(t, TacticLastResort, r.Resolve(a))
	require.Greater(t, len(a.Path), 1)
}

func TestResolveNoneWhenWalledOff(t *testing.T) {
	g, err := core.NewGrid(5)
	require.NoError(t, err)
	for r := 0; r < 5; r++ {
		require.NoError(t, g.SetWall(core.Pos{Row: r, Col: 2}))
	}
	a := core.NewAgent(0, core.Pos{Row: 2, Col: 0})
	require.NoError(t, g.SetOccupied(a.Pos))
	a.SetGoal(core.Pos{Row: 2, Col: 4})

	r := NewResolver(g, core.VonNeumann)
	// Retreat would succeed (open neighbors exist), so the ladder reports
	// Retreat even though the goal is unreachable; the scheduler's
	// escalation handles the hopeless case.
	require.Equal(t, TacticRetreat, r.Resolve(a))
}
