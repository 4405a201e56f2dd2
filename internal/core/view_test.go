package core

import (
	"math"
	"testing"
)

func testGrid(t *testing.T, n int) *Grid {
	t.Helper()
	g, err := NewGrid(n)
	if err != nil {
		t.Fatalf("NewGrid(%d): %v", n, err)
	}
	return g
}

func TestViewWallsAlwaysImpassable(t *testing.T) {
	g := testGrid(t, 5)
	_ = g.SetWall(Pos{2, 2})
	_ = g.SetOccupied(Pos{1, 1})

	for _, v := range []*View{
		NewView(g, VonNeumann),
		NewView(g, VonNeumann).SoftAgents(4),
		NewView(g, VonNeumann).IgnoreAgents(),
	} {
		if v.Passable(Pos{2, 2}) {
			t.Error("wall passable under some occupancy rule")
		}
	}
}

func TestViewOccupancyRules(t *testing.T) {
	g := testGrid(t, 5)
	occ := Pos{1, 1}
	_ = g.SetOccupied(occ)

	if NewView(g, VonNeumann).Passable(occ) {
		t.Error("hard view should block occupied cell")
	}
	if !NewView(g, VonNeumann).SoftAgents(4).Passable(occ) {
		t.Error("soft view should pass occupied cell")
	}
	if !NewView(g, VonNeumann).IgnoreAgents().Passable(occ) {
		t.Error("ignore view should pass occupied cell")
	}

	soft := NewView(g, VonNeumann).SoftAgents(4)
	if cost := soft.StepCost(Pos{1, 0}, occ); cost != 5 {
		t.Errorf("soft StepCost = %v, want 5", cost)
	}
}

func TestViewSelfCellReadsEmpty(t *testing.T) {
	g := testGrid(t, 5)
	self := Pos{1, 1}
	_ = g.SetOccupied(self)

	v := NewView(g, VonNeumann).ExceptSelf(self)
	if !v.Passable(self) {
		t.Error("own cell should be passable")
	}
	if v.Occupied(self) {
		t.Error("own cell should not read as occupied")
	}
}

func TestViewVisibilityMask(t *testing.T) {
	g := testGrid(t, 9)
	center := Pos{4, 4}
	goal := Pos{8, 8}

	v := NewView(g, VonNeumann).Masked(center, 2).ForGoal(goal)

	if !v.Visible(Pos{4, 6}) {
		t.Error("cell within radius should be visible")
	}
	if v.Visible(Pos{4, 7}) {
		t.Error("cell beyond radius should be masked")
	}
	if v.Passable(Pos{4, 7}) {
		t.Error("masked cell should be impassable")
	}
	if !v.Visible(goal) || !v.Passable(goal) {
		t.Error("goal must stay visible and passable through the mask")
	}
	// Invisible occupants are not seen.
	_ = g.SetOccupied(Pos{8, 0})
	if v.Occupied(Pos{8, 0}) {
		t.Error("occupant beyond radius should not be observed")
	}
}

func TestViewDiagonalStepCost(t *testing.T) {
	g := testGrid(t, 5)
	v := NewView(g, Moore)

	if c := v.StepCost(Pos{1, 1}, Pos{1, 2}); c != 1 {
		t.Errorf("orthogonal cost = %v, want 1", c)
	}
	if c := v.StepCost(Pos{1, 1}, Pos{2, 2}); math.Abs(c-math.Sqrt2) > 1e-12 {
		t.Errorf("diagonal cost = %v, want sqrt2", c)
	}
}

func TestViewNeighborsFilterWalls(t *testing.T) {
	g := testGrid(t, 5)
	_ = g.SetWall(Pos{1, 2})
	v := NewView(g, VonNeumann)

	got := v.Neighbors(Pos{1, 1})
	for _, q := range got {
		if q == (Pos{1, 2}) {
			t.Error("wall cell returned as neighbor")
		}
	}
	if len(got) != 3 {
		t.Errorf("Neighbors = %d cells, want 3", len(got))
	}
}
