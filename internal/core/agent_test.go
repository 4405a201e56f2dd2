package core

import "testing"

func TestAgentPathPrefixInvariant(t *testing.T) {
	a := NewAgent(0, Pos{1, 1})

	// A path not anchored at the current position is truncated.
	a.SetPath([]Pos{{2, 2}, {2, 3}})
	if len(a.Path) != 1 || a.Path[0] != a.Pos {
		t.Errorf("Path = %v, want single-element prefix at %v", a.Path, a.Pos)
	}

	a.SetPath([]Pos{{1, 1}, {1, 2}, {1, 3}})
	next, ok := a.NextCell()
	if !ok || next != (Pos{1, 2}) {
		t.Errorf("NextCell = %v, %v; want {1,2}, true", next, ok)
	}

	a.Advance()
	if a.Pos != (Pos{1, 2}) || a.Path[0] != a.Pos {
		t.Errorf("after Advance: Pos=%v Path=%v", a.Pos, a.Path)
	}
}

func TestAgentAtGoal(t *testing.T) {
	a := NewAgent(0, Pos{1, 1})
	if a.AtGoal() {
		t.Error("agent without goal cannot be at goal")
	}
	a.SetGoal(Pos{1, 1})
	if !a.AtGoal() {
		t.Error("agent on its goal should report AtGoal")
	}
	if len(a.Path) != 1 {
		t.Errorf("SetGoal path = %v, want single element", a.Path)
	}
}

func TestAgentVisibilityBoostExpiry(t *testing.T) {
	a := NewAgent(0, Pos{0, 0})
	a.Radius = 2

	a.BoostVisibility(6, 10)
	if r := a.EffectiveRadius(5); r != 6 {
		t.Errorf("EffectiveRadius(5) = %d, want 6", r)
	}
	if r := a.EffectiveRadius(10); r != 2 {
		t.Errorf("EffectiveRadius(10) = %d, want 2 after expiry", r)
	}

	a.ExpireBoost(10)
	if r := a.EffectiveRadius(5); r != 2 {
		t.Errorf("EffectiveRadius after ExpireBoost = %d, want 2", r)
	}

	// A narrower boost is a no-op.
	a.BoostVisibility(1, 20)
	if r := a.EffectiveRadius(15); r != 2 {
		t.Errorf("narrower boost applied: radius = %d, want 2", r)
	}
}

func TestPlaceShapeCentered(t *testing.T) {
	g, _ := NewGrid(9)
	placed := g.PlaceShapeCentered(ShapeSquare)
	if placed != 8 {
		t.Errorf("placed = %d, want 8", placed)
	}
	if !g.IsGoal(Pos{3, 3}) || !g.IsGoal(Pos{5, 5}) {
		t.Error("square corners missing from goal set")
	}
	if g.IsGoal(Pos{4, 4}) {
		t.Error("square center should not be a goal")
	}
}
