package search

import (
	"testing"

	"github.com/elektrokombinacija/progmatter/internal/core"
)

func mustGrid(t *testing.T, n int) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(n)
	if err != nil {
		t.Fatalf("NewGrid(%d): %v", n, err)
	}
	return g
}

func allPlanners() []Planner {
	planners := make([]Planner, 0, len(Strategies()))
	for _, s := range Strategies() {
		planners = append(planners, ForStrategy(s, DefaultDepth))
	}
	return planners
}

func TestAllPlannersSharedContract(t *testing.T) {
	g := mustGrid(t, 7)
	_ = g.SetWall(core.Pos{Row: 3, Col: 2})
	_ = g.SetWall(core.Pos{Row: 3, Col: 3})
	_ = g.SetWall(core.Pos{Row: 3, Col: 4})

	start, goal := core.Pos{Row: 0, Col: 0}, core.Pos{Row: 6, Col: 6}

	for _, p := range allPlanners() {
		t.Run(p.Name(), func(t *testing.T) {
			v := core.NewView(g, core.VonNeumann)
			path := p.FindPath(v, start, goal)
			if len(path) == 0 {
				t.Fatal("expected a path, got none")
			}
			if path[0] != start {
				t.Errorf("path[0] = %v, want %v", path[0], start)
			}
			if path[len(path)-1] != goal {
				t.Errorf("path end = %v, want %v", path[len(path)-1], goal)
			}
			for i := 1; i < len(path); i++ {
				if path[i].Chebyshev(path[i-1]) != 1 {
					t.Errorf("non-adjacent step %v -> %v", path[i-1], path[i])
				}
				if path[i-1].Manhattan(path[i]) != 1 {
					t.Errorf("diagonal step %v -> %v under VonNeumann", path[i-1], path[i])
				}
			}
			for _, q := range path {
				if g.Kind(q) == core.Wall {
					t.Errorf("path contains wall cell %v", q)
				}
			}
		})
	}
}

func TestAllPlannersStartEqualsGoal(t *testing.T) {
	g := mustGrid(t, 5)
	p := core.Pos{Row: 2, Col: 2}

	for _, pl := range allPlanners() {
		path := pl.FindPath(core.NewView(g, core.VonNeumann), p, p)
		if len(path) != 1 || path[0] != p {
			t.Errorf("%s: path = %v, want [%v]", pl.Name(), path, p)
		}
	}
}

func TestAllPlannersUnreachable(t *testing.T) {
	g := mustGrid(t, 5)
	// Wall fully separating column 0 from the rest.
	for r := 0; r < 5; r++ {
		_ = g.SetWall(core.Pos{Row: r, Col: 1})
	}

	for _, pl := range allPlanners() {
		path := pl.FindPath(core.NewView(g, core.VonNeumann), core.Pos{Row: 0, Col: 0}, core.Pos{Row: 0, Col: 4})
		if len(path) != 0 {
			t.Errorf("%s: path = %v, want none", pl.Name(), path)
		}
	}
}

func TestAStarShortestPathLength(t *testing.T) {
	g := mustGrid(t, 5)
	v := core.NewView(g, core.VonNeumann)

	path := (&AStarPlanner{}).FindPath(v, core.Pos{Row: 0, Col: 0}, core.Pos{Row: 4, Col: 4})
	// Manhattan distance 8 => 9 cells on an empty grid.
	if len(path) != 9 {
		t.Errorf("path length = %d cells, want 9", len(path))
	}
}

func TestAStarMooreUsesDiagonals(t *testing.T) {
	g := mustGrid(t, 5)
	v := core.NewView(g, core.Moore)

	path := (&AStarPlanner{}).FindPath(v, core.Pos{Row: 0, Col: 0}, core.Pos{Row: 4, Col: 4})
	// Chebyshev distance 4 => 5 cells with diagonal moves.
	if len(path) != 5 {
		t.Errorf("path length = %d cells, want 5", len(path))
	}
}

func TestAStarPrefersOrthogonalCostModel(t *testing.T) {
	// Under Moore topology a diagonal costs √2 > 1, so a pure horizontal
	// route must not pick up gratuitous diagonals.
	g := mustGrid(t, 5)
	v := core.NewView(g, core.Moore)

	path := (&AStarPlanner{}).FindPath(v, core.Pos{Row: 2, Col: 0}, core.Pos{Row: 2, Col: 4})
	if len(path) != 5 {
		t.Fatalf("path length = %d cells, want 5", len(path))
	}
	for _, q := range path {
		if q.Row != 2 {
			t.Errorf("detour through %v on a straight-line route", q)
		}
	}
}

func TestBFSShortestHopCount(t *testing.T) {
	g := mustGrid(t, 5)
	_ = g.SetWall(core.Pos{Row: 1, Col: 1})
	v := core.NewView(g, core.VonNeumann)

	path := (&BFSPlanner{}).FindPath(v, core.Pos{Row: 0, Col: 0}, core.Pos{Row: 2, Col: 2})
	if len(path) != 5 {
		t.Errorf("path length = %d cells, want 5", len(path))
	}
}

func TestAStarAvoidsSoftPenalties(t *testing.T) {
	g := mustGrid(t, 5)
	// An occupant directly on the straight route.
	occ := core.Pos{Row: 2, Col: 2}
	_ = g.SetOccupied(occ)

	v := core.NewView(g, core.VonNeumann).SoftAgents(10)
	path := (&AStarPlanner{}).FindPath(v, core.Pos{Row: 2, Col: 0}, core.Pos{Row: 2, Col: 4})
	if len(path) == 0 {
		t.Fatal("expected a path")
	}
	for _, q := range path {
		if q == occ {
			t.Errorf("path crosses penalized cell %v despite cheap detour", occ)
		}
	}
}

func TestMinimaxReachesGoalWithinDepth(t *testing.T) {
	g := mustGrid(t, 5)
	v := core.NewView(g, core.VonNeumann)

	p := &MinimaxPlanner{Depth: 5}
	path := p.FindPath(v, core.Pos{Row: 2, Col: 2}, core.Pos{Row: 2, Col: 4})
	if len(path) == 0 || path[len(path)-1] != (core.Pos{Row: 2, Col: 4}) {
		t.Fatalf("path = %v, want route to {2,4}", path)
	}
	if len(path) != 3 {
		t.Errorf("path length = %d cells, want 3", len(path))
	}
}

func TestExpectimaxTransitionWeights(t *testing.T) {
	g := mustGrid(t, 5)
	v := core.NewView(g, core.VonNeumann)
	goal := core.Pos{Row: 2, Col: 4}

	closer := transitionWeight(v, core.Pos{Row: 2, Col: 2}, core.Pos{Row: 2, Col: 3}, goal)
	farther := transitionWeight(v, core.Pos{Row: 2, Col: 2}, core.Pos{Row: 2, Col: 1}, goal)
	if closer <= farther {
		t.Errorf("weight toward goal %v <= weight away %v", closer, farther)
	}
}

func TestDepthBoundedPlannersCompleteWithAStar(t *testing.T) {
	// Goal far beyond the search depth: the walk must be completed by A*
	// and still arrive.
	g := mustGrid(t, 20)
	start, goal := core.Pos{Row: 0, Col: 0}, core.Pos{Row: 19, Col: 19}

	for _, pl := range []Planner{&MinimaxPlanner{Depth: 3}, &ExpectimaxPlanner{Depth: 3}} {
		v := core.NewView(g, core.VonNeumann)
		path := pl.FindPath(v, start, goal)
		if len(path) == 0 {
			t.Fatalf("%s: no path", pl.Name())
		}
		if path[len(path)-1] != goal {
			t.Errorf("%s: path ends at %v, want %v", pl.Name(), path[len(path)-1], goal)
		}
	}
}
