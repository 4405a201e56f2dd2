package core

// Shape is a 0/1 stencil of goal cells.
type Shape [][]int

// Predefined goal shapes.
var (
	ShapeSquare = Shape{
		{1, 1, 1},
		{1, 0, 1},
		{1, 1, 1},
	}
	ShapeDiamond = Shape{
		{0, 1, 0},
		{1, 0, 1},
		{0, 1, 0},
	}
	ShapeTriangle = Shape{
		{0, 1, 0},
		{1, 1, 1},
	}
	ShapeLine = Shape{
		{1, 1, 1, 1, 1},
	}
)

// Shapes maps shape names to stencils.
var Shapes = map[string]Shape{
	"square":   ShapeSquare,
	"diamond":  ShapeDiamond,
	"triangle": ShapeTriangle,
	"line":     ShapeLine,
}

// Cells returns the stencil's set positions with the top-left at origin.
func (s Shape) Cells(origin Pos) []Pos {
	var out []Pos
	for r, row := range s {
		for c, bit := range row {
			if bit == 1 {
				out = append(out, Pos{Row: origin.Row + r, Col: origin.Col + c})
			}
		}
	}
	return out
}

// PlaceShape stamps the shape's cells as goals with its top-left corner at
// origin. Cells falling out of bounds or on walls are skipped.
func (g *Grid) PlaceShape(s Shape, origin Pos) int {
	placed := 0
	for _, p := range s.Cells(origin) {
		if g.AddGoal(p) == nil {
			placed++
		}
	}
	return placed
}

// PlaceShapeCentered stamps the shape centered on the grid.
func (g *Grid) PlaceShapeCentered(s Shape) int {
	origin := Pos{
		Row: g.n/2 - len(s)/2,
		Col: g.n/2 - len(s[0])/2,
	}
	return g.PlaceShape(s, origin)
}
