package geo

import (
	"fmt"
	"math"
)

// Point is a position in PDF user space.
type Point struct{ X, Y float64 }

// Matrix is a PDF transformation matrix [a b c d e f].
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Multiply returns m × o (m applied first).
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Transform maps p through the matrix.
func (m Matrix) Transform(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// Rect is an axis-aligned rectangle in PDF user space. LLX/LLY is the
// lower-left corner, URX/URY the upper-right.
type Rect struct {
	LLX, LLY, URX, URY float64
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.LLX, r.LLY, r.URX, r.URY)
}

// Left returns the left edge.
func (r Rect) Left() float64 { return r.LLX }

// Right returns the right edge.
func (r Rect) Right() float64 { return r.URX }

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.URY - r.LLY }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.URX <= r.LLX || r.URY <= r.LLY }

// Union returns the smallest rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		LLX: math.Min(r.LLX, o.LLX),
		LLY: math.Min(r.LLY, o.LLY),
		URX: math.Max(r.URX, o.URX),
		URY: math.Max(r.URY, o.URY),
	}
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.LLX < o.URX && o.LLX < r.URX && r.LLY < o.URY && o.LLY < r.URY
}

// Contains reports whether the point is inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.LLX && p.X <= r.URX && p.Y >= r.LLY && p.Y <= r.URY
}

// RectFromPoints returns the bounding rectangle of the given points.
func RectFromPoints(points ...Point) Rect {
	r := Rect{LLX: math.MaxFloat64, LLY: math.MaxFloat64, URX: -math.MaxFloat64, URY: -math.MaxFloat64}
	for _, p := range points {
		r.LLX = math.Min(r.LLX, p.X)
		r.LLY = math.Min(r.LLY, p.Y)
		r.URX = math.Max(r.URX, p.X)
		r.URY = math.Max(r.URY, p.Y)
	}
	return r
}

// RGB is a device RGB color with components in [0, 1].
type RGB struct{ R, G, B float64 }

// Black is the default text color.
var Black = RGB{0, 0, 0}

// White is the redaction fill color.
var White = RGB{1, 1, 1}
