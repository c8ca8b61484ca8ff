package scan

import (
	"math"

	"github.com/hydrocamel/sonarscan/pkg/core"
)

const (
	// containTolerance absorbs floating rounding on triangle edges.
	containTolerance = 1e-9

	// degenerateTolerance bounds |sin ∠BAC| below which A, B and C are collinear.
	degenerateTolerance = 1e-9
)

// Triangle is the sonar footprint: apex A at the vehicle, B and C at the far corners.
type Triangle struct {
	A core.Position
	B core.Position
	C core.Position
}

// NewTriangle places the apex at apex and the far vertices at distance rng along
// heading-halfAngle (B) and heading+halfAngle (C). Angles are in degrees.
func NewTriangle(apex core.Position, rng, halfAngle, heading float64) Triangle {
	return Triangle{
		A: apex,
		B: polar(apex, rng, heading-halfAngle),
		C: polar(apex, rng, heading+halfAngle),
	}
}

func polar(origin core.Position, r, deg float64) core.Position {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return core.Position{
		Row: origin.Row + r*sin,
		Col: origin.Col + r*cos,
	}
}

// Translate moves every vertex by v.
func (t Triangle) Translate(v core.Velocity) Triangle {
	return Triangle{A: t.A.Add(v), B: t.B.Add(v), C: t.C.Add(v)}
}

// RotateAboutApex rotates B and C about A by deg degrees (positive turns +col toward +row).
func (t Triangle) RotateAboutApex(deg float64) Triangle {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	rotate := func(p core.Position) core.Position {
		dx := p.Col - t.A.Col
		dy := p.Row - t.A.Row
		return core.Position{
			Row: t.A.Row + sin*dx + cos*dy,
			Col: t.A.Col + cos*dx - sin*dy,
		}
	}
	return Triangle{A: t.A, B: rotate(t.B), C: rotate(t.C)}
}

// denominator is the shared divisor of both barycentric weights,
// (B_y-A_y)(C_x-A_x) - (B_x-A_x)(C_y-A_y).
func (t Triangle) denominator() float64 {
	return (t.B.Row-t.A.Row)*(t.C.Col-t.A.Col) - (t.B.Col-t.A.Col)*(t.C.Row-t.A.Row)
}

// Degenerate reports whether A, B and C are (numerically) collinear.
func (t Triangle) Degenerate() bool {
	ab := distance(t.A, t.B)
	ac := distance(t.A, t.C)
	if ab == 0 || ac == 0 {
		return true
	}
	return math.Abs(t.denominator()) <= degenerateTolerance*ab*ac
}

// Weights returns W1 and W2 such that P = A + W1(B-A) + W2(C-A).
// ok is false when the denominator vanishes; callers scanning many points should
// reject near-degenerate triangles once with Degenerate.
func (t Triangle) Weights(p core.Position) (w1, w2 float64, ok bool) {
	den := t.denominator()
	if den == 0 {
		return 0, 0, false
	}
	ax, ay := t.A.Col, t.A.Row
	bx, by := t.B.Col, t.B.Row
	cx, cy := t.C.Col, t.C.Row
	px, py := p.Col, p.Row

	w1 = (ax*(cy-ay) + (py-ay)*(cx-ax) - px*(cy-ay)) / den
	// Cramer's rule over the same denominator; equal to (py-ay-w1(by-ay))/(cy-ay)
	// whenever cy != ay.
	w2 = ((by-ay)*(px-ax) - (bx-ax)*(py-ay)) / den
	return w1, w2, true
}

// Contains reports whether p lies inside the triangle, edges included.
func (t Triangle) Contains(p core.Position) bool {
	w1, w2, ok := t.Weights(p)
	if !ok {
		return false
	}
	return w1 >= -containTolerance && w2 >= -containTolerance && w1+w2 <= 1+containTolerance
}

// Bounds returns the axis-aligned bounding box of the triangle.
func (t Triangle) Bounds() (minRow, maxRow, minCol, maxCol float64) {
	minRow = math.Min(t.A.Row, math.Min(t.B.Row, t.C.Row))
	maxRow = math.Max(t.A.Row, math.Max(t.B.Row, t.C.Row))
	minCol = math.Min(t.A.Col, math.Min(t.B.Col, t.C.Col))
	maxCol = math.Max(t.A.Col, math.Max(t.B.Col, t.C.Col))
	return minRow, maxRow, minCol, maxCol
}

// Vertices returns A, B, C in order.
func (t Triangle) Vertices() [3]core.Position {
	return [3]core.Position{t.A, t.B, t.C}
}

func distance(p, q core.Position) float64 {
	return math.Hypot(p.Row-q.Row, p.Col-q.Col)
}
