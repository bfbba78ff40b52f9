package geometry

import "math"

// Rect is an axis-aligned box. W and H are never negative once normalized.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// RectFromPoints returns the bounding box of a and b.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}

func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

func (r Rect) Right() float64 { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X &&
		r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// Inset grows (d > 0) or shrinks the rect by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Rotate turns p around c by deg degrees (clockwise in screen space, y down).
func Rotate(p, c Point, deg float64) Point {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	dx, dy := p.X-c.X, p.Y-c.Y
	return Point{
		X: c.X + dx*cos - dy*sin,
		Y: c.Y + dx*sin + dy*cos,
	}
}

// ContainsRotated reports whether p lies in r after r is rotated by deg
// degrees around its center.
func (r Rect) ContainsRotated(p Point, deg float64) bool {
	if deg == 0 {
		return r.Contains(p)
	}
	return r.Contains(Rotate(p, r.Center(), -deg))
}

// Angle returns the angle of p around c in radians.
func Angle(c, p Point) float64 {
	return math.Atan2(p.Y-c.Y, p.X-c.X)
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Union is the smallest rect containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return RectFromPoints(
		Point{X: min(r.X, o.X), Y: min(r.Y, o.Y)},
		Point{X: max(r.Right(), o.Right()), Y: max(r.Bottom(), o.Bottom())},
	)
}

// RotatedBounds is the axis-aligned bounding box of r rotated by deg
// degrees around its center.
func (r Rect) RotatedBounds(deg float64) Rect {
	if deg == 0 {
		return r
	}
	c := r.Center()
	corners := [4]Point{
		{X: r.X, Y: r.Y}, {X: r.Right(), Y: r.Y},
		{X: r.Right(), Y: r.Bottom()}, {X: r.X, Y: r.Bottom()},
	}
	lo := Rotate(corners[0], c, deg)
	hi := lo
	for _, p := range corners[1:] {
		p = Rotate(p, c, deg)
		lo = Point{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
		hi = Point{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
	}
	return RectFromPoints(lo, hi)
}
