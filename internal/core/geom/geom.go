package geom

import "math"

// Vec2 is a 2D vector. Operations are per-axis; nothing here normalizes.
type Vec2 struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Distance computes Euclidean distance between two points.
func Distance(a, b Vec2) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Box is an axis-aligned rectangle. X, Y is the minimum corner.
type Box struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
	W float64 `json:"w" yaml:"w" toml:"w"`
	H float64 `json:"h" yaml:"h" toml:"h"`
}

// BoxAt builds a box of size w x h centered on c.
func BoxAt(c Vec2, w, h float64) Box {
	return Box{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

func (b Box) Min() Vec2 { return Vec2{b.X, b.Y} }

func (b Box) Max() Vec2 { return Vec2{b.X + b.W, b.Y + b.H} }

func (b Box) Size() Vec2 { return Vec2{b.W, b.H} }

func (b Box) Center() Vec2 { return Vec2{b.X + b.W/2, b.Y + b.H/2} }

// WithCenter returns the same-sized box moved so that its center is c.
func (b Box) WithCenter(c Vec2) Box {
	b.X = c.X - b.W/2
	b.Y = c.Y - b.H/2
	return b
}

func (b Box) Translate(d Vec2) Box {
	b.X += d.X
	b.Y += d.Y
	return b
}

// Overlaps reports a strict intersection. Boxes that only share an edge do not overlap.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X+o.W && b.X+b.W > o.X && b.Y < o.Y+o.H && b.Y+b.H > o.Y
}

// Intersection returns the overlap rectangle of b and o.
func (b Box) Intersection(o Box) (Box, bool) {
	if !b.Overlaps(o) {
		return Box{}, false
	}
	x0 := math.Max(b.X, o.X)
	y0 := math.Max(b.Y, o.Y)
	x1 := math.Min(b.X+b.W, o.X+o.W)
	y1 := math.Min(b.Y+b.H, o.Y+o.H)
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

func (b Box) Contains(p Vec2) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}
