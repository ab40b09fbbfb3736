package zone

import "math"

// Box is an axis-aligned rectangle in frame pixel coordinates.
type Box struct {
	X int
	Y int
	W int
	H int
}

// Empty reports whether the box has no positive area.
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Area returns the box area in pixels.
func (b Box) Area() int {
	if b.Empty() {
		return 0
	}
	return b.W * b.H
}

// Centroid returns the box center.
func (b Box) Centroid() Point {
	return Point{
		X: float64(b.X) + float64(b.W)/2.0,
		Y: float64(b.Y) + float64(b.H)/2.0,
	}
}

// Clip constrains the box to [0,frameW) x [0,frameH). A box fully outside
// the frame clamps to a zero-size box at the nearest frame edge.
func (b Box) Clip(frameW, frameH int) Box {
	x := min(max(0, b.X), frameW)
	y := min(max(0, b.Y), frameH)
	w := b.W - (x - b.X)
	h := b.H - (y - b.Y)
	w = max(0, min(frameW-x, w))
	h = max(0, min(frameH-y, h))
	return Box{X: x, Y: y, W: w, H: h}
}

// Rect is a float rectangle used for expanded-region tests. Expanded regions
// may extend outside frame bounds, so coordinates are not clipped.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Rect converts the box to float coordinates.
func (b Box) Rect() Rect {
	return Rect{X: float64(b.X), Y: float64(b.Y), W: float64(b.W), H: float64(b.H)}
}

// Expand grows the rectangle by ratio*size on every side.
func (r Rect) Expand(ratio float64) Rect {
	padW := r.W * ratio
	padH := r.H * ratio
	return Rect{X: r.X - padW, Y: r.Y - padH, W: r.W + 2*padW, H: r.H + 2*padH}
}

// Contains reports whether the point lies inside the rectangle (inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// IntersectArea returns the overlap area between two rectangles, 0 if disjoint.
func (r Rect) IntersectArea(other Rect) float64 {
	ix1 := math.Max(r.X, other.X)
	iy1 := math.Max(r.Y, other.Y)
	ix2 := math.Min(r.X+r.W, other.X+other.W)
	iy2 := math.Min(r.Y+r.H, other.Y+other.H)
	if ix1 >= ix2 || iy1 >= iy2 {
		return 0
	}
	return (ix2 - ix1) * (iy2 - iy1)
}

// Point is a position in frame pixel coordinates.
type Point struct {
	X float64
	Y float64
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

// IoU returns intersection over union of two boxes.
func IoU(a, b Box) float64 {
	inter := a.Rect().IntersectArea(b.Rect())
	union := float64(a.Area()) + float64(b.Area()) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
