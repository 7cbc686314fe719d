package cluster

import (
	"image"
	"math"
)

// Strategy names as recorded on placed squares.
const (
	StrategyAnchor   = "anchor"
	StrategyAdjacent = "adjacent"
	StrategySpiral   = "spiral"
	StrategyRight    = "right-of-bounds"
)

// Strategy proposes a position for a new square of the given side length.
// It returns false when it cannot find an overlap-free position.
type Strategy interface {
	Name() string
	Try(l *Layout, side int) (image.Point, bool)
}

// Fallback is the last resort of a [Placer]. Unlike a [Strategy] it cannot
// fail: the returned position must be overlap-free for any layout.
type Fallback interface {
	Name() string
	Place(l *Layout, side int) image.Point
}

// Placer places squares one at a time. Strategies are tried in order and
// the first success wins; Fallback is used when all of them fail.
type Placer struct {
	Strategies []Strategy
	Fallback   Fallback
}

// DefaultPlacer returns the adjacency → spiral → right-of-bounds placer.
func DefaultPlacer() Placer {
	return Placer{
		Strategies: []Strategy{Adjacent{Window: 2}, Spiral{}},
		Fallback:   RightOfBounds{},
	}
}

// Place orders items by size and places every item that has an image with
// the default placer.
func Place(items []Item) *Layout {
	return DefaultPlacer().Place(Order(items))
}

// Place places items in the given order. The first item with an image is
// anchored at (0, 0); items without an image are skipped.
func (p Placer) Place(items []Item) *Layout {
	l := &Layout{rects: make([]Rect, 0, len(items))}
	fallback := p.Fallback
	if fallback == nil {
		fallback = RightOfBounds{}
	}

	for _, it := range items {
		if it.Image == nil {
			continue
		}
		if l.Len() == 0 {
			l.add(it, image.Point{}, StrategyAnchor)
			continue
		}
		pt, name := p.position(l, it.Size, fallback)
		l.add(it, pt, name)
	}
	return l
}

func (p Placer) position(l *Layout, side int, fallback Fallback) (image.Point, string) {
	for _, s := range p.Strategies {
		if pt, ok := s.Try(l, side); ok {
			return pt, s.Name()
		}
	}
	return fallback.Place(l, side), fallback.Name()
}

// =============================================================================
// Adjacent
// =============================================================================

// Adjacent puts the new square flush against a side of an already placed
// square, start-, end- or center-aligned, or just outside the corners of
// the bounding box (within ±Window pixels).
//
// Overlap-free candidates are ranked touching first, then by the distance
// of the candidate's center to the origin; remaining ties go to the
// smaller x, then the smaller y.
type Adjacent struct {
	Window int
}

// Name implements Strategy.
func (Adjacent) Name() string { return StrategyAdjacent }

// Try implements Strategy.
func (a Adjacent) Try(l *Layout, side int) (image.Point, bool) {
	var (
		best      image.Point
		bestTouch bool
		bestDist  int64
		found     bool
	)
	for _, c := range a.candidates(l, side) {
		r := rectAt(c.X, c.Y, side)
		touch, ok := l.contact(r)
		if !ok {
			continue
		}
		d := originDist2(r)
		if !found || better(touch, d, c, bestTouch, bestDist, best) {
			best, bestTouch, bestDist, found = c, touch, d, true
		}
	}
	return best, found
}

func better(touch bool, d int64, p image.Point, bestTouch bool, bestDist int64, best image.Point) bool {
	if touch != bestTouch {
		return touch
	}
	if d != bestDist {
		return d < bestDist
	}
	if p.X != best.X {
		return p.X < best.X
	}
	return p.Y < best.Y
}

// candidates returns the deduplicated candidate positions in generation order.
func (a Adjacent) candidates(l *Layout, side int) []image.Point {
	seen := make(map[image.Point]struct{}, 12*l.Len()+20)
	out := make([]image.Point, 0, 12*l.Len()+20)
	add := func(x, y int) {
		p := image.Pt(x, y)
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, r := range l.rects {
		b := r.Bounds()
		w, h := b.Dx(), b.Dy()
		midX := b.Min.X + floorDiv(w-side, 2)
		midY := b.Min.Y + floorDiv(h-side, 2)

		// right
		add(b.Max.X, b.Min.Y)
		add(b.Max.X, b.Max.Y-side)
		add(b.Max.X, midY)
		// left
		add(b.Min.X-side, b.Min.Y)
		add(b.Min.X-side, b.Max.Y-side)
		add(b.Min.X-side, midY)
		// below
		add(b.Min.X, b.Max.Y)
		add(b.Max.X-side, b.Max.Y)
		add(midX, b.Max.Y)
		// above
		add(b.Min.X, b.Min.Y-side)
		add(b.Max.X-side, b.Min.Y-side)
		add(midX, b.Min.Y-side)
	}

	bb := l.Bounds()
	for t := -a.Window; t <= a.Window; t++ {
		add(bb.Min.X-side+t, bb.Min.Y+t)
		add(bb.Max.X+t, bb.Min.Y+t)
		add(bb.Min.X+t, bb.Max.Y+t)
		add(bb.Max.X+t, bb.Max.Y-side+t)
	}
	return out
}

// contact reports whether r touches any placed square. ok is false when r
// overlaps one.
func (l *Layout) contact(r image.Rectangle) (touch, ok bool) {
	for i := range l.rects {
		p := l.rects[i].Bounds()
		if r.Overlaps(p) {
			return false, false
		}
		if !touch && touches(r, p) {
			touch = true
		}
	}
	return touch, true
}

// touches reports whether a and b share an edge segment of non-zero length.
func touches(a, b image.Rectangle) bool {
	xEdge := a.Max.X == b.Min.X || a.Min.X == b.Max.X
	yEdge := a.Max.Y == b.Min.Y || a.Min.Y == b.Max.Y
	xSpan := a.Min.X < b.Max.X && b.Min.X < a.Max.X
	ySpan := a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y
	return (xEdge && ySpan) || (yEdge && xSpan)
}

// originDist2 is four times the squared distance from the center of r to
// the origin. Working on doubled coordinates keeps it exact.
func originDist2(r image.Rectangle) int64 {
	cx := int64(r.Min.X + r.Max.X)
	cy := int64(r.Min.Y + r.Max.Y)
	return cx*cx + cy*cy
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// =============================================================================
// Spiral
// =============================================================================

// Spiral probes positions on circles of growing radius around the center of
// the bounding box and takes the first overlap-free one.
//
// The radius starts at max(10, side/2) and grows by the same amount; each
// circle is sampled every 10 degrees starting at 0. The search stops once
// the radius reaches the bounding-box diagonal plus ten times the side.
type Spiral struct{}

// Name implements Strategy.
func (Spiral) Name() string { return StrategySpiral }

const (
	spiralMinStep   = 10
	spiralAngleStep = 10
	spiralReach     = 10
)

// Try implements Strategy.
func (Spiral) Try(l *Layout, side int) (image.Point, bool) {
	bb := l.Bounds()
	cx := float64(bb.Min.X+bb.Max.X) / 2
	cy := float64(bb.Min.Y+bb.Max.Y) / 2
	limit := math.Hypot(float64(bb.Dx()), float64(bb.Dy())) + float64(spiralReach*side)
	step := max(spiralMinStep, side/2)

	for r := step; float64(r) < limit; r += step {
		for deg := 0; deg < 360; deg += spiralAngleStep {
			rad := float64(deg) * math.Pi / 180
			x := int(cx + float64(r)*math.Cos(rad))
			y := int(cy + float64(r)*math.Sin(rad))
			if l.Fits(rectAt(x, y, side)) {
				return image.Pt(x, y), true
			}
		}
	}
	return image.Point{}, false
}

// =============================================================================
// RightOfBounds
// =============================================================================

// RightOfBounds places the square against the right edge of the bounding
// box, aligned with its top. Every placed square lies left of that edge, so
// the position never overlaps.
type RightOfBounds struct{}

// Name implements Fallback.
func (RightOfBounds) Name() string { return StrategyRight }

// Place implements Fallback.
func (RightOfBounds) Place(l *Layout, side int) image.Point {
	bb := l.Bounds()
	return image.Pt(bb.Max.X, bb.Min.Y)
}
