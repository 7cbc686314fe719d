package cluster

import (
	"fmt"
	"image"
)

// Rect is a placed item. Its side length is fixed at creation; only the
// position changes afterwards.
type Rect struct {
	item     Item
	x, y     int
	strategy string
}

// Item returns the item this square was placed for.
func (r Rect) Item() Item { return r.item }

// ID returns the identifier of the placed item.
func (r Rect) ID() string { return r.item.ID }

// X returns the left edge.
func (r Rect) X() int { return r.x }

// Y returns the top edge.
func (r Rect) Y() int { return r.y }

// Width returns the horizontal extent, equal to the item size.
func (r Rect) Width() int { return r.item.Size }

// Height returns the vertical extent, equal to the item size.
func (r Rect) Height() int { return r.item.Size }

// Strategy returns the name of the strategy that chose the initial position.
func (r Rect) Strategy() string { return r.strategy }

// Bounds returns the half-open pixel rectangle covered by the square.
func (r Rect) Bounds() image.Rectangle {
	return rectAt(r.x, r.y, r.item.Size)
}

func rectAt(x, y, side int) image.Rectangle {
	return image.Rect(x, y, x+side, y+side)
}

// Placement is the serializable position of a placed item.
type Placement struct {
	ID       string `json:"id" bson:"id"`
	X        int    `json:"x" bson:"x"`
	Y        int    `json:"y" bson:"y"`
	Size     int    `json:"size" bson:"size"`
	Strategy string `json:"strategy,omitempty" bson:"strategy,omitempty"`
}

// Layout is the ordered set of placed squares of one cluster.
//
// A Layout is owned by a single stage at a time: [Place] creates it,
// [Tighten] moves its squares and [Compose] reads it. It is not safe for
// concurrent use.
type Layout struct {
	rects []Rect
}

// Len returns the number of placed squares.
func (l *Layout) Len() int { return len(l.rects) }

// At returns the i-th placed square in placement order.
func (l *Layout) At(i int) Rect { return l.rects[i] }

// Rects returns a copy of the placed squares in placement order.
func (l *Layout) Rects() []Rect {
	out := make([]Rect, len(l.rects))
	copy(out, l.rects)
	return out
}

// Bounds returns the bounding box of all squares. It is empty for an empty
// layout.
func (l *Layout) Bounds() image.Rectangle {
	if len(l.rects) == 0 {
		return image.Rectangle{}
	}
	b := l.rects[0].Bounds()
	for _, r := range l.rects[1:] {
		b = b.Union(r.Bounds())
	}
	return b
}

// Fits reports whether r overlaps none of the placed squares. Shared edges
// are not overlap.
func (l *Layout) Fits(r image.Rectangle) bool {
	return l.fitsExcept(r, -1)
}

func (l *Layout) fitsExcept(r image.Rectangle, skip int) bool {
	for i := range l.rects {
		if i == skip {
			continue
		}
		if r.Overlaps(l.rects[i].Bounds()) {
			return false
		}
	}
	return true
}

// Overlap returns the indexes of the first pair of overlapping squares.
// ok is false when the layout is overlap-free.
func (l *Layout) Overlap() (i, j int, ok bool) {
	for i = range l.rects {
		bi := l.rects[i].Bounds()
		for j = i + 1; j < len(l.rects); j++ {
			if bi.Overlaps(l.rects[j].Bounds()) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// Placements returns the serializable positions in placement order.
func (l *Layout) Placements() []Placement {
	out := make([]Placement, len(l.rects))
	for i, r := range l.rects {
		out[i] = Placement{ID: r.item.ID, X: r.x, Y: r.y, Size: r.item.Size, Strategy: r.strategy}
	}
	return out
}

func (l *Layout) add(it Item, p image.Point, strategy string) {
	l.rects = append(l.rects, Rect{item: it, x: p.X, y: p.Y, strategy: strategy})
}

func (l *Layout) move(i, x, y int) {
	l.rects[i].x = x
	l.rects[i].y = y
}

// Restore rebuilds a layout from previously computed placements. items
// must be the ordered, resolvable items the placements were computed for;
// Restore fails if identifiers or sizes disagree or if the placements
// overlap.
func Restore(items []Item, placements []Placement) (*Layout, error) {
	if len(items) != len(placements) {
		return nil, fmt.Errorf("restore layout: %d placements for %d items", len(placements), len(items))
	}
	l := &Layout{rects: make([]Rect, 0, len(items))}
	for i, p := range placements {
		it := items[i]
		if it.ID != p.ID || it.Size != p.Size {
			return nil, fmt.Errorf("restore layout: placement %d is %q/%d, item is %q/%d", i, p.ID, p.Size, it.ID, it.Size)
		}
		l.add(it, image.Pt(p.X, p.Y), p.Strategy)
	}
	if i, j, ok := l.Overlap(); ok {
		return nil, fmt.Errorf("restore layout: %q overlaps %q", l.rects[i].ID(), l.rects[j].ID())
	}
	return l, nil
}
