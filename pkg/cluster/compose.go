package cluster

import "image"

// Tile is an image positioned on the final canvas.
type Tile struct {
	ID    string
	Image image.Image
	X, Y  int
	Size  int
}

// Composition is everything a raster surface needs to paint a cluster.
type Composition struct {
	Width  int
	Height int
	Tiles  []Tile
}

// Compose translates the layout so that its bounding box starts at (0, 0)
// and returns the canvas size and one tile per placed square, in placement
// order. The layout itself is left untouched.
func Compose(l *Layout) Composition {
	bb := l.Bounds()
	c := Composition{
		Width:  bb.Dx(),
		Height: bb.Dy(),
		Tiles:  make([]Tile, 0, l.Len()),
	}
	for _, r := range l.rects {
		c.Tiles = append(c.Tiles, Tile{
			ID:    r.item.ID,
			Image: r.item.Image,
			X:     r.x - bb.Min.X,
			Y:     r.y - bb.Min.Y,
			Size:  r.item.Size,
		})
	}
	return c
}

// Build runs the full placement pipeline on sized items: order, place and
// tighten for at most passes passes.
func Build(items []Item, passes int) (*Layout, TightenStats) {
	l := Place(items)
	return l, Tighten(l, passes)
}
