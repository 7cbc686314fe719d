package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/covercluster/pkg/cluster"
)

// DefaultBackground is the canvas color used when none is configured.
const DefaultBackground = "#141414"

// Surface is a raster canvas that tiles are painted onto.
type Surface struct {
	dc *gg.Context
}

// NewSurface creates a w×h canvas filled with bg.
func NewSurface(w, h int, bg color.Color) *Surface {
	dc := gg.NewContext(w, h)
	dc.SetColor(bg)
	dc.Clear()
	return &Surface{dc: dc}
}

// Paint pastes the tile's image with its top-left corner at the tile
// position, replacing the pixels underneath. Transparency is dropped: a
// cover's color channels are copied as they are and the canvas stays
// opaque. Tiles without an image are skipped.
func (s *Surface) Paint(t cluster.Tile) {
	if t.Image == nil {
		return
	}
	dst := s.dc.Image().(*image.RGBA)
	b := t.Image.Bounds()
	r := image.Rect(t.X, t.Y, t.X+b.Dx(), t.Y+b.Dy())
	draw.Draw(dst, r, opaque(t.Image), b.Min, draw.Src)
}

// opaque returns img with every alpha set to fully opaque, keeping the
// unpremultiplied color channels.
func opaque(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// Image returns the painted canvas.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// Options configures [Paint].
type Options struct {
	// Background fills the canvas behind the tiles. Nil means
	// [DefaultBackground].
	Background color.Color
}

// Paint renders every tile of comp onto a new surface.
func Paint(comp cluster.Composition, opts Options) image.Image {
	bg := opts.Background
	if bg == nil {
		bg, _ = ParseColor(DefaultBackground)
	}
	s := NewSurface(comp.Width, comp.Height, bg)
	for _, t := range comp.Tiles {
		s.Paint(t)
	}
	return s.Image()
}
