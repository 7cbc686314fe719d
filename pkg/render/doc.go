// Package render paints a cluster composition onto a raster image and
// encodes it.
//
// # Overview
//
// The cluster package decides where every cover goes; this package turns
// the resulting [cluster.Composition] into pixels:
//
//	comp := cluster.Compose(layout)
//	img := render.Paint(comp, render.Options{Background: bg})
//	err := render.Encode(w, img, render.PNG)
//
// A [Surface] wraps a gg drawing context. It is filled with the background
// color once and each tile is pasted at its position. Tiles never overlap,
// so painting order does not matter.
//
// # Formats
//
// PNG and JPEG are supported. [FormatFromPath] picks the format from an
// output file name and [ContentType] gives the MIME type served by the API.
//
// [cluster.Composition]: github.com/matzehuels/covercluster/pkg/cluster.Composition
package render
