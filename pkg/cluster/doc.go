// Package cluster computes compact, overlap-free arrangements of weighted
// square images.
//
// # Overview
//
// A cluster is built in four steps:
//
//  1. [Sized] maps every [Weight] to a side length with [Scale].
//  2. [Order] sorts the items by side length, largest first, keeping input
//     order for equal sizes.
//  3. [Place] anchors the largest item at (0, 0) and packs the rest around it.
//  4. [Tighten] pulls the placed squares toward their common centroid.
//
// [Compose] then normalizes the finished [Layout] to a non-negative origin
// and returns the tiles a raster surface needs to paint.
//
// # Placement
//
// Each item after the first is handed to a [Placer], an ordered list of
// [Strategy] values followed by a [Fallback]. Strategies may fail; the
// fallback may not. The default placer tries [Adjacent] (flush against an
// already placed square, preferring touching candidates close to the origin)
// and then [Spiral] (a bounded outward search from the bounding-box centroid),
// and finally falls back to [RightOfBounds].
//
// # Invariants
//
// No two squares of a [Layout] ever overlap. The only mutation after
// placement is a position change made by [Tighten], and every such change is
// checked against all other squares before it is committed.
//
// The package does no I/O. Images are opaque to it; they ride along on
// [Item] so that [Compose] can hand them back with their final positions.
package cluster
