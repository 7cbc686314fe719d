package cluster

import (
	"cmp"
	"image"
	"slices"
)

// Default side lengths in pixels.
const (
	DefaultMinSize = 50
	DefaultMaxSize = 300
)

// Weight is a single input to the cluster: an identifier and how much it
// counts (for album clusters, the number of songs).
type Weight struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
}

// SizeRange bounds the side length of a scaled item.
type SizeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultSizeRange returns the 50..300 pixel range.
func DefaultSizeRange() SizeRange {
	return SizeRange{Min: DefaultMinSize, Max: DefaultMaxSize}
}

// Item is a weighted square waiting to be placed.
type Item struct {
	ID     string
	Weight int
	// Size is the side length in pixels.
	Size int
	// Image is the decoded cover, already resized to Size×Size. Items
	// without an image are not placed.
	Image image.Image

	// index is the position of the item in the input sequence. It breaks
	// ties between items of equal size.
	index int
}

// Index returns the position of the item in the sequence it was created from.
func (it Item) Index() int { return it.index }

// Scale maps weight linearly from [minWeight, maxWeight] onto
// [minSize, maxSize], truncating toward minSize. The ratio is taken in
// floating point so huge song counts cannot overflow.
//
// When all weights are equal the midpoint of the size range is returned.
// Weights outside the range are clamped so the result never leaves
// [minSize, maxSize].
func Scale(weight, minWeight, maxWeight, minSize, maxSize int) int {
	if minWeight == maxWeight {
		return (minSize + maxSize) / 2
	}
	weight = min(max(weight, minWeight), maxWeight)
	ratio := float64(weight-minWeight) / float64(maxWeight-minWeight)
	return int(float64(minSize) + ratio*float64(maxSize-minSize))
}

// Sized scales every weight into r and returns one item per weight, in
// input order. Images are left unset.
func Sized(weights []Weight, r SizeRange) []Item {
	if len(weights) == 0 {
		return nil
	}
	lo, hi := weights[0].Weight, weights[0].Weight
	for _, w := range weights[1:] {
		lo = min(lo, w.Weight)
		hi = max(hi, w.Weight)
	}

	items := make([]Item, len(weights))
	for i, w := range weights {
		items[i] = Item{
			ID:     w.ID,
			Weight: w.Weight,
			Size:   Scale(w.Weight, lo, hi, r.Min, r.Max),
			index:  i,
		}
	}
	return items
}

// NewItem creates an item at position index of its input sequence.
func NewItem(index int, id string, weight, size int, img image.Image) Item {
	return Item{ID: id, Weight: weight, Size: size, Image: img, index: index}
}

// Order returns a copy of items sorted by size, largest first. Items of
// equal size keep their input order.
func Order(items []Item) []Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b Item) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
	return out
}
