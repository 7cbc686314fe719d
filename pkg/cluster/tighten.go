package cluster

import (
	"cmp"
	"slices"
)

// DefaultTightenPasses is the pass limit used when none is configured.
const DefaultTightenPasses = 100

// nudgesPerPass bounds how far a single square can travel in one pass.
const nudgesPerPass = 3

// TightenStats describes what a [Tighten] call did.
type TightenStats struct {
	Passes    int  // passes run, including the final idle one
	Moves     int  // single-pixel moves committed
	Converged bool // a pass ended without any move
}

// Tighten pulls the squares of l toward their common centroid, one pixel at
// a time, for at most maxPasses passes.
//
// Every pass fixes the centroid of the square centers, then visits squares
// from the farthest to the nearest. Each square gets up to three attempts to
// step one pixel along x and then one pixel along y toward the centroid. A
// step is taken only when it brings the center strictly closer to the
// centroid on that axis and the moved square overlaps nothing. Tighten stops
// early once a pass moves nothing, so running it again on its own result
// changes nothing.
func Tighten(l *Layout, maxPasses int) TightenStats {
	var st TightenStats
	n := int64(len(l.rects))
	if n < 2 {
		st.Converged = true
		return st
	}

	order := make([]int, n)
	dist := make([]int64, n)

	for st.Passes < maxPasses {
		st.Passes++

		// Doubled-coordinate sums keep the centroid exact: for square i,
		// sum - n*(2*x+w) is 2n times its offset from the centroid.
		var sumX, sumY int64
		for _, r := range l.rects {
			sumX += int64(2*r.x + r.item.Size)
			sumY += int64(2*r.y + r.item.Size)
		}
		for i, r := range l.rects {
			dx := sumX - n*int64(2*r.x+r.item.Size)
			dy := sumY - n*int64(2*r.y+r.item.Size)
			order[i] = i
			dist[i] = dx*dx + dy*dy
		}
		slices.SortStableFunc(order, func(a, b int) int {
			if c := cmp.Compare(dist[b], dist[a]); c != 0 {
				return c
			}
			return cmp.Compare(b, a)
		})

		moved := 0
		for _, i := range order {
			moved += l.nudge(i, sumX, sumY, n)
		}
		st.Moves += moved
		if moved == 0 {
			st.Converged = true
			break
		}
	}
	return st
}

// nudge moves square i toward the centroid given by the doubled sums and
// returns the number of committed steps.
func (l *Layout) nudge(i int, sumX, sumY, n int64) int {
	moves := 0
	side := l.rects[i].item.Size
	x, y := l.rects[i].x, l.rects[i].y

	for range nudgesPerPass {
		before := moves
		if sx := towards(sumX-n*int64(2*x+side), n); sx != 0 && l.fitsExcept(rectAt(x+sx, y, side), i) {
			x += sx
			moves++
		}
		if sy := towards(sumY-n*int64(2*y+side), n); sy != 0 && l.fitsExcept(rectAt(x, y+sy, side), i) {
			y += sy
			moves++
		}
		if moves == before {
			break
		}
		l.move(i, x, y)
	}
	return moves
}

// towards returns the unit step along an axis given d = 2n·(centroid - center).
// A step of one pixel brings the center strictly closer only when the
// offset exceeds half a pixel, i.e. |d| > n.
func towards(d, n int64) int {
	switch {
	case d > n:
		return 1
	case d < -n:
		return -1
	default:
		return 0
	}
}
