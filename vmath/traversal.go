package vmath

import "math"

// GridTraverser is a float64 2D DDA (Amanatides-Woo style), used by the
// grass shader (§4.F.4) to march a ray through the integer stalk grid in
// region space. Adapted from the teacher's Q32.32 fixed-point supercover
// DDA (vmath.Traverse) to operate directly on the float64 coordinates a
// ray-tracer works in.
type GridTraverser struct {
	cx, cy       int
	stepX, stepY int
	tMaxX, tMaxY float64
	tDeltaX, tDeltaY float64
	exit         float64 // parametric distance at which to stop.
	t            float64 // current parametric distance.
}

// NewGridTraverser starts a traversal at point p moving along unit-ish
// direction dir (in the XY plane of region space), stopping once the
// accumulated parametric distance exceeds exitDist.
func NewGridTraverser(p Vec3, dir Vec3, exitDist float64) *GridTraverser {
	t := &GridTraverser{
		cx: int(math.Floor(p.X)),
		cy: int(math.Floor(p.Y)),
		exit: exitDist,
	}
	t.stepX, t.tDeltaX, t.tMaxX = axisDDA(p.X, dir.X)
	t.stepY, t.tDeltaY, t.tMaxY = axisDDA(p.Y, dir.Y)
	return t
}

func axisDDA(p, d float64) (step int, tDelta, tMax float64) {
	if d == 0 {
		return 0, math.Inf(1), math.Inf(1)
	}
	if d > 0 {
		step = 1
		tDelta = 1 / d
		tMax = (math.Floor(p) + 1 - p) / d
	} else {
		step = -1
		tDelta = -1 / d
		tMax = (p - math.Floor(p)) / -d
	}
	return
}

// Cell returns the current grid cell.
func (t *GridTraverser) Cell() (int, int) { return t.cx, t.cy }

// Next advances to the next cell, alternating the axis with the smaller
// tMax (stepping both on a tie, matching the teacher's diagonal-step rule
// so no cell straddling the boundary is skipped). Returns false once the
// traversal has passed exitDist.
func (t *GridTraverser) Next() bool {
	if t.t > t.exit {
		return false
	}
	switch {
	case t.tMaxX < t.tMaxY:
		t.t = t.tMaxX
		t.cx += t.stepX
		t.tMaxX += t.tDeltaX
	case t.tMaxY < t.tMaxX:
		t.t = t.tMaxY
		t.cy += t.stepY
		t.tMaxY += t.tDeltaY
	default:
		t.t = t.tMaxX
		t.cx += t.stepX
		t.cy += t.stepY
		t.tMaxX += t.tDeltaX
		t.tMaxY += t.tDeltaY
	}
	return t.t <= t.exit
}
