package framebuffer

import (
	"math"

	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// FloatPixel is one FULLFLOAT-mode sample (§3, §4.H): a finished shaded
// point plus enough world-space information (HitPt, ViewZ, Region) that a
// later frame can reproject it instead of re-tracing. Frame records which
// frame last wrote this cell; Frame < 0 marks it unset/stale, the "miss
// from a prior frame" state of §8's invariant 5.
type FloatPixel struct {
	Frame  int
	Color  spectrum.RGB
	X, Y   int
	Dist   float64 // along-ray hit distance, mm.
	ViewZ  float64 // view-space depth at the time of writing, for splat nearness comparisons.
	HitPt  vmath.Vec3
	Region any // region identity (comparable); kept untyped so framebuffer has no rt dependency.
}

// FloatFrame is the full-float buffer backing component H's FULLFLOAT
// mode: one FloatPixel per pixel, indexed y*width+x.
type FloatFrame struct {
	Width, Height int
	Pixels        []FloatPixel
}

// NewFloatFrame builds an all-unset float frame (every cell Frame = -1,
// Dist = -Inf, matching the "reprojected-but-never-written" sentinel
// §3's floatpixel doc calls out: "a reprojected pixel has frame >= 0 and
// dist != -inf").
func NewFloatFrame(w, h int) *FloatFrame {
	f := &FloatFrame{Width: w, Height: h, Pixels: make([]FloatPixel, w*h)}
	for i := range f.Pixels {
		f.Pixels[i] = FloatPixel{Frame: -1, Dist: math.Inf(-1), X: i % w, Y: i / w}
	}
	return f
}

func (f *FloatFrame) at(x, y int) (int, bool) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return 0, false
	}
	return y*f.Width + x, true
}

func (f *FloatFrame) Get(x, y int) (FloatPixel, bool) {
	idx, ok := f.at(x, y)
	if !ok {
		return FloatPixel{}, false
	}
	return f.Pixels[idx], true
}

// Set records a freshly-traced sample at (x, y) for frame.
func (f *FloatFrame) Set(x, y, frame int, c spectrum.RGB, dist, viewZ float64, hitPt vmath.Vec3, region any) {
	idx, ok := f.at(x, y)
	if !ok {
		return
	}
	f.Pixels[idx] = FloatPixel{Frame: frame, Color: c, X: x, Y: y, Dist: dist, ViewZ: viewZ, HitPt: hitPt, Region: region}
}

// Valid reports whether the cell was written by a trace or accepted
// reprojection this frame (or a still-young earlier one), vs. the -1
// sentinel.
func (p FloatPixel) Valid() bool { return p.Frame >= 0 }

// ReprojectConfig bundles the reprojection quality heuristics of §4.H's
// "Reprojection" paragraph.
type ReprojectConfig struct {
	ScrLimDistSq float64 // reject if the splat moved more than sqrt(this) screen pixels.
	MaxAgeBase   int     // 4 in the spec's "4 + ((y+x) mod 4)" age-spread rule.
}

func DefaultReprojectConfig() ReprojectConfig {
	return ReprojectConfig{ScrLimDistSq: 9, MaxAgeBase: 4}
}

// Reproject is a pure function of (prev, model2view, curFrame): for every
// valid pixel of prev, project its world-space hit point through
// model2view and splat it onto up to four destination cells of a new
// frame (§4.H's "Reprojection"). A splat is accepted into a destination
// cell iff the cell is unset or the new view-space Z is nearer than
// whatever is already there; candidates are rejected outright if the
// pixel moved too far on screen or is older than the age-spread
// threshold. Cells nothing splats onto keep the -1/-Inf sentinel, per
// §8 invariant 5.
func Reproject(prev *FloatFrame, model2view vmath.Mat4, curFrame int, cfg ReprojectConfig) *FloatFrame {
	next := NewFloatFrame(prev.Width, prev.Height)
	scrLim := math.Sqrt(cfg.ScrLimDistSq)

	for _, src := range prev.Pixels {
		if !src.Valid() {
			continue
		}
		age := curFrame - src.Frame
		maxAge := cfg.MaxAgeBase + ((src.Y+src.X)%4)
		if age > maxAge {
			continue
		}

		viewPt := model2view.MulPoint(src.HitPt)
		if viewPt.Z <= 0 {
			continue
		}
		vx := viewPt.X / viewPt.Z
		vy := viewPt.Y / viewPt.Z
		ix := (vx + 1) / 2 * float64(next.Width)
		iy := (vy + 1) / 2 * float64(next.Height)

		dx := ix - float64(src.X)
		dy := iy - float64(src.Y)
		if dx*dx+dy*dy > scrLim*scrLim {
			continue
		}

		baseX, baseY := int(math.Floor(ix)), int(math.Floor(iy))
		for _, d := range [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
			cx, cy := baseX+d[0], baseY+d[1]
			idx, ok := next.at(cx, cy)
			if !ok {
				continue
			}
			dst := &next.Pixels[idx]
			if dst.Valid() && dst.ViewZ <= viewPt.Z {
				continue
			}
			*dst = FloatPixel{
				Frame: curFrame, Color: src.Color, X: cx, Y: cy,
				Dist: src.Dist, ViewZ: viewPt.Z, HitPt: src.HitPt, Region: src.Region,
			}
		}
	}
	return next
}

// MarkTraced commits a freshly-traced pixel into frame at curFrame,
// skipping any cell a reprojection this same frame already covered
// (§4.H: "Skip the new-frame trace for any pixel already covered by a
// fresh reprojection").
func MarkTraced(frame *FloatFrame, x, y, curFrame int, c spectrum.RGB, dist, viewZ float64, hitPt vmath.Vec3, region any) {
	idx, ok := frame.at(x, y)
	if !ok {
		return
	}
	if p := frame.Pixels[idx]; p.Frame == curFrame {
		return
	}
	frame.Set(x, y, curFrame, c, dist, viewZ, hitPt, region)
}

// NeedsTrace reports whether (x, y) still needs a primary-ray trace this
// frame: it wasn't already covered by an accepted reprojection.
func NeedsTrace(frame *FloatFrame, x, y, curFrame int) bool {
	p, ok := frame.Get(x, y)
	if !ok {
		return false
	}
	return p.Frame != curFrame
}
