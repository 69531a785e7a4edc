// Package dispatch implements component I: do_pixel, the per-pixel
// camera-ray setup, hypersampling, and stereo packing contract of §4.I.
// Camera basis construction is grounded on teacher's vmath/vec3f.go
// float-vector helpers, generalized from 2D screen-space math to the
// view-plane basis a ray tracer needs.
package dispatch

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// Camera holds the per-frame basis view_setup computes once (§4.I's last
// paragraph): dx_model/dy_model/viewbase_model plus the perspective
// knobs that decide how a pixel's (x,y) becomes a ray.
type Camera struct {
	Eye         vmath.Vec3
	DxModel     vmath.Vec3
	DyModel     vmath.Vec3
	ViewbaseModel vmath.Vec3
	PlaneNormal vmath.Vec3 // orthographic ray direction.

	Perspective float64 // degrees; <=0 selects orthographic.
	ViewSize    float64
	Width       int

	Stereo bool
}

// NewCamera derives dx_model/dy_model/viewbase_model from a view2model
// basis R (its rows are the model-space images of the view X/Y axes),
// cell dimensions, and aspect ratio, per §4.I.
func NewCamera(eye vmath.Vec3, rX, rY, rZ vmath.Vec3, cellWidth, cellHeight, aspect float64, perspective, viewSize float64, width int, stereo bool) Camera {
	dxUnit := rX
	dyUnit := rY
	var zSign float64 = 1
	if perspective > 0 {
		zSign = -1
	}
	viewbase := rX.Scale(-1).Add(rY.Scale(-1 / aspect)).Add(rZ.Scale(zSign))
	return Camera{
		Eye:           eye,
		DxModel:       dxUnit.Scale(cellWidth),
		DyModel:       dyUnit.Scale(cellHeight),
		ViewbaseModel: viewbase,
		PlaneNormal:   rZ,
		Perspective:   perspective,
		ViewSize:      viewSize,
		Width:         width,
		Stereo:        stereo,
	}
}

// jitterPattern is one of the four deterministic sub-pixel grids from
// original_source/src/rt/worker.c:94-121 (pt_pats[]), documented in
// SPEC_FULL §5.
type jitterPattern struct {
	centres   [][2]float64
	scaleX, scaleY float64
}

var patterns = map[int]jitterPattern{
	4: {
		centres: [][2]float64{{.25, .25}, {.25, .75}, {.75, .25}, {.75, .75}},
		scaleX:  0.5, scaleY: 0.5,
	},
	5: {
		centres: [][2]float64{{.25, .25}, {.25, .75}, {.75, .25}, {.75, .75}, {.5, .5}},
		scaleX:  0.4, scaleY: 0.4,
	},
	9: {
		centres: [][2]float64{
			{.17, .17}, {.5, .17}, {.82, .17},
			{.17, .5}, {.5, .5}, {.82, .5},
			{.17, .82}, {.5, .82}, {.82, .82},
		},
		scaleX: 0.3333, scaleY: 0.3333,
	},
	16: func() jitterPattern {
		coords := []float64{.125, .375, .625, .875}
		var centres [][2]float64
		for _, y := range coords {
			for _, x := range coords {
				centres = append(centres, [2]float64{x, y})
			}
		}
		return jitterPattern{centres: centres, scaleX: 0.25, scaleY: 0.25}
	}(),
}

// jitterStartPoint applies the deterministic-pattern-plus-random-offset
// jitter of §4.I / SPEC_FULL §5 to the pixel's base point in view-plane
// units (fractions of a cell), for sample index sampleIdx of samples
// total. Falls back to uniform ±0.5 jitter when no table matches.
func jitterStartPoint(rng *rand.Rand, samples, sampleIdx int) (dx, dy float64) {
	pat, ok := patterns[samples]
	if !ok || sampleIdx >= len(pat.centres) {
		return vmath.RandHalf(rng), vmath.RandHalf(rng)
	}
	c := pat.centres[sampleIdx]
	dx = (c[0] - 0.5) + vmath.RandHalf(rng)*pat.scaleX
	dy = (c[1] - 0.5) + vmath.RandHalf(rng)*pat.scaleY
	return dx, dy
}

const crtR, crtG, crtB = 0.26, 0.66, 0.08

// crtBlend packs a stereo pair's luminance per the exact weights of
// original_source/src/rt/worker.c:53.
func crtBlend(v spectrum.RGB) float64 {
	return crtR*v.R + crtG*v.G + crtB*v.B
}

const stereoEyeShift = -63.5 * 2

// Options bundles do_pixel's per-call knobs: hypersample count, jitter
// on/off, and the incremental-mode pass (0 disables skipping).
type Options struct {
	Hypersample int
	Jitter      bool

	// IncrLevel is the current INCR pass, 1-indexed (k in §4.H/§4.I);
	// 0 disables incremental mode entirely (every pixel is shot).
	// IncrStride is that pass's grid stride, 2^(nlevel-k). A grid point
	// already covered by the previous, coarser pass — i.e. both its
	// stride-local coordinates are even — is skipped; the first pass
	// (IncrLevel == 1) never skips, since there is no coarser pass yet.
	IncrLevel  int
	IncrStride int
	RandSource *rand.Rand

	// Per-ray application defaults, copied onto every primary ray this
	// call shoots (the "a = APP" struct-copy of original_source/src/rt/worker.c:151).
	Tol         float64
	MaxBounces  int
	MaxIreflect int
	RefracIndex float64
	OneHit      int
	NoBooleans  bool
}

// Result is what do_pixel hands off to view_pixel (§4.I step 6). HitPt/
// Dist/Region are only meaningful when Hit is true and hypersample == 0
// (a single-sample shot); FULLFLOAT mode (§4.H) is the only caller that
// reads them, since reprojection needs one concrete world-space point per
// pixel rather than a hypersampled blend.
type Result struct {
	Color spectrum.RGB
	Hit   bool
	Skip  bool // incremental-mode: already computed at a coarser pass.

	HitPt  vmath.Vec3
	Dist   float64
	Region *rt.Region
}

// Pixel implements do_pixel for one (x, y) against a prebuilt pixmap
// pre-known-colour lookup (nil disables it), shooting through kernel via
// a caller-supplied hit/miss pair bound to the shading pipeline
// (pixel.Shader.ColorView / .Miss).
func Pixel(cam Camera, x, y int, opt Options, kernel rt.Kernel, hitFn rt.HitCallback, missFn rt.MissCallback, pixmap func(x, y int) (spectrum.RGB, bool)) Result {
	// Step 1: pre-known colour.
	if pixmap != nil {
		if c, ok := pixmap(x, y); ok {
			return Result{Color: c, Hit: true}
		}
	}

	// Step 2: incremental-mode skip — already shot at a coarser pass.
	if opt.IncrLevel > 1 {
		stride := opt.IncrStride
		if stride < 1 {
			stride = 1
		}
		if (x/stride)%2 == 0 && (y/stride)%2 == 0 {
			return Result{Skip: true}
		}
	}

	samples := opt.Hypersample + 1
	sum := spectrum.Black
	anyHit := false

	for s := 0; s < samples; s++ {
		px, py := float64(x), float64(y)
		if opt.Jitter {
			dx, dy := jitterStartPoint(opt.RandSource, samples, s)
			px += dx
			py += dy
		}
		point := cam.ViewbaseModel.Add(cam.DxModel.Scale(px)).Add(cam.DyModel.Scale(py))

		var origin, dir vmath.Vec3
		var diverge, rbeam float64
		if cam.Perspective > 0 {
			origin = cam.Eye
			diff := point.Sub(cam.Eye)
			dir = diff.Normalize()
			diverge = math.Tan(cam.Perspective*math.Pi/360) / float64(cam.Width)
		} else {
			origin = point
			dir = cam.PlaneNormal
			rbeam = cam.ViewSize / (2 * float64(cam.Width))
		}

		if cam.Stereo {
			left := shoot(kernel, hitFn, missFn, opt, origin, dir, rbeam, diverge, x, y)
			shiftedOrigin := origin.Add(vmath.V3(stereoEyeShift/cam.ViewSize, 0, 0))
			right := shoot(kernel, hitFn, missFn, opt, shiftedOrigin, dir, rbeam, diverge, x, y)
			blended := spectrum.RGBOf(crtBlend(left.Color), 0, crtBlend(right.Color))
			sum = sum.Add(blended)
			anyHit = anyHit || left.Hit || right.Hit
			continue
		}

		res := shoot(kernel, hitFn, missFn, opt, origin, dir, rbeam, diverge, x, y)
		sum = sum.Add(res.Color)
		anyHit = anyHit || res.Hit
		if samples == 1 {
			// Single-sample shot: carry the concrete hit geometry through
			// for FULLFLOAT mode's reprojection (§4.H), which needs one
			// world-space point per pixel, not a hypersampled blend.
			return Result{Color: res.Color, Hit: res.Hit, HitPt: res.HitPt, Dist: res.Dist, Region: res.Region}
		}
	}

	return Result{Color: sum.Scale(1 / float64(samples)), Hit: anyHit}
}

func shoot(kernel rt.Kernel, hitFn rt.HitCallback, missFn rt.MissCallback, opt Options, origin, dir vmath.Vec3, rbeam, diverge float64, x, y int) Result {
	app := &rt.Application{
		Ray:         rt.Ray{Origin: origin, Dir: dir, RBeam: rbeam, Diverge: diverge},
		Level:       0,
		Purpose:     "main ray",
		X:           x,
		Y:           y,
		RNG:         opt.RandSource,
		Tol:         opt.Tol,
		MaxBounces:  opt.MaxBounces,
		MaxIreflect: opt.MaxIreflect,
		RefracIndex: opt.RefracIndex,
		OneHit:      opt.OneHit,
		NoBooleans:  opt.NoBooleans,
		Kernel:      kernel,
		HitFn:       hitFn,
		MissFn:      missFn,
	}
	app.Shoot()
	res := Result{Color: app.Color, Hit: app.Hit, Region: app.UPtr}
	if app.Hit {
		res.Dist = app.Dist
		res.HitPt = origin.Add(dir.Scale(app.Dist))
	}
	return res
}
