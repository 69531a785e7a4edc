// Package pixel implements component G: colorview, the canonical a_hit
// for full shading. It walks the partition list for the first real hit,
// handles the eye-inside-a-solid special case, calls the shading
// dispatcher (component E), and applies the haze and ambient-occlusion
// post-filters (§4.G, §4.G.1).
package pixel

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/rtshade/config"
	"github.com/lixenwraith/rtshade/logging"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shade"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// CutPlane is an optional global clipping plane (§4.G step 2): the kept
// half-space is where Normal·(p − Point) ≥ 0. It has no command-language
// front end in this module's scope (§1); callers enable it by setting
// Shader.CutPlane directly.
type CutPlane struct {
	Point  vmath.Vec3
	Normal vmath.Vec3
}

// Shader bundles the state colorview needs per frame: the shading
// dispatcher, the static config (gamma lives in framebuffer, not here;
// colorview only reads the background colour and AO knobs from it), and a
// logger.
type Shader struct {
	Dispatch   *shade.Dispatcher
	Config     *config.Config
	HazeColor  spectrum.RGB
	AirDensity float64
	Log        *logging.Logger
	Debug      bool // RDEBUG_SHOWERR: paint red instead of 18% grey.
	CutPlane   *CutPlane
}

func New(dispatch *shade.Dispatcher, cfg *config.Config, log *logging.Logger) *Shader {
	if log == nil {
		log = logging.Default
	}
	return &Shader{Dispatch: dispatch, Config: cfg, Log: log}
}

const eyeInsideGrey = 0.18

// ColorView is the a_hit callback (rt.HitCallback-shaped) for a primary
// or recursed shading ray.
func (s *Shader) ColorView(app *rt.Application, parts *rt.PartitionList) int {
	// Step 1: first partition with a forward-facing outhit.
	var chosen *rt.Partition
	for p := parts.Front(); p != nil; p = p.Next {
		if p.OutHit.Dist >= 0 {
			chosen = p
			break
		}
	}
	if chosen == nil {
		s.Log.Warnf("colorview: no hit out front")
		app.Hit = false
		return 0
	}

	// Step 2: optional cutting-plane trim.
	if s.CutPlane != nil {
		if !s.trimCutPlane(app, chosen) {
			app.Hit = false
			return 0
		}
	}

	// Step 3: eye inside a solid.
	if chosen.InHit.Dist < 0 && chosen.Region != nil && chosen.Region.AirCode == 0 {
		if math.IsInf(chosen.OutHit.Dist, 1) || app.Level > app.MaxBounces {
			grey := spectrum.Const(eyeInsideGrey)
			if s.Debug {
				grey = spectrum.RGBOf(1, 0, 0)
			}
			app.Color = grey
			app.Hit = true
			app.UPtr = chosen.Region
			app.Dist = chosen.InHit.Dist
			return 1
		}
		pushed := chosen.OutHit.Point(app.Ray).Add(app.Ray.Dir.Scale(app.Tol))
		result := s.trace(app, pushed, app.Ray.Dir, app.Level+1, "pushed eye position")
		app.Color = result.Scale(0.80)
		app.Hit = true
		return 1
	}

	// Step 4: zeroed shadework.
	sw := shader.NewShadework()
	if chosen.Region != nil && chosen.Region.Override != nil {
		sw.Color = spectrum.ReflectanceFromRGB(chosen.Region.Override.X, chosen.Region.Override.Y, chosen.Region.Override.Z)
		sw.BaseColor = sw.Color
	}

	// Step 5.
	s.Dispatch.Viewshade(app, chosen, sw)

	// Step 6.
	app.Color = sw.Color
	app.Hit = true
	app.Dist = chosen.InHit.Dist
	app.UPtr = chosen.Region

	color := sw.Color

	// Step 7: haze.
	if s.AirDensity > 0 {
		atten := math.Exp(-app.Dist * s.AirDensity)
		color = color.Scale(atten).Add(s.HazeColor.Scale(1 - atten))
	}

	// Step 8: ambient occlusion.
	if s.Config != nil && s.Config.AmbSamples > 0 && sw.Inputs.Has(shader.NORMAL) {
		n := vmath.V3(sw.Normal[0], sw.Normal[1], sw.Normal[2])
		hp := chosen.InHit.Point(app.Ray)
		occlusion := s.ambientOcclusion(app, hp, n)
		color = color.Scale(occlusion)
	}

	app.Color = color
	return 1
}

// trimCutPlane implements §4.G step 2: if the chosen partition's inhit
// lies on the discarded side of the plane, push it forward to the
// plane-crossing distance; if the entire partition lies on the
// discarded side, report false so the caller treats this as a miss.
func (s *Shader) trimCutPlane(app *rt.Application, part *rt.Partition) bool {
	cp := s.CutPlane
	ray := app.Ray
	side := func(t float64) float64 {
		return cp.Normal.Dot(ray.PointAt(t).Sub(cp.Point))
	}

	inSide := side(part.InHit.Dist)
	var outSide float64
	if math.IsInf(part.OutHit.Dist, 1) {
		// As t -> +Inf, the sign of Normal·Dir decides which side the
		// partition trends toward.
		outSide = cp.Normal.Dot(ray.Dir)
	} else {
		outSide = side(part.OutHit.Dist)
	}

	if inSide < 0 && outSide < 0 {
		return false
	}
	if inSide < 0 && outSide >= 0 {
		denom := cp.Normal.Dot(ray.Dir)
		if denom != 0 {
			tCut := cp.Normal.Dot(cp.Point.Sub(ray.Origin)) / denom
			if tCut > part.InHit.Dist {
				part.InHit = rt.HitRecord{Dist: tCut, Seg: part.InHit.Seg}
			}
		}
	}
	return true
}

// trace shoots a secondary ray from origin in dir at the given
// recursion level, satisfying phong.TraceFunc / cloud.TraceFunc's shape.
func (s *Shader) trace(parent *rt.Application, origin, dir vmath.Vec3, level int, purpose string) spectrum.RGB {
	app := &rt.Application{
		Ray:         rt.Ray{Origin: origin, Dir: dir, RBeam: parent.Ray.RBeam, Diverge: parent.Ray.Diverge},
		Level:       level,
		Purpose:     purpose,
		RNG:         parent.RNG,
		Kernel:      parent.Kernel,
		Tol:         parent.Tol,
		MaxBounces:  parent.MaxBounces,
		MaxIreflect: parent.MaxIreflect,
		RefracIndex: parent.RefracIndex,
	}
	app.HitFn = func(a *rt.Application, parts *rt.PartitionList) int {
		return s.ColorView(a, parts)
	}
	app.MissFn = func(a *rt.Application) int {
		a.Hit = false
		if s.Config != nil {
			a.Color = s.Config.Background
		}
		return 0
	}
	app.Shoot()
	return app.Color
}

// Trace exports trace for wiring into phong/cloud's TraceFunc slots.
func (s *Shader) Trace(app *rt.Application, origin, dir vmath.Vec3, level int, purpose string) spectrum.RGB {
	return s.trace(app, origin, dir, level, purpose)
}

// Miss is the a_miss callback (rt.MissCallback-shaped) for a primary ray.
func (s *Shader) Miss(app *rt.Application) int {
	app.Hit = false
	if s.Config != nil {
		app.Color = s.Config.Background
	}
	return 0
}

const ambOcclusionFloor = 1.0 / 80.0

// ambientOcclusion implements §4.G.1: fire ambSamples cosine-weighted
// hemisphere rays from hp offset along n, counting hits within
// ambRadius as occlusion.
func (s *Shader) ambientOcclusion(app *rt.Application, hp, n vmath.Vec3) float64 {
	cfg := s.Config
	offset := cfg.AmbOffset
	if offset == 0 {
		offset = app.Tol
	}
	origin := hp.Add(n.Scale(offset))
	frame := vmath.NewFrame(n)

	rng := app.RNG
	if cfg.AmbSlow {
		rng = slowRNG(app.RNG)
	}

	hits := 0
	for i := 0; i < cfg.AmbSamples; i++ {
		dir := vmath.CosineHemisphere(rng, frame)
		occluded := s.occlusionTest(app, origin, dir, cfg.AmbRadius)
		if occluded {
			hits++
		}
	}
	occlusion := 1 - float64(hits)/float64(cfg.AmbSamples)
	return vmath.Clamp(occlusion, ambOcclusionFloor, 1)
}

// occlusionTest fires a bare visibility ray (no shading) and reports
// whether it hit geometry within maxDist (0 = unlimited).
func (s *Shader) occlusionTest(app *rt.Application, origin, dir vmath.Vec3, maxDist float64) bool {
	probe := &rt.Application{
		Ray:    rt.Ray{Origin: origin, Dir: dir},
		Level:  0,
		RNG:    app.RNG,
		Kernel: app.Kernel,
		Tol:    app.Tol,
	}
	occluded := false
	probe.HitFn = func(a *rt.Application, parts *rt.PartitionList) int {
		p := parts.Front()
		if p != nil && (maxDist <= 0 || p.InHit.Dist <= maxDist) {
			occluded = true
		}
		return 1
	}
	probe.MissFn = func(a *rt.Application) int { return 0 }
	probe.Shoot()
	return occluded
}

// slowRNG returns a high-quality generator for ambSlow mode. math/rand/v2
// has no "quality tiers" the way the source's Mersenne-vs-cheap split
// does; ChaCha8 is the higher-quality CSPRNG-grade source in the
// standard library's rand/v2 generator set, reseeded from the fast
// per-worker stream so the call stays reproducible per §9's RNG
// determinism note.
func slowRNG(fast *rand.Rand) *rand.Rand {
	seed := [32]byte{}
	for i := range seed {
		seed[i] = byte(fast.Uint64())
	}
	return rand.New(rand.NewChaCha8(seed))
}
