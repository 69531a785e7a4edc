// Package view implements component K: the view lifecycle hooks that own
// per-frame setup and teardown, shaped after the teacher's GameContext
// construction/lifecycle split (engine/game.go) — one struct holding every
// piece of shared state, built once, reset per frame.
package view

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/lixenwraith/rtshade/config"
	"github.com/lixenwraith/rtshade/dispatch"
	"github.com/lixenwraith/rtshade/framebuffer"
	"github.com/lixenwraith/rtshade/light"
	"github.com/lixenwraith/rtshade/logging"
	"github.com/lixenwraith/rtshade/pixel"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shade"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
	"github.com/lixenwraith/rtshade/workerpool"
)

// View is the shared state one rendering session owns: the shader
// registry, light set, shading dispatcher, and the buffer/pool for the
// frame in flight.
type View struct {
	Config   *config.Config
	Registry *shader.Registry
	Lights   *light.Set
	Dispatch *shade.Dispatcher
	Shader   *pixel.Shader
	Kernel   rt.Kernel
	Log      *logging.Logger

	Buffer *framebuffer.Buffer
	Camera dispatch.Camera
	Pool   *workerpool.Pool

	Width, Height int
}

// Init is view_init: register shaders and build the dispatcher. Callers
// register their own material vtables on Registry before/after Init;
// Init itself only wires the pieces that don't depend on any specific
// shader set.
func Init(cfg *config.Config, kernel rt.Kernel, log *logging.Logger) *View {
	if log == nil {
		log = logging.Default
	}
	reg := shader.NewRegistry()
	lights := light.NewSet()
	dispatcher := shade.NewDispatcher(reg, lights, log)
	sh := pixel.New(dispatcher, cfg, log)

	return &View{
		Config:   cfg,
		Registry: reg,
		Lights:   lights,
		Dispatch: dispatcher,
		Shader:   sh,
		Kernel:   kernel,
		Log:      log,
	}
}

// Setup is view_setup: run every region's shader setup, dropping regions
// whose setup rejects them. Regions are supplied by the (out-of-scope)
// geometry database; this module only runs the per-region dispatch.
// paramsOf may be nil, in which case each region's raw Params string is
// parsed with shader.ParseParams — a malformed token is then itself the
// "structured error" §4.B requires a shader setup failure to produce.
func Setup(reg *shader.Registry, regions []*rt.Region, paramsOf func(*rt.Region) shader.Params) ([]*rt.Region, error) {
	kept := make([]*rt.Region, 0, len(regions))
	for _, region := range regions {
		var params shader.Params
		if paramsOf != nil {
			params = paramsOf(region)
		} else {
			p, err := shader.ParseParams(region.Params)
			if err != nil {
				return nil, fmt.Errorf("view: setup region %q: %w", region.Name, err)
			}
			params = p
		}
		result, err := reg.SetupRegion(region, params)
		if err != nil {
			return nil, fmt.Errorf("view: setup region %q: %w", region.Name, err)
		}
		if result == shader.SetupDrop {
			continue
		}
		kept = append(kept, region)
	}
	return kept, nil
}

// FrameOptions configures one call to Frame2Init.
type FrameOptions struct {
	Width, Height int
	Mode          framebuffer.Mode
	Camera        dispatch.Camera
	Workers       int
	AmbientFraction float64
	ViewToModel   vmath.Mat4
}

// Frame2Init is view_2init: per-frame reset — allocate the buffer,
// choose its mode, seed lights if the set is empty, and run light_init.
func (v *View) Frame2Init(opt FrameOptions) {
	v.Width, v.Height = opt.Width, opt.Height
	v.Camera = opt.Camera
	v.Buffer = framebuffer.New(opt.Mode, opt.Width, opt.Height)
	v.Buffer.Gamma = v.Config.Gamma
	v.Buffer.Background = v.Config.Background

	v.Lights.EnsureLights(1, opt.ViewToModel)
	v.Lights.Init(opt.AmbientFraction)

	v.Pool = &workerpool.Pool{Workers: opt.Workers}
}

// baseOptions builds the dispatch options every render method shares
// from the view's config.
func (v *View) baseOptions(hypersample int, jitter bool) dispatch.Options {
	return dispatch.Options{
		Hypersample: hypersample,
		Jitter:      jitter,
		Tol:         1e-6,
		MaxBounces:  v.Config.MaxBounces,
		MaxIreflect: v.Config.MaxIreflect,
		RefracIndex: 1,
		OneHit:      v.Config.AOnehit,
		NoBooleans:  v.Config.NoBooleans,
	}
}

// RenderFrame drives one full-resolution frame through the worker pool
// (UNBUF/SCANLINE/DYNAMIC/ACC buffer modes, §4.H). Returns false if ctx
// was cancelled before every pixel was shot (§5's stop_worker flag).
func (v *View) RenderFrame(ctx context.Context, rng func(worker int) *rand.Rand, hypersample int, jitter bool) bool {
	total := v.Width * v.Height
	opt := v.baseOptions(hypersample, jitter)

	return v.Pool.Run(ctx, total, func(index int) {
		x, y := index%v.Width, index/v.Width
		local := opt
		local.RandSource = rng(index % max1(v.Pool.Workers))
		res := dispatch.Pixel(v.Camera, x, y, local, v.Kernel, v.Shader.ColorView, v.Shader.Miss, nil)
		if res.Skip {
			return
		}
		v.Buffer.Set(x, y, res.Color, res.Hit)
	})
}

// RenderIncrementalFrame drives the INCR buffer mode's nlevel-pass
// progressive refinement (§4.H, §4.I): pass k shoots only the grid
// points at stride 2^(nlevel-k), skipping any point already shot at a
// coarser pass, and replicates each result across the stride square.
func (v *View) RenderIncrementalFrame(ctx context.Context, rng func(worker int) *rand.Rand, hypersample int, jitter bool, nlevel int) bool {
	opt := v.baseOptions(hypersample, jitter)

	for k := 1; k <= nlevel; k++ {
		v.Buffer.SetIncrLevel(k, nlevel)
		stride := 1 << uint(nlevel-k)

		var points [][2]int
		for y := 0; y < v.Height; y += stride {
			for x := 0; x < v.Width; x += stride {
				points = append(points, [2]int{x, y})
			}
		}

		local := opt
		local.IncrLevel = k
		local.IncrStride = stride

		ok := v.Pool.Run(ctx, len(points), func(index int) {
			pt := points[index]
			x, y := pt[0], pt[1]
			perPixel := local
			perPixel.RandSource = rng(index % max1(v.Pool.Workers))
			res := dispatch.Pixel(v.Camera, x, y, perPixel, v.Kernel, v.Shader.ColorView, v.Shader.Miss, nil)
			if res.Skip {
				return
			}
			v.Buffer.SetIncr(x, y, res.Color, res.Hit)
		})
		if !ok {
			return false
		}
	}
	return true
}

// RenderFullFloatFrame drives the FULLFLOAT buffer mode (§4.H): prev is
// the previous frame's FloatFrame (nil for the first frame), model2view
// is this frame's camera transform used to reproject prev's hit points
// forward. Returns the frame just rendered (for the next call's prev) and
// the ctx-cancellation result. v.Buffer is synced from the returned frame
// before this method returns so callers can read colour through the
// normal Buffer.Color/Bytes path.
func (v *View) RenderFullFloatFrame(ctx context.Context, rng func(worker int) *rand.Rand, hypersample int, jitter bool, prev *framebuffer.FloatFrame, model2view vmath.Mat4, curFrame int) (*framebuffer.FloatFrame, bool) {
	var next *framebuffer.FloatFrame
	if prev != nil {
		next = framebuffer.Reproject(prev, model2view, curFrame, framebuffer.DefaultReprojectConfig())
	} else {
		next = framebuffer.NewFloatFrame(v.Width, v.Height)
	}

	opt := v.baseOptions(hypersample, jitter)
	total := v.Width * v.Height

	ok := v.Pool.Run(ctx, total, func(index int) {
		x, y := index%v.Width, index/v.Width
		// Skip the new-frame trace for any pixel a fresh reprojection
		// already covered this frame (§4.H).
		if !framebuffer.NeedsTrace(next, x, y, curFrame) {
			return
		}
		local := opt
		local.RandSource = rng(index % max1(v.Pool.Workers))
		res := dispatch.Pixel(v.Camera, x, y, local, v.Kernel, v.Shader.ColorView, v.Shader.Miss, nil)
		if res.Skip || !res.Hit {
			return
		}
		viewZ := model2view.MulPoint(res.HitPt).Z
		framebuffer.MarkTraced(next, x, y, curFrame, res.Color, res.Dist, viewZ, res.HitPt, res.Region)
	})

	v.Buffer.SyncFromFloatFrame(next)
	return next, ok
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// End is view_end: nothing to flush beyond the buffer itself in this
// module's scope (file output is out of scope, §1); callers read
// v.Buffer directly.
func (v *View) End() {}

// Cleanup is view_cleanup: free per-region shader data and drop the
// light set's dead/invisible lights.
func (v *View) Cleanup(regions []*rt.Region) {
	for _, region := range regions {
		vt, ok := v.Registry.Lookup(region.ShaderName)
		if !ok || vt.Free == nil {
			continue
		}
		vt.Free(region.ShaderData)
	}
	v.Lights.Cleanup()
}

// BackgroundSpectrum computes the background colour from the configured
// temperature, per view_2init's "compute background spectrum" step.
func BackgroundSpectrum(cfg *config.Config) spectrum.RGB {
	if cfg.BgTemp <= 0 {
		return cfg.Background
	}
	return spectrum.BlackBody(cfg.BgTemp, 0)
}
