// Package shade implements component E: the viewshade dispatcher that
// prepares a shadework, ensures the inputs a shader's vtable declares it
// needs are populated in HIT→NORMAL→UV→LIGHT order, and invokes the
// shader's render. Grounded directly on spec.md §4.E and confirmed
// against original_source/rt/shade.c's shade_inputs control flow (SPEC_FULL
// §5): a missing vtable is a logged no-op, not a panic.
package shade

import (
	"github.com/lixenwraith/rtshade/light"
	"github.com/lixenwraith/rtshade/logging"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/visibility"
	"github.com/lixenwraith/rtshade/vmath"
)

// Dispatcher bundles the read-only shared state viewshade needs: the
// shader registry and the light set, both read-only during shading per
// §5's shared-resources note.
type Dispatcher struct {
	Registry *shader.Registry
	Lights   *light.Set
	Log      *logging.Logger
}

func NewDispatcher(reg *shader.Registry, lights *light.Set, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Default
	}
	return &Dispatcher{Registry: reg, Lights: lights, Log: log}
}

// Viewshade is the shading dispatcher (§4.E). sw arrives with
// color/basecolor already set (region override or white) by the caller
// (colorview, §4.G).
func (d *Dispatcher) Viewshade(app *rt.Application, part *rt.Partition, sw *shader.Shadework) int {
	// Step 1: copy inhit, clamp slightly-negative hit_dist to zero.
	sw.Hit = part.InHit
	if sw.Hit.Dist > -1e-9 && sw.Hit.Dist < 0 {
		sw.Hit.Dist = 0
	}
	app.CumLen += sw.Hit.Dist

	region := part.Region
	vt, ok := d.Registry.Lookup(region.ShaderName)
	if !ok {
		d.Log.Errorf("reg_mfuncs NULL for region %q", region.Name)
		return 0
	}

	// Step 3: wanted inputs, clearing LIGHT for xmitonly callers.
	wanted := vt.DefaultInputsMask
	if sw.XmitOnly {
		wanted &^= shader.LIGHT
	}

	// Step 4: shaders that never ask for LIGHT still get a non-null
	// Visible iterator, without paying for light_obs.
	if !wanted.Has(shader.LIGHT) {
		sw.Visible = make([]any, len(d.Lights.Lights))
		for i, lt := range d.Lights.Lights {
			sw.Visible[i] = lt
		}
	}

	eyeInside := sw.Hit.Dist < 0

	if wanted.Has(shader.NORMAL) {
		if eyeInside {
			n := app.Ray.Dir.Negate()
			sw.Normal = [3]float64{n.X, n.Y, n.Z}
		} else {
			n := sw.Hit.Normal(app.Ray, part.InFlip)
			sw.Normal = [3]float64{n.X, n.Y, n.Z}
			if app.Ray.Dir.Dot(n) > 0 {
				d.Log.Warnf("bad normal on region %q: dir.N > 0", region.Name)
			}
		}
		sw.Inputs |= shader.NORMAL
	}

	if wanted.Has(shader.UV) {
		if eyeInside {
			sw.UVCoord = [2]float64{0.5, 0.5}
		} else {
			uv := sw.Hit.UV(app, app.Ray)
			if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
				d.Log.Warnf("UV out of [0,1] on region %q: %v", region.Name, uv)
				sw.Color = spectrum.RGBOf(0, 1, 0)
				return 1
			}
			sw.UVCoord = uv
		}
		sw.Inputs |= shader.UV
	}

	if wanted.Has(shader.LIGHT) {
		hp := sw.Hit.Point(app.Ray)
		var normal vmath.Vec3
		hasNormal := sw.Inputs.Has(shader.NORMAL)
		if hasNormal {
			normal = vmath.V3(sw.Normal[0], sw.Normal[1], sw.Normal[2])
		}
		visibility.LightObs(app, d.Lights, hp, normal, hasNormal, sw.Transmit, sw, d.xmitonlyViewshade(), d.logf)
		sw.Inputs |= shader.LIGHT
	}

	sw.Inputs |= shader.HIT

	return vt.Render(app, part, sw, region.ShaderData)
}

// xmitonlyViewshade adapts Viewshade to visibility.ViewshadeFunc: a
// sub-call forced into xmitonly mode against a different partition,
// reusing the same dispatcher state.
func (d *Dispatcher) xmitonlyViewshade() visibility.ViewshadeFunc {
	return func(app *rt.Application, part *rt.Partition) *shader.Shadework {
		sw := shader.NewShadework()
		sw.XmitOnly = true
		d.Viewshade(app, part, sw)
		return sw
	}
}

func (d *Dispatcher) logf(format string, args ...any) {
	d.Log.Warnf(format, args...)
}

// LightObs exposes visibility.LightObs bound to this dispatcher's light
// set and viewshade, for procedural shaders (scloud) that commit to
// their own hit normal before the light arrays can be filled.
func (d *Dispatcher) LightObs(app *rt.Application, hitPoint, normal vmath.Vec3, sw *shader.Shadework) {
	visibility.LightObs(app, d.Lights, hitPoint, normal, true, sw.Transmit, sw, d.xmitonlyViewshade(), d.logf)
}
