// Package cloud implements the "scloud"/"tsplat" volumetric noise
// shaders of §4.F.3: fbm/turbulence evaluated over a region-space noise
// field, used either as a thin transmissive surface skin (tsplat) or
// marched through the partition as a participating medium (scloud).
package cloud

import (
	"math"

	"github.com/lixenwraith/rtshade/noise"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// Params are the scloud/tsplat parameters of §4.F.3.
type Params struct {
	Lacunarity float64
	HVal       float64
	Octaves    float64
	Scale      float64
	VScale     vmath.Vec3
	Delta      vmath.Vec3
	MaxDPerMM  float64
}

func defaultParams() Params {
	return Params{Lacunarity: 2.175, HVal: 1.0, Octaves: 4.0, Scale: 1.0, VScale: vmath.V3(1, 1, 1), MaxDPerMM: 1.0}
}

// Data is the shader-private datum: parsed params plus a seeded noise
// field (one per region, since setup runs once per region per §4.B).
type Data struct {
	Params Params
	Field  *noise.Field
}

// NewTsplat builds the thin-skin surface variant's vtable.
func NewTsplat(seed uint64) *shader.VTable {
	return &shader.VTable{
		Name:              "tsplat",
		DefaultInputsMask: shader.HIT | shader.NORMAL | shader.UV,
		Setup: func(region *rt.Region, params shader.Params) (any, shader.SetupResult, error) {
			return setup(region, params, seed)
		},
		Render: tsplatRender,
	}
}

// NewScloud builds the volumetric participating-medium variant's vtable.
// Unlike the generic shaders, scloud sets its own hit/normal (the
// marching entry point, normal = -rayDir) rather than letting the
// viewshade dispatcher populate them from the kernel's geometry, so its
// inputs mask omits NORMAL/UV and it calls lightObs directly once it has
// committed to that normal.
func NewScloud(seed uint64, trace TraceFunc, lightObs LightObsFunc) *shader.VTable {
	return &shader.VTable{
		Name:              "scloud",
		DefaultInputsMask: shader.HIT,
		DefaultFlags:      shader.PROC,
		Setup: func(region *rt.Region, params shader.Params) (any, shader.SetupResult, error) {
			d, r, err := setup(region, params, seed)
			if region != nil {
				region.Procedural = true
			}
			return d, r, err
		},
		Render: func(app *rt.Application, part *rt.Partition, sw *shader.Shadework, data any) int {
			return scloudRender(app, part, sw, data, trace, lightObs)
		},
	}
}

// TraceFunc matches phong.TraceFunc's shape: shoot a secondary ray
// through component G for the cloud's reflect/refract delegation.
type TraceFunc func(app *rt.Application, origin, dir vmath.Vec3, level int, purpose string) spectrum.RGB

// LightObsFunc matches component E's light_obs call, exposed to scloud
// since it commits to its own hit normal before the light arrays can be
// filled (see NewScloud's doc comment).
type LightObsFunc func(app *rt.Application, hitPoint, normal vmath.Vec3, sw *shader.Shadework)

func setup(region *rt.Region, params shader.Params, seed uint64) (any, shader.SetupResult, error) {
	if region.AirCode == 0 {
		return nil, shader.SetupDrop, errAirCodeRequired(region.Name)
	}
	p := defaultParams()
	p.Lacunarity = params.Float("lacunarity", p.Lacunarity)
	p.HVal = params.Float("h_val", p.HVal)
	p.Octaves = params.Float("octaves", p.Octaves)
	p.Scale = params.Float("scale", p.Scale)
	p.MaxDPerMM = params.Float("max_d_p_mm", p.MaxDPerMM)
	return &Data{Params: p, Field: noise.NewField(seed)}, shader.SetupOK, nil
}

func errAirCodeRequired(name string) error {
	return &airCodeErr{name: name}
}

type airCodeErr struct{ name string }

func (e *airCodeErr) Error() string {
	return "cloud: region " + e.name + " must have a nonzero air code"
}

func tsplatRender(app *rt.Application, part *rt.Partition, sw *shader.Shadework, data any) int {
	d, ok := data.(*Data)
	if !ok {
		return 0
	}
	hp := sw.Hit.Point(app.Ray)
	np := hp.Mul(d.Params.VScale).Scale(d.Params.Scale)
	val := d.Field.FBM([3]float64{np.X, np.Y, np.Z}, d.Params.HVal, d.Params.Lacunarity, int(d.Params.Octaves))
	sw.Transmit = 1 - vmath.Clamp01(val)
	return 1
}

func scloudRender(app *rt.Application, part *rt.Partition, sw *shader.Shadework, data any, trace TraceFunc, lightObs LightObsFunc) int {
	d, ok := data.(*Data)
	if !ok {
		return 0
	}
	p := d.Params

	entry := part.InHit.Point(app.Ray)
	exit := part.OutHit.Point(app.Ray)
	spanMM := exit.Sub(entry).Mag()

	steps := int(math.Ceil(math.Pow(p.Lacunarity, p.Octaves-1) * 4))
	if steps < 1 {
		steps = 1
	}
	stepDeltaMM := spanMM / float64(steps)

	transmission := 1.0
	for s := 0; s < steps; s++ {
		t := (float64(s) + 0.5) / float64(steps)
		pt := entry.Lerp(exit, t)
		np := pt.Mul(p.VScale).Scale(p.Scale)
		turb := d.Field.Turb([3]float64{np.X, np.Y, np.Z}, p.HVal, p.Lacunarity, int(p.Octaves))
		val := vmath.Clamp01((turb - 0.5) * 2)
		transmission *= math.Exp(-val * p.MaxDPerMM * stepDeltaMM)
	}
	sw.Transmit = transmission

	if sw.XmitOnly {
		return 1
	}

	n := app.Ray.Dir.Negate()
	sw.Hit.Dist = part.InHit.Dist
	sw.Normal = [3]float64{n.X, n.Y, n.Z}
	sw.Inputs |= shader.HIT | shader.NORMAL

	if lightObs != nil {
		lightObs(app, entry, n, sw)
		sw.Inputs |= shader.LIGHT
	}

	incident := spectrum.Black
	for i := range sw.Visible {
		if sw.Visible[i] == nil {
			continue
		}
		incident = incident.Add(sw.Intensity[i])
	}
	sw.Color = sw.Color.Mul(incident)

	if trace != nil && (sw.Reflect > 0 || sw.Transmit > 0) {
		if sw.Reflect > 0 {
			reflDir := vmath.Reflect(app.Ray.Dir, n)
			reflColor := trace(app, entry, reflDir, app.Level+1, "cloud reflected ray")
			sw.Color = sw.Color.Add(reflColor.Scale(sw.Reflect))
		}
		if sw.Transmit > 0 {
			transColor := trace(app, exit, app.Ray.Dir, app.Level+1, "cloud transmitted ray")
			sw.Color = sw.Color.Add(transColor.Scale(sw.Transmit))
		}
	}
	return 1
}
