// Package phong implements the "plastic", "mirror", and "glass" shaders
// of §4.F.2: a shared Phong-family parameter struct and render algorithm
// differing only in their defaults. Reflection/refraction recursion is
// delegated to a caller-supplied TraceFunc (component G's colorview) to
// avoid a phong↔pixel import cycle, the same pattern visibility uses for
// viewshade.
package phong

import (
	"fmt"

	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

const RIAir = 1.0

// TraceFunc shoots a secondary ray (reflection or refraction) and
// returns its shaded colour. The implementation (component G's
// colorview) applies no recursion cap; render only calls it while
// app.Level < app.MaxBounces, and max_ireflect is not checked.
type TraceFunc func(app *rt.Application, origin, dir vmath.Vec3, level int, purpose string) spectrum.RGB

// Params is the shared Phong-family parameter set (§4.F.2).
type Params struct {
	Shine        int
	WgtSpecular  float64
	WgtDiffuse   float64
	Transmit     float64
	Reflect      float64
	RefracIndex  float64
}

var defaults = map[string]Params{
	"plastic": {Shine: 10, WgtSpecular: 0.7, WgtDiffuse: 0.3, Transmit: 0, Reflect: 0, RefracIndex: RIAir},
	"mirror":  {Shine: 4, WgtSpecular: 0.6, WgtDiffuse: 0.4, Transmit: 0, Reflect: 0.75, RefracIndex: 1.65},
	"glass":   {Shine: 4, WgtSpecular: 0.7, WgtDiffuse: 0.3, Transmit: 0.6, Reflect: 0.3, RefracIndex: 1.65},
}

// Data is the shader-private datum setup attaches to the region.
type Data struct {
	Params Params
}

// New builds the vtable for one of "plastic"/"mirror"/"glass", reusing
// the same render algorithm and differing only in default parameters.
func New(name string, trace TraceFunc, ambientIntensity func() float64) (*shader.VTable, error) {
	def, ok := defaults[name]
	if !ok {
		return nil, fmt.Errorf("phong: unknown variant %q", name)
	}
	return &shader.VTable{
		Name:              name,
		DefaultInputsMask: shader.HIT | shader.NORMAL | shader.UV | shader.LIGHT,
		Setup: func(region *rt.Region, params shader.Params) (any, shader.SetupResult, error) {
			return setup(region, params, def)
		},
		Render: func(app *rt.Application, part *rt.Partition, sw *shader.Shadework, data any) int {
			return render(app, part, sw, data, trace, ambientIntensity())
		},
	}, nil
}

func setup(region *rt.Region, params shader.Params, def Params) (any, shader.SetupResult, error) {
	p := def
	p.Shine = params.Int("shine", p.Shine)
	p.WgtSpecular = params.Float("sp", p.WgtSpecular)
	p.WgtDiffuse = params.Float("di", p.WgtDiffuse)
	p.Transmit = params.Float("tr", p.Transmit)
	p.Reflect = params.Float("re", p.Reflect)
	p.RefracIndex = params.Float("ri", p.RefracIndex)

	baseColor := spectrum.White
	if region.Override != nil {
		baseColor = spectrum.ReflectanceFromRGB(region.Override.X, region.Override.Y, region.Override.Z)
	}
	region.Transmit = baseColor.R*p.Transmit + baseColor.G*p.Transmit + baseColor.B*p.Transmit
	region.Transmit /= 3

	return &Data{Params: p}, shader.SetupOK, nil
}

func render(app *rt.Application, part *rt.Partition, sw *shader.Shadework, data any, trace TraceFunc, ambient float64) int {
	d, ok := data.(*Data)
	if !ok {
		return 0
	}
	p := d.Params

	sw.Transmit = p.Transmit
	sw.Reflect = p.Reflect
	sw.RefracIndex = p.RefracIndex

	n := vmath.V3(sw.Normal[0], sw.Normal[1], sw.Normal[2])
	dIncident := app.Ray.Dir

	da := vmath.Clamp(n.Dot(dIncident.Negate()), 0, 1) * ambient
	color := sw.BaseColor.Scale(da)

	for i := range sw.Visible {
		if sw.Visible[i] == nil {
			continue
		}
		toLight := vmath.V3(sw.ToLight[i][0], sw.ToLight[i][1], sw.ToLight[i][2])
		lFract := sw.LightFract[i]
		lCol := sw.Intensity[i]

		cosI := vmath.Max(n.Dot(toLight), 0)
		diffuse := sw.BaseColor.Mul(lCol).Scale(lFract * p.WgtDiffuse * cosI)

		reflected := n.Scale(2 * cosI).Sub(toLight)
		cosS := vmath.Max(reflected.Dot(dIncident.Negate()), 0)
		specular := lCol.Scale(lFract * p.WgtSpecular * ipow(cosS, p.Shine))

		color = color.Add(diffuse).Add(specular)
	}
	sw.Color = color

	if (p.Reflect > 0 || p.Transmit > 0) && trace != nil {
		hp := sw.Hit.Point(app.Ray)
		if p.Reflect > 0 && app.Level < app.MaxBounces {
			reflDir := vmath.Reflect(dIncident, n)
			reflColor := trace(app, hp, reflDir, app.Level+1, "reflected ray")
			sw.Color = sw.Color.Add(reflColor.Scale(p.Reflect))
		}
		if p.Transmit > 0 && app.Level < app.MaxBounces {
			eta := app.RefracIndex / p.RefracIndex
			refrDir, ok := vmath.Refract(dIncident, n, eta)
			if !ok {
				// total internal reflection: redirect the whole
				// contribution into the reflected ray.
				reflDir := vmath.Reflect(dIncident, n)
				reflColor := trace(app, hp, reflDir, app.Level+1, "TIR reflected ray")
				sw.Color = sw.Color.Add(reflColor.Scale(p.Transmit))
			} else {
				transColor := trace(app, hp, refrDir, app.Level+1, "refracted ray")
				sw.Color = sw.Color.Add(transColor.Scale(p.Transmit))
			}
		}
	}

	return 1
}

func ipow(base float64, exp int) float64 {
	if exp <= 0 {
		return 1
	}
	r := 1.0
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}
