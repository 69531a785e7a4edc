// Package lightshader implements the "light" material shader of §4.F.1:
// every region whose shader name is "light" becomes a light source,
// fabricated into the global light.Set at setup time and rendered as a
// simple beam-falloff emitter.
package lightshader

import (
	"fmt"
	"math"

	"github.com/lixenwraith/rtshade/light"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// Data is the shader-private datum setup attaches to the region.
type Data struct {
	Light *light.Light
}

// New builds the "light" vtable, registering new lights into set as
// regions are set up.
func New(set *light.Set) *shader.VTable {
	return &shader.VTable{
		Name:              "light",
		DefaultInputsMask: shader.HIT | shader.NORMAL,
		Setup: func(region *rt.Region, params shader.Params) (any, shader.SetupResult, error) {
			return setup(region, params, set)
		},
		Render: render,
		Print: func(data any) string {
			if d, ok := data.(*Data); ok {
				return fmt.Sprintf("light(%s)", d.Light.Name)
			}
			return "light"
		},
	}
}

func setup(region *rt.Region, params shader.Params, set *light.Set) (any, shader.SetupResult, error) {
	intensity := params.Float("intensity", 1000)
	shadows := params.Int("shadows", 1)
	angle := params.Float("angle", 180)
	invisible := params.Bool("invisible", false)

	var centre vmath.Vec3
	radius := 1.0
	if prim, ok := params["__primitive"]; ok {
		if p, ok := prim.(rt.Primitive); ok {
			centre = p.Centre()
			radius = p.Radius()
			if radius <= 0 || radius > 1e12 {
				return nil, shader.SetupDrop, fmt.Errorf("lightshader: region %q has an unbounded or degenerate solid", region.Name)
			}
		}
	}

	aimLocal := vmath.V3(0, 0, -1)
	aim := aimLocal
	if m, ok := params["__solid_matrix"]; ok {
		if mat, ok := m.(vmath.Mat4); ok {
			aim = mat.MulVec3(aimLocal).Normalize()
		}
	}

	col := spectrum.White
	switch {
	case region.Override != nil:
		col = spectrum.ReflectanceFromRGB(region.Override.X, region.Override.Y, region.Override.Z)
	case region.Temp != nil:
		col = spectrum.BlackBody(*region.Temp, 0)
	default:
		col = spectrum.Const(0.001).Scale(intensity)
	}

	l := &light.Light{
		Name:      region.Name,
		Region:    region,
		Center:    centre,
		Radius:    radius,
		Aim:       aim,
		Angle:     angle,
		CosAngle:  vmath.Clamp(cosDeg(angle), -1, 1),
		Color:     col,
		Intensity: intensity,
		Shadows:   shadows,
		Visible:   !invisible,
	}
	set.AddExplicit(l)

	data := &Data{Light: l}
	if invisible {
		return data, shader.SetupKeepNoDraw, nil
	}
	return data, shader.SetupOK, nil
}

func cosDeg(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180.0)
}

func render(app *rt.Application, pp *rt.Partition, sw *shader.Shadework, data any) int {
	d, ok := data.(*Data)
	if !ok {
		return 0
	}
	lt := d.Light

	n := vmath.V3(sw.Normal[0], sw.Normal[1], sw.Normal[2])
	f := vmath.Max(-n.Dot(app.Ray.Dir), 0) * 0.5

	inBeam := lt.Aim.Dot(n) >= lt.CosAngle
	if inBeam {
		f = (f + 0.5) * lt.Fraction
	} else {
		f = f * lt.Fraction
	}

	if sw.Temperature > 0 {
		sw.Color = spectrum.BlackBody(sw.Temperature, 0).Scale(f)
	} else {
		sw.Color = lt.Color.Scale(f)
	}
	return 1
}
