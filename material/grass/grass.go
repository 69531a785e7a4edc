// Package grass implements the procedural grass microgeometry shader of
// §4.F.4: a ray entering a bounding air region is marched through a 2D
// integer stalk grid in region space (vmath.GridTraverser), testing the
// closest approach between the ray and a per-cell leaning stalk segment.
package grass

import (
	"math"

	"github.com/lixenwraith/rtshade/noise"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/vmath"
)

// Params are the grass shader's parameters (§4.F.4).
type Params struct {
	Lacunarity float64
	HVal       float64
	Octaves    float64
	Size       float64
	Radius     float64 // stalk diameter term.
	LeanScale  float64 // ls.
	ThreshScale float64 // height-scale input to fbm.
	Delta      vmath.Vec3

	SolidHeight float64 // region's bounding-box height in region space.
}

func defaultParams() Params {
	return Params{Lacunarity: 2.0, HVal: 1.0, Octaves: 3.0, Size: 1.0, Radius: 0.02, LeanScale: 1.0, ThreshScale: 1.0, SolidHeight: 1.0}
}

// Data is the shader-private datum.
type Data struct {
	Params Params
	Field  *noise.Field
}

func New(seed uint64) *shader.VTable {
	return &shader.VTable{
		Name:              "grass",
		DefaultInputsMask: shader.HIT,
		DefaultFlags:      shader.PROC,
		Setup: func(region *rt.Region, params shader.Params) (any, shader.SetupResult, error) {
			d, r, err := setup(region, params, seed)
			if region != nil {
				region.Procedural = true
			}
			return d, r, err
		},
		Render: render,
	}
}

func setup(region *rt.Region, params shader.Params, seed uint64) (any, shader.SetupResult, error) {
	if region.AirCode == 0 {
		return nil, shader.SetupDrop, errAirCodeRequired(region.Name)
	}
	p := defaultParams()
	p.Lacunarity = params.Float("lacunarity", p.Lacunarity)
	p.HVal = params.Float("h_val", p.HVal)
	p.Octaves = params.Float("octaves", p.Octaves)
	p.Size = params.Float("size", p.Size)
	p.Radius = params.Float("radius", p.Radius)
	p.LeanScale = params.Float("ls", p.LeanScale)
	p.ThreshScale = params.Float("thresh", p.ThreshScale)
	p.SolidHeight = params.Float("height", p.SolidHeight)
	return &Data{Params: p, Field: noise.NewField(seed)}, shader.SetupOK, nil
}

func errAirCodeRequired(name string) error {
	return &airCodeErr{name: name}
}

type airCodeErr struct{ name string }

func (e *airCodeErr) Error() string {
	return "grass: region " + e.name + " must have a nonzero air code"
}

// stalkDir computes a leaning vertical stalk direction from noise at
// cell p2, swapping components so Z ends up largest before biasing it
// upright and normalizing (§4.F.4 step 1).
func stalkDir(field *noise.Field, p2 vmath.Vec3, ls float64) vmath.Vec3 {
	sample := p2.Scale(ls)
	v := vmath.V3(
		field.Sample3(sample.X, sample.Y, 0),
		field.Sample3(sample.X, sample.Y, 17.0),
		field.Sample3(sample.X, sample.Y, 31.0),
	)
	comps := [3]float64{v.X, v.Y, v.Z}
	maxIdx := 0
	for i := 1; i < 3; i++ {
		if math.Abs(comps[i]) > math.Abs(comps[maxIdx]) {
			maxIdx = i
		}
	}
	comps[maxIdx], comps[2] = comps[2], comps[maxIdx]
	out := vmath.V3(comps[0], comps[1], comps[2]+2)
	return out.Normalize()
}

func render(app *rt.Application, part *rt.Partition, sw *shader.Shadework, data any) int {
	d, ok := data.(*Data)
	if !ok {
		return 0
	}
	p := d.Params

	entry := part.InHit.Point(app.Ray)
	exit := part.OutHit.Point(app.Ray)
	exitDist := exit.Sub(entry).Mag()

	trav := vmath.NewGridTraverser(entry, app.Ray.Dir, exitDist)
	grassDiameter := p.Radius * 2

	for {
		cx, cy := trav.Cell()
		p2 := vmath.V3(float64(cx), float64(cy), 0)

		stalk := stalkDir(d.Field, p2, p.LeanScale)
		alt := d.Field.FBM([3]float64{p2.X * p.ThreshScale, p2.Y * p.ThreshScale, 0}, p.HVal, p.Lacunarity, int(p.Octaves)) * p.SolidHeight * p.Size

		stalkBase := vmath.V3(p2.X+0.5, p2.Y+0.5, 0)
		tRay, tStalk, ok := vmath.ClosestPointsOnLines(app.Ray.Origin, app.Ray.Dir, stalkBase, stalk)
		if !ok {
			if !trav.Next() {
				break
			}
			continue
		}
		pcaRay := app.Ray.PointAt(tRay)
		pcaStalk := stalkBase.Add(stalk.Scale(tStalk))

		if pcaStalk.Z > alt {
			if !trav.Next() {
				break
			}
			continue
		}
		if pcaStalk.Z < 0 {
			return -1
		}

		rayRadius := app.Ray.RBeam + tRay*app.Ray.Diverge
		pcaDist := pcaRay.Sub(pcaStalk).Mag()
		combinedRadius := rayRadius + grassDiameter

		if pcaDist > combinedRadius && combinedRadius < 0.75 {
			if !trav.Next() {
				break
			}
			continue
		}

		// Hit.
		sw.Transmit = 0
		if sw.XmitOnly {
			return -1
		}
		ramp := vmath.Clamp01(pcaStalk.Z/alt)*0.5 + 0.5
		sw.Color = sw.Color.Scale(ramp)

		up := vmath.V3(0, 0, 1)
		for i := range sw.LightFract {
			if sw.LightFract[i] <= 0.6 {
				continue
			}
			hemi := stalk.Cross(up).Cross(stalk).Normalize()
			toLight := vmath.V3(sw.ToLight[i][0], sw.ToLight[i][1], sw.ToLight[i][2])
			if hemi.Dot(toLight) < 0 {
				hemi = hemi.Negate()
			}
			sw.Normal = [3]float64{hemi.X, hemi.Y, hemi.Z}
			sw.Inputs |= shader.NORMAL
			break
		}
		return 1
	}

	return 0
}
