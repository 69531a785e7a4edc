package pixel

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/lixenwraith/rtshade/config"
	"github.com/lixenwraith/rtshade/light"
	"github.com/lixenwraith/rtshade/logging"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/rt/fake"
	"github.com/lixenwraith/rtshade/shade"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// flatVTable is a minimal shader vtable whose render just sets a fixed
// colour, enough to drive ColorView through the dispatcher without
// depending on any material package.
func flatVTable(color spectrum.RGB) *shader.VTable {
	return &shader.VTable{
		Name:              "flat",
		DefaultInputsMask: shader.HIT | shader.NORMAL,
		Render: func(app *rt.Application, part *rt.Partition, sw *shader.Shadework, data any) int {
			sw.Color = color
			return 1
		},
	}
}

// hitSegment builds a rt.Segment for a partition whose InHit sits at
// dist along a ray from the origin down +Z, backed by a sphere centred
// at the origin with radius dist -- giving ColorView's NORMAL population
// a real primitive to call through rather than a nil Seg.
func hitSegment(dist float64) *rt.Segment {
	sphere := &fake.Sphere{Center: vmath.V3(0, 0, 0), R: dist}
	return &rt.Segment{Primitive: sphere}
}

func newTestShader(t *testing.T, color spectrum.RGB) *Shader {
	t.Helper()
	reg := shader.NewRegistry()
	reg.Register(flatVTable(color))
	lights := light.NewSet()
	disp := shade.NewDispatcher(reg, lights, logging.Default)
	cfg := config.Default()
	return New(disp, &cfg, logging.Default)
}

func TestColorViewNoHitLogsAndMisses(t *testing.T) {
	s := newTestShader(t, spectrum.White)
	app := &rt.Application{}
	parts := rt.NewPartitionList()

	s.ColorView(app, parts)

	if app.Hit {
		t.Errorf("expected no hit on an empty partition list")
	}
}

func TestColorViewShadesOpaqueHit(t *testing.T) {
	s := newTestShader(t, spectrum.RGBOf(0.5, 0.25, 0.1))
	region := &rt.Region{Name: "r", ShaderName: "flat"}
	part := &rt.Partition{
		InHit:  rt.HitRecord{Dist: 5, Seg: hitSegment(5)},
		OutHit: rt.HitRecord{Dist: 6},
		Region: region,
	}
	app := &rt.Application{Ray: rt.Ray{Origin: vmath.V3(0, 0, 0), Dir: vmath.V3(0, 0, 1)}}
	parts := rt.NewPartitionList(part)

	s.ColorView(app, parts)

	if !app.Hit {
		t.Fatalf("expected a hit")
	}
	if app.Color != spectrum.RGBOf(0.5, 0.25, 0.1) {
		t.Errorf("expected the flat shader's colour to pass through, got %v", app.Color)
	}
	if app.UPtr != region {
		t.Errorf("expected app.UPtr to point at the hit region")
	}
}

func TestColorViewCutPlaneDiscardsFartherPartition(t *testing.T) {
	s := newTestShader(t, spectrum.RGBOf(0.5, 0.25, 0.1))
	s.CutPlane = &CutPlane{Point: vmath.V3(0, 0, 3), Normal: vmath.V3(0, 0, -1)} // keeps z < 3.
	region := &rt.Region{Name: "r", ShaderName: "flat"}
	part := &rt.Partition{
		InHit:  rt.HitRecord{Dist: 5, Seg: hitSegment(5)},
		OutHit: rt.HitRecord{Dist: 6},
		Region: region,
	}
	app := &rt.Application{Ray: rt.Ray{Origin: vmath.V3(0, 0, 0), Dir: vmath.V3(0, 0, 1)}}
	parts := rt.NewPartitionList(part)

	s.ColorView(app, parts)

	if app.Hit {
		t.Errorf("expected the cutting plane to discard a partition entirely past it")
	}
}

func TestColorViewCutPlaneTrimsInhit(t *testing.T) {
	s := newTestShader(t, spectrum.RGBOf(0.5, 0.25, 0.1))
	s.CutPlane = &CutPlane{Point: vmath.V3(0, 0, 4), Normal: vmath.V3(0, 0, 1)} // keeps z >= 4.
	region := &rt.Region{Name: "r", ShaderName: "flat"}
	part := &rt.Partition{
		InHit:  rt.HitRecord{Dist: 2, Seg: hitSegment(2)},
		OutHit: rt.HitRecord{Dist: 6},
		Region: region,
	}
	app := &rt.Application{Ray: rt.Ray{Origin: vmath.V3(0, 0, 0), Dir: vmath.V3(0, 0, 1)}}
	parts := rt.NewPartitionList(part)

	s.ColorView(app, parts)

	if !app.Hit {
		t.Fatalf("expected a hit past the trimmed plane crossing")
	}
	if app.Dist != 4 {
		t.Errorf("expected the inhit to be trimmed to the plane crossing at 4, got %v", app.Dist)
	}
}

func TestColorViewEyeInsideInfiniteSolidReturnsGrey(t *testing.T) {
	s := newTestShader(t, spectrum.White)
	region := &rt.Region{Name: "solid", AirCode: 0}
	part := &rt.Partition{
		InHit:  rt.HitRecord{Dist: -1},
		OutHit: rt.HitRecord{Dist: math.Inf(1)},
		Region: region,
	}
	app := &rt.Application{Ray: rt.Ray{Origin: vmath.V3(0, 0, 0), Dir: vmath.V3(0, 0, 1)}, MaxBounces: 6}
	parts := rt.NewPartitionList(part)

	s.ColorView(app, parts)

	if !app.Hit {
		t.Fatalf("expected a hit for the eye-inside-solid case")
	}
	if app.Color.Sum() <= 0 || app.Color.R != app.Color.G || app.Color.G != app.Color.B {
		t.Errorf("expected an 18%% grey fallback colour, got %v", app.Color)
	}
}

func TestColorViewHazeDarkensDistantHit(t *testing.T) {
	region := &rt.Region{Name: "r", ShaderName: "flat"}
	reg := shader.NewRegistry()
	reg.Register(flatVTable(spectrum.White))
	lights := light.NewSet()
	disp := shade.NewDispatcher(reg, lights, logging.Default)
	cfg := config.Default()
	s := New(disp, &cfg, logging.Default)
	s.AirDensity = 1.0
	s.HazeColor = spectrum.RGBOf(0, 0, 1)

	part := &rt.Partition{InHit: rt.HitRecord{Dist: 50, Seg: hitSegment(50)}, OutHit: rt.HitRecord{Dist: 51}, Region: region}
	app := &rt.Application{Ray: rt.Ray{Origin: vmath.V3(0, 0, 0), Dir: vmath.V3(0, 0, 1)}}
	parts := rt.NewPartitionList(part)

	s.ColorView(app, parts)

	if app.Color.R >= 1 || app.Color.B <= 0 {
		t.Errorf("expected haze to blend toward HazeColor at distance, got %v", app.Color)
	}
}

func TestColorViewAmbientOcclusionOpenSkyKeepsColourNonNegative(t *testing.T) {
	region := &rt.Region{Name: "r", ShaderName: "flat"}
	reg := shader.NewRegistry()
	reg.Register(flatVTable(spectrum.White))
	lights := light.NewSet()
	disp := shade.NewDispatcher(reg, lights, logging.Default)
	cfg := config.Default()
	cfg.AmbSamples = 32
	cfg.AmbRadius = 10
	s := New(disp, &cfg, logging.Default)

	part := &rt.Partition{InHit: rt.HitRecord{Dist: 1, Seg: hitSegment(1)}, OutHit: rt.HitRecord{Dist: 2}, Region: region}
	app := &rt.Application{
		Ray:    rt.Ray{Origin: vmath.V3(0, 0, 0), Dir: vmath.V3(0, 0, 1)},
		RNG:    rand.New(rand.NewPCG(1, 1)),
		Tol:    1e-6,
		Kernel: fake.NewKernel(),
	}
	parts := rt.NewPartitionList(part)

	s.ColorView(app, parts)

	if app.Color.Sum() < 0 {
		t.Errorf("unexpected negative colour after AO: %v", app.Color)
	}
}

func TestMissSetsBackgroundColor(t *testing.T) {
	s := newTestShader(t, spectrum.White)
	s.Config.Background = spectrum.RGBOf(0.1, 0.2, 0.3)
	app := &rt.Application{}

	s.Miss(app)

	if app.Hit {
		t.Errorf("miss should never set Hit")
	}
	if app.Color != spectrum.RGBOf(0.1, 0.2, 0.3) {
		t.Errorf("expected background colour, got %v", app.Color)
	}
}
