package grass

import (
	"testing"

	"github.com/lixenwraith/rtshade/noise"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/vmath"
)

func TestSetupRequiresAirCode(t *testing.T) {
	region := &rt.Region{Name: "solid", AirCode: 0}
	_, result, err := setup(region, shader.Params{}, 1)
	if err == nil || result != shader.SetupDrop {
		t.Errorf("expected setup to drop a non-air region, got result=%v err=%v", result, err)
	}
}

func TestNewMarksRegionProcedural(t *testing.T) {
	vt := New(7)
	region := &rt.Region{Name: "lawn", AirCode: 1}
	_, result, err := vt.Setup(region, shader.Params{"height": 2.0})
	if err != nil || result != shader.SetupOK {
		t.Fatalf("setup: result=%v err=%v", result, err)
	}
	if !region.Procedural {
		t.Errorf("grass setup should mark the region procedural")
	}
}

// straightDownPartition builds a partition whose ray enters the bounding
// air region at z=1 straight down and exits at z=0, giving render() a
// single grid cell's worth of march distance to work with.
func straightDownPartition() (*rt.Application, *rt.Partition) {
	app := &rt.Application{Ray: rt.Ray{Origin: vmath.V3(0.5, 0.5, 1), Dir: vmath.V3(0, 0, -1)}}
	part := &rt.Partition{
		InHit:  rt.HitRecord{Dist: 0},
		OutHit: rt.HitRecord{Dist: 1},
	}
	return app, part
}

func TestRenderReturnsNoHitOrBoundedResult(t *testing.T) {
	vt := New(99)
	region := &rt.Region{Name: "lawn", AirCode: 1}
	data, _, err := vt.Setup(region, shader.Params{"height": 2.0, "radius": 0.1})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	app, part := straightDownPartition()
	sw := shader.NewShadework()
	ret := render(app, part, sw, data)

	if ret != -1 && ret != 0 && ret != 1 {
		t.Fatalf("render must return -1, 0 or 1, got %d", ret)
	}
	if ret == 1 && sw.Transmit != 0 {
		t.Errorf("a grass hit should leave the surface opaque (Transmit=0), got %v", sw.Transmit)
	}
}

func TestRenderXmitOnlyStopsBeforeLighting(t *testing.T) {
	vt := New(123)
	region := &rt.Region{Name: "lawn", AirCode: 1}
	data, _, err := vt.Setup(region, shader.Params{"height": 2.0, "radius": 0.3})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	// A radius of 0.3 widens each stalk's hit test, though whether a stalk
	// is hit still depends on the noise field. render sets NORMAL only after
	// XmitOnly's early return, so it stays unset on every path.
	app, part := straightDownPartition()
	sw := shader.NewShadework()
	sw.XmitOnly = true
	render(app, part, sw, data)

	if sw.Inputs.Has(shader.NORMAL) {
		t.Errorf("xmitonly render must not populate NORMAL")
	}
}

func TestStalkDirIsNormalizedAndLeansUpright(t *testing.T) {
	field := noise.NewField(3)
	dir := stalkDir(field, vmath.V3(2, 5, 0), 1.0)

	if mag := dir.Mag(); mag < 0.999 || mag > 1.001 {
		t.Errorf("expected a unit stalk direction, got magnitude %v", mag)
	}
	if dir.Z <= 0 {
		t.Errorf("expected the +2 upright bias to keep Z positive, got %v", dir.Z)
	}
}
