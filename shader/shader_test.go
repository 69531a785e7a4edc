package shader

import (
	"testing"

	"github.com/lixenwraith/rtshade/rt"
)

func TestInputsMaskHas(t *testing.T) {
	m := HIT | NORMAL
	if !m.Has(HIT) || !m.Has(NORMAL) {
		t.Errorf("expected HIT and NORMAL set")
	}
	if m.Has(UV) || m.Has(LIGHT) {
		t.Errorf("unexpected bits set: %v", m)
	}
}

func TestParamsAccessors(t *testing.T) {
	p := Params{"shine": 10, "invisible": true, "name": "x"}
	if got := p.Int("shine", 0); got != 10 {
		t.Errorf("Int: got %v", got)
	}
	if got := p.Int("missing", 7); got != 7 {
		t.Errorf("Int default: got %v", got)
	}
	if got := p.Bool("invisible", false); !got {
		t.Errorf("Bool: got %v", got)
	}
	if got := p.Float("shine", 0); got != 0 {
		// "shine" was stored as int, not float64; Float should fall back.
		t.Errorf("Float on wrong-typed key should fall back to default, got %v", got)
	}
}

func TestNewShadeworkDefaults(t *testing.T) {
	sw := NewShadework()
	if sw.Transmit != 0 || sw.Reflect != 0 {
		t.Errorf("expected zeroed transmit/reflect")
	}
	if sw.RefracIndex != 1 {
		t.Errorf("expected refrac_index = 1, got %v", sw.RefracIndex)
	}
}

func TestRegistrySetupRegionUnknownShader(t *testing.T) {
	reg := NewRegistry()
	region := &rt.Region{Name: "r1", ShaderName: "nope"}
	_, err := reg.SetupRegion(region, Params{})
	if err == nil {
		t.Fatal("expected an error for an unregistered shader name")
	}
}

func TestRegistrySetupRegionDrop(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&VTable{
		Name: "dropper",
		Setup: func(region *rt.Region, params Params) (any, SetupResult, error) {
			return nil, SetupDrop, nil
		},
	})
	region := &rt.Region{Name: "r1", ShaderName: "dropper"}
	result, err := reg.SetupRegion(region, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != SetupDrop {
		t.Errorf("expected SetupDrop, got %v", result)
	}
}

func TestRegistrySetupRegionKeepNoDraw(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&VTable{
		Name: "ghost",
		Setup: func(region *rt.Region, params Params) (any, SetupResult, error) {
			return nil, SetupKeepNoDraw, nil
		},
	})
	region := &rt.Region{Name: "r1", ShaderName: "ghost"}
	result, err := reg.SetupRegion(region, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != SetupKeepNoDraw || !region.NoDraw {
		t.Errorf("expected SetupKeepNoDraw and region.NoDraw=true, got result=%v NoDraw=%v", result, region.NoDraw)
	}
}

func TestRegistryRenderMissingVTable(t *testing.T) {
	reg := NewRegistry()
	region := &rt.Region{Name: "r1", ShaderName: "missing"}
	part := &rt.Partition{Region: region}
	var logged string
	ret := reg.Render(&rt.Application{}, part, NewShadework(), func(format string, args ...any) {
		logged = format
	})
	if ret != 0 {
		t.Errorf("expected no-op return of 0, got %v", ret)
	}
	if logged == "" {
		t.Errorf("expected a log call for the missing vtable")
	}
}

func TestParseParamsTypedFields(t *testing.T) {
	p, err := ParseParams("shine=10 sp=0.7 invisible=true name=grass col=1,0.5,0")
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if got := p.Int("shine", 0); got != 10 {
		t.Errorf("shine: got %v", got)
	}
	if got := p.Float("sp", 0); got != 0.7 {
		t.Errorf("sp: got %v", got)
	}
	if got := p.Bool("invisible", false); !got {
		t.Errorf("invisible: got %v", got)
	}
	if got, ok := p["name"].(string); !ok || got != "grass" {
		t.Errorf("name: got %v", p["name"])
	}
	if got, ok := p["col"].([3]float64); !ok || got != [3]float64{1, 0.5, 0} {
		t.Errorf("col: got %v", p["col"])
	}
}

func TestParseParamsMalformedToken(t *testing.T) {
	if _, err := ParseParams("shine10"); err == nil {
		t.Errorf("expected an error for a token with no '='")
	}
}

func TestParseParamsEmptyString(t *testing.T) {
	p, err := ParseParams("   ")
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if len(p) != 0 {
		t.Errorf("expected an empty map, got %v", p)
	}
}
