package view

import (
	"testing"

	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shader"
)

func flatVTable() *shader.VTable {
	return &shader.VTable{
		Name: "flat",
		Setup: func(region *rt.Region, params shader.Params) (any, shader.SetupResult, error) {
			return params, shader.SetupOK, nil
		},
	}
}

func TestSetupDefaultParsesRegionParamsString(t *testing.T) {
	reg := shader.NewRegistry()
	reg.Register(flatVTable())
	region := &rt.Region{Name: "r1", ShaderName: "flat", Params: "shine=10 sp=0.7"}

	kept, err := Setup(reg, []*rt.Region{region}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("expected 1 kept region, got %d", len(kept))
	}
	data, ok := kept[0].ShaderData.(shader.Params)
	if !ok {
		t.Fatalf("expected shader.Params datum, got %T", kept[0].ShaderData)
	}
	if got := data.Int("shine", 0); got != 10 {
		t.Errorf("shine: got %v", got)
	}
}

func TestSetupDefaultRejectsMalformedParams(t *testing.T) {
	reg := shader.NewRegistry()
	reg.Register(flatVTable())
	region := &rt.Region{Name: "r1", ShaderName: "flat", Params: "broken-token"}

	if _, err := Setup(reg, []*rt.Region{region}, nil); err == nil {
		t.Errorf("expected an error for a malformed parameter string")
	}
}

func TestSetupPrefersCallerSuppliedParams(t *testing.T) {
	reg := shader.NewRegistry()
	reg.Register(flatVTable())
	region := &rt.Region{Name: "r1", ShaderName: "flat", Params: "shine=10"}

	kept, err := Setup(reg, []*rt.Region{region}, func(r *rt.Region) shader.Params {
		return shader.Params{"shine": 99}
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	data := kept[0].ShaderData.(shader.Params)
	if got := data.Int("shine", 0); got != 99 {
		t.Errorf("expected caller-supplied params to win, got %v", got)
	}
}
