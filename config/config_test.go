package config

import (
	"testing"

	"github.com/lixenwraith/rtshade/spectrum"
)

func TestDefaults(t *testing.T) {
	c := Default()
	if c.MaxBounces != 6 || c.MaxIreflect != 8 {
		t.Errorf("unexpected recursion defaults: %+v", c)
	}
	if c.BgTemp != 293 {
		t.Errorf("expected default background temperature of 293K, got %v", c.BgTemp)
	}
}

func TestSetTypedFields(t *testing.T) {
	c := Default()
	if err := c.Set("gamma", 2.2); err != nil {
		t.Fatalf("Set gamma: %v", err)
	}
	if c.Gamma != 2.2 {
		t.Errorf("gamma not applied, got %v", c.Gamma)
	}
	if err := c.Set("bounces", 10); err != nil {
		t.Fatalf("Set bounces: %v", err)
	}
	if c.MaxBounces != 10 {
		t.Errorf("bounces not applied, got %v", c.MaxBounces)
	}
	if err := c.Set("background", spectrum.RGBOf(1, 0, 0)); err != nil {
		t.Fatalf("Set background: %v", err)
	}
	if c.Background != spectrum.RGBOf(1, 0, 0) {
		t.Errorf("background not applied, got %v", c.Background)
	}
}

func TestSetWrongType(t *testing.T) {
	c := Default()
	if err := c.Set("gamma", "not a float"); err == nil {
		t.Fatal("expected a type error")
	}
}

func TestSetUnknownOption(t *testing.T) {
	c := Default()
	if err := c.Set("nonexistent", 1); err == nil {
		t.Fatal("expected an unknown-option error")
	}
}

func TestSetSpectrumValidation(t *testing.T) {
	c := Default()
	if err := c.SetSpectrum(32, 400, 700); err != nil {
		t.Fatalf("valid spectrum config rejected: %v", err)
	}
	if c.SpectrumNsamp != 32 {
		t.Errorf("spectrum nsamp not applied")
	}
	if err := c.SetSpectrum(-1, 400, 700); err == nil {
		t.Error("expected error for negative nsamp")
	}
	if err := c.SetSpectrum(32, 700, 400); err == nil {
		t.Error("expected error for hi_nm <= lo_nm")
	}
}
