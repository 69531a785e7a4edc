package spectrum

import (
	"math"
	"testing"
)

func approxEq(a, b, eps float64) bool { return math.Abs(a-b) < eps }

func TestRGBArithmetic(t *testing.T) {
	a := RGBOf(0.2, 0.4, 0.6)
	b := RGBOf(0.1, 0.1, 0.1)
	if got := a.Add(b); !approxEq(got.R, 0.3, 1e-9) || !approxEq(got.G, 0.5, 1e-9) || !approxEq(got.B, 0.7, 1e-9) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Scale(2); got != RGBOf(0.4, 0.8, 1.2) {
		t.Errorf("Scale: got %v", got)
	}
	if got := a.Mul(RGBOf(2, 2, 2)); got != RGBOf(0.4, 0.8, 1.2) {
		t.Errorf("Mul: got %v", got)
	}
	if got := a.Sum(); !approxEq(got, 1.2, 1e-9) {
		t.Errorf("Sum: got %v", got)
	}
}

func TestClamp01(t *testing.T) {
	c := RGBOf(-0.5, 0.5, 1.5).Clamp01()
	if c != RGBOf(0, 0.5, 1) {
		t.Errorf("Clamp01: got %v", c)
	}
}

func TestReflectanceFromRGBPreservesGrey(t *testing.T) {
	// A mid grey should remain grey (all channels equal) after sRGB->linear.
	c := ReflectanceFromRGB(0.5, 0.5, 0.5)
	if !approxEq(c.R, c.G, 1e-9) || !approxEq(c.G, c.B, 1e-9) {
		t.Errorf("expected grey to stay grey, got %v", c)
	}
	if c.R <= 0 || c.R >= 1 {
		t.Errorf("linear grey out of range: %v", c.R)
	}
}

func TestBlackBodyWarmAndCoolEnds(t *testing.T) {
	warm := BlackBody(2000, 0) // candle-ish: should be red-dominant
	if warm.R < warm.B {
		t.Errorf("warm black body should be red-dominant, got %v", warm)
	}
	cool := BlackBody(15000, 0) // blue sky: should be blue-dominant
	if cool.B < cool.R {
		t.Errorf("cool black body should be blue-dominant, got %v", cool)
	}
}

func TestBlackBodySpectrumNonNegative(t *testing.T) {
	table, err := NewTable(16, 400, 700)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	sp := BlackBodySpectrum(table, 5000)
	if len(sp.Samples) != 16 {
		t.Fatalf("expected 16 samples, got %d", len(sp.Samples))
	}
	peak := 0.0
	for i, s := range sp.Samples {
		if s < 0 {
			t.Errorf("sample %d negative: %v", i, s)
		}
		if s > peak {
			peak = s
		}
	}
	if !approxEq(peak, 1, 1e-9) {
		t.Errorf("expected normalized peak of 1, got %v", peak)
	}
}

func TestVec3Bridge(t *testing.T) {
	v := White.ToVec3()
	if back := FromVec3(v); back != White {
		t.Errorf("ToVec3/FromVec3 roundtrip: got %v", back)
	}
}
