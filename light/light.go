// Package light implements component C: the global insertion-order light
// set, fraction recomputation, and implicit-light fabrication. Grounded
// on the teacher's habit (genetic/engine.go) of a flat owned slice plus a
// lifecycle pair (init/cleanup) rather than an intrusive linked list with
// a sentinel — the sentinel-head cyclic list spec.md §3 describes is one
// of the §9 redesign flags this module takes: "re-architect as
// arena-allocated records with integer indices ... iteration becomes
// range over a slice."
package light

import (
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// Light is one light-source record (§3).
type Light struct {
	Name     string
	Region   *rt.Region // nil for implicit lights.
	Center   vmath.Vec3
	Radius   float64
	Aim      vmath.Vec3 // unit direction.
	Angle    float64    // cone half-angle, degrees.
	CosAngle float64
	Color    spectrum.RGB
	Intensity float64 // lumens.
	Fraction float64

	Shadows int  // 0 = fill light; >0 = shadow sample-ray count.
	Infinite bool
	Visible  bool
	ExplicitAim bool

	implicit bool
}

// Set is the global insertion-order light collection, owned either by
// the light-set lifecycle (implicit lights) or by their originating
// region (explicit lights), per §3's ownership summary.
type Set struct {
	Lights []*Light
}

func NewSet() *Set { return &Set{} }

// AddExplicit appends a region-backed light, created by light_setup
// when a region's shader is "light".
func (s *Set) AddExplicit(l *Light) {
	s.Lights = append(s.Lights, l)
}

// Init recomputes every light's fraction = intensity / (max_intensity *
// (1 + 0.5*ambient)), clamping non-positive intensities to 1 first
// (§4.C). Idempotent: running it twice in a row yields identical
// fractions (§8's round-trip property).
func (s *Set) Init(ambient float64) {
	maxIntensity := 0.0
	for _, l := range s.Lights {
		if l.Intensity <= 0 {
			l.Intensity = 1
		}
		if l.Intensity > maxIntensity {
			maxIntensity = l.Intensity
		}
	}
	if maxIntensity <= 0 {
		maxIntensity = 1
	}
	denom := maxIntensity * (1 + 0.5*ambient)
	for _, l := range s.Lights {
		l.Fraction = l.Intensity / denom
	}
}

// Maker fabricates n canonical implicit lights in view space when the
// explicit list is empty, before rendering (§4.C): n=1 is just the
// upper-left white light; n>=2 adds an upper-right reddish light; n>=3
// adds a behind-overhead bluish light.
func Maker(n int, view2model vmath.Mat4) []*Light {
	if n <= 0 {
		return nil
	}
	mkLight := func(localPos vmath.Vec3, col spectrum.RGB) *Light {
		pos := view2model.MulPoint(localPos)
		aim := view2model.MulVec3(localPos.Negate()).Normalize()
		return &Light{
			Center:    pos,
			Radius:    0,
			Aim:       aim,
			Angle:     180,
			CosAngle:  -1,
			Color:     col,
			Intensity: 1000,
			Shadows:   1,
			Visible:   true,
			implicit:  true,
		}
	}
	lights := []*Light{mkLight(vmath.V3(-1, 1, 1).Normalize().Scale(1e5), spectrum.White)}
	if n >= 2 {
		lights = append(lights, mkLight(vmath.V3(1, 1, 1).Normalize().Scale(1e5), spectrum.RGBOf(1, 0.6, 0.6)))
	}
	if n >= 3 {
		lights = append(lights, mkLight(vmath.V3(0, 1, -1).Normalize().Scale(1e5), spectrum.RGBOf(0.6, 0.6, 1)))
	}
	return lights
}

// EnsureLights runs Maker and appends its output when the set is empty,
// matching view_2init's "run light_maker if empty" hook (§4.K).
func (s *Set) EnsureLights(n int, view2model vmath.Mat4) {
	if len(s.Lights) > 0 {
		return
	}
	s.Lights = append(s.Lights, Maker(n, view2model)...)
}

// Cleanup releases implicit lights and any explicit light whose region
// is gone or whose Visible flag is false (§4.C).
func (s *Set) Cleanup() {
	kept := s.Lights[:0]
	for _, l := range s.Lights {
		if l.implicit {
			continue
		}
		if l.Region == nil || !l.Visible {
			continue
		}
		kept = append(kept, l)
	}
	s.Lights = kept
}
