// Package spectrum implements component A: the two compile-time
// polymorphic colour carriers spec.md §4.A describes (RGB and tabulated
// Spectrum), plus the shared operations every shader and the frame buffer
// need (constval, copy, add, scale, elementwise_mul, black_body,
// reflectance_from_rgb). Rather than a Go generic type parameter over a
// carrier trait (§9's suggested re-architecture), this module picks RGB
// as the concrete carrier used throughout the shading pipeline and keeps
// Spectrum as a secondary, narrower type for thermal/spectral output
// (§6.3's companion .spect file), matching how the teacher's render
// package keeps one concrete colour type rather than parameterizing over
// colour representation.
package spectrum

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/rtshade/vmath"
)

// RGB is a linear-light colour in [0,1] per channel, the carrier used by
// every shader, light, and the shading dispatcher. It is the same shape
// as vmath.Vec3 but kept as a distinct type so colour and geometry are
// never accidentally interchanged.
type RGB struct {
	R, G, B float64
}

func Const(v float64) RGB { return RGB{v, v, v} }
func RGBOf(r, g, b float64) RGB { return RGB{r, g, b} }

func (c RGB) Copy() RGB { return c }

func (c RGB) Add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

func (c RGB) Scale(s float64) RGB {
	return RGB{c.R * s, c.G * s, c.B * s}
}

// Mul is the elementwise (Hadamard) product used throughout §4.F for
// colour modulation (basecolor ⊗ light colour, transmit filtering, ...).
func (c RGB) Mul(o RGB) RGB {
	return RGB{c.R * o.R, c.G * o.G, c.B * o.B}
}

func (c RGB) Sum() float64 { return c.R + c.G + c.B }

func (c RGB) Clamp01() RGB {
	return RGB{vmath.Clamp01(c.R), vmath.Clamp01(c.G), vmath.Clamp01(c.B)}
}

// ToVec3 / FromVec3 bridge to vmath.Vec3 for geometry-flavoured helpers
// (Lerp, Max/Min) that already exist there.
func (c RGB) ToVec3() vmath.Vec3   { return vmath.Vec3{X: c.R, Y: c.G, Z: c.B} }
func FromVec3(v vmath.Vec3) RGB    { return RGB{v.X, v.Y, v.Z} }

// White and Black are the two constants shading setup code reaches for
// most often (basecolor defaults, shadework zero-state).
var (
	White = RGB{1, 1, 1}
	Black = RGB{0, 0, 0}
)

// ReflectanceFromRGB converts a display-referred sRGB-ish override colour
// into the linear reflectance this module shades with, via go-colorful's
// sRGB-to-linear-RGB conversion (gamma-correct, replacing a hand-rolled
// approximation).
func ReflectanceFromRGB(r, g, b float64) RGB {
	lr, lg, lb := colorful.Color{R: r, G: g, B: b}.LinearRgb()
	return RGB{lr, lg, lb}
}

// BlackBody returns the chromaticity of a black-body radiator at
// temperature K kelvin, scaled so the brightest channel is 1.0, via
// colorTemperatureToRGB's Tanner Helland fit, linearized with
// go-colorful. order is accepted for interface
// parity with the source's black_body(T, order) (higher-order spectral
// detail is not modelled by the RGB carrier) and is otherwise unused.
func BlackBody(kelvinTemp float64, order int) RGB {
	return colorTemperatureToRGB(kelvinTemp)
}

// colorTemperatureToRGB implements Tanner Helland's black-body
// approximation over go-colorful's Color type, normalizing through
// go-colorful so the result is a properly gamma-corrected linear colour
// rather than raw byte channels.
func colorTemperatureToRGB(kelvinTemp float64) RGB {
	temp := kelvinTemp / 100.0

	var r, g, b float64
	if temp <= 66 {
		r = 255
	} else {
		r = 329.698727446 * math.Pow(temp-60, -0.1332047592)
	}
	if temp <= 66 {
		g = 99.4708025861*math.Log(temp) - 161.1195681661
	} else {
		g = 288.1221695283 * math.Pow(temp-60, -0.0755148492)
	}
	if temp >= 66 {
		b = 255
	} else if temp <= 19 {
		b = 0
	} else {
		b = 138.5177312231*math.Log(temp-10) - 305.0447927307
	}

	clampByte := func(v float64) float64 { return vmath.Clamp(v, 0, 255) / 255.0 }
	lr, lg, lb := colorful.Color{R: clampByte(r), G: clampByte(g), B: clampByte(b)}.Clamped().LinearRgb()
	return RGB{lr, lg, lb}
}
