// Package vmath provides the float64 3D vector and matrix math shared by
// every shading and visibility package: ray/normal arithmetic, orthonormal
// frame construction, and the 2D grid traversal used by the grass shader.
package vmath

import "math"

// Vec3 is a float64 3D vector, used throughout for points (mm), directions
// (unit), and colours (see spectrum.RGB for the colour-specific type).
type Vec3 struct {
	X, Y, Z float64
}

func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Negate() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

// Mul is the elementwise (Hadamard) product, used for colour modulation.
func (a Vec3) Mul(b Vec3) Vec3 { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) MagSq() float64 { return a.Dot(a) }
func (a Vec3) Mag() float64   { return math.Sqrt(a.MagSq()) }

func (a Vec3) Normalize() Vec3 {
	mag := a.Mag()
	if mag == 0 {
		return Vec3{}
	}
	inv := 1.0 / mag
	return Vec3{a.X * inv, a.Y * inv, a.Z * inv}
}

// Lerp interpolates a and b, t in [0,1].
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return Vec3{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t, a.Z + (b.Z-a.Z)*t}
}

// Reflect mirrors an incoming direction d about the surface normal n, both
// unit vectors; n is expected to point against d (d.Dot(n) <= 0 for a ray
// hitting the front face). Matches the 2D Reflect used by the teacher's
// vmath package, generalized to 3D for shading geometry.
func Reflect(d, n Vec3) Vec3 {
	return d.Sub(n.Scale(2 * d.Dot(n)))
}

// Refract bends an incoming unit direction d through a surface with unit
// normal n (pointing against d) given the ratio eta = n1/n2 of refractive
// indices. ok is false on total internal reflection.
func Refract(d, n Vec3, eta float64) (t Vec3, ok bool) {
	cosI := -d.Dot(n)
	sin2T := eta * eta * (1 - cosI*cosI)
	if sin2T > 1 {
		return Vec3{}, false
	}
	cosT := math.Sqrt(1 - sin2T)
	return d.Scale(eta).Add(n.Scale(eta*cosI - cosT)), true
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Frame is an orthonormal basis, used by light_obs's disk sampling and the
// ambient-occlusion hemisphere sampler (§4.D, §4.G.1).
type Frame struct {
	U, V, W Vec3 // W is the frame's primary axis (e.g. the surface normal).
}

// NewFrame builds an orthonormal basis with w as its primary axis, picking
// an arbitrary perpendicular U the way most hemisphere samplers do: cross
// with the least-aligned cardinal axis to avoid a degenerate basis.
func NewFrame(w Vec3) Frame {
	w = w.Normalize()
	var a Vec3
	if math.Abs(w.X) < 0.9 {
		a = Vec3{1, 0, 0}
	} else {
		a = Vec3{0, 1, 0}
	}
	u := a.Cross(w).Normalize()
	v := w.Cross(u)
	return Frame{U: u, V: v, W: w}
}

// ToWorld maps a local-frame vector (u,v,w components) into world space.
func (f Frame) ToWorld(local Vec3) Vec3 {
	return f.U.Scale(local.X).Add(f.V.Scale(local.Y)).Add(f.W.Scale(local.Z))
}

// Mat4 is a row-major 4x4 transform, used for view2model / model2view.
type Mat4 [16]float64

func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// MulVec3 transforms a direction (w=0) by the upper 3x3 of m.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// MulPoint transforms a point (w=1) by m, including translation.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}
