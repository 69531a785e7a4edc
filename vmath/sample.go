package vmath

import (
	"math"
	"math/rand/v2"
)

// RandHalf returns a uniform value in [-0.5, 0.5), matching the source's
// bn_rand_half convention used for jitter and disk sampling.
func RandHalf(rng *rand.Rand) float64 {
	return rng.Float64() - 0.5
}

// DiskSample picks a point uniformly on a disk of the given radius in the
// plane spanned by frame.U/frame.V, using the polar method described for
// light_obs's penumbra sampling (§4.D): r = radius*|U|, theta = 2*pi*V with
// U,V uniform in [-1,1].
func DiskSample(rng *rand.Rand, frame Frame, radius float64) Vec3 {
	u := rng.Float64()*2 - 1
	v := rng.Float64()*2 - 1
	r := radius * math.Abs(u)
	theta := 2 * math.Pi * v
	return frame.U.Scale(r * math.Cos(theta)).Add(frame.V.Scale(r * math.Sin(theta)))
}

// CosineHemisphere samples a direction from the cosine-weighted hemisphere
// around frame.W, used by the ambient-occlusion post-filter (§4.G.1).
func CosineHemisphere(rng *rand.Rand, frame Frame) Vec3 {
	u1, u2 := rng.Float64(), rng.Float64()
	r := math.Sqrt(u1)
	theta := 2 * math.Pi * u2
	x := r * math.Cos(theta)
	y := r * math.Sin(theta)
	z := math.Sqrt(math.Max(0, 1-u1))
	return frame.ToWorld(Vec3{x, y, z})
}
