package noise

import "math"

// FBM is fractal Brownian motion over a Field: octaves of simplex noise
// summed at increasing frequency (scaled by lacunarity each step) and
// decreasing amplitude (scaled by lacunarity^-hVal, the Hausdorff exponent),
// matching the scloud/tsplat/grass parameter set of §4.F.3/§4.F.4
// (lacunarity, h_val, octaves). Grounded on the octave-accumulation loop of
// gazed-vu's SimplexNoise.Gen2D/Gen3D, generalized to the caller-supplied
// exponent instead of a fixed gain.
func (f *Field) FBM(p [3]float64, hVal, lacunarity float64, octaves int) float64 {
	freq := 1.0
	amp := 1.0
	sum := 0.0
	falloff := math.Pow(lacunarity, -hVal)
	for o := 0; o < octaves; o++ {
		sum += f.Sample3(p[0]*freq, p[1]*freq, p[2]*freq) * amp
		freq *= lacunarity
		amp *= falloff
	}
	return sum
}

// Turb is turbulence: the same octave accumulation as FBM but on the
// absolute value of each octave's sample, giving the billowy, always-
// positive field the cloud-marching shader (scloud_render) expects.
func (f *Field) Turb(p [3]float64, hVal, lacunarity float64, octaves int) float64 {
	freq := 1.0
	amp := 1.0
	sum := 0.0
	falloff := math.Pow(lacunarity, -hVal)
	for o := 0; o < octaves; o++ {
		sum += math.Abs(f.Sample3(p[0]*freq, p[1]*freq, p[2]*freq)) * amp
		freq *= lacunarity
		amp *= falloff
	}
	return sum
}
