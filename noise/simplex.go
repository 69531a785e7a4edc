// Package noise provides the 3D gradient noise and fractal-Brownian-motion
// turbulence functions used by the volumetric cloud shader (scloud/tsplat,
// §4.F.3) and the grass stalk generator (§4.F.4). Adapted from the classic
// simplex-noise construction (permutation table + per-simplex gradient
// dot-products); the permutation table is reseeded with math/rand/v2 rather
// than a fixed literal table, and the 2D path is dropped since every caller
// in this module only ever needs 3D samples.
package noise

import "math/rand/v2"

var gradients = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

const (
	f3 = 1.0 / 3.0
	g3 = 1.0 / 6.0
)

// Field is a seeded 3D gradient-noise field.
type Field struct {
	perm      [512]int
	permMod12 [512]int
}

// NewField builds a noise field from seed; the same seed always yields the
// same field, matching the source's documented seed-reuse contract.
func NewField(seed uint64) *Field {
	f := &Field{}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var base [256]int
	for i := range base {
		base[i] = i
	}
	rng.Shuffle(len(base), func(i, j int) { base[i], base[j] = base[j], base[i] })
	for i := 0; i < 512; i++ {
		f.perm[i] = base[i&255]
		f.permMod12[i] = f.perm[i] % 12
	}
	return f
}

func floor(x float64) int {
	i := int(x)
	if x < float64(i) {
		return i - 1
	}
	return i
}

func dot3(g [3]float64, x, y, z float64) float64 {
	return g[0]*x + g[1]*y + g[2]*z
}

// Sample3 returns a 3D simplex noise value in roughly [-1, 1].
func (f *Field) Sample3(x, y, z float64) float64 {
	h := (x + y + z) * f3
	i, j, k := floor(x+h), floor(y+h), floor(z+h)
	t := float64(i+j+k) * g3
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)
	z0 := z - (float64(k) - t)

	var i1, j1, k1, i2, j2, k2 int
	switch {
	case x0 >= y0 && y0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 1, 0
	case x0 >= y0 && x0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 0, 1
	case x0 >= y0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 1, 0, 1
	case y0 < z0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 0, 1, 1
	case x0 < z0:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 0, 1, 1
	default:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 1, 1, 0
	}

	x1, y1, z1 := x0-float64(i1)+g3, y0-float64(j1)+g3, z0-float64(k1)+g3
	x2, y2, z2 := x0-float64(i2)+2*g3, y0-float64(j2)+2*g3, z0-float64(k2)+2*g3
	x3, y3, z3 := x0-1+3*g3, y0-1+3*g3, z0-1+3*g3

	ii, jj, kk := i&255, j&255, k&255
	gi0 := f.permMod12[ii+f.perm[jj+f.perm[kk]]]
	gi1 := f.permMod12[ii+i1+f.perm[jj+j1+f.perm[kk+k1]]]
	gi2 := f.permMod12[ii+i2+f.perm[jj+j2+f.perm[kk+k2]]]
	gi3 := f.permMod12[ii+1+f.perm[jj+1+f.perm[kk+1]]]

	corner := func(gi int, x, y, z float64) float64 {
		t := 0.5 - x*x - y*y - z*z
		if t < 0 {
			return 0
		}
		t *= t
		return t * t * dot3(gradients[gi], x, y, z)
	}

	n := corner(gi0, x0, y0, z0) + corner(gi1, x1, y1, z1) +
		corner(gi2, x2, y2, z2) + corner(gi3, x3, y3, z3)
	return 32 * n
}
