package visibility

import (
	"github.com/lixenwraith/rtshade/light"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// LightObs fills sw's per-light arrays (ToLight, Intensity, LightFract,
// Visible) for every light in set, given the primary hit point and
// (optional) surface normal, per §4.D's penumbra sampler. hasNormal is
// false for shaders that never populated sw.Normal (e.g. xmitonly
// callers) since the back-face test only applies when a normal exists.
func LightObs(app *rt.Application, set *light.Set, hitPoint vmath.Vec3, normal vmath.Vec3, hasNormal bool, transmit float64, sw *shader.Shadework, viewshade ViewshadeFunc, logf LogFunc) {
	n := len(set.Lights)
	sw.ToLight = make([][3]float64, n)
	sw.Intensity = make([]spectrum.RGB, n)
	sw.LightFract = make([]float64, n)
	sw.Visible = make([]any, n)

	for i, lt := range set.Lights {
		toLight := lt.Center.Sub(hitPoint)
		if !lt.Infinite {
			toLight = toLight.Normalize()
		} else {
			toLight = lt.Aim.Negate()
		}
		sw.ToLight[i] = [3]float64{toLight.X, toLight.Y, toLight.Z}

		if hasNormal && normal.Dot(toLight) <= 0 && transmit <= 0 {
			sw.Visible[i] = nil
			sw.LightFract[i] = 0
			continue
		}
		if lt.Aim.Dot(toLight.Negate()) < lt.CosAngle {
			sw.Visible[i] = nil
			sw.LightFract[i] = 0
			continue
		}
		if lt.Shadows == 0 {
			sw.Visible[i] = lt
			sw.LightFract[i] = 1
			sw.Intensity[i] = lt.Color
			continue
		}

		frame := vmath.NewFrame(toLight)
		totalRays := lt.Shadows
		hits := 0
		var lastColor spectrum.RGB
		var anyVisible *light.Light

		for s := 0; s < totalRays; s++ {
			var target vmath.Vec3
			if lt.Infinite {
				target = hitPoint.Add(lt.Aim.Negate().Scale(1e6))
			} else {
				target = lt.Center.Add(vmath.DiskSample(app.RNG, frame, lt.Radius))
			}
			dir := target.Sub(hitPoint).Normalize()
			res := shootShadowRay(&rt.Application{
				Ray:    rt.Ray{Origin: hitPoint, Dir: dir},
				RNG:    app.RNG,
				Level:  0,
				Kernel: app.Kernel,
				Tol:    app.Tol,
			}, hitPoint, lt, spectrum.White, 0, viewshade, logf)
			if res.Visible {
				hits++
				lastColor = lt.Color.Mul(res.FilterColor)
				anyVisible = lt
			}
		}

		sw.LightFract[i] = clamp01(float64(hits) / float64(totalRays))
		if anyVisible != nil {
			sw.Visible[i] = anyVisible
			sw.Intensity[i] = lastColor
		} else {
			sw.Visible[i] = nil
			sw.Intensity[i] = spectrum.Black
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
