// Package visibility implements component D: the recursive shadow ray
// (light_hit) and the penumbra sampler (light_obs) of spec.md §4.D. It
// has no direct teacher analogue — built from the shading primitives
// (shader.Shadework, rt.Application) the way the spec's algorithm
// describes step by step, with the circular light_hit↔viewshade
// dependency broken by accepting a ViewshadeFunc callback rather than
// importing the shade package directly (shade imports visibility, not
// the other way around).
package visibility

import (
	"math"

	"github.com/lixenwraith/rtshade/light"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/shader"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// ViewshadeFunc runs the shading dispatcher (component E) against part
// with xmitonly forced, returning the filled shadework so light_hit can
// read sw.Transmit and sw.Color as the partition's filter contribution.
type ViewshadeFunc func(app *rt.Application, part *rt.Partition) *shader.Shadework

// LogFunc is the single logging hook §7 requires every error path route
// through.
type LogFunc func(format string, args ...any)

// Result is light_hit's outcome: whether the target light is visible
// from the ray's origin, and the accumulated filter colour along the
// way (white if nothing attenuated it).
type Result struct {
	Visible     bool
	FilterColor spectrum.RGB
}

const attenuationFloor = 0.01

// LightHit is the a_hit of a shadow ray fired toward a sampled light
// point (§4.D). The filter colour starts at (1,1,1) on the initial call.
func LightHit(app *rt.Application, parts *rt.PartitionList, target *light.Light, viewshade ViewshadeFunc, logf LogFunc) Result {
	return lightHit(app, parts, target, spectrum.White, viewshade, logf)
}

// LightMiss is the a_miss counterpart: a miss means visible only if the
// target is invisible or infinite (full transmission); otherwise it is a
// warning and not-visible.
func LightMiss(target *light.Light, logf LogFunc) Result {
	if !target.Visible || target.Infinite {
		return Result{Visible: true, FilterColor: spectrum.White}
	}
	if logf != nil {
		logf("light_hit: miss on finite visible light %q", target.Name)
	}
	return Result{Visible: false, FilterColor: spectrum.Black}
}

func lightHit(app *rt.Application, parts *rt.PartitionList, target *light.Light, filterColor spectrum.RGB, viewshade ViewshadeFunc, logf LogFunc) Result {
	tol := app.Tol
	if tol <= 0 {
		tol = 1e-6
	}

	// Step 1: skip the emanation surface, accumulate transmission
	// through air partitions, stop at the first real blocker.
	p := parts.Front()
	var blocker *rt.Partition
	for p != nil {
		nearOrigin := math.Abs(p.InHit.Dist) < tol && math.Abs(p.OutHit.Dist) < 10*tol
		if nearOrigin {
			p = p.Next
			continue
		}
		if p.Region != nil && p.Region.AirCode != 0 {
			sw := viewshade(app, p)
			filterColor = filterColor.Mul(transmissionFilter(sw))
			p = p.Next
			continue
		}
		blocker = p
		break
	}

	// Step 2: end of list, no blocker found.
	if blocker == nil {
		if !target.Visible || target.Infinite {
			return Result{Visible: true, FilterColor: filterColor}
		}
		if filterColor != spectrum.White {
			// air was traversed along the way: conservative visible.
			return Result{Visible: true, FilterColor: filterColor}
		}
		first := parts.Front()
		if first != nil && math.Abs(first.InHit.Dist) < tol {
			origin := first.OutHit.Point(app.Ray)
			return shootShadowRay(app, origin, target, filterColor, app.Level+1, viewshade, logf)
		}
		if logf != nil {
			logf("light_hit: exhausted partition list with no blocker and no air traversed")
		}
		return Result{Visible: false, FilterColor: spectrum.Black}
	}

	// Step 3: hit the light's own region directly.
	if target.Region != nil && blocker.Region == target.Region {
		return Result{Visible: true, FilterColor: filterColor}
	}

	// Step 4: invisible finite light occluded by geometry beyond it.
	if !target.Visible && !target.Infinite {
		lightDist := target.Center.Sub(app.Ray.Origin).Mag()
		if blocker.OutHit.Dist > lightDist {
			return Result{Visible: true, FilterColor: filterColor}
		}
	}

	// Step 5: opaque blocker.
	opaque := math.IsInf(blocker.OutHit.Dist, 1)
	if blocker.Region != nil && blocker.Region.Transmit <= 0 && !blocker.Region.Procedural {
		opaque = true
	}
	if opaque {
		return Result{Visible: false, FilterColor: spectrum.Black}
	}

	// Step 6: early-out on attenuation.
	if filterColor.Sum() < attenuationFloor {
		return Result{Visible: false, FilterColor: spectrum.Black}
	}

	// Step 7: transparent blocker — shade its transmission and continue
	// the shadow ray from just past the blocker, without refraction.
	sw := viewshade(app, blocker)
	filterColor = filterColor.Mul(transmissionFilter(sw))
	if filterColor.Sum() < attenuationFloor {
		return Result{Visible: false, FilterColor: spectrum.Black}
	}
	origin := blocker.OutHit.Point(app.Ray).Add(app.Ray.Dir.Scale(tol))
	return shootShadowRay(app, origin, target, filterColor, app.Level+1, viewshade, logf)
}

// transmissionFilter turns a shaded partition's transmit coefficient and
// colour into the multiplicative filter contribution light_hit
// accumulates: fully opaque (transmit=0) contributes (1,1,1) worth of
// opacity times zero colour, fully transmissive contributes the
// partition's own colour.
func transmissionFilter(sw *shader.Shadework) spectrum.RGB {
	return spectrum.Const(1 - sw.Transmit).Add(sw.Color.Scale(sw.Transmit))
}

func shootShadowRay(parent *rt.Application, origin vmath.Vec3, target *light.Light, filterColor spectrum.RGB, level int, viewshade ViewshadeFunc, logf LogFunc) Result {
	app := &rt.Application{
		Ray:     rt.Ray{Origin: origin, Dir: parent.Ray.Dir, RBeam: parent.Ray.RBeam, Diverge: parent.Ray.Diverge},
		Level:   level,
		Purpose: "shadow ray",
		RNG:     parent.RNG,
		OneHit:  -2,
		Kernel:  parent.Kernel,
		Tol:     parent.Tol,
	}
	var result Result
	app.HitFn = func(a *rt.Application, parts *rt.PartitionList) int {
		result = lightHit(a, parts, target, filterColor, viewshade, logf)
		return 1
	}
	app.MissFn = func(a *rt.Application) int {
		result = LightMiss(target, logf)
		result.FilterColor = result.FilterColor.Mul(filterColor)
		return 1
	}
	app.Shoot()
	return result
}
