// Package fake provides an in-memory intersection kernel satisfying
// rt.Kernel, used by the tests and by cmd/rtshade-demo to exercise the shading/visibility
// pipeline end to end without a real BVH. It supports spheres and
// infinite planes, enough to build the end-to-end scenarios of spec §8.
package fake

import (
	"math"
	"sort"

	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/vmath"
)

// Sphere is a fake-kernel primitive satisfying rt.Primitive.
type Sphere struct {
	Center vmath.Vec3
	R      float64
	Region *rt.Region
}

func (s *Sphere) Name() string        { return "sph" }
func (s *Sphere) Centre() vmath.Vec3  { return s.Center }
func (s *Sphere) Radius() float64     { return s.R }

func (s *Sphere) Normal(hit *rt.HitRecord, seg *rt.Segment, ray rt.Ray, flip bool) vmath.Vec3 {
	p := hit.Point(ray)
	n := p.Sub(s.Center).Normalize()
	if flip {
		n = n.Negate()
	}
	return n
}

func (s *Sphere) UVCoord(app *rt.Application, seg *rt.Segment, hit *rt.HitRecord, ray rt.Ray) [2]float64 {
	n := s.Normal(hit, seg, ray, false)
	u := 0.5 + math.Atan2(n.Z, n.X)/(2*math.Pi)
	v := 0.5 - math.Asin(n.Y)/math.Pi
	return [2]float64{u, v}
}

func (s *Sphere) intersect(ray rt.Ray) (tIn, tOut float64, ok bool) {
	oc := ray.Origin.Sub(s.Center)
	b := oc.Dot(ray.Dir)
	c := oc.MagSq() - s.R*s.R
	disc := b*b - c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	return -b - sq, -b + sq, true
}

// Plane is an infinite plane through Point with unit Normal0, facing
// Normal0 (outward).
type Plane struct {
	Point   vmath.Vec3
	Normal0 vmath.Vec3
	Region  *rt.Region
}

func (p *Plane) Name() string       { return "pl" }
func (p *Plane) Centre() vmath.Vec3 { return p.Point }
func (p *Plane) Radius() float64    { return math.Inf(1) }

func (p *Plane) Normal(hit *rt.HitRecord, seg *rt.Segment, ray rt.Ray, flip bool) vmath.Vec3 {
	n := p.Normal0
	if flip {
		n = n.Negate()
	}
	return n
}

func (p *Plane) UVCoord(app *rt.Application, seg *rt.Segment, hit *rt.HitRecord, ray rt.Ray) [2]float64 {
	return [2]float64{0.5, 0.5}
}

func (p *Plane) intersect(ray rt.Ray) (t float64, ok bool) {
	denom := p.Normal0.Dot(ray.Dir)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t = p.Point.Sub(ray.Origin).Dot(p.Normal0) / denom
	return t, true
}

// solid is either a Sphere or a Plane, kept uniform for Kernel.
type solid struct {
	sphere *Sphere
	plane  *Plane
	region *rt.Region
}

// Kernel is a minimal fake intersection kernel: a flat list of spheres
// and planes, shot against linearly with no acceleration structure.
type Kernel struct {
	Solids []solid
	Tol    float64
}

func NewKernel() *Kernel {
	return &Kernel{Tol: 1e-6}
}

func (k *Kernel) AddSphere(s *Sphere) {
	k.Solids = append(k.Solids, solid{sphere: s, region: s.Region})
}

func (k *Kernel) AddPlane(p *Plane) {
	k.Solids = append(k.Solids, solid{plane: p, region: p.Region})
}

type hitSpan struct {
	tIn, tOut float64
	region    *rt.Region
	prim      rt.Primitive
}

// ShootRay intersects ray against every solid, builds a sorted partition
// list (one partition per solid whose span overlaps forward of the ray
// origin), and invokes app.HitFn/app.MissFn per the a_hit/a_miss
// convention of §6.1.
func (k *Kernel) ShootRay(app *rt.Application) int {
	ray := app.Ray
	var spans []hitSpan
	for _, s := range k.Solids {
		switch {
		case s.sphere != nil:
			tIn, tOut, ok := s.sphere.intersect(ray)
			if ok && tOut > 0 {
				spans = append(spans, hitSpan{tIn, tOut, s.region, s.sphere})
			}
		case s.plane != nil:
			t, ok := s.plane.intersect(ray)
			if ok && t > 0 {
				// An infinite plane is a one-sided, infinitely-thick
				// slab for this fake kernel: treat [t, +Inf) as the
				// partition so shaders relying on OutHit==+Inf for
				// "opaque to the horizon" still see that behaviour.
				spans = append(spans, hitSpan{t, math.Inf(1), s.region, s.plane})
			}
		}
	}
	if len(spans) == 0 {
		if app.MissFn != nil {
			return app.MissFn(app)
		}
		return 0
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].tIn < spans[j].tIn })

	parts := make([]*rt.Partition, 0, len(spans))
	for _, sp := range spans {
		seg := &rt.Segment{Primitive: sp.prim}
		parts = append(parts, &rt.Partition{
			InHit:  rt.HitRecord{Dist: sp.tIn, Seg: seg},
			OutHit: rt.HitRecord{Dist: sp.tOut, Seg: seg},
			Region: sp.region,
		})
	}
	pl := rt.NewPartitionList(parts...)
	if app.HitFn != nil {
		return app.HitFn(app, pl)
	}
	return 0
}
