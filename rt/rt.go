// Package rt declares the external interfaces this module consumes from
// the intersection kernel per §6.1/§6.2: rays, the per-ray application
// record, partitions with lazily-computed hit geometry, regions, and the
// primitive vtable. The intersection kernel, geometry database, and CSG
// prep are out of scope (§1); rtshade only needs these narrow contracts
// to drive shading from a partition list the kernel hands it.
package rt

import (
	"math/rand/v2"

	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/vmath"
)

// Ray is a primary or secondary ray: origin, unit direction, beam radius,
// and angular divergence per §3.
type Ray struct {
	Origin   vmath.Vec3
	Dir      vmath.Vec3
	RBeam    float64
	Diverge  float64
}

// PointAt returns the point t mm along the ray from its origin.
func (r Ray) PointAt(t float64) vmath.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// HitCallback is invoked on a ray hit with the partition list; MissCallback
// on a miss. These correspond to the kernel's a_hit/a_miss convention.
type HitCallback func(app *Application, parts *PartitionList) int
type MissCallback func(app *Application) int

// Application is the per-in-flight-ray record of §3, thread-local to the
// goroutine that shoots it.
type Application struct {
	Ray     Ray
	Level   int    // recursion depth.
	Purpose string // tracing label ("main ray", "pushed eye position", ...).

	X, Y int // pixel indices (for primary rays); -1 for shadow/secondary rays.

	RNG *rand.Rand

	Color spectrum.RGB // accumulated colour (RGB-mode).

	Hit     bool        // a_user: did the ray hit anything.
	UPtr    *Region      // a_uptr: primary hit region, if any.
	CumLen  float64      // distance traversed through air before first solid hit.
	Dist    float64      // a_dist: hit distance of the winning partition.
	Tol     float64      // rti_tol.dist geometry epsilon.

	OneHit int // >=1: stop after N non-air hits; <0: continue through air; 0: full list.

	// MaxBounces/MaxIreflect mirror config.Config's recursion caps,
	// copied onto the application at dispatch time so shaders (phong's
	// reflect/refract helper) can check them without importing config.
	MaxBounces  int
	MaxIreflect int

	HitFn  HitCallback
	MissFn MissCallback

	RefracIndex float64
	NoBooleans  bool

	// Kernel is the intersection-kernel handle this application shoots
	// through; rtshade treats it as an opaque dependency satisfying
	// Kernel below.
	Kernel Kernel
}

// Shoot fires a.Ray through a.Kernel and dispatches to HitFn/MissFn,
// mirroring rt_shootray's 1/0 return convention.
func (a *Application) Shoot() int {
	return a.Kernel.ShootRay(a)
}

// Kernel is the minimal intersection-kernel contract of §6.1 that rtshade
// consumes: fire one ray, get back a hit or miss callback invocation.
type Kernel interface {
	ShootRay(app *Application) int
}

// HitRecord is a lazily-enriched intersection point: hit_dist is signed
// (negative means the ray origin is inside a solid), point/normal/uv are
// computed on demand via the primitive vtable.
type HitRecord struct {
	Dist   float64 // hit_dist, mm, signed.
	Seg    *Segment
	point  *vmath.Vec3
	normal *vmath.Vec3
	uv     *[2]float64
}

// Point returns (and caches) the hit point along ray.
func (h *HitRecord) Point(ray Ray) vmath.Vec3 {
	if h.point == nil {
		p := ray.PointAt(h.Dist)
		h.point = &p
	}
	return *h.point
}

// Normal returns (and caches) the surface normal via the primitive
// vtable, applying flip if the partition's in/outflip bit is set.
func (h *HitRecord) Normal(ray Ray, flip bool) vmath.Vec3 {
	if h.normal == nil {
		n := h.Seg.Primitive.Normal(h, h.Seg, ray, flip)
		h.normal = &n
	}
	return *h.normal
}

// UV returns (and caches) surface parametric coordinates via the
// primitive vtable.
func (h *HitRecord) UV(app *Application, ray Ray) [2]float64 {
	if h.uv == nil {
		uv := h.Seg.Primitive.UVCoord(app, h.Seg, h, ray)
		h.uv = &uv
	}
	return *h.uv
}

// Segment carries the primitive vtable pointer a partition's in/out hits
// need for lazy normal/UV computation (§6.1).
type Segment struct {
	Primitive Primitive
}

// Primitive is the vtable §6.2 describes: normal/uvcoord plus the
// shape-centre/bounding-radius the light shader's implicit-geometry setup
// needs.
type Primitive interface {
	Name() string
	Normal(hit *HitRecord, seg *Segment, ray Ray, flip bool) vmath.Vec3
	UVCoord(app *Application, seg *Segment, hit *HitRecord, ray Ray) [2]float64
	// Centre and Radius approximate the solid's bounding sphere, used by
	// the light shader (§4.F.1) when a region's CSG treetop is a single
	// solid.
	Centre() vmath.Vec3
	Radius() float64
}

// Region is a CSG expression's attached material/light parameters and
// integer id (§3). The shader vtable pointer and its private datum are
// attached once view_setup's per-region setup call succeeds (component B).
type Region struct {
	Name     string
	ID       int
	AirCode  int // 0 = solid, >0 = air kind.
	LOS      float64
	Override *vmath.Vec3 // optional override colour.
	Temp     *float64    // optional temperature, Kelvin.
	Params   string      // raw shader-parameter string, parsed by setup.

	ShaderName string
	ShaderData any // shader-private datum produced by setup.

	NoDraw bool // keep-but-no-draw (light_setup's invisible-light case).

	// Transmit is reg_mater.transmit, the static base transmission a
	// phong-family shader's setup stores for the opaque-blocker test in
	// light_hit (§4.D step 5) — read before any per-hit shading runs.
	Transmit float64
	// Procedural mirrors the shader vtable's PROC flag (shader.PROC),
	// mirrored onto the region at setup time so visibility's opaque-
	// blocker test doesn't need a registry handle of its own.
	Procedural bool
}

// Partition is one contiguous span of a ray through a single region,
// delimited by InHit/OutHit (§3).
type Partition struct {
	InHit, OutHit   HitRecord
	InFlip, OutFlip bool
	Region          *Region
	Prev, Next      *Partition
}

// PartitionList is the doubly-linked partition list the kernel hands to
// a_hit, with a sentinel head so Front/Back degrade gracefully on an
// empty list.
type PartitionList struct {
	head *Partition
}

func NewPartitionList(parts ...*Partition) *PartitionList {
	pl := &PartitionList{}
	for i, p := range parts {
		if i > 0 {
			p.Prev = parts[i-1]
			parts[i-1].Next = p
		}
	}
	if len(parts) > 0 {
		pl.head = parts[0]
	}
	return pl
}

func (pl *PartitionList) Front() *Partition { return pl.head }
func (pl *PartitionList) Empty() bool       { return pl.head == nil }

// All returns the partitions in list order, for callers that want to
// range rather than walk .Next manually.
func (pl *PartitionList) All() []*Partition {
	var out []*Partition
	for p := pl.head; p != nil; p = p.Next {
		out = append(out, p)
	}
	return out
}
