// Package shader implements component B: the process-wide registry that
// maps shader names to vtables, and per-region setup/render/print/free
// dispatch. It keeps the teacher's name→handler map shape (as used by
// the rest of the pack's registry-style packages) rather than a generic
// plugin-loader abstraction this module has no need for.
package shader

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/spectrum"
)

// InputsMask is the union of shadework fields a shader's render needs
// populated before it runs (§3).
type InputsMask uint8

const (
	HIT InputsMask = 1 << iota
	NORMAL
	UV
	LIGHT
)

func (m InputsMask) Has(bit InputsMask) bool { return m&bit != 0 }

// Flags carries shader behaviour bits beyond the inputs mask.
type Flags uint8

const (
	// PROC marks a procedural shader that claims hit-point ownership
	// even through a solid region (reg_transmit == 0) — the grass and
	// cloud shaders need this since they synthesize their own geometry
	// from noise rather than relying solely on the kernel's surface hit.
	PROC Flags = 1 << iota
)

// SetupResult is the three-way outcome §4.B documents for a shader's
// setup call.
type SetupResult int

const (
	SetupOK SetupResult = iota
	SetupDrop
	SetupKeepNoDraw
)

// Params is a region's parsed shader-parameter string: typed fields
// (floats, ints, colours, vec3s, enumerated tokens) a shader's setup
// reads by name. Unknown fields are the caller's responsibility to
// reject (§4.B: "unknown fields fail the setup with a structured
// error").
type Params map[string]any

func (p Params) Float(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return def
}

func (p Params) Int(name string, def int) int {
	if v, ok := p[name]; ok {
		if i, ok := v.(int); ok {
			return i
		}
	}
	return def
}

func (p Params) Bool(name string, def bool) bool {
	if v, ok := p[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Shadework is the per-shading-call workspace of §3.
type Shadework struct {
	Hit       rt.HitRecord
	HitPoint  [3]float64
	Normal    [3]float64
	UVCoord   [2]float64

	Color     spectrum.RGB
	BaseColor spectrum.RGB

	Transmit     float64
	Reflect      float64
	RefracIndex  float64
	Extinction   float64

	XmitOnly bool

	Inputs InputsMask

	Temperature float64 // Kelvin; 0 means "not set".

	// Per-light arrays, indexed in parallel, length == len(lights).
	ToLight    [][3]float64
	Intensity  []spectrum.RGB
	LightFract []float64
	Visible    []any // light handle or nil.
}

// NewShadework builds the zeroed shadework state §4.G.4 specifies:
// transmit=reflect=0, refrac_index=1, color=basecolor=white.
func NewShadework() *Shadework {
	return &Shadework{
		Color:       spectrum.White,
		BaseColor:   spectrum.White,
		RefracIndex: 1,
	}
}

// VTable is a shader's (setup, render, print, free) quad plus its default
// inputs mask and flags (§3's mfuncs).
type VTable struct {
	Name              string
	DefaultInputsMask InputsMask
	DefaultFlags      Flags

	Setup  func(region *rt.Region, params Params) (data any, result SetupResult, err error)
	Render func(app *rt.Application, part *rt.Partition, sw *Shadework, data any) int
	Print  func(data any) string
	Free   func(data any)
}

// Registry is the process-wide name→vtable map, read-only after
// view_init per §5's shared-resources note.
type Registry struct {
	mu      sync.RWMutex
	vtables map[string]*VTable
}

func NewRegistry() *Registry {
	return &Registry{vtables: make(map[string]*VTable)}
}

func (r *Registry) Register(v *VTable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vtables[v.Name] = v
}

func (r *Registry) Lookup(name string) (*VTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vtables[name]
	return v, ok
}

// SetupRegion runs the named shader's setup against region, attaching
// the resulting shader-private datum and vtable pointer on success.
// Returns an error only for "unknown shader name" or a setup-level
// structured parse error; SetupDrop/SetupKeepNoDraw are reported via the
// returned SetupResult, not an error (§4.B: drop is not fatal).
func (r *Registry) SetupRegion(region *rt.Region, params Params) (SetupResult, error) {
	v, ok := r.Lookup(region.ShaderName)
	if !ok {
		return SetupDrop, fmt.Errorf("shader: unknown shader %q for region %q", region.ShaderName, region.Name)
	}
	data, result, err := v.Setup(region, params)
	if err != nil {
		return SetupDrop, fmt.Errorf("shader: setup %q for region %q: %w", v.Name, region.Name, err)
	}
	region.ShaderData = data
	if result == SetupKeepNoDraw {
		region.NoDraw = true
	}
	return result, nil
}

// Render invokes the region's shader vtable render. Per §7, a missing
// vtable is logged and treated as a no-op returning 0, not a panic.
func (r *Registry) Render(app *rt.Application, part *rt.Partition, sw *Shadework, logf func(string, ...any)) int {
	region := part.Region
	v, ok := r.Lookup(region.ShaderName)
	if !ok {
		if logf != nil {
			logf("reg_mfuncs NULL for region %q", region.Name)
		}
		return 0
	}
	return v.Render(app, part, sw, region.ShaderData)
}
