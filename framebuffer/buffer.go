// Package framebuffer implements component H: the output buffer model
// (§4.H) that receives finished pixel colours from the dispatcher and
// applies gamma/dither post-processing before handing bytes to a
// consumer (a file encoder or a live view). It keeps the teacher's
// RenderBuffer-as-single-source-of-truth compositor shape (render/buffer.go)
// but the backing cell is a linear spectrum.RGB sample accumulator
// instead of a terminal glyph cell, since this module has no terminal
// output of its own.
package framebuffer

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/rtshade/spectrum"
)

// Mode selects one of the buffering strategies §4.H documents.
type Mode int

const (
	// Unbuf writes each pixel straight through; no scanline state.
	Unbuf Mode = iota
	// Scanline stores every cell like Unbuf; the buffer keeps no per-row
	// state for it and RowReady always reports true.
	Scanline
	// Dynamic tracks outstanding pixels per scanline so out-of-order
	// worker completion still flushes a row the instant it's done.
	Dynamic
	// Accumulation keeps a running float sum per pixel across repeated
	// full-frame passes (progressive refinement / antialiasing by
	// accumulation rather than per-pixel hypersampling).
	Accumulation
	// Incr is progressive refinement over nlevel passes: each computed
	// pixel is replicated across a stride x stride square (§4.H). The
	// dispatcher (component I) decides which pixels to skip at each
	// level; the buffer only owns the replication and the per-row
	// outstanding-count bookkeeping.
	Incr
	// FullFloat pairs this Buffer with an external *FloatFrame the view
	// lifecycle (component K) manages directly; Buffer.Set still works
	// for compatibility but FullFloat callers are expected to write
	// through FloatFrame.Set/MarkTraced and read back via Buffer's
	// Color/Bytes after copying FloatFrame.Color into the cell grid
	// (SyncFromFloatFrame).
	FullFloat
)

// Cell is one pixel's accumulator state.
type Cell struct {
	Sum     spectrum.RGB // running sum across Samples accumulated passes.
	Samples int
	Hit     bool
}

// Buffer is the frame's single source of truth: every pixel write, from
// any worker goroutine, lands here before post-processing and output.
// Dynamic mode's per-row `left` counters are tracked alongside the cells
// so a completed row can be flushed without a second scan.
type Buffer struct {
	mode   Mode
	width  int
	height int
	cells  []Cell

	rowLeft []int // Dynamic/Incr modes only: outstanding pixel count per row.

	incrStride int // Incr mode only: current pass's replication stride.

	Gamma       float64
	Background  spectrum.RGB
	Dither      bool
	Benchmark   bool // suppresses the "never emit pure black" rule.
}

func New(mode Mode, width, height int) *Buffer {
	b := &Buffer{
		mode:       mode,
		width:      width,
		height:     height,
		cells:      make([]Cell, width*height),
		Gamma:      1,
		incrStride: 1,
	}
	if mode == Dynamic {
		b.rowLeft = make([]int, height)
		for y := range b.rowLeft {
			b.rowLeft[y] = width
		}
	}
	if mode == Incr {
		b.rowLeft = make([]int, height)
	}
	return b
}

// SetIncrLevel configures Incr mode for pass k of nlevel total passes:
// stride = 2^(nlevel-k) (§4.H). Recomputes each row's outstanding count
// as the number of grid-aligned pixels that pass will actually shoot
// (width/stride, rounded up, less the points an earlier pass already
// shot on rows that pass covered), so RowReady still fires once a row
// is done at this pass's resolution.
func (b *Buffer) SetIncrLevel(k, nlevel int) {
	stride := 1 << uint(nlevel-k)
	b.incrStride = stride
	if b.mode != Incr {
		return
	}
	perRow := (b.width + stride - 1) / stride
	coarse := (b.width + 2*stride - 1) / (2 * stride)
	for y := range b.rowLeft {
		switch {
		case y%stride != 0:
			b.rowLeft[y] = 0
		case k > 1 && y%(2*stride) == 0:
			b.rowLeft[y] = perRow - coarse
		default:
			b.rowLeft[y] = perRow
		}
	}
}

func (b *Buffer) Bounds() (w, h int) { return b.width, b.height }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Set commits one pixel's finished colour. In Accumulation mode repeated
// calls at the same coordinate add another sample to the running sum
// rather than overwrite it, matching the ACC buffer's `sum/samples`
// convention (§4.H).
func (b *Buffer) Set(x, y int, c spectrum.RGB, hit bool) {
	if !b.inBounds(x, y) {
		return
	}
	idx := y*b.width + x
	cell := &b.cells[idx]
	switch b.mode {
	case Accumulation:
		cell.Sum = cell.Sum.Add(c)
		cell.Samples++
	default:
		cell.Sum = c
		cell.Samples = 1
	}
	cell.Hit = hit

	if b.mode == Dynamic {
		b.rowLeft[y]--
	}
}

// SetIncr commits a pixel computed at the current Incr pass and
// replicates it across the pass's stride x stride square (clipped to
// the buffer bounds), matching §4.H's "each computed pixel is
// replicated across a stride x stride square." x, y must be the
// grid-aligned coordinate the dispatcher actually shot (a multiple of
// the current stride).
func (b *Buffer) SetIncr(x, y int, c spectrum.RGB, hit bool) {
	stride := b.incrStride
	if stride < 1 {
		stride = 1
	}
	for dy := 0; dy < stride && y+dy < b.height; dy++ {
		for dx := 0; dx < stride && x+dx < b.width; dx++ {
			idx := (y+dy)*b.width + (x + dx)
			b.cells[idx] = Cell{Sum: c, Samples: 1, Hit: hit}
		}
	}
	if b.mode == Incr && y < len(b.rowLeft) {
		b.rowLeft[y]--
	}
}

// RowReady reports whether Dynamic/Incr mode considers row y complete
// and ready to flush. Always true outside those modes.
func (b *Buffer) RowReady(y int) bool {
	if b.mode != Dynamic && b.mode != Incr {
		return true
	}
	if y < 0 || y >= b.height {
		return false
	}
	return b.rowLeft[y] <= 0
}

// Color returns the pixel's current display colour: the instantaneous
// sample outside Accumulation mode, or the running average within it.
func (b *Buffer) Color(x, y int) spectrum.RGB {
	if !b.inBounds(x, y) {
		return b.Background
	}
	cell := b.cells[y*b.width+x]
	if cell.Samples == 0 {
		return b.Background
	}
	if b.mode == Accumulation {
		return cell.Sum.Scale(1 / float64(cell.Samples))
	}
	return cell.Sum
}

// Bytes post-processes the pixel at (x,y) into clamped [0,255] output
// channels per §4.H's uniform pixel post-processing rule: gamma
// correction, a tiny dither before rounding, a never-pure-black guard
// (dropped under Benchmark), and substitution of a hit cell's exact
// background match with a perturbed nonBackground colour so the file
// encoder's background-key logic (out of scope here) never misfires on a
// real hit. Misses and unset cells keep the background colour.
func (b *Buffer) Bytes(x, y int, rng *rand.Rand, nonBackground spectrum.RGB) (r, g, b8, bl uint8) {
	c := b.Color(x, y)
	if c == b.Background && b.inBounds(x, y) && b.cells[y*b.width+x].Hit {
		c = nonBackground
	}
	out := [3]float64{c.R, c.G, c.B}
	for i, v := range out {
		if b.Gamma > 0 {
			v = gammaCorrect(v, b.Gamma)
		}
		if b.Dither && rng != nil {
			v += (rng.Float64() - 0.5) / 255
		}
		px := v * 255
		if px < 0 {
			px = 0
		}
		if px > 255 {
			px = 255
		}
		out[i] = px
	}
	rv, gv, bv := uint8(out[0]+0.5), uint8(out[1]+0.5), uint8(out[2]+0.5)
	if !b.Benchmark && rv == 0 && gv == 0 && bv == 0 {
		rv = 1
	}
	return rv, gv, bv, 0
}

// SyncFromFloatFrame copies ff's per-pixel colours into this Buffer's
// cell grid so FullFloat-mode callers can reuse Color/Bytes for output
// without duplicating the gamma/dither post-filter.
func (b *Buffer) SyncFromFloatFrame(ff *FloatFrame) {
	for i := range b.cells {
		p := ff.Pixels[i]
		samples := 0
		if p.Valid() {
			samples = 1
		}
		b.cells[i] = Cell{Sum: p.Color, Samples: samples, Hit: p.Valid()}
	}
}

func gammaCorrect(v, gamma float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Pow(v, 1/gamma)
}
