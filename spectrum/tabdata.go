package spectrum

import (
	"fmt"
	"math"
)

// Table is the shared wavelength table every Spectrum sample is indexed
// against (§6.3's companion .spect file header): nsamp bins spanning
// [loNm, hiNm].
type Table struct {
	Nsamp int
	LoNm  float64
	HiNm  float64
}

func NewTable(nsamp int, loNm, hiNm float64) (*Table, error) {
	if nsamp <= 0 {
		return nil, fmt.Errorf("spectrum: nsamp must be positive, got %d", nsamp)
	}
	if hiNm <= loNm {
		return nil, fmt.Errorf("spectrum: hi_nm (%v) must exceed lo_nm (%v)", hiNm, loNm)
	}
	return &Table{Nsamp: nsamp, LoNm: loNm, HiNm: hiNm}, nil
}

// Spectrum is a tabdata: an array of samples aligned to a shared Table,
// the spectral-mode colour carrier (§6.3, §9's RT_MULTISPECTRAL toggle).
type Spectrum struct {
	table   *Table
	Samples []float64
}

func NewSpectrum(t *Table) *Spectrum {
	return &Spectrum{table: t, Samples: make([]float64, t.Nsamp)}
}

func (s *Spectrum) Table() *Table { return s.table }

func (s *Spectrum) Copy() *Spectrum {
	out := &Spectrum{table: s.table, Samples: make([]float64, len(s.Samples))}
	copy(out.Samples, s.Samples)
	return out
}

func constSpectrum(t *Table, v float64) *Spectrum {
	sp := NewSpectrum(t)
	for i := range sp.Samples {
		sp.Samples[i] = v
	}
	return sp
}

// Const builds a flat spectrum with every sample set to v, the tabdata
// analogue of RGB's Const.
func Const(t *Table, v float64) *Spectrum { return constSpectrum(t, v) }

func (s *Spectrum) Add(o *Spectrum) *Spectrum {
	out := s.Copy()
	for i := range out.Samples {
		out.Samples[i] += o.Samples[i]
	}
	return out
}

func (s *Spectrum) Scale(f float64) *Spectrum {
	out := s.Copy()
	for i := range out.Samples {
		out.Samples[i] *= f
	}
	return out
}

func (s *Spectrum) Mul(o *Spectrum) *Spectrum {
	out := s.Copy()
	for i := range out.Samples {
		out.Samples[i] *= o.Samples[i]
	}
	return out
}

// BlackBodySpectrum fills each wavelength bin with the Planckian-locus
// radiance at kelvinTemp, normalized to a peak of 1.0 — the tabdata
// equivalent of BlackBody for a full spectral build. Uses Planck's law
// directly (go-colorful has no tabulated-spectrum API) rather than a
// hand-rolled three-channel fit, since the whole point of the Spectrum
// carrier is per-wavelength resolution RGB can't provide.
func BlackBodySpectrum(t *Table, kelvinTemp float64) *Spectrum {
	const h = 6.62607015e-34
	const c = 2.99792458e8
	const kb = 1.380649e-23

	sp := NewSpectrum(t)
	step := (t.HiNm - t.LoNm) / float64(t.Nsamp)
	peak := 0.0
	for i := range sp.Samples {
		lambdaNm := t.LoNm + (float64(i)+0.5)*step
		lambdaM := lambdaNm * 1e-9
		num := 2 * h * c * c
		denom := (lambdaM * lambdaM * lambdaM * lambdaM * lambdaM) *
			(math.Exp(h*c/(lambdaM*kb*kelvinTemp)) - 1)
		v := num / denom
		sp.Samples[i] = v
		if v > peak {
			peak = v
		}
	}
	if peak > 0 {
		for i := range sp.Samples {
			sp.Samples[i] /= peak
		}
	}
	return sp
}
