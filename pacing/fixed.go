// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pacing

import (
	"github.com/cpmech/cellsim/cellerr"
)

// FixedPacing produces a continuously varying level from a precomputed time
// series (t_i, y_i), linearly interpolated between samples and clamped to
// the nearest endpoint outside [t_0, t_n-1]. Unlike EventPacing it never
// contributes a discontinuity time: the level is sampled afresh at every
// RHS evaluation rather than held piecewise-constant between events.
type FixedPacing struct {
	t     []float64
	y     []float64
	level float64
	hint  int // index of the last interval located, for monotone-query speedup
}

// Populate ingests the series, validating strict monotonicity of t. Fails
// with INVALID_PACING otherwise, or if the two slices' lengths disagree or
// fewer than two samples are given.
func (p *FixedPacing) Populate(t, y []float64) error {
	if len(t) != len(y) {
		return cellerr.New(cellerr.InvalidPacing, "FixedPacing.Populate: len(t)=%d != len(y)=%d", len(t), len(y))
	}
	if len(t) < 2 {
		return cellerr.New(cellerr.InvalidPacing, "FixedPacing.Populate: need at least 2 samples, got %d", len(t))
	}
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return cellerr.New(cellerr.InvalidPacing, "FixedPacing.Populate: t not strictly increasing at index %d (%g <= %g)", i, t[i], t[i-1])
		}
	}
	p.t = append([]float64(nil), t...)
	p.y = append([]float64(nil), y...)
	p.hint = 0
	p.level = 0
	return nil
}

// Advance sets the current level to the series' value at t, interpolated
// linearly between the bracketing samples or clamped to the nearest
// endpoint when t falls outside [t_0, t_n-1]
func (p *FixedPacing) Advance(t float64) {
	p.level = p.interpolate(t)
}

// Level returns the level set by the last Advance call
func (p *FixedPacing) Level() float64 { return p.level }

// NextTime never identifies a discontinuity: fixed pacing varies
// continuously and must be resampled at every RHS evaluation rather than
// held constant between caller-chosen steps
func (p *FixedPacing) NextTime() (float64, bool) { return 0, false }

func (p *FixedPacing) interpolate(t float64) float64 {
	n := len(p.t)
	if t <= p.t[0] {
		return p.y[0]
	}
	if t >= p.t[n-1] {
		return p.y[n-1]
	}
	i := p.locate(t)
	t0, t1 := p.t[i], p.t[i+1]
	y0, y1 := p.y[i], p.y[i+1]
	frac := (t - t0) / (t1 - t0)
	return y0 + frac*(y1-y0)
}

// locate returns i such that t0 <= t < t1 for the interval [t_i, t_i+1),
// starting the search from the hint left by the previous call (pacing
// queries are overwhelmingly made with non-decreasing t, per System's
// contract, so a linear walk from the hint is typically O(1))
func (p *FixedPacing) locate(t float64) int {
	i := p.hint
	if i < 0 || i >= len(p.t)-1 {
		i = 0
	}
	for i > 0 && p.t[i] > t {
		i--
	}
	for i < len(p.t)-2 && p.t[i+1] <= t {
		i++
	}
	p.hint = i
	return i
}
