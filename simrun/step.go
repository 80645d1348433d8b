// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simrun

import (
	"math"

	"github.com/cpmech/cellsim/cellerr"
	"github.com/cpmech/cellsim/cellm"
	"github.com/cpmech/gosl/io"
)

// Step advances the simulation by one solver step (or one algebraic jump),
// servicing interpolated/dynamic logging and root finding along the way,
// per the ten-step sequence of the driver's stepping phase. It returns the
// current simulation time and whether the run has reached tmax; the host
// calls Step repeatedly until done is true or an error occurs.
func (c *Context) Step() (t float64, done bool, err error) {
	if !c.initialized {
		return 0, false, cellerr.New(cellerr.InvalidModel, "simrun.Step: context is not initialized")
	}

	// step 1: save ylast/tlast
	tlast := c.t
	ylast := append([]float64(nil), c.model.States...)
	var fullYLast []float64
	if c.facade != nil {
		fullYLast = append([]float64(nil), c.facade.FullY()...)
	}

	// step 2: advance
	var newT float64
	if c.algebraic {
		newT = math.Min(c.tnext, c.tmax)
	} else {
		if err := c.facade.Advance(c.tnext, 0); err != nil {
			return c.t, false, cellerr.Wrap(cellerr.SolverError, err, "simrun.Step: solver advance failed")
		}
		for w := range drain(c.facade.Warnings()) {
			io.Pf("simrun: solver warning: %s\n", w) // solver warnings surface as host warnings, never abort (spec §7)
		}
		newT = c.facade.T()
	}

	// step 3: zero-length-step guard
	if newT == tlast {
		c.zeroStepCount++
		if c.zeroStepCount >= maxZeroSteps {
			return c.t, false, cellerr.New(cellerr.ArithmeticError, "simrun.Step: %d consecutive zero-length steps", maxZeroSteps)
		}
	} else {
		c.zeroStepCount = 0
	}

	// step 4: dense-output rewind at an event boundary, or root detection
	reinit := false
	if newT > c.tnext+tnextTolerance {
		if !c.algebraic {
			yDense, derr := c.facade.DenseAt(c.tnext, tlast, fullYLast)
			if derr != nil {
				return c.t, false, cellerr.Wrap(cellerr.SolverError, derr, "simrun.Step: dense output at %g failed", c.tnext)
			}
			if err := c.model.SetStates(yDense[:c.model.NStates()]); err != nil {
				return c.t, false, err
			}
			if c.hasSens {
				n := c.model.NStates()
				for j := range c.independents {
					lo := c.model.NStates() + j*n
					if err := c.model.SetStateSensitivities(j, yDense[lo:lo+n]); err != nil {
						return c.t, false, err
					}
				}
			}
		}
		newT = c.tnext
		reinit = true
	} else if c.rfSink != nil && c.rfIndex >= 0 && !c.algebraic {
		ga := ylast[c.rfIndex] - c.rfThreshold
		gb := c.facade.Y()[c.rfIndex] - c.rfThreshold
		if ga != 0 && (ga < 0) != (gb < 0) {
			g := func(qt float64, y []float64) float64 { return y[c.rfIndex] - c.rfThreshold }
			tRoot, _, rerr := c.facade.FindRoot(tlast, fullYLast, ga, newT, c.facade.FullY(), gb, g, 1e-9, 60)
			if rerr != nil {
				return c.t, false, cellerr.Wrap(cellerr.SolverError, rerr, "simrun.Step: root finding failed")
			}
			direction := -1
			if gb > ga {
				direction = 1
			}
			if err := c.rfSink.AppendRoot(tRoot, direction); err != nil {
				return c.t, false, cellerr.Wrap(cellerr.LogAppendFailed, err, "simrun.Step: root sink failed")
			}
		}
	}

	// step 5: interpolated logging (periodic/point-list only; half-open interval)
	if c.mode != Dynamic {
		for c.tnextLog < newT {
			if c.mode == PointList && c.logTimesIdx >= len(c.logTimes) {
				break
			}
			var z []float64
			if !c.algebraic {
				z, err = c.facade.DenseAt(c.tnextLog, tlast, fullYLast)
				if err != nil {
					return c.t, false, cellerr.Wrap(cellerr.SolverError, err, "simrun.Step: dense output at %g failed", c.tnextLog)
				}
				if err := c.model.SetStates(z[:c.model.NStates()]); err != nil {
					return c.t, false, err
				}
				if c.hasSens {
					n := c.model.NStates()
					for j := range c.independents {
						lo := c.model.NStates() + j*n
						if err := c.model.SetStateSensitivities(j, z[lo:lo+n]); err != nil {
							return c.t, false, err
						}
					}
				}
			}
			pv := c.paceAt(c.tnextLog)
			if err := c.model.SetBound(c.tnextLog, pv, c.realtime, c.model.Bound.Evaluations+1); err != nil {
				return c.t, false, err
			}
			if err := c.evaluateForLogging(); err != nil {
				return c.t, false, err
			}
			if err := c.logNow(); err != nil {
				return c.t, false, err
			}
			switch c.mode {
			case Periodic:
				c.tnextLog += c.logInterval
			case PointList:
				c.logTimesIdx++
				if c.logTimesIdx < len(c.logTimes) {
					c.tnextLog = c.logTimes[c.logTimesIdx]
				} else {
					c.tnextLog = c.tmax + 1 // exhausted: never satisfies the loop condition again
				}
			}
		}
	}

	// step 6: advance pacing systems to t, recompute tnext
	pv := c.paceAt(newT)
	evals := c.model.Bound.Evaluations + 1
	if !c.algebraic {
		if err := c.model.SetStates(c.facade.Y()); err != nil {
			return c.t, false, err
		}
		if c.hasSens {
			n := c.model.NStates()
			full := c.facade.FullY()
			for j := range c.independents {
				lo := n + j*n
				if err := c.model.SetStateSensitivities(j, full[lo:lo+n]); err != nil {
					return c.t, false, err
				}
			}
		}
	}
	if err := c.model.SetBound(newT, pv, c.realtime, evals); err != nil {
		return c.t, false, err
	}
	c.tnext = c.computeTNext()

	// step 7: dynamic logging
	if c.mode == Dynamic {
		if c.needsFullEval() {
			if err := c.evaluateForLogging(); err != nil {
				return c.t, false, err
			}
		}
		if err := c.logNow(); err != nil {
			return c.t, false, err
		}
	}

	// step 8: reinit the integrator if dense output disturbed its continuity
	if reinit && !c.algebraic {
		if c.hasSens {
			if err := c.facade.RewindFull(newT, c.facade.FullY()); err != nil {
				return c.t, false, err
			}
		} else {
			if err := c.facade.Rewind(newT, c.model.States); err != nil {
				return c.t, false, err
			}
		}
	}

	c.tlast = tlast
	c.t = newT
	if c.benchmarker != nil && c.logRealtime {
		c.realtime = c.benchmarker.Elapsed()
	}
	c.nsteps++

	// step 9: termination check
	if math.Abs(c.tmax-c.t) <= tnextTolerance {
		c.t = c.tmax
	}
	if c.t >= c.tmax {
		c.Finalize()
		return c.t, true, nil
	}

	// step 10: count completed iterations modulo yieldEvery; Step returns to
	// the host after every iteration regardless of this counter
	c.iterSinceYield++
	if c.iterSinceYield >= yieldEvery {
		c.iterSinceYield = 0
	}
	return c.t, false, nil
}

// drain turns a receive-only warning channel into a range-able channel
// that stops as soon as it would block, for a single non-blocking sweep
func drain(ch <-chan string) <-chan string {
	out := make(chan string, cap(ch))
	for {
		select {
		case w, ok := <-ch:
			if !ok {
				close(out)
				return out
			}
			out <- w
		default:
			close(out)
			return out
		}
	}
}

// EvalDerivatives is the one-shot RHS entry point of spec §6: evaluate a
// scratch model's derivatives at an externally supplied (t, pace, state,
// literals, parameters) without disturbing any active run, copying the
// result into outDeriv.
func EvalDerivatives(model *cellm.Model, t float64, pace, state, outDeriv, literals, parameters []float64) error {
	if len(literals) > 0 {
		if err := model.SetLiterals(literals); err != nil {
			return err
		}
	}
	if len(parameters) > 0 {
		if err := model.SetParameters(parameters); err != nil {
			return err
		}
	}
	if model.Bound.Pace == nil {
		model.SetupPacing(len(pace))
	}
	if err := model.SetStates(state); err != nil {
		return err
	}
	if err := model.SetBound(t, pace, 0, 0); err != nil {
		return err
	}
	if err := model.EvaluateDerivatives(); err != nil {
		return err
	}
	copy(outDeriv, model.Derivatives)
	return nil
}
