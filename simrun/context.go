// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simrun

import (
	"math"

	"github.com/cpmech/cellsim/cellerr"
	"github.com/cpmech/cellsim/cellm"
	"github.com/cpmech/cellsim/logx"
	"github.com/cpmech/cellsim/pacing"
	"github.com/cpmech/cellsim/solverx"
)

// maxZeroSteps is the number of consecutive zero-length steps tolerated
// before a run fails with ArithmeticError (spec §4.5 step 3)
const maxZeroSteps = 500

// yieldEvery is the period of Context.iterSinceYield, which counts completed
// iterations; Step returns to the host after every iteration, so this
// counter does not gate any return
const yieldEvery = 100

// tnextTolerance is the floating-point slack used when deciding whether t
// has effectively reached tmax or a pacing discontinuity (spec §4.5 step 9)
const tnextTolerance = 1e-9

// active is the process-wide singleton guard (spec §5: "a running
// simulation is a process-wide singleton")
var active *Context

// Context is the simulation driver; one value per run, reused across
// Init/Step*/Clean cycles the way the teacher's FEM value is reused across stages
type Context struct {
	model     *cellm.Model
	pace      []pacing.System
	paceVals  []float64
	facade    *solverx.Facade
	algebraic bool

	independents []cellm.Independent
	hasSens      bool

	tmin, tmax float64
	t, tlast   float64

	mode        LoggingMode
	logInterval float64
	logTimes    []float64
	logTimesIdx int
	tnextLog    float64
	logNames    []string // descriptor keys (in map iteration order), for dynamic-mode classification

	loggingBound bool
	sensSink     logx.MatrixSink

	rfIndex     int
	rfThreshold float64
	rfSink      logx.RootSink

	benchmarker Benchmarker
	logRealtime bool
	realtime    float64

	boundOut *BoundOut

	tnext          float64
	zeroStepCount  int
	iterSinceYield int

	outState  []float64 // caller's State buffer, written back at finalization
	outSState []float64 // caller's SState buffer, written back at finalization

	initialized bool
	nsteps      int
}

// Init arms a run around model, which the caller must have already
// allocated (e.g. via cellm.Allocate). Fails if another run is active.
func (c *Context) Init(model *cellm.Model, args InitArgs) error {
	if active != nil {
		return cellerr.New(cellerr.InvalidModel, "simrun.Init: another run is already active")
	}
	if model == nil {
		return cellerr.New(cellerr.InvalidModel, "simrun.Init: model is nil")
	}
	*c = Context{model: model, rfIndex: -1}

	c.tmin, c.tmax = args.TMin, args.TMax
	c.t, c.tlast = args.TMin, args.TMin
	c.boundOut = args.BoundOut
	c.benchmarker = args.Benchmarker
	c.logRealtime = args.LogRealtime
	c.outState = args.State
	c.outSState = args.SState

	// step 2: logging mode
	switch {
	case args.LogInterval <= 0 && len(args.LogTimes) == 0:
		c.mode = Dynamic
	case args.LogInterval > 0:
		c.mode = Periodic
		c.logInterval = args.LogInterval
		if c.tmax+c.logInterval == c.tmax {
			return cellerr.New(cellerr.OverflowError, "simrun.Init: log_interval=%g is not representable against tmax=%g", c.logInterval, c.tmax)
		}
	default:
		c.mode = PointList
		for i := 1; i < len(args.LogTimes); i++ {
			if args.LogTimes[i] < args.LogTimes[i-1] {
				return cellerr.New(cellerr.ValueError, "simrun.Init: log_times must be non-decreasing (index %d: %g < %g)", i, args.LogTimes[i], args.LogTimes[i-1])
			}
		}
		c.logTimes = append([]float64(nil), args.LogTimes...)
	}
	c.tnextLog = c.tmin
	if c.mode == PointList && len(c.logTimes) > 0 {
		c.tnextLog = c.logTimes[0]
	}

	// step 3: populate literals, parameters, states, state sensitivities
	if len(args.Literals) > 0 {
		if err := model.SetLiterals(args.Literals); err != nil {
			return err
		}
	}
	if len(args.Parameters) > 0 {
		if err := model.SetParameters(args.Parameters); err != nil {
			return err
		}
	}
	if len(args.State) > 0 {
		if err := model.SetStates(args.State); err != nil {
			return err
		}
	}
	if len(args.Independents) > 0 {
		c.independents = append([]cellm.Independent(nil), args.Independents...)
		c.hasSens = true
		model.ConfigureSensitivities(c.independents)
		n := model.NStates()
		for i := range c.independents {
			if (i+1)*n > len(args.SState) {
				return cellerr.New(cellerr.ValueError, "simrun.Init: s_state too short for %d independents x %d states", len(c.independents), n)
			}
			if err := model.SetStateSensitivities(i, args.SState[i*n:(i+1)*n]); err != nil {
				return err
			}
		}
		c.sensSink = args.SensSink
	}

	// step 4: construct pacing systems
	c.pace = make([]pacing.System, len(args.Protocols))
	for i, p := range args.Protocols {
		switch p.Kind {
		case EventProtocol:
			var ep pacing.EventPacing
			if err := ep.Populate(p.Events); err != nil {
				return err
			}
			c.pace[i] = &ep
		case FixedProtocol:
			var fp pacing.FixedPacing
			if err := fp.Populate(p.FixedT, p.FixedY); err != nil {
				return err
			}
			c.pace[i] = &fp
		default:
			return cellerr.New(cellerr.InvalidPacing, "simrun.Init: protocol %d: unknown kind", i)
		}
	}
	model.SetupPacing(len(c.pace))
	c.paceVals = make([]float64, len(c.pace))
	for i, sys := range c.pace {
		sys.Advance(c.tmin)
		c.paceVals[i] = sys.Level()
	}
	if err := model.SetBound(c.tmin, c.paceVals, c.realtime, 0); err != nil {
		return err
	}
	c.tnext = c.computeTNext()

	// step 5: solver; algebraic when the model has no integrated states
	c.algebraic = model.NStates() == 0
	c.rfIndex = args.RFIndex
	c.rfThreshold = args.RFThreshold
	c.rfSink = args.RFSink
	if !c.algebraic {
		c.facade = solverx.New(model.NStates(), c.rhsForSolver())
		c.facade.SetStepBounds(0, 0)
		if c.hasSens {
			pbar := make([]float64, len(c.independents))
			for i, ind := range c.independents {
				v := 1.0
				if ind.Kind == cellm.IndParameter {
					v = model.Parameters[ind.Slot].V
				} else {
					v = model.States[ind.Slot]
				}
				pbar[i] = math.Max(math.Abs(v), 1)
			}
			c.facade.EnableSensitivities(len(c.independents), c.dfdpForSolver(), pbar)
		}
		if err := c.facade.Init(c.tmin, model.States); err != nil {
			return err
		}
		if c.hasSens {
			n := model.NStates()
			rows := make([][]float64, len(c.independents))
			for i := range c.independents {
				rows[i] = append([]float64(nil), model.SStates[i*n:(i+1)*n]...)
			}
			if err := c.facade.SetSY(rows); err != nil {
				return err
			}
		}
	}

	// step 6: bind logging sinks
	if len(args.LogDescriptor) > 0 {
		if err := model.InitializeLogging(args.LogDescriptor); err != nil {
			return err
		}
		c.logNames = make([]string, 0, len(args.LogDescriptor))
		for name := range args.LogDescriptor {
			c.logNames = append(c.logNames, name)
		}
		c.loggingBound = true
	}

	// step 7: dynamic mode logs the first point immediately; whether the
	// sinks already hold entries is not checked
	if c.mode == Dynamic {
		if err := c.evaluateForLogging(); err != nil {
			return err
		}
		if err := c.logNow(); err != nil {
			return err
		}
	}

	c.initialized = true
	active = c
	return nil
}

// computeTNext returns min(tmax, min over pacing systems of next discontinuity)
func (c *Context) computeTNext() float64 {
	best := c.tmax
	for _, sys := range c.pace {
		if cand, ok := sys.NextTime(); ok && cand < best {
			best = cand
		}
	}
	return best
}

// paceAt advances every pacing system to t and returns the resulting level
// vector; used both by the RHS callback (fixed pacing varies continuously)
// and by interpolated-logging queries at times inside [tlast, t]
func (c *Context) paceAt(t float64) []float64 {
	vals := make([]float64, len(c.pace))
	for i, sys := range c.pace {
		sys.Advance(t)
		vals[i] = sys.Level()
	}
	return vals
}

// rhsForSolver adapts the Model to solverx.Func
func (c *Context) rhsForSolver() solverx.Func {
	return func(t float64, y, dydt []float64) error {
		if err := c.model.SetStates(y); err != nil {
			return err
		}
		pv := c.paceAt(t)
		if err := c.model.SetBound(t, pv, c.realtime, c.model.Bound.Evaluations+1); err != nil {
			return err
		}
		if err := c.model.EvaluateDerivatives(); err != nil {
			return err
		}
		copy(dydt, c.model.Derivatives)
		return nil
	}
}

// dfdpForSolver builds the forward-sensitivity source term ∂f/∂p_j: zero
// for initial-state independents (their sensitivity carries no explicit
// source, only the propagated J*S term), and a central difference in
// parameter space for parameter independents, holding y fixed. Hand-rolled
// with a fixed h rather than gosl/num.DerivCen for the same reason as
// solverx.Facade's augFcn: this closure is the DfDp callback solverx invokes
// on every augmented-RHS evaluation inside the solver's inner loop, not just
// once per log point, so DerivCen's per-call overhead is avoided here by
// design — see cellm.EvaluateSensitivityOutputs for the non-inner-loop site
// that does use gosl/num.DerivCen directly.
func (c *Context) dfdpForSolver() solverx.DfDp {
	return func(t float64, y []float64, out [][]float64) error {
		base := make([]float64, len(c.model.Parameters))
		for i, p := range c.model.Parameters {
			base[i] = p.V
		}
		for j, ind := range c.independents {
			if ind.Kind == cellm.IndState {
				for i := range out[j] {
					out[j][i] = 0
				}
				continue
			}
			h := 1e-6 * math.Max(math.Abs(base[ind.Slot]), 1)
			values := append([]float64(nil), base...)

			values[ind.Slot] = base[ind.Slot] + h
			if err := c.model.SetParameters(values); err != nil {
				return err
			}
			if err := c.model.SetStates(y); err != nil {
				return err
			}
			if err := c.model.EvaluateDerivatives(); err != nil {
				return err
			}
			dPlus := append([]float64(nil), c.model.Derivatives...)

			values[ind.Slot] = base[ind.Slot] - h
			if err := c.model.SetParameters(values); err != nil {
				return err
			}
			if err := c.model.SetStates(y); err != nil {
				return err
			}
			if err := c.model.EvaluateDerivatives(); err != nil {
				return err
			}
			dMinus := c.model.Derivatives

			for i := range out[j] {
				out[j][i] = (dPlus[i] - dMinus[i]) / (2 * h)
			}
		}
		if err := c.model.SetParameters(base); err != nil {
			return err
		}
		return nil
	}
}

// needsFullEval reports whether any bound log name requires a fresh RHS
// evaluation before reading (a derivative, intermediary, or sensitivity
// quantity), as opposed to a plain state or bound input that is already
// current (spec §4.5 step 7)
func (c *Context) needsFullEval() bool {
	for _, name := range c.logNames {
		switch c.model.Classify(name) {
		case cellm.KindDerivative, cellm.KindIntermediary:
			return true
		}
	}
	return c.hasSens
}

// evaluateForLogging brings the model's derivatives (and, if configured,
// sensitivity outputs) up to date with the currently set states/bound
func (c *Context) evaluateForLogging() error {
	if err := c.model.EvaluateDerivatives(); err != nil {
		return err
	}
	if c.hasSens {
		if err := c.model.EvaluateSensitivityOutputs(); err != nil {
			return err
		}
	}
	return nil
}

// logNow appends the current snapshot to every bound sink; a no-op when no
// log descriptor was supplied at Init (a caller driving the loop purely for
// its final state, as in a sensitivity-free parameter sweep)
func (c *Context) logNow() error {
	if !c.loggingBound {
		return nil
	}
	if err := c.model.Log(); err != nil {
		return err
	}
	if c.hasSens && c.sensSink != nil {
		if err := c.model.LogSensitivityMatrix(c.sensSink); err != nil {
			return err
		}
	}
	return nil
}

// Finalize writes state/s_state/bound_out back into the caller's buffers.
// Safe to call only once a run has reached completion.
func (c *Context) Finalize() {
	copy(c.outState, c.model.States)
	if c.hasSens {
		copy(c.outSState, c.model.SStates)
	}
	if c.boundOut != nil {
		c.boundOut.T = c.t
		c.boundOut.Realtime = c.realtime
		c.boundOut.Evaluations = c.model.Bound.Evaluations
		c.boundOut.Pace = append([]float64(nil), c.model.Bound.Pace...)
	}
}

// Clean tears down the run, releasing the singleton guard. Idempotent and
// safe on a partially initialized context (spec §5: "safe on any partially
// initialized context").
func (c *Context) Clean() error {
	if active == c {
		active = nil
	}
	if c.model != nil {
		c.model.DeinitializeLogging()
	}
	c.initialized = false
	return nil
}

// NumberOfSteps returns the number of completed solver advances since Init
func (c *Context) NumberOfSteps() int {
	if c.facade != nil {
		return c.facade.NumSteps()
	}
	return c.nsteps
}

// NumberOfEvaluations returns the cumulative RHS evaluation count since Init
func (c *Context) NumberOfEvaluations() int {
	if c.facade != nil {
		return c.facade.NumEvaluations()
	}
	return 0
}
