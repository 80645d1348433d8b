// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package solverx wraps gosl/ode.Solver ("Radau5", the stiff implicit
// method the teacher reaches for in mdl/retention and ana/colpresfluid)
// behind a one-step Advance/dense-output/root-finding façade, the shape
// simrun's time loop needs that a bare Solve(y,t0,t1,...) horizon call
// cannot provide.
package solverx

import (
	"github.com/cpmech/cellsim/cellerr"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/ode"
)

// Func evaluates dy/dt at (t, y), writing into dydt; y and dydt alias
// neither Facade's internal buffers nor each other's storage across calls
type Func func(t float64, y, dydt []float64) error

// RootFunc is a scalar function of (t, y) whose zero crossing Facade.FindRoot locates
type RootFunc func(t float64, y []float64) float64

// Facade is a single stiff-integrator instance advancing one ODE system,
// with optional forward sensitivities carried as an augmented block
type Facade struct {
	ndim       int
	fcn        Func
	sol        ode.Solver
	atol, rtol float64
	maxStep    float64 // 0 = unbounded
	minStep    float64 // 0 = unbounded
	warnings   chan string
	y          []float64
	t          float64
	nsteps     int
	nevals     int

	sensN int
	dfdp  DfDp
	pbar  []float64
}

// New allocates a façade for an ndim-dimensional system driven by fcn.
// Default tolerances match spec's defaults: 1e-6 absolute, 1e-4 relative.
func New(ndim int, fcn Func) *Facade {
	return &Facade{
		ndim:     ndim,
		fcn:      fcn,
		atol:     1e-6,
		rtol:     1e-4,
		warnings: make(chan string, 16),
	}
}

// SetTolerances overrides the default absolute/relative tolerances
func (f *Facade) SetTolerances(atol, rtol float64) { f.atol, f.rtol = atol, rtol }

// SetStepBounds sets the max/min step (0 disables a bound). The bounds clamp
// only the initial step size Advance hands to Solve; the internal steps
// Radau5 takes after that are not bounded by them.
func (f *Facade) SetStepBounds(maxStep, minStep float64) { f.maxStep, f.minStep = maxStep, minStep }

// Warnings exposes the channel solver warnings (e.g. step-size clamped,
// convergence struggled) are pushed onto; never blocks the solver itself
func (f *Facade) Warnings() <-chan string { return f.warnings }

func (f *Facade) warn(format string, args ...interface{}) {
	msg := io.Sf(format, args...)
	select {
	case f.warnings <- msg:
	default:
	}
}

// Init (re)starts the integrator at (t0, y0), discarding any step history.
// Called once before the first Advance, and again after an external state
// mutation (a dense-output rewind, a root crossing) to reinitialize the
// solver's internal history around the corrected state.
func (f *Facade) Init(t0 float64, y0 []float64) error {
	if len(y0) != f.ndim {
		return cellerr.New(cellerr.ValueError, "solverx.Init: expected %d states, got %d", f.ndim, len(y0))
	}
	f.t = t0
	f.y = make([]float64, f.augDim())
	copy(f.y, y0)
	f.reinitSolver()
	return nil
}

// reinitSolver (re)registers the augmented RHS with gosl/ode.Solver around
// the façade's current t/y, discarding step history; shared by Init and RewindFull
func (f *Facade) reinitSolver() {
	odeFcn := func(fv []float64, dx, x float64, y []float64, args ...interface{}) error {
		f.nevals++
		if err := f.augFcn(x, y, fv); err != nil {
			return cellerr.Wrap(cellerr.SolverError, err, "solverx: RHS evaluation failed at t=%g", x)
		}
		return nil
	}
	f.sol.Init("Radau5", f.augDim(), odeFcn, nil, nil, nil, true)
	f.sol.SetTol(f.atol, f.rtol)
	f.sol.Distr = false // avoid gosl/ode's MPI-distributed path; this engine never spans processes
}

// SetSY seeds the sensitivity block of the current state (rows j =
// ∂y/∂p_j), e.g. the identity columns for initial-state independents.
// Must be called after Init and before the first Advance.
func (f *Facade) SetSY(rows [][]float64) error {
	if len(rows) != f.sensN {
		return cellerr.New(cellerr.ValueError, "solverx.SetSY: expected %d rows, got %d", f.sensN, len(rows))
	}
	for j, row := range rows {
		if len(row) != f.ndim {
			return cellerr.New(cellerr.ValueError, "solverx.SetSY: row %d: expected %d entries, got %d", j, f.ndim, len(row))
		}
		copy(f.y[f.ndim+j*f.ndim:f.ndim+(j+1)*f.ndim], row)
	}
	return nil
}

// T returns the time Advance last reached
func (f *Facade) T() float64 { return f.t }

// Y returns the base state Advance last reached (excluding any
// sensitivity block); callers must not retain the slice across a further
// Advance/Init/Rewind call
func (f *Facade) Y() []float64 { return f.y[:f.ndim] }

// FullY returns the complete augmented state (base followed by every
// sensitivity block), the representation DenseAt/Rewind operate on
func (f *Facade) FullY() []float64 { return f.y }

// NumSteps returns the number of completed Advance calls
func (f *Facade) NumSteps() int { return f.nsteps }

// NumEvaluations returns the cumulative number of RHS evaluations
func (f *Facade) NumEvaluations() int { return f.nevals }

// Advance integrates from the current (t, y) to tNext with one adaptive
// Solve call (Radau5 may take several internal steps) and updates T()/Y() in
// place. stepHint is the initial step size passed to Solve; 0 passes the
// whole interval tNext - t.
func (f *Facade) Advance(tNext float64, stepHint float64) error {
	step := stepHint
	if step <= 0 {
		step = tNext - f.t
	}
	if f.maxStep > 0 && step > f.maxStep {
		step = f.maxStep
		f.warn("requested step clamped to max_step=%g", f.maxStep)
	}
	if f.minStep > 0 && step < f.minStep && tNext > f.t {
		step = f.minStep
	}
	err := f.sol.Solve(f.y, f.t, tNext, step, false)
	if err != nil {
		return cellerr.Wrap(cellerr.SolverError, err, "solverx.Advance: step from t=%g to t=%g failed", f.t, tNext)
	}
	f.t = tNext
	f.nsteps++
	return nil
}

// DenseAt returns the full augmented state (see FullY) at tQuery inside the
// step just advanced from (tFrom, yFrom), without disturbing Facade's own
// (t, y) cursor. gosl/ode's Radau5 does not expose its internal
// dense-output polynomial to callers (see the teacher's mdl/retention and
// ana/colpresfluid call sites, which only ever invoke the horizon form of
// Solve), so dense output here is a fresh short re-solve of [tFrom,
// tQuery] — adequate for the typically sub-step interpolated-logging
// intervals this is used for. yFrom must have len(FullY()).
func (f *Facade) DenseAt(tQuery, tFrom float64, yFrom []float64) ([]float64, error) {
	savedT, savedY := f.t, f.y
	defer func() { f.t, f.y = savedT, savedY }()
	f.t, f.y = tFrom, append([]float64(nil), yFrom...)
	if tQuery == tFrom {
		return append([]float64(nil), yFrom...), nil
	}
	if err := f.Advance(tQuery, tQuery-tFrom); err != nil {
		return nil, err
	}
	return append([]float64(nil), f.y...), nil
}

// DfDp evaluates ∂f/∂p_j at (t, y) for every sensitivity independent j,
// writing row j of out (length ndim) — the "internal-difference RHS" half
// of forward sensitivity the façade augments the base system with
type DfDp func(t float64, y []float64, out [][]float64) error

// EnableSensitivities augments the system with n additional ndim-sized
// blocks obeying the variational equation dS_j/dt = J(t,y)*S_j + df/dp_j,
// with J(t,y)*S_j obtained as a central-difference directional derivative
// of fcn — the same directional-derivative technique
// cellm.EvaluateSensitivityOutputs uses for intermediary sensitivities,
// applied here to propagate state sensitivities themselves. pbar[j] =
// max(|p_j|, 1) scales the finite-difference step per spec's
// internal-difference convention.
//
// augFcn below hand-rolls this difference with a fixed h rather than calling
// gosl/num.DerivCen: augFcn is the augmented RHS itself, invoked by
// gosl/ode.Solver on every Newton/stage evaluation of every solver step —
// thousands of times per run — where DerivCen's per-call closure and slice
// allocation would dominate the cost of what is otherwise two extra fcn
// calls. cellm.EvaluateSensitivityOutputs, by contrast, runs only once per
// log point and uses gosl/num.DerivCen directly.
func (f *Facade) EnableSensitivities(n int, dfdp DfDp, pbar []float64) {
	f.sensN = n
	f.dfdp = dfdp
	f.pbar = append([]float64(nil), pbar...)
}

// SY returns the sensitivity block of the current state, reshaped as n
// rows of ndim entries (row j = ∂y/∂p_j); nil if sensitivities are disabled
func (f *Facade) SY() [][]float64 {
	if f.sensN == 0 {
		return nil
	}
	out := make([][]float64, f.sensN)
	for j := 0; j < f.sensN; j++ {
		out[j] = f.y[f.ndim+j*f.ndim : f.ndim+(j+1)*f.ndim]
	}
	return out
}

// augDim returns the total augmented dimension (base + sensitivity blocks)
func (f *Facade) augDim() int {
	if f.sensN == 0 {
		return f.ndim
	}
	return f.ndim * (1 + f.sensN)
}

// augFcn wraps the base RHS with the variational block, active whenever
// EnableSensitivities has been called before Init
func (f *Facade) augFcn(t float64, y, dydt []float64) error {
	base := y[:f.ndim]
	if err := f.fcn(t, base, dydt[:f.ndim]); err != nil {
		return err
	}
	if f.sensN == 0 {
		return nil
	}
	dfdpRows := make([][]float64, f.sensN)
	for j := range dfdpRows {
		dfdpRows[j] = make([]float64, f.ndim)
	}
	if err := f.dfdp(t, base, dfdpRows); err != nil {
		return err
	}
	yPlus := make([]float64, f.ndim)
	yMinus := make([]float64, f.ndim)
	fPlus := make([]float64, f.ndim)
	fMinus := make([]float64, f.ndim)
	for j := 0; j < f.sensN; j++ {
		sj := y[f.ndim+j*f.ndim : f.ndim+(j+1)*f.ndim]
		h := 1e-6
		if j < len(f.pbar) && f.pbar[j] > 0 {
			h = 1e-6 * f.pbar[j]
		}
		for i := 0; i < f.ndim; i++ {
			yPlus[i] = base[i] + h*sj[i]
			yMinus[i] = base[i] - h*sj[i]
		}
		if err := f.fcn(t, yPlus, fPlus); err != nil {
			return err
		}
		if err := f.fcn(t, yMinus, fMinus); err != nil {
			return err
		}
		out := dydt[f.ndim+j*f.ndim : f.ndim+(j+1)*f.ndim]
		for i := 0; i < f.ndim; i++ {
			out[i] = (fPlus[i]-fMinus[i])/(2*h) + dfdpRows[j][i]
		}
	}
	return nil
}

// Rewind overwrites the current (t, y) with a base-only state (any
// sensitivity block resets to zero) and reinitializes the integrator
// around it — used by non-sensitivity runs after a dense-output
// interpolation or a root crossing forces the state back inside the step
// just taken.
func (f *Facade) Rewind(t float64, y []float64) error {
	return f.Init(t, y)
}

// RewindFull is Rewind's sensitivity-aware counterpart: y must have
// len(FullY()) and its sensitivity block is preserved rather than zeroed.
func (f *Facade) RewindFull(t float64, y []float64) error {
	if len(y) != f.augDim() {
		return cellerr.New(cellerr.ValueError, "solverx.RewindFull: expected %d entries, got %d", f.augDim(), len(y))
	}
	f.t = t
	f.y = append([]float64(nil), y...)
	f.reinitSolver()
	return nil
}

// FindRoot bisects [ta,tb] for g(t,y)=0, re-solving the short sub-interval
// at each bisection step to obtain y at the trial time. ga, gb are g
// evaluated at the bracket endpoints and must have opposite signs; ya, yb
// must have len(FullY()). Returns the root time and the full augmented
// state there, without disturbing Facade's own (t, y) cursor.
func (f *Facade) FindRoot(ta float64, ya []float64, ga float64, tb float64, yb []float64, gb float64, g RootFunc, tol float64, maxIter int) (tRoot float64, yRoot []float64, err error) {
	if (ga > 0) == (gb > 0) {
		return 0, nil, cellerr.New(cellerr.ValueError, "solverx.FindRoot: bracket endpoints do not straddle a root (ga=%g, gb=%g)", ga, gb)
	}
	savedT, savedY := f.t, f.y
	defer func() { f.t, f.y = savedT, savedY }()

	lt, ly, lg := ta, append([]float64(nil), ya...), ga
	rt := tb
	for i := 0; i < maxIter; i++ {
		if rt-lt <= tol {
			break
		}
		mt := 0.5 * (lt + rt)
		f.t, f.y = lt, append([]float64(nil), ly...)
		if err := f.Advance(mt, mt-lt); err != nil {
			return 0, nil, err
		}
		mg := g(mt, f.y[:f.ndim])
		if (mg > 0) == (lg > 0) {
			lt, ly, lg = mt, append([]float64(nil), f.y...), mg
		} else {
			rt = mt
		}
	}
	return lt, ly, nil
}
