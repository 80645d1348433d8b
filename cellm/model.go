// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cellm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/num"

	"github.com/cpmech/cellsim/cellerr"
	"github.com/cpmech/cellsim/logx"
)

// RHS is what a concrete cell model must supply; Model (below) owns the
// bookkeeping (storage, caching, logging, sensitivities) the same way
// SmallElasticity owns bookkeeping for LinElast/etc. in the teacher's
// mdl/solid package — RHS plays the role LinElast plays there.
type RHS interface {
	// Names returns the fully qualified name table for states/intermediaries
	Names() Names

	// NIntermediary returns the number of intermediary variables this model computes
	NIntermediary() int

	// DefaultLiterals/DefaultParameters/DefaultStates return the compiled-in defaults
	DefaultLiterals() dbf.Params
	DefaultParameters() dbf.Params
	DefaultStates() []float64

	// DeriveLiterals recomputes literal_derived from literals alone
	DeriveLiterals(literals dbf.Params) []float64

	// DeriveParameters recomputes parameter_derived from parameters and the
	// (already current) literal_derived
	DeriveParameters(parameters dbf.Params, literalDerived []float64) []float64

	// Evaluate computes intermediary and derivatives from states, the
	// derived constants, and the bound inputs; it must be side-effect free
	Evaluate(states, literalDerived, parameterDerived []float64, bound *Bound, intermediary, derivatives []float64)
}

// Model is a single cell instance: owns all its storage (Vars), is driven
// by a compiled-in RHS, and supports the logging operations of spec §4.1.
// Lifecycle: Create -> (configure inputs -> evaluate*)* -> (implicit GC).
type Model struct {
	Vars
	rhs     RHS
	names   Names
	binds   logx.Bindings
	logging bool
}

// Create allocates a Model around rhs, populating default literal/parameter/
// state values and the literal/parameter-derived constants. A nil rhs is a
// programmer error (an unregistered model name), not a recoverable
// condition, matching chk.Panic's use for the analogous case in the
// teacher's solid/gen model factories.
func Create(rhs RHS) *Model {
	if rhs == nil {
		chk.Panic("cellm: cannot create a Model around a nil RHS")
	}
	m := &Model{rhs: rhs, names: rhs.Names()}
	m.Literals = cloneParams(rhs.DefaultLiterals())
	m.Parameters = cloneParams(rhs.DefaultParameters())
	m.LiteralDerived = rhs.DeriveLiterals(m.Literals)
	m.ParameterDerived = rhs.DeriveParameters(m.Parameters, m.LiteralDerived)
	m.States = append([]float64(nil), rhs.DefaultStates()...)
	m.Derivatives = make([]float64, len(m.States))
	m.Intermediary = make([]float64, rhs.NIntermediary())
	m.invalidate()
	return m
}

func cloneParams(p dbf.Params) dbf.Params {
	out := make(dbf.Params, len(p))
	for i, v := range p {
		cp := *v
		out[i] = &cp
	}
	return out
}

// SetupPacing (re)allocates the pace_values vector to hold n pacing systems
func (m *Model) SetupPacing(n int) {
	m.Bound.Pace = make([]float64, n)
	m.invalidate()
}

// SetLiterals stores values if any differ from the current literals, and if
// so recomputes literal_derived and parameter_derived
func (m *Model) SetLiterals(values []float64) error {
	if len(values) != len(m.Literals) {
		return cellerr.New(cellerr.ValueError, "SetLiterals: expected %d values, got %d", len(m.Literals), len(values))
	}
	changed := false
	for i, v := range values {
		if m.Literals[i].V != v {
			m.Literals[i].V = v
			changed = true
		}
	}
	if changed {
		m.invalidate()
		m.LiteralDerived = m.rhs.DeriveLiterals(m.Literals)
		m.ParameterDerived = m.rhs.DeriveParameters(m.Parameters, m.LiteralDerived)
	}
	return nil
}

// SetParameters stores values if any differ from the current parameters,
// and if so recomputes parameter_derived
func (m *Model) SetParameters(values []float64) error {
	if len(values) != len(m.Parameters) {
		return cellerr.New(cellerr.ValueError, "SetParameters: expected %d values, got %d", len(m.Parameters), len(values))
	}
	changed := false
	for i, v := range values {
		if m.Parameters[i].V != v {
			m.Parameters[i].V = v
			changed = true
		}
	}
	if changed {
		m.invalidate()
		m.ParameterDerived = m.rhs.DeriveParameters(m.Parameters, m.LiteralDerived)
	}
	return nil
}

// SetParametersFromIndependents extracts only the parameter slots from indep
// (ignoring initial-state slots) and calls SetParameters with them
func (m *Model) SetParametersFromIndependents(indep []float64) error {
	if len(indep) != len(m.Independents) {
		return cellerr.New(cellerr.ValueError, "SetParametersFromIndependents: expected %d values, got %d", len(m.Independents), len(indep))
	}
	values := make([]float64, len(m.Parameters))
	copy(values, paramValues(m.Parameters))
	for i, ind := range m.Independents {
		if ind.Kind == IndParameter {
			values[ind.Slot] = indep[i]
		}
	}
	return m.SetParameters(values)
}

func paramValues(p dbf.Params) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = v.V
	}
	return out
}

// SetBound updates time/pace/realtime/evaluations; only time and pace
// participate in cache invalidation
func (m *Model) SetBound(time float64, pace []float64, realtime, evals float64) error {
	if len(pace) != len(m.Bound.Pace) {
		return cellerr.New(cellerr.ValueError, "SetBound: expected %d pace values, got %d", len(m.Bound.Pace), len(pace))
	}
	changed := time != m.Bound.Time
	for i, v := range pace {
		if m.Bound.Pace[i] != v {
			changed = true
		}
		m.Bound.Pace[i] = v
	}
	m.Bound.Time = time
	m.Bound.Realtime = realtime
	m.Bound.Evaluations = evals
	if changed {
		m.invalidate()
	}
	return nil
}

// SetStates stores values if any differ from the current states
func (m *Model) SetStates(values []float64) error {
	if len(values) != len(m.States) {
		return cellerr.New(cellerr.ValueError, "SetStates: expected %d values, got %d", len(m.States), len(values))
	}
	changed := false
	for i, v := range values {
		if m.States[i] != v {
			changed = true
		}
		m.States[i] = v
	}
	if changed {
		m.invalidate()
	}
	return nil
}

// ConfigureSensitivities allocates the sensitivity extension for the given
// independents (columns); ns_dependents is fixed at NIntermediary()
func (m *Model) ConfigureSensitivities(independents []Independent) {
	m.Independents = append([]Independent(nil), independents...)
	ns := len(independents)
	n := len(m.States)
	m.SStates = make([]float64, ns*n)
	m.SIntermediary = make([]float64, len(m.Intermediary)*ns)
	m.sensValid = false
}

// SetStateSensitivities writes into row i (0-based, over Independents) of
// the flat SStates storage
func (m *Model) SetStateSensitivities(i int, sStates []float64) error {
	n := len(m.States)
	if i < 0 || i >= len(m.Independents) {
		return cellerr.New(cellerr.ValueError, "SetStateSensitivities: independent index %d out of range [0,%d)", i, len(m.Independents))
	}
	if len(sStates) != n {
		return cellerr.New(cellerr.ValueError, "SetStateSensitivities: expected %d values, got %d", n, len(sStates))
	}
	copy(m.SStates[i*n:(i+1)*n], sStates)
	m.sensValid = false
	return nil
}

// EvaluateDerivatives computes all intermediaries and state derivatives.
// Declared side-effect-free w.r.t. bound/states/constants: two consecutive
// calls without an intervening mutation produce bit-equal results (the
// cache, when not bypassed, makes the second call a no-op).
func (m *Model) EvaluateDerivatives() error {
	if m.derivValid && m.derivVersion == m.version {
		return nil
	}
	m.rhs.Evaluate(m.States, m.LiteralDerived, m.ParameterDerived, &m.Bound, m.Intermediary, m.Derivatives)
	m.derivValid = true
	m.derivVersion = m.version
	return nil
}

// EvaluateSensitivityOutputs computes intermediary-variable sensitivities
// assuming state sensitivities (SStates) are already set. For each
// independent column j, SStates[j] is a directional derivative dy/dp_j; the
// corresponding column of SIntermediary is obtained as the directional
// derivative of Evaluate's intermediary output along that same direction, via
// gosl/num.DerivCen — the same central-difference helper the teacher's
// msolid.Driver.CheckD uses to cross-check consistent tangents, used here as
// the primary computation (not just a test cross-check) so that no model
// author has to hand-derive a ∂intermediary/∂state Jacobian. Only called at
// log points, never from the solver's inner loop, so DerivCen's per-call
// allocation and two-evaluation cost are acceptable.
func (m *Model) EvaluateSensitivityOutputs() error {
	if !m.HasSensitivities() {
		return cellerr.New(cellerr.NoSensitivitiesToLog, "EvaluateSensitivityOutputs: model has no sensitivities configured")
	}
	if m.sensValid && m.sensVersion == m.version {
		return nil
	}
	n := len(m.States)
	nDep := len(m.Intermediary)
	nInd := len(m.Independents)
	base := append([]float64(nil), m.States...)
	scratchI := make([]float64, nDep)
	scratchD := make([]float64, n)
	pert := make([]float64, n)
	for j := 0; j < nInd; j++ {
		dir := m.SStates[j*n : (j+1)*n]
		for d := 0; d < nDep; d++ {
			dep := d
			m.SIntermediary[d*nInd+j] = num.DerivCen(func(x float64, args ...interface{}) (res float64) {
				for i := 0; i < n; i++ {
					pert[i] = base[i] + x*dir[i]
				}
				m.rhs.Evaluate(pert, m.LiteralDerived, m.ParameterDerived, &m.Bound, scratchI, scratchD)
				return scratchI[dep]
			}, 0)
		}
	}
	m.sensValid = true
	m.sensVersion = m.version
	return nil
}
