// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cellm implements the Model abstraction: a single cell
// instance's states, bound inputs, intermediaries, literals, parameters
// and forward-sensitivity storage, plus the pure-function-style update
// and evaluator operations that drive it.
package cellm

import "github.com/cpmech/gosl/fun/dbf"

// Bound holds the external (bound) inputs to a Model: current time, the
// pacing vector (one entry per pacing system), and diagnostics that do
// not participate in cache invalidation
//
//  / T \
//  | Pace[...] |  <= current state of the solution (see ele.Solution for
//  | Realtime  |     the equivalent FE "current state" grouping this is
//  \ Evaluations /  modelled after)
type Bound struct {
	Time        float64   // current simulation time
	Pace        []float64 // current pacing level, one per pacing system
	Realtime    float64   // wall-clock time reported by the host; never invalidates the cache
	Evaluations float64   // RHS evaluation counter; never invalidates the cache
}

// Clone returns a deep copy of b
func (b *Bound) Clone() *Bound {
	c := &Bound{Time: b.Time, Realtime: b.Realtime, Evaluations: b.Evaluations}
	c.Pace = make([]float64, len(b.Pace))
	copy(c.Pace, b.Pace)
	return c
}

// IndKind tags a sensitivity independent as referring into Parameters or
// into the initial-state-indexed States, resolved at access time instead
// of through a raw pointer (see spec's "pointer aliasing" redesign note):
// this avoids lifetime coupling to slice reallocation.
type IndKind int

// independent kinds
const (
	IndParameter IndKind = iota
	IndState
)

// Independent is a tagged index into either Parameters or (initial) States
type Independent struct {
	Kind IndKind
	Slot int
}

// Vars holds all numerical storage owned by a Model instance. A Model
// embeds Vars and supplies the RHS behaviour (see model.go); Vars alone
// never computes anything — it is the bookkeeping layer, the same role
// SmallElasticity plays for LinElast/etc. in the teacher's mdl/solid.
type Vars struct {
	// state vector and its derivative, set by SetStates/evaluated by EvaluateDerivatives
	States      []float64
	Derivatives []float64

	// intermediaries, a pure function of States and Bound, populated as a
	// side effect of EvaluateDerivatives
	Intermediary []float64

	// bound (external) inputs
	Bound Bound

	// literals: fixed before simulation; LiteralDerived is a pure function of Literals
	Literals       dbf.Params
	LiteralDerived []float64

	// parameters: inputs to forward sensitivities; ParameterDerived is a pure function of Parameters
	Parameters       dbf.Params
	ParameterDerived []float64

	// sensitivity extension
	Independents  []Independent // ns_independents entries (columns of the sensitivity output matrix)
	SStates       []float64     // flat [ns_independents][n_states] row-major
	SIntermediary []float64     // flat [ns_dependents][ns_independents] row-major, populated by EvaluateSensitivityOutputs

	// cache: a monotonic version counter, invalidated on any change to
	// time/pace/states/literals/parameters; correctness never depends on
	// it (it may be bypassed entirely, matching the source's default)
	version      uint64
	derivVersion uint64
	sensVersion  uint64
	derivValid   bool
	sensValid    bool
}

// NStates returns the number of state variables
func (v *Vars) NStates() int { return len(v.States) }

// NIntermediary returns the number of intermediary variables
func (v *Vars) NIntermediary() int { return len(v.Intermediary) }

// NDependents returns the number of rows of the sensitivity output matrix
func (v *Vars) NDependents() int { return len(v.SIntermediary) / max1(len(v.Independents)) }

// NIndependents returns the number of columns of the sensitivity output
// matrix (and of Independents)
func (v *Vars) NIndependents() int { return len(v.Independents) }

// HasSensitivities reports whether this Vars was configured for forward sensitivities
func (v *Vars) HasSensitivities() bool { return len(v.Independents) > 0 }

// invalidate bumps the version counter, marking cached derivatives/sensitivities stale
func (v *Vars) invalidate() {
	v.version++
	v.derivValid = false
	v.sensValid = false
}

func max1(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
