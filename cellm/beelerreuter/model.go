// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package beelerreuter implements the Beeler & Reuter (1977) 8-state
// ventricular action-potential model as a cellm.RHS: the fast sodium
// current (m, h, j gates), the slow inward calcium current (d, f gates),
// the time-independent and time-dependent outward potassium currents, and
// the intracellular calcium concentration driving the calcium current's
// reversal potential.
package beelerreuter

import (
	"math"

	"github.com/cpmech/cellsim/cellm"
	"github.com/cpmech/gosl/fun/dbf"
)

func init() {
	cellm.Register("beeler_reuter_1977", New)
}

// New allocates a fresh Beeler-Reuter RHS
func New() cellm.RHS { return &Model{} }

// Model is the stateless RHS: all storage lives in the cellm.Vars that
// wraps it, matching the teacher's SmallElasticity (geometry-free,
// evaluated from the caller-owned state vector every time)
type Model struct{}

// state indices, in DefaultStates/Names order
const (
	iV = iota
	iM
	iH
	iJ
	iD
	iF
	iX1
	iCai
	nStates
)

// intermediary indices, as mapped by Names().Intermediary
const (
	kINa = iota
	kIsi
	kIK1
	kIx1
	kIStim
	kEs
	nIntermediary
)

// literal-derived indices
const lInvC = 0

// parameter indices, in DefaultParameters order
const (
	pGNa = iota
	pGNaC
	pENa
	pGs
	pGK1Scale
	pGx1Scale
	pStimAmplitude
	nParameters
)

// Names implements cellm.RHS
func (Model) Names() cellm.Names {
	return cellm.Names{
		States: map[string]int{
			"membrane.V":                               iV,
			"sodium_current_m_gate.m":                   iM,
			"sodium_current_h_gate.h":                   iH,
			"sodium_current_j_gate.j":                   iJ,
			"slow_inward_current_d_gate.d":               iD,
			"slow_inward_current_f_gate.f":               iF,
			"time_dependent_outward_current_x1_gate.x1":  iX1,
			"calcium_concentration.Cai":                  iCai,
		},
		Intermediary: map[string]int{
			"sodium_current.INa":                    kINa,
			"slow_inward_current.Isi":                kIsi,
			"time_independent_outward_current.IK1":   kIK1,
			"time_dependent_outward_current.Ix1":     kIx1,
			"membrane.i_stim":                        kIStim,
			"slow_inward_current.Es":                 kEs,
		},
	}
}

// NIntermediary implements cellm.RHS
func (Model) NIntermediary() int { return nIntermediary }

// DefaultLiterals implements cellm.RHS: membrane capacitance, fixed for
// the lifetime of a Model (not a sensitivity independent)
func (Model) DefaultLiterals() dbf.Params {
	return dbf.Params{
		&dbf.P{N: "C", V: 1.0}, // uF/cm^2
	}
}

// DefaultParameters implements cellm.RHS: conductances and the
// stimulus-current scale, the natural sensitivity independents of this model
func (Model) DefaultParameters() dbf.Params {
	return dbf.Params{
		&dbf.P{N: "gNa", V: 4.0e-2},
		&dbf.P{N: "gNaC", V: 3.0e-3},
		&dbf.P{N: "ENa", V: 50.0},
		&dbf.P{N: "gs", V: 9.0e-2},
		&dbf.P{N: "gK1Scale", V: 1.0},
		&dbf.P{N: "gx1Scale", V: 1.0},
		&dbf.P{N: "stimAmplitude", V: 25.0},
	}
}

// DefaultStates implements cellm.RHS: a quiescent cell at its resting
// potential, gates at their steady-state values for V=-84.5286mV, and a
// diastolic intracellular calcium concentration
func (Model) DefaultStates() []float64 {
	s := make([]float64, nStates)
	s[iV] = -84.5286
	s[iM] = 0.011
	s[iH] = 0.988
	s[iJ] = 0.975
	s[iD] = 0.003
	s[iF] = 0.994
	s[iX1] = 0.0001
	s[iCai] = 2.0e-7
	return s
}

// DeriveLiterals implements cellm.RHS
func (Model) DeriveLiterals(literals dbf.Params) []float64 {
	var c float64
	for _, p := range literals {
		if p.N == "C" {
			c = p.V
		}
	}
	return []float64{1.0 / c}
}

// DeriveParameters implements cellm.RHS: this model's parameters require
// no further derivation, so the derived vector simply reindexes them into
// the fixed slot order used by Evaluate
func (Model) DeriveParameters(parameters dbf.Params, literalDerived []float64) []float64 {
	out := make([]float64, nParameters)
	for _, p := range parameters {
		switch p.N {
		case "gNa":
			out[pGNa] = p.V
		case "gNaC":
			out[pGNaC] = p.V
		case "ENa":
			out[pENa] = p.V
		case "gs":
			out[pGs] = p.V
		case "gK1Scale":
			out[pGK1Scale] = p.V
		case "gx1Scale":
			out[pGx1Scale] = p.V
		case "stimAmplitude":
			out[pStimAmplitude] = p.V
		}
	}
	return out
}

// Evaluate implements cellm.RHS
func (Model) Evaluate(states, literalDerived, parameterDerived []float64, bound *cellm.Bound, intermediary, derivatives []float64) {
	v, m, h, j, d, f, x1, cai := states[iV], states[iM], states[iH], states[iJ], states[iD], states[iF], states[iX1], states[iCai]
	invC := literalDerived[lInvC]
	gNa, gNaC, ENa := parameterDerived[pGNa], parameterDerived[pGNaC], parameterDerived[pENa]
	gs, gK1Scale, gx1Scale, stimAmplitude := parameterDerived[pGs], parameterDerived[pGK1Scale], parameterDerived[pGx1Scale], parameterDerived[pStimAmplitude]

	pace := 0.0
	if len(bound.Pace) > 0 {
		pace = bound.Pace[0]
	}

	// fast sodium current
	alphaM := -(v + 47.0) / (math.Exp(-0.1*(v+47.0)) - 1.0)
	betaM := 40.0 * math.Exp(-0.056*(v+72.0))
	alphaH := 0.126 * math.Exp(-0.25*(v+77.0))
	betaH := 1.7 / (math.Exp(-0.082*(v+22.5)) + 1.0)
	alphaJ := 0.055 * math.Exp(-0.25*(v+78.0)) / (math.Exp(-0.2*(v+78.0)) + 1.0)
	betaJ := 0.3 / (math.Exp(-0.1*(v+32.0)) + 1.0)
	iNa := (gNa*m*m*m*h*j + gNaC) * (v - ENa)

	// slow inward (calcium) current
	alphaD := 0.095 * math.Exp(-0.01*(v-5.0)) / (math.Exp(-0.072*(v-5.0)) + 1.0)
	betaD := 0.07 * math.Exp(-0.017*(v+44.0)) / (math.Exp(0.05*(v+44.0)) + 1.0)
	alphaF := 0.012 * math.Exp(-0.008*(v+28.0)) / (math.Exp(0.15*(v+28.0)) + 1.0)
	betaF := 0.0065 * math.Exp(-0.02*(v+30.0)) / (math.Exp(-0.2*(v+30.0)) + 1.0)
	es := -82.3 - 13.0287*math.Log(cai)
	iSi := gs * d * f * (v - es)

	// time-independent outward potassium current
	iK1 := gK1Scale * (0.35 * (4.0*(math.Exp(0.04*(v+85.0))-1.0)/(math.Exp(0.08*(v+53.0))+math.Exp(0.04*(v+53.0))) +
		0.2*(v+23.0)/(1.0-math.Exp(-0.04*(v+23.0)))))

	// time-dependent outward current
	alphaX1 := 0.0005 * math.Exp(0.083*(v+50.0)) / (math.Exp(0.057*(v+50.0)) + 1.0)
	betaX1 := 0.0013 * math.Exp(-0.06*(v+20.0)) / (math.Exp(-0.04*(v+20.0)) + 1.0)
	iX1 := gx1Scale * x1 * 0.8 * (math.Exp(0.04*(v+77.0)) - 1.0) / math.Exp(0.04*(v+35.0))

	iStim := -stimAmplitude * pace

	intermediary[kINa] = iNa
	intermediary[kIsi] = iSi
	intermediary[kIK1] = iK1
	intermediary[kIx1] = iX1
	intermediary[kIStim] = iStim
	intermediary[kEs] = es

	derivatives[iV] = -invC * (iNa + iSi + iK1 + iX1 + iStim)
	derivatives[iM] = alphaM*(1.0-m) - betaM*m
	derivatives[iH] = alphaH*(1.0-h) - betaH*h
	derivatives[iJ] = alphaJ*(1.0-j) - betaJ*j
	derivatives[iD] = alphaD*(1.0-d) - betaD*d
	derivatives[iF] = alphaF*(1.0-f) - betaF*f
	derivatives[iX1] = alphaX1*(1.0-x1) - betaX1*x1
	derivatives[iCai] = -1.0e-7*iSi + 0.07*(1.0e-7-cai)
}
