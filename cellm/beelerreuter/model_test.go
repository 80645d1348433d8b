// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package beelerreuter

import (
	"math"
	"testing"

	"github.com/cpmech/cellsim/cellm"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/num"
)

func Test_br01(tst *testing.T) {

	chk.PrintTitle("br01: resting cell has small derivatives")

	m := cellm.Create(New())
	m.SetupPacing(1)
	if err := m.SetBound(0, []float64{0}, 0, 0); err != nil {
		tst.Fatalf("SetBound failed: %v", err)
	}
	if err := m.EvaluateDerivatives(); err != nil {
		tst.Fatalf("EvaluateDerivatives failed: %v", err)
	}
	if math.Abs(m.Derivatives[iV]) > 1.0 {
		tst.Fatalf("unstimulated resting cell should be near equilibrium, dV/dt=%g", m.Derivatives[iV])
	}
}

func Test_br02(tst *testing.T) {

	chk.PrintTitle("br02: a stimulus injects an inward current")

	m := cellm.Create(New())
	m.SetupPacing(1)

	if err := m.SetBound(0, []float64{0}, 0, 0); err != nil {
		tst.Fatalf("SetBound failed: %v", err)
	}
	if err := m.EvaluateDerivatives(); err != nil {
		tst.Fatalf("EvaluateDerivatives failed: %v", err)
	}
	dVdtRest := m.Derivatives[iV]

	if err := m.SetBound(0, []float64{1}, 0, 0); err != nil {
		tst.Fatalf("SetBound failed: %v", err)
	}
	if err := m.EvaluateDerivatives(); err != nil {
		tst.Fatalf("EvaluateDerivatives failed: %v", err)
	}
	dVdtStim := m.Derivatives[iV]

	if dVdtStim <= dVdtRest {
		tst.Fatalf("stimulus should increase dV/dt: rest=%g stim=%g", dVdtRest, dVdtStim)
	}
}

func Test_br03(tst *testing.T) {

	chk.PrintTitle("br03: model is registered under its canonical name")

	m, err := cellm.Allocate("beeler_reuter_1977")
	if err != nil {
		tst.Fatalf("Allocate failed: %v", err)
	}
	chk.IntAssert(m.NStates(), nStates)
	chk.IntAssert(m.NIntermediary(), nIntermediary)
}

func Test_br04(tst *testing.T) {

	chk.PrintTitle("br04: sensitivity outputs match a direct central difference along dV")

	m := cellm.Create(New())
	m.SetupPacing(1)
	if err := m.SetBound(0, []float64{1}, 0, 0); err != nil {
		tst.Fatalf("SetBound failed: %v", err)
	}

	base := append([]float64(nil), m.States...)

	m.ConfigureSensitivities([]cellm.Independent{{Kind: cellm.IndState, Slot: iV}})
	sstate := make([]float64, len(base))
	sstate[iV] = 1 // dV(0)/dV(0) = 1, the canonical state-independent initial condition
	if err := m.SetStateSensitivities(0, sstate); err != nil {
		tst.Fatalf("SetStateSensitivities failed: %v", err)
	}
	if err := m.EvaluateSensitivityOutputs(); err != nil {
		tst.Fatalf("EvaluateSensitivityOutputs failed: %v", err)
	}

	const depIdx = kINa // cross-check the INa current's sensitivity to V
	ana := m.SIntermediary[depIdx]

	dnum := num.DerivCen(func(x float64, args ...interface{}) (res float64) {
		pert := append([]float64(nil), base...)
		pert[iV] += x
		if err := m.SetStates(pert); err != nil {
			tst.Fatalf("SetStates failed: %v", err)
		}
		if err := m.EvaluateDerivatives(); err != nil {
			tst.Fatalf("EvaluateDerivatives failed: %v", err)
		}
		return m.Intermediary[depIdx]
	}, 0)

	if err := m.SetStates(base); err != nil {
		tst.Fatalf("SetStates failed: %v", err)
	}

	chk.AnaNum(tst, "d(INa)/dV", 1e-5, ana, dnum, chk.Verbose)
}
