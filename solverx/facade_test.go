// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solverx

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// decay is dy/dt = -y, with the analytic solution y(t) = y0*exp(-t)
func decay(t float64, y, dydt []float64) error {
	dydt[0] = -y[0]
	return nil
}

func Test_facade01(tst *testing.T) {

	chk.PrintTitle("facade01: single-step advance matches the analytic decay")

	f := New(1, decay)
	f.SetTolerances(1e-10, 1e-8)
	if err := f.Init(0, []float64{1}); err != nil {
		tst.Fatalf("Init failed: %v", err)
	}
	if err := f.Advance(1, 0); err != nil {
		tst.Fatalf("Advance failed: %v", err)
	}
	chk.Scalar(tst, "y(1)", 1e-6, f.Y()[0], math.Exp(-1))
	chk.IntAssert(f.NumSteps(), 1)
}

func Test_facade02(tst *testing.T) {

	chk.PrintTitle("facade02: root finding brackets the crossing of y=0.5")

	f := New(1, decay)
	f.SetTolerances(1e-10, 1e-8)
	f.Init(0, []float64{1})
	f.Advance(2, 0)
	ta, ya, ga := 0.0, []float64{1}, 1.0-0.5
	tb, yb, gb := 2.0, f.Y(), f.Y()[0]-0.5
	g := func(t float64, y []float64) float64 { return y[0] - 0.5 }
	tRoot, yRoot, err := f.FindRoot(ta, ya, ga, tb, yb, gb, g, 1e-9, 60)
	if err != nil {
		tst.Fatalf("FindRoot failed: %v", err)
	}
	chk.Scalar(tst, "root time", 1e-4, tRoot, math.Log(2))
	chk.Scalar(tst, "root level", 1e-4, yRoot[0], 0.5)
}

func Test_facade03(tst *testing.T) {

	chk.PrintTitle("facade03: Rewind reinitializes the integrator's history")

	f := New(1, decay)
	f.Init(0, []float64{1})
	f.Advance(1, 0)
	if err := f.Rewind(1, []float64{0.5}); err != nil {
		tst.Fatalf("Rewind failed: %v", err)
	}
	chk.Scalar(tst, "state after rewind", 1e-15, f.Y()[0], 0.5)
	chk.Scalar(tst, "time after rewind", 1e-15, f.T(), 1)
}
