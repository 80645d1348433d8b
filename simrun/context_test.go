// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simrun

import (
	"testing"

	"github.com/cpmech/cellsim/cellerr"
	"github.com/cpmech/cellsim/cellm"
	"github.com/cpmech/cellsim/logx"
	"github.com/cpmech/cellsim/logx/memsink"
	"github.com/cpmech/cellsim/pacing"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// testRHS is a minimal synthetic cellm.RHS used to exercise the driver
// itself (pacing wiring, logging modes, root finding) against a linear
// ODE whose exact trajectory can be computed by hand, decoupling these
// tests from the cardiac model's nonlinear dynamics.
type testRHS struct{}

func (testRHS) Names() cellm.Names {
	return cellm.Names{States: map[string]int{"test.y": 0}}
}
func (testRHS) NIntermediary() int { return 0 }
func (testRHS) DefaultLiterals() dbf.Params {
	return dbf.Params{&dbf.P{N: "rate", V: 0}}
}
func (testRHS) DefaultParameters() dbf.Params { return dbf.Params{} }
func (testRHS) DefaultStates() []float64      { return []float64{0} }
func (testRHS) DeriveLiterals(literals dbf.Params) []float64 {
	return []float64{literals[0].V}
}
func (testRHS) DeriveParameters(parameters dbf.Params, literalDerived []float64) []float64 {
	return nil
}
func (testRHS) Evaluate(states, literalDerived, parameterDerived []float64, bound *cellm.Bound, intermediary, derivatives []float64) {
	pace := 0.0
	if len(bound.Pace) > 0 {
		pace = bound.Pace[0]
	}
	derivatives[0] = -literalDerived[0]*states[0] + pace
}

func runToCompletion(tst *testing.T, c *Context) {
	for i := 0; i < 100000; i++ {
		_, done, err := c.Step()
		if err != nil {
			tst.Fatalf("Step failed: %v", err)
		}
		if done {
			return
		}
	}
	tst.Fatalf("run did not complete within the iteration budget")
}

func Test_sim01_unstimulated(tst *testing.T) {

	chk.PrintTitle("sim01: a quiescent forcing leaves the state untouched")

	model := cellm.Create(testRHS{})
	ySink := &memsink.Float{}
	state := []float64{1.0}

	var c Context
	err := c.Init(model, InitArgs{
		TMin: 0, TMax: 10,
		State:         state,
		Literals:      []float64{0}, // rate = 0, no decay
		Protocols:     []Protocol{{Kind: EventProtocol}},
		LogDescriptor: map[string]logx.Sink{"test.y": ySink},
		LogInterval:   1.0,
	})
	if err != nil {
		tst.Fatalf("Init failed: %v", err)
	}
	runToCompletion(tst, &c)
	if err := c.Clean(); err != nil {
		tst.Fatalf("Clean failed: %v", err)
	}

	if len(ySink.Values) != 10 {
		tst.Fatalf("expected 10 logged points, got %d", len(ySink.Values))
	}
	for i, v := range ySink.Values {
		chk.Scalar(tst, "y", 1e-6, v, 1.0)
		_ = i
	}
	chk.Scalar(tst, "final state", 1e-6, state[0], 1.0)
}

func Test_sim02_single_stimulus(tst *testing.T) {

	chk.PrintTitle("sim02: a one-shot pulse drives a monotonic rise that then holds")

	model := cellm.Create(testRHS{})
	ySink := &memsink.Float{}
	tSink := &memsink.Float{}
	state := []float64{0.0}

	var c Context
	err := c.Init(model, InitArgs{
		TMin: 0, TMax: 10,
		State:    state,
		Literals: []float64{0},
		Protocols: []Protocol{{
			Kind:   EventProtocol,
			Events: []pacing.EventRecord{{Start: 2, Duration: 3, Level: 1}},
		}},
		LogDescriptor: map[string]logx.Sink{"test.y": ySink, "engine.time": tSink},
		LogInterval:   1.0,
	})
	if err != nil {
		tst.Fatalf("Init failed: %v", err)
	}
	runToCompletion(tst, &c)

	if len(ySink.Values) != 10 {
		tst.Fatalf("expected 10 logged points, got %d", len(ySink.Values))
	}
	// before the pulse starts, y stays at 0
	chk.Scalar(tst, "y(0)", 0.05, ySink.Values[0], 0)
	chk.Scalar(tst, "y(1)", 0.05, ySink.Values[1], 0)
	// after the pulse ends (t=5) y has accumulated the full window and holds
	chk.Scalar(tst, "y(6)", 0.1, ySink.Values[6], 3.0)
	chk.Scalar(tst, "y(9)", 0.1, ySink.Values[9], 3.0)
	chk.Scalar(tst, "final state", 0.1, state[0], 3.0)
}

func Test_sim03_periodic_stimulus(tst *testing.T) {

	chk.PrintTitle("sim03: two successive pulses each contribute their own rise")

	model := cellm.Create(testRHS{})
	ySink := &memsink.Float{}
	state := []float64{0.0}

	var c Context
	err := c.Init(model, InitArgs{
		TMin: 0, TMax: 30,
		State:    state,
		Literals: []float64{0},
		Protocols: []Protocol{{
			Kind:   EventProtocol,
			Events: []pacing.EventRecord{{Start: 2, Duration: 2, Period: 20, Multiplier: 2, Level: 1}},
		}},
		LogInterval: 1.0,
	})
	if err != nil {
		tst.Fatalf("Init failed: %v", err)
	}
	runToCompletion(tst, &c)

	// two windows of width 2 at level 1: total accumulated rise is 4
	chk.Scalar(tst, "final state", 0.1, state[0], 4.0)
}

func Test_sim04_root_finding(tst *testing.T) {

	chk.PrintTitle("sim04: a rising crossing is detected and recorded")

	model := cellm.Create(testRHS{})
	rfSink := &memsink.Root{}
	state := []float64{0.0}

	idx, ok := model.StateIndex("test.y")
	if !ok {
		tst.Fatalf("could not resolve test.y")
	}

	var c Context
	err := c.Init(model, InitArgs{
		TMin: 0, TMax: 5,
		State:    state,
		Literals: []float64{0},
		Protocols: []Protocol{{
			Kind:   EventProtocol,
			Events: []pacing.EventRecord{{Start: 0, Duration: 5, Level: 1}},
		}},
		LogInterval: 1.0,
		RFIndex:     idx,
		RFThreshold: 2.5,
		RFSink:      rfSink,
	})
	if err != nil {
		tst.Fatalf("Init failed: %v", err)
	}
	runToCompletion(tst, &c)

	if rfSink.Len() == 0 {
		tst.Fatalf("expected at least one root crossing")
	}
	for _, d := range rfSink.Directions {
		if d != -1 && d != 1 {
			tst.Fatalf("root direction out of {-1,+1}: %d", d)
		}
	}
	chk.Scalar(tst, "root time", 0.2, rfSink.Times[0], 2.5)
	chk.IntAssert(rfSink.Directions[0], 1)
}

func Test_sim05_point_list(tst *testing.T) {

	chk.PrintTitle("sim05: point-list logging visits exactly the requested times")

	model := cellm.Create(testRHS{})
	ySink := &memsink.Float{}
	tSink := &memsink.Float{}
	state := []float64{1.0}

	var c Context
	err := c.Init(model, InitArgs{
		TMin: 0, TMax: 500,
		State:         state,
		Literals:      []float64{0},
		Protocols:     []Protocol{{Kind: EventProtocol}},
		LogDescriptor: map[string]logx.Sink{"test.y": ySink, "engine.time": tSink},
		LogTimes:      []float64{0.0, 10.0, 12.0, 20.0, 100.0},
	})
	if err != nil {
		tst.Fatalf("Init failed: %v", err)
	}
	runToCompletion(tst, &c)

	if len(ySink.Values) != 5 {
		tst.Fatalf("expected 5 logged points, got %d", len(ySink.Values))
	}
	want := []float64{0, 10, 12, 20, 100}
	for i, w := range want {
		chk.Scalar(tst, "log time", 1e-9, tSink.Values[i], w)
	}
}

func Test_sim06_nonmonotonic_logtimes(tst *testing.T) {

	chk.PrintTitle("sim06: a non-monotonic log_times list fails at init")

	model := cellm.Create(testRHS{})
	state := []float64{0.0}

	var c Context
	err := c.Init(model, InitArgs{
		TMin: 0, TMax: 10,
		State:     state,
		Literals:  []float64{0},
		Protocols: []Protocol{{Kind: EventProtocol}},
		LogTimes:  []float64{0, 5, 3},
	})
	if err == nil {
		tst.Fatalf("expected an error for non-monotonic log_times")
	}
	if !cellerr.Is(err, cellerr.ValueError) {
		tst.Fatalf("expected ValueError, got %v", err)
	}
}

func Test_sim07_singleton_guard(tst *testing.T) {

	chk.PrintTitle("sim07: a second concurrent Init is rejected")

	model1 := cellm.Create(testRHS{})
	model2 := cellm.Create(testRHS{})
	state1 := []float64{0.0}
	state2 := []float64{0.0}

	var c1, c2 Context
	err := c1.Init(model1, InitArgs{TMin: 0, TMax: 10, State: state1, Literals: []float64{0}, LogInterval: 1})
	if err != nil {
		tst.Fatalf("first Init failed: %v", err)
	}
	err = c2.Init(model2, InitArgs{TMin: 0, TMax: 10, State: state2, Literals: []float64{0}, LogInterval: 1})
	if err == nil {
		tst.Fatalf("expected the second Init to fail while the first run is active")
	}
	if !cellerr.Is(err, cellerr.InvalidModel) {
		tst.Fatalf("expected InvalidModel, got %v", err)
	}
	if err := c1.Clean(); err != nil {
		tst.Fatalf("Clean failed: %v", err)
	}
	err = c2.Init(model2, InitArgs{TMin: 0, TMax: 10, State: state2, Literals: []float64{0}, LogInterval: 1})
	if err != nil {
		tst.Fatalf("Init after Clean should succeed: %v", err)
	}
	c2.Clean()
}
