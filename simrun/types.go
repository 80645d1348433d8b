// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package simrun implements the simulation driver: the init/step/clean
// lifecycle composing a cellm.Model, one or more pacing.System instances,
// and a solverx.Facade into a single time-stepping loop, with interleaved
// dynamic/periodic/point-list logging and optional root finding — the
// domain equivalent of the teacher's fem.FEM/fem.FEsolver time loop.
package simrun

import (
	"github.com/cpmech/cellsim/cellm"
	"github.com/cpmech/cellsim/logx"
	"github.com/cpmech/cellsim/pacing"
)

// ProtocolKind tags a Protocol as an event schedule or a fixed series
type ProtocolKind int

// protocol kinds
const (
	EventProtocol ProtocolKind = iota
	FixedProtocol
)

// Protocol describes one pacing.System to construct at Init
type Protocol struct {
	Kind    ProtocolKind
	Events  []pacing.EventRecord // used when Kind == EventProtocol
	FixedT  []float64            // used when Kind == FixedProtocol
	FixedY  []float64            // used when Kind == FixedProtocol
}

// LoggingMode is the mode determined from LogInterval/LogTimes at Init (§4.5 step 2)
type LoggingMode int

// logging modes
const (
	Dynamic LoggingMode = iota
	Periodic
	PointList
)

// BoundOut receives the finalized bound-input snapshot at the end of a run
type BoundOut struct {
	T           float64
	Realtime    float64
	Evaluations float64
	Pace        []float64
}

// Benchmarker is borrowed from the host to report wall-clock elapsed time;
// a nil Benchmarker disables realtime tracking
type Benchmarker interface {
	Elapsed() float64
}

// InitArgs holds the 17 init arguments of spec §4.5 step 1 plus
// Independents, which selects the sensitivity columns
type InitArgs struct {
	TMin, TMax   float64
	State        []float64           // initial states
	SState       []float64           // initial state sensitivities, flat [len(Independents)][n_states]; ignored if Independents is empty
	Independents []cellm.Independent // sensitivity independents; empty disables sensitivities
	BoundOut     *BoundOut
	Literals     []float64
	Parameters   []float64
	Protocols    []Protocol
	LogDescriptor map[string]logx.Sink
	LogInterval   float64
	LogTimes      []float64
	SensSink      logx.MatrixSink
	RFIndex       int // -1 disables root finding
	RFThreshold   float64
	RFSink        logx.RootSink
	Benchmarker   Benchmarker
	LogRealtime   bool
}
