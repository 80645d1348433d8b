// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cellcfg implements the JSON-driven run configuration, the same
// role inp.Simulation plays for a .sim file: a plain struct tree decoded
// with encoding/json, then resolved against a live cellm.Model into the
// concrete simrun.InitArgs the driver actually consumes.
package cellcfg

// EventSpec mirrors pacing.EventRecord in JSON form
type EventSpec struct {
	Start      float64 `json:"start"`
	Duration   float64 `json:"duration"`
	Period     float64 `json:"period"`
	Multiplier float64 `json:"multiplier"`
	Level      float64 `json:"level"`
}

// ProtocolSpec describes one pacing.System to build: "event" (a schedule of
// EventSpec) or "fixed" (a sampled series, linearly interpolated)
type ProtocolSpec struct {
	Kind   string      `json:"kind"`   // "event" or "fixed"
	Events []EventSpec `json:"events"` // used when kind == "event"
	FixedT []float64   `json:"fixedT"` // used when kind == "fixed"
	FixedY []float64   `json:"fixedY"` // used when kind == "fixed"
}

// IndependentSpec names one forward-sensitivity independent by the
// model's own vocabulary: kind "parameter" or "state", plus the
// corresponding parameter/state name (resolved against the model at load
// time, see Resolve)
type IndependentSpec struct {
	Kind string `json:"kind"` // "parameter" or "state"
	Name string `json:"name"`
}

// LoggingSpec selects one of the three logging modes of simrun.LoggingMode;
// leaving both LogInterval and LogTimes empty selects Dynamic (log every
// accepted step)
type LoggingSpec struct {
	Variables   []string  `json:"variables"`   // fully qualified names bound to a CSV column, in order
	Out         string    `json:"out"`         // output file for Variables, default "timeseries.csv"
	LogInterval float64   `json:"logInterval"` // > 0 selects Periodic
	LogTimes    []float64 `json:"logTimes"`    // non-empty selects PointList
	SensOut     string    `json:"sensOut"`     // output file for the sensitivity-output matrix, "" disables it
}

// RootFindingSpec configures the optional root-crossing detector
type RootFindingSpec struct {
	Variable  string  `json:"variable"` // fully qualified state name, "" disables root finding
	Threshold float64 `json:"threshold"`
	Out       string  `json:"out"` // output file for (t, direction) records, "" disables it even if Variable is set
}

// RunSpec holds everything needed to drive one simrun.Context run end to
// end, the cellsim counterpart of inp.Simulation: model selection, initial
// conditions, pacing protocols, logging, root finding, and output paths.
type RunSpec struct {
	Desc   string `json:"desc"`   // description of the run
	Model  string `json:"model"`  // name registered via cellm.Register, e.g. "beeler_reuter_1977"
	DirOut string `json:"dirout"` // directory for output files; "" means the current directory

	TMin float64 `json:"tmin"`
	TMax float64 `json:"tmax"`

	// initial conditions; a name left unset keeps the model's compiled-in
	// default, so these maps only need to carry overrides
	Literals   map[string]float64 `json:"literals"`
	Parameters map[string]float64 `json:"parameters"`
	States     map[string]float64 `json:"states"`

	Protocols    []ProtocolSpec    `json:"protocols"`
	Independents []IndependentSpec `json:"independents"`

	Logging     LoggingSpec     `json:"logging"`
	RootFinding RootFindingSpec `json:"rootFinding"`

	LogRealtime bool `json:"logRealtime"`
}
