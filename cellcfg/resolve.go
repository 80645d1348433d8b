// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cellcfg

import (
	"encoding/csv"
	"path/filepath"

	"github.com/cpmech/gosl/fun/dbf"

	"github.com/cpmech/cellsim/bench"
	"github.com/cpmech/cellsim/cellerr"
	"github.com/cpmech/cellsim/cellm"
	"github.com/cpmech/cellsim/logx"
	"github.com/cpmech/cellsim/logx/csvsink"
	"github.com/cpmech/cellsim/pacing"
	"github.com/cpmech/cellsim/simrun"
)

// Run is a resolved RunSpec: the live model, simrun.InitArgs ready for
// Context.Init, and the closers for every file opened along the way
type Run struct {
	Model    *cellm.Model
	Args     simrun.InitArgs
	BoundOut simrun.BoundOut
	closers  []func() error
}

// Close flushes and closes every file this Run opened, in reverse order
func (r *Run) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Resolve allocates the named model and builds the simrun.InitArgs
// described by spec, opening any CSV output files named in spec.Logging/
// spec.RootFinding along the way. Callers must call Run.Close when done.
func Resolve(spec *RunSpec) (*Run, error) {
	model, err := cellm.Allocate(spec.Model)
	if err != nil {
		return nil, err
	}

	run := &Run{Model: model}

	literals, err := overrideParams(model.Literals, spec.Literals)
	if err != nil {
		return nil, err
	}
	if err := model.SetLiterals(literals); err != nil {
		return nil, err
	}

	parameters, err := overrideParams(model.Parameters, spec.Parameters)
	if err != nil {
		return nil, err
	}
	if err := model.SetParameters(parameters); err != nil {
		return nil, err
	}

	states := append([]float64(nil), model.States...)
	for name, v := range spec.States {
		idx, ok := model.StateIndex(name)
		if !ok {
			return nil, cellerr.New(cellerr.ValueError, "cellcfg: unknown state %q", name)
		}
		states[idx] = v
	}

	independents := make([]cellm.Independent, len(spec.Independents))
	for i, is := range spec.Independents {
		switch is.Kind {
		case "parameter":
			slot, ok := indexOfParam(model.Parameters, is.Name)
			if !ok {
				return nil, cellerr.New(cellerr.ValueError, "cellcfg: unknown parameter %q", is.Name)
			}
			independents[i] = cellm.Independent{Kind: cellm.IndParameter, Slot: slot}
		case "state":
			slot, ok := model.StateIndex(is.Name)
			if !ok {
				return nil, cellerr.New(cellerr.ValueError, "cellcfg: unknown state %q", is.Name)
			}
			independents[i] = cellm.Independent{Kind: cellm.IndState, Slot: slot}
		default:
			return nil, cellerr.New(cellerr.ValueError, "cellcfg: independent %d: unknown kind %q", i, is.Kind)
		}
	}

	protocols := make([]simrun.Protocol, len(spec.Protocols))
	for i, p := range spec.Protocols {
		switch p.Kind {
		case "event":
			events := make([]pacing.EventRecord, len(p.Events))
			for j, e := range p.Events {
				events[j] = pacing.EventRecord{
					Start: e.Start, Duration: e.Duration, Period: e.Period,
					Multiplier: e.Multiplier, Level: e.Level,
				}
			}
			protocols[i] = simrun.Protocol{Kind: simrun.EventProtocol, Events: events}
		case "fixed":
			protocols[i] = simrun.Protocol{Kind: simrun.FixedProtocol, FixedT: p.FixedT, FixedY: p.FixedY}
		default:
			return nil, cellerr.New(cellerr.ValueError, "cellcfg: protocol %d: unknown kind %q", i, p.Kind)
		}
	}

	descriptor, err := run.openLogDescriptor(spec)
	if err != nil {
		return nil, err
	}

	var sensSinkV logx.MatrixSink
	if spec.Logging.SensOut != "" {
		f, err := createFile(filepath.Join(spec.DirOut, spec.Logging.SensOut))
		if err != nil {
			return nil, err
		}
		run.closers = append(run.closers, closeCSV(f))
		sensSinkV = newSensSink(csv.NewWriter(f))
	}

	rfIndex := -1
	var rfSinkV logx.RootSink
	if spec.RootFinding.Variable != "" {
		idx, ok := model.StateIndex(spec.RootFinding.Variable)
		if !ok {
			return nil, cellerr.New(cellerr.ValueError, "cellcfg: root finding: unknown state %q", spec.RootFinding.Variable)
		}
		rfIndex = idx
		if spec.RootFinding.Out != "" {
			f, err := createFile(filepath.Join(spec.DirOut, spec.RootFinding.Out))
			if err != nil {
				return nil, err
			}
			run.closers = append(run.closers, closeCSV(f))
			rfSinkV, err = newRootSink(csv.NewWriter(f))
			if err != nil {
				return nil, err
			}
		}
	}

	// canonical initial condition for the variational equation: d y_i(0)/d p_j
	// = 0 for every parameter independent, d y_i(0)/d y_j(0) = delta_ij for
	// every state independent
	sstate := make([]float64, len(independents)*len(states))
	for i, ind := range independents {
		if ind.Kind == cellm.IndState {
			sstate[i*len(states)+ind.Slot] = 1
		}
	}

	run.Args = simrun.InitArgs{
		TMin:          spec.TMin,
		TMax:          spec.TMax,
		State:         states,
		SState:        sstate,
		Independents:  independents,
		BoundOut:      &run.BoundOut,
		Literals:      literals,
		Parameters:    parameters,
		Protocols:     protocols,
		LogDescriptor: descriptor,
		LogInterval:   spec.Logging.LogInterval,
		LogTimes:      spec.Logging.LogTimes,
		SensSink:      sensSinkV,
		RFIndex:       rfIndex,
		RFThreshold:   spec.RootFinding.Threshold,
		RFSink:        rfSinkV,
		Benchmarker:   bench.NewRecorder(),
		LogRealtime:   spec.LogRealtime,
	}
	return run, nil
}

// openLogDescriptor opens the Variables CSV file (if any) and builds the
// name -> sink map simrun.InitArgs.LogDescriptor expects
func (r *Run) openLogDescriptor(spec *RunSpec) (map[string]logx.Sink, error) {
	if len(spec.Logging.Variables) == 0 {
		return nil, nil
	}
	outPath := spec.Logging.Out
	if outPath == "" {
		outPath = "timeseries.csv"
	}
	f, err := createFile(filepath.Join(spec.DirOut, outPath))
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, closeCSV(f))
	table := csvsink.New(csv.NewWriter(f), spec.Logging.Variables)
	descriptor := make(map[string]logx.Sink, len(spec.Logging.Variables))
	for _, name := range spec.Logging.Variables {
		col, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		descriptor[name] = col
	}
	return descriptor, nil
}

func closeCSV(f interface{ Close() error }) func() error {
	return f.Close
}

// overrideParams clones base, applying any named overrides from over;
// unrecognized names fail with VALUE_ERROR
func overrideParams(base dbf.Params, over map[string]float64) ([]float64, error) {
	values := make([]float64, len(base))
	for i, p := range base {
		values[i] = p.V
	}
	for name, v := range over {
		idx, ok := indexOfParam(base, name)
		if !ok {
			return nil, cellerr.New(cellerr.ValueError, "cellcfg: unknown name %q", name)
		}
		values[idx] = v
	}
	return values, nil
}

func indexOfParam(base dbf.Params, name string) (int, bool) {
	for i, p := range base {
		if p.N == name {
			return i, true
		}
	}
	return 0, false
}
