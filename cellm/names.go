// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cellm

import (
	"strings"

	"github.com/cpmech/cellsim/cellerr"
)

// Names is the fully-qualified name table a concrete RHS exposes so the
// logging substrate (and log descriptors) can resolve "<component>.<name>"
// and "dot(<component>.<name>)" to an index, per the bit-exact convention
// in spec §6.
type Names struct {
	States       map[string]int // "membrane.V" => index into Vars.States / Vars.Derivatives
	Intermediary map[string]int // "ina.INa" => index into Vars.Intermediary
}

// resolve maps a fully qualified variable name to the address of its
// source storage inside m. Unknown names return cellerr.UnknownVariablesInLog.
func (m *Model) resolve(name string) (*float64, error) {
	// engine-bound names
	switch name {
	case "engine.time":
		return &m.Bound.Time, nil
	case "engine.realtime":
		return &m.Bound.Realtime, nil
	case "engine.evaluations":
		return &m.Bound.Evaluations, nil
	case "engine.pace":
		if len(m.Bound.Pace) != 1 {
			return nil, errUnknown(name)
		}
		return &m.Bound.Pace[0], nil
	}
	if strings.HasPrefix(name, "engine.pace") {
		suffix := name[len("engine.pace"):]
		if idx, ok := parseIndex(suffix); ok && idx >= 0 && idx < len(m.Bound.Pace) {
			return &m.Bound.Pace[idx], nil
		}
		return nil, errUnknown(name)
	}

	// derivative: dot(<component>.<name>)
	if strings.HasPrefix(name, "dot(") && strings.HasSuffix(name, ")") {
		inner := name[len("dot(") : len(name)-1]
		if idx, ok := m.names.States[inner]; ok {
			return &m.Derivatives[idx], nil
		}
		return nil, errUnknown(name)
	}

	// plain state
	if idx, ok := m.names.States[name]; ok {
		return &m.States[idx], nil
	}

	// intermediary
	if idx, ok := m.names.Intermediary[name]; ok {
		return &m.Intermediary[idx], nil
	}

	return nil, errUnknown(name)
}

// Kind classifies a resolved log name, letting callers (simrun's dynamic
// logging step) decide whether a fresh RHS evaluation is needed before log()
type Kind int

// classification kinds
const (
	KindUnknown Kind = iota
	KindBound
	KindState
	KindDerivative
	KindIntermediary
)

// Classify reports the kind of a fully qualified variable name without
// resolving its storage address
func (m *Model) Classify(name string) Kind {
	if strings.HasPrefix(name, "engine.") {
		return KindBound
	}
	if strings.HasPrefix(name, "dot(") && strings.HasSuffix(name, ")") {
		inner := name[len("dot(") : len(name)-1]
		if _, ok := m.names.States[inner]; ok {
			return KindDerivative
		}
		return KindUnknown
	}
	if _, ok := m.names.States[name]; ok {
		return KindState
	}
	if _, ok := m.names.Intermediary[name]; ok {
		return KindIntermediary
	}
	return KindUnknown
}

// StateIndex returns the index of the named state variable (e.g.
// "membrane.V"), for callers that need a raw index into States/Derivatives
// — root finding's rf_index, in particular.
func (m *Model) StateIndex(name string) (int, bool) {
	idx, ok := m.names.States[name]
	return idx, ok
}

func errUnknown(name string) error {
	return cellerr.New(cellerr.UnknownVariablesInLog, "unrecognized model variable %q", name)
}

// parseIndex parses a small non-negative decimal integer without pulling
// in strconv's broader surface (we only ever expect single/double digits
// here: a handful of simultaneous pacing systems)
func parseIndex(s string) (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
