// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cellm

import (
	"github.com/cpmech/cellsim/cellerr"
	"github.com/cpmech/cellsim/logx"
)

// InitializeLogging binds every entry of descriptor (fully qualified name
// => external sink) to its source variable inside the Model. Fails with
// UNKNOWN_VARIABLES_IN_LOG listing every unrecognized name at once, and
// with LOGGING_ALREADY_INITIALIZED if called twice without an intervening
// DeinitializeLogging.
func (m *Model) InitializeLogging(descriptor map[string]logx.Sink) error {
	if m.logging {
		return cellerr.New(cellerr.LoggingAlreadyInitialized, "InitializeLogging: logging is already initialized")
	}
	binds := make(logx.Bindings, 0, len(descriptor))
	var bad []string
	for name, sink := range descriptor {
		src, err := m.resolve(name)
		if err != nil {
			bad = append(bad, name)
			continue
		}
		binds = append(binds, logx.Binding{Name: name, Sink: sink, Source: src})
	}
	if len(bad) > 0 {
		return cellerr.New(cellerr.UnknownVariablesInLog, "InitializeLogging: unknown variables: %v", bad)
	}
	m.binds = binds
	m.logging = true
	return nil
}

// Log appends the current value of each bound variable to its sink, in
// binding order
func (m *Model) Log() error {
	if !m.logging {
		return cellerr.New(cellerr.LoggingNotInitialized, "Log: logging is not initialized")
	}
	if name, err := m.binds.Append(); err != nil {
		return cellerr.Wrap(cellerr.LogAppendFailed, err, "Log: sink for %q failed", name)
	}
	return nil
}

// LogSensitivityMatrix appends the current ns_dependents x ns_independents
// sensitivity-output snapshot to sink. Fails with NO_SENSITIVITIES_TO_LOG if
// the model has no sensitivities configured.
func (m *Model) LogSensitivityMatrix(sink logx.MatrixSink) error {
	if !m.HasSensitivities() {
		return cellerr.New(cellerr.NoSensitivitiesToLog, "LogSensitivityMatrix: no sensitivities configured")
	}
	rows := len(m.Intermediary)
	cols := len(m.Independents)
	if err := sink.AppendMatrix(rows, cols, m.SIntermediary); err != nil {
		return cellerr.Wrap(cellerr.SensitivityLogAppendFailed, err, "LogSensitivityMatrix: sink failed")
	}
	return nil
}

// DeinitializeLogging clears all bindings, allowing InitializeLogging to be
// called again
func (m *Model) DeinitializeLogging() error {
	m.binds = nil
	m.logging = false
	return nil
}
