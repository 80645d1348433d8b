// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package logx implements the variable-logging substrate: capability-set
// sinks borrowed from the host, and the bindings that tie a fully
// qualified model variable name to one of them
package logx

// Sink receives one scalar value per invocation; it is borrowed from the
// caller, never owned by the engine (see simrun for lifecycle notes)
type Sink interface {
	AppendFloat(v float64) error
}

// RootSink receives one root-crossing record (t, direction) per invocation;
// direction is -1 or +1 (falling or rising crossing of g(t,y)=0)
type RootSink interface {
	AppendRoot(t float64, direction int) error
}

// MatrixSink receives one ns_dependents x ns_independents snapshot per
// invocation, given row-major in data (len(data) == rows*cols)
type MatrixSink interface {
	AppendMatrix(rows, cols int, data []float64) error
}
