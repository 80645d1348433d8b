// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package bench implements simrun.Benchmarker with the real wall clock, the
// same time.Now/time.Since pairing fem.FEM.Run uses to report CPU time
package bench

import "time"

// Recorder implements simrun.Benchmarker by timing from the moment it is
// created; Elapsed returns seconds since then
type Recorder struct {
	start time.Time
}

// NewRecorder returns a Recorder starting now
func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

// Elapsed implements simrun.Benchmarker
func (r *Recorder) Elapsed() float64 {
	return time.Since(r.start).Seconds()
}
