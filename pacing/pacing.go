// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package pacing implements the two pacing state machines that produce a
// time-varying external stimulus: EventPacing (schedule of events) and
// FixedPacing (precomputed time series). Both satisfy System, a small
// capability interface — the same style the teacher expresses
// ele.Element's natural-boundary-condition callbacks with
// (dbf.T/fun.TimeSpace), rather than a class hierarchy.
package pacing

// System is the tagged-variant interface common to EventPacing and
// FixedPacing (spec §9's "dynamic dispatch over pacing kinds" redesign)
type System interface {
	// Advance moves the cursor forward so Level reflects activity at t.
	// Callers must present non-decreasing t.
	Advance(t float64)

	// NextTime returns the next time at which Level may change, and
	// whether such a time exists (FixedPacing never contributes one)
	NextTime() (t float64, ok bool)

	// Level returns the currently active pacing level
	Level() float64
}
