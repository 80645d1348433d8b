// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pacing

import (
	"math"
	"sort"

	"github.com/cpmech/cellsim/cellerr"
)

// EventRecord is one pacing schedule entry: a stimulus window of Duration
// starting at Start, repeating every Period (0 = no repetition) up to
// Multiplier occurrences (0 = repeat indefinitely, only meaningful when
// Period > 0), active at level Level.
type EventRecord struct {
	Start      float64
	Duration   float64
	Period     float64
	Multiplier float64
	Level      float64
}

// eventEntry pairs a validated record with its original schedule index, used
// to break ties when two events are simultaneously active (spec §4.2:
// "latest-starting active event wins; ties broken by schedule order")
type eventEntry struct {
	rec  EventRecord
	orig int
}

// EventPacing is a state machine producing a piecewise-constant stimulus
// level from a schedule of events
type EventPacing struct {
	events []eventEntry // sorted by Start, original index preserved
	level  float64
	lastT  float64 // time of the last Advance call
}

// Populate ingests the event list, sorting it by start time and validating
// every record. Fails with INVALID_PACING if any event has negative
// duration, negative period, negative multiplier, or a multiplier*period
// product that overflows.
func (p *EventPacing) Populate(schedule []EventRecord) error {
	entries := make([]eventEntry, len(schedule))
	for i, r := range schedule {
		if r.Duration < 0 {
			return cellerr.New(cellerr.InvalidPacing, "event %d: negative duration %g", i, r.Duration)
		}
		if r.Period < 0 {
			return cellerr.New(cellerr.InvalidPacing, "event %d: negative period %g", i, r.Period)
		}
		if r.Multiplier < 0 {
			return cellerr.New(cellerr.InvalidPacing, "event %d: negative multiplier %g", i, r.Multiplier)
		}
		if prod := r.Multiplier * r.Period; math.IsInf(prod, 0) {
			return cellerr.New(cellerr.InvalidPacing, "event %d: multiplier*period overflows", i)
		}
		entries[i] = eventEntry{rec: r, orig: i}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].rec.Start < entries[j].rec.Start })
	p.events = entries
	p.level = 0
	return nil
}

// occurrenceAt returns the start time of the occurrence of r active at t,
// and whether r is active at t at all. Period <= 0 means a single
// occurrence; Period > 0 with Multiplier == 0 repeats indefinitely.
func occurrenceAt(r EventRecord, t float64) (start float64, active bool) {
	if r.Period <= 0 {
		return r.Start, t >= r.Start && t < r.Start+r.Duration
	}
	if t < r.Start {
		return 0, false
	}
	k := math.Floor((t - r.Start) / r.Period)
	if r.Multiplier > 0 && k >= r.Multiplier {
		return 0, false
	}
	start = r.Start + k*r.Period
	return start, t >= start && t < start+r.Duration
}

// nextChangeAfter returns the next time strictly after t at which r's
// contribution to the active level could change (a start or an end), and
// whether such a time exists.
func nextChangeAfter(r EventRecord, t float64) (float64, bool) {
	if r.Period <= 0 {
		if t < r.Start {
			return r.Start, true
		}
		if t < r.Start+r.Duration {
			return r.Start + r.Duration, true
		}
		return 0, false
	}
	limited := r.Multiplier > 0
	if t < r.Start {
		return r.Start, true
	}
	k := math.Floor((t - r.Start) / r.Period)
	if limited && k >= r.Multiplier {
		return 0, false
	}
	start := r.Start + k*r.Period
	end := start + r.Duration
	if t < end {
		return end, true
	}
	// between windows: wait for the next occurrence, if any remain
	if limited && k+1 >= r.Multiplier {
		return 0, false
	}
	return r.Start + (k+1)*r.Period, true
}

// Advance moves the cursor so Level() reflects which events are active at t.
// Among overlapping active events, the latest-starting one wins; ties are
// broken by original schedule order.
func (p *EventPacing) Advance(t float64) {
	p.lastT = t
	bestLevel := 0.0
	bestStart := math.Inf(-1)
	bestOrig := -1
	for _, e := range p.events {
		start, active := occurrenceAt(e.rec, t)
		if !active {
			continue
		}
		if start > bestStart || (start == bestStart && e.orig < bestOrig) {
			bestLevel, bestStart, bestOrig = e.rec.Level, start, e.orig
		}
	}
	p.level = bestLevel
}

// Level returns the currently active level, or 0 when no event is active
func (p *EventPacing) Level() float64 { return p.level }

// NextTime returns the next time after the last Advance call at which the
// active level may change: the start of an event, the end of an active
// event, or the next period repetition.
func (p *EventPacing) NextTime() (float64, bool) {
	has := false
	best := math.Inf(1)
	for _, e := range p.events {
		cand, ok := nextChangeAfter(e.rec, p.lastT)
		if ok && cand < best {
			best, has = cand, true
		}
	}
	return best, has
}
