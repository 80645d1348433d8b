// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package csvsink implements a logx.Sink that accumulates one row of
// named columns per logged point and flushes it to an encoding/csv
// writer, the on-disk counterpart of the teacher's out package (which
// extrapolates and writes FE results); here adapted to flat per-step
// scalar log channels.
package csvsink

import (
	"encoding/csv"
	"strconv"

	"github.com/cpmech/gosl/chk"
)

// Table buffers one row of named columns and writes it to w once every
// column has been appended since the last row — so a caller driving
// several sinks through one Model.Log() call never has to remember to
// flush explicitly. Flush is also exposed directly; it fails on a partial
// row (one in which some column has not been appended).
type Table struct {
	w        *csv.Writer
	headers  []string
	index    map[string]int
	row      []float64
	written  []bool
	writtenN int
	wroteHdr bool
}

// New returns a Table writing to w with the given column headers, in order
func New(w *csv.Writer, headers []string) *Table {
	t := &Table{
		w:       w,
		headers: append([]string(nil), headers...),
		index:   make(map[string]int, len(headers)),
		row:     make([]float64, len(headers)),
		written: make([]bool, len(headers)),
	}
	for i, h := range headers {
		t.index[h] = i
	}
	return t
}

// Column returns a logx.Sink bound to the named column of this table
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, chk.Err("csvsink: unknown column %q", name)
	}
	return &Column{t: t, i: i}, nil
}

// Flush writes the header once (on first call) then the accumulated row,
// and resets the written-flags for the next row. Fails if any column was
// never appended; a no-op if no column has been written since the last row.
func (t *Table) Flush() error {
	if t.writtenN == 0 {
		return nil
	}
	if !t.wroteHdr {
		if err := t.w.Write(t.headers); err != nil {
			return chk.Err("csvsink: cannot write header: %v", err)
		}
		t.wroteHdr = true
	}
	rec := make([]string, len(t.row))
	for i, v := range t.row {
		if !t.written[i] {
			return chk.Err("csvsink: column %q was not written before flush", t.headers[i])
		}
		rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if err := t.w.Write(rec); err != nil {
		return chk.Err("csvsink: cannot write row: %v", err)
	}
	t.w.Flush()
	for i := range t.written {
		t.written[i] = false
	}
	t.writtenN = 0
	return t.w.Error()
}

// Column is a logx.Sink bound to one column of a Table
type Column struct {
	t *Table
	i int
}

// AppendFloat implements logx.Sink. Once every column of the enclosing
// Table has been appended, the row flushes automatically — the usual case
// when several Columns are bound as one cellm.Model log descriptor and
// appended together by a single Model.Log() call.
func (c *Column) AppendFloat(v float64) error {
	if !c.t.written[c.i] {
		c.t.writtenN++
	}
	c.t.row[c.i] = v
	c.t.written[c.i] = true
	if c.t.writtenN == len(c.t.headers) {
		return c.t.Flush()
	}
	return nil
}
