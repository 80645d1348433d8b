// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package memsink implements in-memory logx.Sink/RootSink/MatrixSink
// implementations, used pervasively by the test suite and suitable for
// short interactive runs
package memsink

// Float collects appended scalars in visit order
type Float struct {
	Values []float64
}

// AppendFloat implements logx.Sink
func (f *Float) AppendFloat(v float64) error {
	f.Values = append(f.Values, v)
	return nil
}

// Root collects appended root-crossing records in visit order
type Root struct {
	Times      []float64
	Directions []int
}

// AppendRoot implements logx.RootSink
func (r *Root) AppendRoot(t float64, direction int) error {
	r.Times = append(r.Times, t)
	r.Directions = append(r.Directions, direction)
	return nil
}

// Len returns the number of recorded root crossings
func (r *Root) Len() int {
	return len(r.Times)
}

// Matrix collects appended ns_dependents x ns_independents snapshots,
// each reshaped into a nested [][]float64 in visit order
type Matrix struct {
	Snapshots [][][]float64
}

// AppendMatrix implements logx.MatrixSink
func (m *Matrix) AppendMatrix(rows, cols int, data []float64) error {
	snap := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		copy(row, data[i*cols:(i+1)*cols])
		snap[i] = row
	}
	m.Snapshots = append(m.Snapshots, snap)
	return nil
}
