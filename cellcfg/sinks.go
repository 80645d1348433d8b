// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cellcfg

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/cpmech/cellsim/cellerr"
	"github.com/cpmech/cellsim/logx"
	"github.com/cpmech/cellsim/logx/csvsink"
)

// rootSink adapts two csvsink columns into a logx.RootSink, writing one
// (t, direction) row per root crossing
type rootSink struct {
	t, dir *csvsink.Column
}

func newRootSink(w *csv.Writer) (logx.RootSink, error) {
	table := csvsink.New(w, []string{"t", "direction"})
	t, err := table.Column("t")
	if err != nil {
		return nil, err
	}
	dir, err := table.Column("direction")
	if err != nil {
		return nil, err
	}
	return &rootSink{t: t, dir: dir}, nil
}

// AppendRoot implements logx.RootSink
func (s *rootSink) AppendRoot(t float64, direction int) error {
	if err := s.t.AppendFloat(t); err != nil {
		return err
	}
	return s.dir.AppendFloat(float64(direction))
}

// sensSink adapts a raw csv.Writer into a logx.MatrixSink, flattening each
// rows x cols snapshot into one row-major CSV row; the header records the
// shape of the first snapshot seen and every later snapshot is expected to
// share it (ConfigureSensitivities is fixed for the lifetime of a run).
type sensSink struct {
	w        *csv.Writer
	rows     int
	cols     int
	wroteHdr bool
}

func newSensSink(w *csv.Writer) logx.MatrixSink {
	return &sensSink{w: w}
}

// AppendMatrix implements logx.MatrixSink
func (s *sensSink) AppendMatrix(rows, cols int, data []float64) error {
	if !s.wroteHdr {
		s.rows, s.cols = rows, cols
		hdr := make([]string, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				hdr[i*cols+j] = "s" + strconv.Itoa(i) + "_" + strconv.Itoa(j)
			}
		}
		if err := s.w.Write(hdr); err != nil {
			return cellerr.Wrap(cellerr.SensitivityLogAppendFailed, err, "sensSink: cannot write header")
		}
		s.wroteHdr = true
	}
	if rows != s.rows || cols != s.cols {
		return cellerr.New(cellerr.SensitivityLogAppendFailed, "sensSink: shape changed mid-run: (%d,%d) != (%d,%d)", rows, cols, s.rows, s.cols)
	}
	rec := make([]string, len(data))
	for i, v := range data {
		rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if err := s.w.Write(rec); err != nil {
		return cellerr.Wrap(cellerr.SensitivityLogAppendFailed, err, "sensSink: cannot write row")
	}
	s.w.Flush()
	return s.w.Error()
}

// createFile creates path, truncating any existing file, analogous to the
// teacher's io.RemoveAll + os.MkdirAll at the top of a run
func createFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, cellerr.Wrap(cellerr.ValueError, err, "cellcfg: cannot create %q", path)
	}
	return f, nil
}
