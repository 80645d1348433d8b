// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package csvsink

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_csv01(tst *testing.T) {

	chk.PrintTitle("csv01: a row auto-flushes once every column is appended")

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	table := New(w, []string{"t", "V"})

	colT, err := table.Column("t")
	if err != nil {
		tst.Fatalf("Column(t) failed: %v", err)
	}
	colV, err := table.Column("V")
	if err != nil {
		tst.Fatalf("Column(V) failed: %v", err)
	}

	if err := colT.AppendFloat(0); err != nil {
		tst.Fatalf("AppendFloat(t) failed: %v", err)
	}
	if err := colV.AppendFloat(-84.5286); err != nil {
		tst.Fatalf("AppendFloat(V) failed: %v", err)
	}
	if err := colT.AppendFloat(1); err != nil {
		tst.Fatalf("AppendFloat(t) failed: %v", err)
	}
	if err := colV.AppendFloat(-84.1); err != nil {
		tst.Fatalf("AppendFloat(V) failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		tst.Fatalf("expected a header row plus two data rows, got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "t,V" {
		tst.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "0,-84.5286" {
		tst.Fatalf("unexpected first row: %q", lines[1])
	}
}

func Test_csv02(tst *testing.T) {

	chk.PrintTitle("csv02: Flush fails if a column was never appended")

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	table := New(w, []string{"t", "V"})
	colT, _ := table.Column("t")
	colT.AppendFloat(0)
	if err := table.Flush(); err == nil {
		tst.Fatalf("expected Flush to fail with a missing column")
	}
}

func Test_csv03(tst *testing.T) {

	chk.PrintTitle("csv03: Column rejects an unknown name")

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	table := New(w, []string{"t"})
	if _, err := table.Column("nope"); err == nil {
		tst.Fatalf("expected an error for an unknown column name")
	}
}
