// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cellcfg

import (
	"os"
	"path/filepath"
	"testing"

	_ "github.com/cpmech/cellsim/cellm/beelerreuter"
	"github.com/cpmech/gosl/chk"
)

const sample = `{
	"desc": "single stimulus smoke run",
	"model": "beeler_reuter_1977",
	"tmin": 0,
	"tmax": 5,
	"protocols": [
		{"kind": "event", "events": [{"start": 1, "duration": 2, "level": 1}]}
	],
	"logging": {
		"variables": ["membrane.V"],
		"out": "v.csv",
		"logInterval": 1
	},
	"rootFinding": {
		"variable": "membrane.V",
		"threshold": -50,
		"out": "roots.csv"
	}
}`

func writeSpec(tst *testing.T, dir, content string) string {
	path := filepath.Join(dir, "run.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tst.Fatalf("cannot write sample spec: %v", err)
	}
	return path
}

func Test_cfg01_read(tst *testing.T) {

	chk.PrintTitle("cfg01: ReadRunSpec decodes a JSON run spec")

	dir := tst.TempDir()
	path := writeSpec(tst, dir, sample)

	spec, err := ReadRunSpec(path)
	if err != nil {
		tst.Fatalf("ReadRunSpec failed: %v", err)
	}
	if spec.Model != "beeler_reuter_1977" {
		tst.Fatalf("unexpected model: %q", spec.Model)
	}
	if spec.DirOut != "." {
		tst.Fatalf("expected DirOut to default to \".\", got %q", spec.DirOut)
	}
}

func Test_cfg02_read_missing_model(tst *testing.T) {

	chk.PrintTitle("cfg02: ReadRunSpec rejects a spec with no model name")

	dir := tst.TempDir()
	path := writeSpec(tst, dir, `{"tmax": 1}`)

	if _, err := ReadRunSpec(path); err == nil {
		tst.Fatalf("expected an error for a missing model name")
	}
}

func Test_cfg03_resolve(tst *testing.T) {

	chk.PrintTitle("cfg03: Resolve builds InitArgs and opens output files")

	dir := tst.TempDir()
	path := writeSpec(tst, dir, sample)
	spec, err := ReadRunSpec(path)
	if err != nil {
		tst.Fatalf("ReadRunSpec failed: %v", err)
	}
	spec.DirOut = dir

	run, err := Resolve(spec)
	if err != nil {
		tst.Fatalf("Resolve failed: %v", err)
	}

	if run.Model.NStates() == 0 {
		tst.Fatalf("expected a model with states")
	}
	if run.Args.RFIndex < 0 {
		tst.Fatalf("expected root finding to be configured")
	}
	if len(run.Args.Protocols) != 1 {
		tst.Fatalf("expected one protocol, got %d", len(run.Args.Protocols))
	}
	if len(run.Args.LogDescriptor) != 1 {
		tst.Fatalf("expected one bound log variable, got %d", len(run.Args.LogDescriptor))
	}

	if err := run.Close(); err != nil {
		tst.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "v.csv")); err != nil {
		tst.Fatalf("expected v.csv to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "roots.csv")); err != nil {
		tst.Fatalf("expected roots.csv to exist: %v", err)
	}
}

func Test_cfg04_unknown_state(tst *testing.T) {

	chk.PrintTitle("cfg04: Resolve rejects an unknown state override")

	dir := tst.TempDir()
	path := writeSpec(tst, dir, `{"model": "beeler_reuter_1977", "tmax": 1, "states": {"nope.nope": 1}}`)
	spec, err := ReadRunSpec(path)
	if err != nil {
		tst.Fatalf("ReadRunSpec failed: %v", err)
	}
	spec.DirOut = dir

	if _, err := Resolve(spec); err == nil {
		tst.Fatalf("expected an error for an unknown state override")
	}
}
