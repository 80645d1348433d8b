// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cellm

import (
	"github.com/cpmech/cellsim/cellerr"
	"github.com/cpmech/gosl/chk"
)

// allocators maps a model name to its RHS constructor, the same
// map[string]func()-based factory the teacher's mdl/solid and mdl/gen
// packages register concrete constitutive models under
var allocators = make(map[string]func() RHS)

// Register binds name to alloc. Concrete model packages call this from an
// init() function; registering the same name twice is a programmer error.
func Register(name string, alloc func() RHS) {
	if _, dup := allocators[name]; dup {
		chk.Panic("cellm: model %q is already registered", name)
	}
	allocators[name] = alloc
}

// Allocate constructs a fresh Model around the RHS registered under name.
// Fails with INVALID_MODEL if name is unknown.
func Allocate(name string) (*Model, error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, cellerr.New(cellerr.InvalidModel, "cellm.Allocate: no model registered under %q", name)
	}
	return Create(alloc()), nil
}

// Registered returns the names of every currently registered model, mostly
// useful for CLI help text and tests
func Registered() []string {
	out := make([]string, 0, len(allocators))
	for name := range allocators {
		out = append(out, name)
	}
	return out
}
