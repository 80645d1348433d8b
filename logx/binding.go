// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import "github.com/cpmech/gosl/chk"

// Binding ties a fully qualified variable name to a borrowed sink and the
// address of the source variable inside a Model
type Binding struct {
	Name   string  // fully qualified name, e.g. "membrane.V" or "dot(ina.m)"
	Sink   Sink    // borrowed external sink
	Source *float64 // address of the source variable
}

// Bindings is an ordered list of Binding, preserving caller-supplied order
type Bindings []Binding

// Append appends the current value of every bound source to its sink, in
// binding order, stopping at the first failure
func (bs Bindings) Append() (failedName string, err error) {
	for _, b := range bs {
		if err = b.Sink.AppendFloat(*b.Source); err != nil {
			return b.Name, chk.Err("sink for %q failed: %v", b.Name, err)
		}
	}
	return "", nil
}
