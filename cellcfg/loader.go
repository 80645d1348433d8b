// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cellcfg

import (
	"encoding/json"
	"os"

	"github.com/cpmech/gosl/io"

	"github.com/cpmech/cellsim/cellerr"
)

// ReadRunSpec reads and decodes a RunSpec from a JSON file, the cellsim
// counterpart of inp.ReadSim. Environment variables in DirOut are expanded
// the same way inp.ReadSim expands a mesh directory.
func ReadRunSpec(path string) (*RunSpec, error) {
	b, err := io.ReadFile(path)
	if err != nil {
		return nil, cellerr.Wrap(cellerr.ValueError, err, "ReadRunSpec: cannot read %q", path)
	}
	var spec RunSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, cellerr.Wrap(cellerr.ValueError, err, "ReadRunSpec: cannot unmarshal %q", path)
	}
	if spec.Model == "" {
		return nil, cellerr.New(cellerr.ValueError, "ReadRunSpec: %q: \"model\" is required", path)
	}
	spec.DirOut = os.ExpandEnv(spec.DirOut)
	if spec.DirOut == "" {
		spec.DirOut = "."
	}
	return &spec, nil
}
