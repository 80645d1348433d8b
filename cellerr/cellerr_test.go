// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cellerr

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_err01(tst *testing.T) {

	chk.PrintTitle("err01: New tags a Kind and formats a message")

	err := New(InvalidPacing, "event %d: bad duration", 3)
	if !Is(err, InvalidPacing) {
		tst.Fatalf("expected InvalidPacing, got %v", err)
	}
	if Is(err, InvalidModel) {
		tst.Fatalf("did not expect InvalidModel")
	}
	if err.Error() == "" {
		tst.Fatalf("expected a non-empty message")
	}
}

func Test_err02(tst *testing.T) {

	chk.PrintTitle("err02: Wrap preserves the cause for errors.Unwrap")

	cause := errors.New("sink exploded")
	err := Wrap(LogAppendFailed, cause, "Log: sink for %q failed", "membrane.V")
	if !Is(err, LogAppendFailed) {
		tst.Fatalf("expected LogAppendFailed, got %v", err)
	}
	if !errors.Is(err, cause) {
		tst.Fatalf("expected errors.Is to see the wrapped cause")
	}
}

func Test_err03(tst *testing.T) {

	chk.PrintTitle("err03: Kind.String is stable and falls back for unknown values")

	if InvalidModel.String() != "INVALID_MODEL" {
		tst.Fatalf("unexpected name for InvalidModel: %s", InvalidModel.String())
	}
	unknown := Kind(9999)
	if unknown.String() != "UNKNOWN_ERROR" {
		tst.Fatalf("expected UNKNOWN_ERROR for an out-of-range kind, got %s", unknown.String())
	}
}

func Test_err04(tst *testing.T) {

	chk.PrintTitle("err04: Is returns false for a plain error")

	plain := errors.New("not a cellerr.Error")
	if Is(plain, InvalidModel) {
		tst.Fatalf("Is should not match a plain error")
	}
}
