// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cellerr defines the stable error taxonomy surfaced by the
// cardiac-cell simulation engine at its host boundary
package cellerr

import (
	"github.com/cpmech/gosl/chk"
)

// Kind identifies a stable error category a host wrapper can switch on
type Kind int

// error kinds
const (
	OutOfMemory Kind = iota
	InvalidModel
	InvalidPacing
	LoggingAlreadyInitialized
	LoggingNotInitialized
	UnknownVariablesInLog
	LogAppendFailed
	SensitivityLogAppendFailed
	NoSensitivitiesToLog
	SolverError
	ArithmeticError
	ValueError
	OverflowError
)

// names of error kinds, for printing
var names = map[Kind]string{
	OutOfMemory:                "OUT_OF_MEMORY",
	InvalidModel:               "INVALID_MODEL",
	InvalidPacing:              "INVALID_PACING",
	LoggingAlreadyInitialized:  "LOGGING_ALREADY_INITIALIZED",
	LoggingNotInitialized:      "LOGGING_NOT_INITIALIZED",
	UnknownVariablesInLog:      "UNKNOWN_VARIABLES_IN_LOG",
	LogAppendFailed:            "LOG_APPEND_FAILED",
	SensitivityLogAppendFailed: "SENSITIVITY_LOG_APPEND_FAILED",
	NoSensitivitiesToLog:       "NO_SENSITIVITIES_TO_LOG",
	SolverError:                "SOLVER_ERROR",
	ArithmeticError:            "ARITHMETIC_ERROR",
	ValueError:                 "VALUE_ERROR",
	OverflowError:              "OVERFLOW_ERROR",
}

// String implements fmt.Stringer
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "UNKNOWN_ERROR"
}

// Error is the error type returned at every engine boundary; a host wrapper
// type-switches on Kind() to map onto its own exception discipline
type Error struct {
	K     Kind
	Msg   string
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.K.String() + ": " + e.Msg + ": " + e.Cause.Error()
	}
	return e.K.String() + ": " + e.Msg
}

// Unwrap allows errors.Is/errors.As to see the wrapped cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Kind returns the stable error kind
func (e *Error) Kind() Kind {
	return e.K
}

// New creates a new tagged error, formatting Msg with chk.Err's conventions
func New(k Kind, format string, args ...interface{}) error {
	return &Error{K: k, Msg: chk.Err(format, args...).Error()}
}

// Wrap tags an existing error (e.g. from a sink callback or the solver) with a Kind
func Wrap(k Kind, cause error, format string, args ...interface{}) error {
	return &Error{K: k, Msg: chk.Err(format, args...).Error(), Cause: cause}
}

// Is reports whether err carries the given Kind
func Is(err error, k Kind) bool {
	if e, ok := err.(*Error); ok {
		return e.K == k
	}
	return false
}
