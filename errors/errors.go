// Package errors provides error handling for clutz.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints on CLI failures
//
// Usage:
//
//	if err := dump.Decode(r); err != nil {
//	    return errors.Wrap(err, "failed to decode oracle dump")
//	}
//
//	return errors.WithHint(err, "regenerate the dump with a newer oracle")
//
// Translation problems (unresolvable references, ambiguous enum values) are
// not errors; they are recorded as diag.Diagnostic values and emission goes on.
// Errors here are for failures that stop a run or skip a unit.
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
	CombineErrors      = crdb.CombineErrors
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors. Wrap these with errors.Wrap() to add context while
// preserving identity for errors.Is().
var (
	// ErrNotFound indicates a requested file, unit or symbol does not exist
	ErrNotFound = New("not found")

	// ErrInvalidOracle indicates the oracle dump is malformed
	ErrInvalidOracle = New("invalid oracle dump")

	// ErrUnsupportedVersion indicates the oracle dump schema version is outside the accepted range
	ErrUnsupportedVersion = New("unsupported oracle dump version")

	// ErrFatalGraph indicates a unit whose self-declaration cannot be built
	ErrFatalGraph = New("fatal graph error")

	// ErrUnresolvable indicates a reference that names no symbol in the graph
	ErrUnresolvable = New("unresolvable reference")

	// ErrOutOfDate indicates generated declarations differ from the golden copy
	ErrOutOfDate = New("declarations out of date")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsFatalGraphError checks if an error is or wraps ErrFatalGraph
func IsFatalGraphError(err error) bool {
	return err != nil && Is(err, ErrFatalGraph)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewFatalGraphError creates a fatal graph error for one unit
func NewFatalGraphError(format string, args ...interface{}) error {
	return Wrap(ErrFatalGraph, Newf(format, args...).Error())
}

// NewInvalidOracleError creates an invalid-oracle error with a formatted message
func NewInvalidOracleError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidOracle, Newf(format, args...).Error())
}
