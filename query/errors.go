package query

import "github.com/pkg/errors"

// ErrBadQuery is the fatal error kind for a query description that lacks a
// scan clause or has a malformed clause: an unrecognized operator kind, or
// an argument list that doesn't match what the kind expects.
var ErrBadQuery = errors.New("bad query description")

// ErrUnknownOperator names a clause kind the assembler does not recognize.
// Wraps ErrBadQuery.
var ErrUnknownOperator = errors.Wrap(ErrBadQuery, "unknown operator")

// ErrEmptyQuery is returned when a query description has no SCAN clause.
// Wraps ErrBadQuery.
var ErrEmptyQuery = errors.Wrap(ErrBadQuery, "missing scan")

// ErrBadArgs is returned when an operator's argument list does not match
// what that operator kind expects. Wraps ErrBadQuery.
var ErrBadArgs = errors.Wrap(ErrBadQuery, "bad operator arguments")
