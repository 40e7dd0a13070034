/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fnerr defines the error kinds surfaced by the bundle execution engine. None of the kinds
// are retried by the engine itself; retry decisions belong to the worker runtime driving it.
package fnerr

import (
	"errors"
	"fmt"
)

// ErrKind classifies an engine error.
type ErrKind int16

const (
	Unknown           ErrKind = iota // Not produced by the engine, e.g. a user function error
	Decode                           // Malformed persisted state or side input bytes
	Transport                        // The state client could not be reached or failed
	MissingSideInput                 // A strict singleton side input has no value
	InvalidSideInput                 // A singleton side input has more than one value
	ContractViolation                // Lifecycle misuse or a configuration bug
)

func (ek ErrKind) String() string {
	switch ek {
	case Decode:
		return "Decode"
	case Transport:
		return "Transport"
	case MissingSideInput:
		return "MissingSideInput"
	case InvalidSideInput:
		return "InvalidSideInput"
	case ContractViolation:
		return "ContractViolation"
	default:
		return "Unknown"
	}
}

// Error is an engine error carrying its kind and an optional cause.
type Error struct {
	errKind    ErrKind
	errMessage string
	cause      error
}

// New returns an Error of the given kind.
func New(kind ErrKind, msg string) *Error {
	return &Error{
		errKind:    kind,
		errMessage: msg,
	}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap returns an Error of the given kind caused by err.
func Wrap(kind ErrKind, err error, msg string) *Error {
	return &Error{
		errKind:    kind,
		errMessage: msg,
		cause:      err,
	}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.errKind, e.errMessage, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.errKind, e.errMessage)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) ErrorKind() ErrKind {
	return e.errKind
}

func (e *Error) ErrorMessage() string {
	return e.errMessage
}

// KindOf returns the kind of the first Error found in err's chain, Unknown otherwise.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.errKind
	}
	return Unknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrKind) bool {
	return err != nil && KindOf(err) == kind
}
