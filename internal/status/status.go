// Package status implements the composable success/failure report returned by
// validation, allocation and kernel dispatch.
package status

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error entry. Kind implements error so callers can match
// entries with errors.Is.
type Kind uint8

// Error kinds.
const (
	MissingRequiredInput Kind = iota + 1
	ShapeMismatch
	UnsupportedLayout
	AllocationFailure
	KernelComputationFailure
	IncorrectArgumentCount
	IncompatibleResultVariant
	InvalidParameter
	UnsupportedKernel
)

// Error implements the error interface.
func (k Kind) Error() string {
	switch k {
	case MissingRequiredInput:
		return "missing required input"
	case ShapeMismatch:
		return "shape mismatch"
	case UnsupportedLayout:
		return "unsupported layout"
	case AllocationFailure:
		return "allocation failure"
	case KernelComputationFailure:
		return "kernel computation failure"
	case IncorrectArgumentCount:
		return "incorrect argument count"
	case IncompatibleResultVariant:
		return "incompatible result variant"
	case InvalidParameter:
		return "invalid parameter"
	case UnsupportedKernel:
		return "unsupported kernel"
	default:
		return fmt.Sprintf("status kind %d", uint8(k))
	}
}

// Error is one entry of a Status: a kind plus the argument it concerns.
type Error struct {
	Kind     Kind
	Argument string // Name of the input, output or parameter involved
	Details  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Argument != "" && e.Details != "":
		return fmt.Sprintf("%s: %q: %s", e.Kind.Error(), e.Argument, e.Details)
	case e.Argument != "":
		return fmt.Sprintf("%s: %q", e.Kind.Error(), e.Argument)
	case e.Details != "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Details)
	default:
		return e.Kind.Error()
	}
}

// Unwrap returns the entry's kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Status carries zero or more error entries. The zero value is the empty
// (successful) status.
type Status struct {
	errs []*Error
}

// OK is the empty status.
var OK = Status{}

// New returns a status with a single entry.
func New(kind Kind, argument, format string, args ...any) Status {
	details := format
	if len(args) > 0 {
		details = fmt.Sprintf(format, args...)
	}
	return Status{errs: []*Error{{Kind: kind, Argument: argument, Details: details}}}
}

// FromError wraps err as a status entry of the given kind. Entries already
// carried by err are kept with their own kinds.
func FromError(kind Kind, argument string, err error) Status {
	if err == nil {
		return Status{}
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.st
	}
	var e *Error
	if errors.As(err, &e) {
		return Status{errs: []*Error{e}}
	}
	return Status{errs: []*Error{{Kind: kind, Argument: argument, Details: err.Error()}}}
}

// OK reports whether the status has no entries.
func (s Status) OK() bool {
	return len(s.errs) == 0
}

// Combine returns a status holding the entries of s followed by those of other.
// Combine is associative and the empty status is its identity.
func (s Status) Combine(other Status) Status {
	if len(other.errs) == 0 {
		return s
	}
	if len(s.errs) == 0 {
		return other
	}
	errs := make([]*Error, 0, len(s.errs)+len(other.errs))
	errs = append(errs, s.errs...)
	errs = append(errs, other.errs...)
	return Status{errs: errs}
}

// Add appends the entries of other to s.
func (s *Status) Add(other Status) {
	*s = s.Combine(other)
}

// Errors returns the entries in the order they were recorded.
func (s Status) Errors() []*Error {
	return append([]*Error(nil), s.errs...)
}

// Has reports whether any entry has the given kind.
func (s Status) Has(kind Kind) bool {
	for _, e := range s.errs {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Err returns nil for an empty status, otherwise an error that unwraps to
// every entry.
func (s Status) Err() error {
	if len(s.errs) == 0 {
		return nil
	}
	return &statusError{st: s}
}

// String formats the entries separated by semicolons.
func (s Status) String() string {
	if len(s.errs) == 0 {
		return "ok"
	}
	parts := make([]string, len(s.errs))
	for i, e := range s.errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

type statusError struct {
	st Status
}

func (e *statusError) Error() string {
	return e.st.String()
}

func (e *statusError) Unwrap() []error {
	out := make([]error, len(e.st.errs))
	for i, err := range e.st.errs {
		out[i] = err
	}
	return out
}

// Of extracts the status carried by err. Errors produced outside this package
// become a single KernelComputationFailure entry.
func Of(err error) Status {
	return FromError(KernelComputationFailure, "", err)
}
