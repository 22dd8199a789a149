// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an Error by the error taxonomy of this engine's
// error handling design: record-level errors are recoverable at the
// record, compressed-id/identity errors are part-fatal, formula errors
// are metric-fatal, and Reentry is a programmer bug fatal to the call.
type ErrorKind int

const (
	MalformedRecord ErrorKind = iota
	UnknownMetric
	CyclicFormula
	InconsistentCompressedID
	IdentityConflict
	Reentry
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedRecord:
		return "malformed record"
	case UnknownMetric:
		return "unknown metric"
	case CyclicFormula:
		return "cyclic formula"
	case InconsistentCompressedID:
		return "inconsistent compressed id"
	case IdentityConflict:
		return "identity conflict"
	case Reentry:
		return "reentry"
	default:
		return "unknown error kind"
	}
}

// Sentinel errors, one per ErrorKind, so callers can use errors.Is
// without depending on *Error's field layout.
var (
	ErrMalformedRecord          = errors.New("profdata: malformed record")
	ErrUnknownMetric            = errors.New("profdata: unknown metric")
	ErrCyclicFormula            = errors.New("profdata: cyclic formula")
	ErrInconsistentCompressedID = errors.New("profdata: inconsistent compressed id")
	ErrIdentityConflict         = errors.New("profdata: identity conflict")
	ErrReentry                  = errors.New("profdata: reentrant call rejected")
)

var sentinelByKind = map[ErrorKind]error{
	MalformedRecord:          ErrMalformedRecord,
	UnknownMetric:            ErrUnknownMetric,
	CyclicFormula:            ErrCyclicFormula,
	InconsistentCompressedID: ErrInconsistentCompressedID,
	IdentityConflict:         ErrIdentityConflict,
	Reentry:                  ErrReentry,
}

// Error carries an ErrorKind plus enough context (which part, which
// record) to report the failure without the caller needing to
// re-derive it.
type Error struct {
	Kind   ErrorKind
	Part   string
	Record string
	Cause  error
}

func (e *Error) Error() string {
	sentinel := sentinelByKind[e.Kind]
	msg := sentinel.Error()
	if e.Part != "" {
		msg = fmt.Sprintf("%s: part %q", msg, e.Part)
	}
	if e.Record != "" {
		msg = fmt.Sprintf("%s: record %q", msg, e.Record)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes both the ErrorKind's sentinel (so errors.Is(err,
// ErrMalformedRecord) works) and any wrapped cause.
func (e *Error) Unwrap() []error {
	sentinel := sentinelByKind[e.Kind]
	if e.Cause != nil {
		return []error{sentinel, e.Cause}
	}
	return []error{sentinel}
}

func newError(kind ErrorKind, part, record string, cause error) *Error {
	return &Error{Kind: kind, Part: part, Record: record, Cause: cause}
}
