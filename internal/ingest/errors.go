package ingest

import (
	"errors"
	"fmt"
)

// Kind classifies ingest failures.
type Kind int

const (
	// KindIO covers opening, reading or writing streams and stores.
	KindIO Kind = iota + 1
	// KindFormat means a known field does not have its expected shape.
	KindFormat
	// KindLogic is an internal invariant violation.
	KindLogic
	// KindLookup is a store query failure, never a plain miss.
	KindLookup
)

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrIO     = errors.New("i/o error")
	ErrFormat = errors.New("format error")
	ErrLogic  = errors.New("logic invariant violated")
	ErrLookup = errors.New("lookup error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindFormat:
		return ErrFormat
	case KindLogic:
		return ErrLogic
	case KindLookup:
		return ErrLookup
	}
	return nil
}

// Error is a failure of one ingest phase.
type Error struct {
	Kind  Kind
	Phase string // e.g. "opening stores", "transforming record 1:12345"
	Value string // offending raw value, if any
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Phase != "" {
		msg = e.Phase + ": " + msg
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinel.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// formatError reports a field that does not match its expected shape.
func formatError(field, raw string, format string, args ...any) error {
	return &Error{Kind: KindFormat, Value: raw, Err: fmt.Errorf("FORMAT/%s: "+format, append([]any{field}, args...)...)}
}

// logicError reports an internal invariant violation.
func logicError(format string, args ...any) error {
	return &Error{Kind: KindLogic, Err: fmt.Errorf(format, args...)}
}

// WithPhase attaches the phase to err, keeping an existing kind. Errors that
// are not an *Error become IO errors.
func WithPhase(phase string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var ie *Error
	if errors.As(err, &ie) {
		if ie.Phase == "" {
			cp := *ie
			cp.Phase = phase
			return &cp
		}
		return err
	}
	return &Error{Kind: kind, Phase: phase, Err: err}
}
