// Package status implements the error taxonomy described for the IREE
// runtime: a small closed set of error kinds plus a builder that
// accumulates message fragments before finalizing into a single error
// value. It plays the role the source's Status/StatusBuilder type played,
// minus the surface that was reduced out of scope.
package status

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the closed set of error categories every fallible
// runtime operation may raise.
type Kind int

const (
	Unknown Kind = iota
	InvalidArgument
	OutOfRange
	FailedPrecondition
	NotFound
	AlreadyExists
	ResourceExhausted
	Unimplemented
	Unavailable
	DeadlineExceeded
	Cancelled
	Aborted
	DataLoss
	Internal
	PermissionDenied
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case OutOfRange:
		return "out of range"
	case FailedPrecondition:
		return "failed precondition"
	case NotFound:
		return "not found"
	case AlreadyExists:
		return "already exists"
	case ResourceExhausted:
		return "resource exhausted"
	case Unimplemented:
		return "unimplemented"
	case Unavailable:
		return "unavailable"
	case DeadlineExceeded:
		return "deadline exceeded"
	case Cancelled:
		return "cancelled"
	case Aborted:
		return "aborted"
	case DataLoss:
		return "data loss"
	case Internal:
		return "internal"
	case PermissionDenied:
		return "permission denied"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Status is the error-carrying value returned by every fallible runtime
// operation. A Wrap'd Status builds its cause chain with
// github.com/pkg/errors: the cause is captured with a stack trace via
// errors.Wrap, and Unwrap hands back the chain with that bookkeeping
// stripped off via errors.Cause, so a caller walking the chain with
// errors.Is/errors.As lands on the real underlying error (often another
// *Status) rather than an internal pkg/errors wrapper type.
type Status struct {
	kind Kind
	msg  string
	err  error
}

func (s *Status) Error() string {
	if s.err != nil {
		return fmt.Sprintf("%s: %v", s.kind, s.err)
	}
	return fmt.Sprintf("%s: %s", s.kind, s.msg)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause,
// peeled via errors.Cause so it never exposes a pkg/errors stack/message
// wrapper as the unwrapped value.
func (s *Status) Unwrap() error {
	if s.err == nil {
		return nil
	}
	return errors.Cause(s.err)
}

// Kind reports the error's taxonomy entry.
func (s *Status) Kind() Kind { return s.kind }

// Is reports whether target is a *Status with the same Kind, so callers
// can write errors.Is(err, status.New(status.NotFound, "")).
func (s *Status) Is(target error) bool {
	other, ok := target.(*Status)
	if !ok {
		return false
	}
	return s.kind == other.kind
}

// New builds a Status directly from a kind and formatted message.
func New(kind Kind, format string, args ...any) *Status {
	return &Status{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a Status that carries cause as its wrapped error, via
// errors.Wrap so the wrap point's stack trace is captured alongside the
// appended message rather than discarding either.
func Wrap(kind Kind, cause error, format string, args ...any) *Status {
	msg := fmt.Sprintf(format, args...)
	return &Status{kind: kind, msg: msg, err: errors.Wrap(cause, msg)}
}

// Builder accumulates message fragments before finalizing to a Status.
// It is the reduced, surface-only form of the source's StatusBuilder:
// a constructor that appends fragments and then finalizes to an error
// value.
type Builder struct {
	kind  Kind
	parts []string
	cause error
}

// NewBuilder starts a Builder for the given error kind.
func NewBuilder(kind Kind) *Builder {
	return &Builder{kind: kind}
}

// Append adds a formatted message fragment.
func (b *Builder) Append(format string, args ...any) *Builder {
	b.parts = append(b.parts, fmt.Sprintf(format, args...))
	return b
}

// Cause attaches an underlying error, preserved through Unwrap.
func (b *Builder) Cause(err error) *Builder {
	b.cause = err
	return b
}

// Build finalizes the accumulated fragments into a Status.
func (b *Builder) Build() *Status {
	msg := ""
	for i, p := range b.parts {
		if i > 0 {
			msg += "; "
		}
		msg += p
	}
	if b.cause == nil {
		return &Status{kind: b.kind, msg: msg}
	}
	return &Status{kind: b.kind, msg: msg, err: errors.Wrap(b.cause, msg)}
}

// KindOf extracts the Kind of err if it is (or wraps) a *Status,
// otherwise returns Unknown.
func KindOf(err error) Kind {
	var s *Status
	if errors.As(err, &s) {
		return s.kind
	}
	return Unknown
}

// Is reports whether err is a *Status of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
