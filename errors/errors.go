package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors. Every error returned by a handler should wrap one of these so
// that the client receives a stable ABCI code.
var (
	ErrUnauthorized = Register(2, "unauthorized")
	ErrNotFound     = Register(3, "not found")
	// ErrMsg marks a message that cannot be decoded or validated.
	ErrMsg = Register(4, "invalid message")
	// ErrModel marks a stored record that fails validation.
	ErrModel     = Register(5, "invalid model")
	ErrDuplicate = Register(6, "duplicate")
	// ErrHuman marks a code path that correct wiring never reaches.
	ErrHuman     = Register(7, "coding error")
	ErrImmutable = Register(8, "cannot be modified")
	ErrEmpty     = Register(9, "value is empty")
	// ErrState marks an operation that the current ledger state forbids,
	// for example a transfer while paused.
	ErrState  = Register(10, "invalid state")
	ErrType   = Register(11, "invalid type")
	ErrAmount = Register(13, "invalid amount")
	ErrInput  = Register(14, "invalid input")
	// ErrOverflow marks arithmetic that does not fit the amount type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")
	ErrDatabase = Register(17, "database")
	// ErrPanic is set by the recovery decorator. Its details are never
	// shown to clients.
	ErrPanic = Register(111222, "panic")
)

// Code 1 belongs to errors that do not carry a code of their own.
var registry = map[uint32]*Error{1: nil}

// Register declares a root error. Codes are unique and a second registration
// of the same code panics, so call it from package level vars only.
func Register(code uint32, description string) *Error {
	if prev, ok := registry[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	registry[code] = e
	return e
}

// Error is a root error. It carries the ABCI code returned to clients.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string    { return e.desc }
func (e Error) ABCICode() uint32 { return e.code }

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Is reports whether err is this root error, wraps it, or was nested under
// it with Nest. A nil kind matches only nil errors.
func (e *Error) Is(err error) bool {
	if e == nil {
		return err == nil || reflect.ValueOf(err).IsNil()
	}
	for err != nil {
		if err == e {
			return true
		}
		if k, ok := err.(kinder); ok && k.Kind() == e {
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Wrap prefixes err with description and records a stack trace at the
// innermost wrap. Wrapping nil returns nil.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: description, parent: withStack(err)}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string { return e.msg + ": " + e.parent.Error() }
func (e *wrappedError) Cause() error  { return e.parent }

// Nest files err under kind. The result matches kind and everything err
// matches, but reports the ABCI code of err. The proxy uses it to surface
// failures of the implementation it called.
func Nest(kind *Error, err error, description string) error {
	if err == nil {
		return nil
	}
	return &nestedError{kind: kind, msg: description, parent: withStack(err)}
}

type nestedError struct {
	kind   *Error
	msg    string
	parent error
}

func (e *nestedError) Error() string {
	return e.kind.desc + ": " + e.msg + ": " + e.parent.Error()
}

func (e *nestedError) Cause() error     { return e.parent }
func (e *nestedError) Kind() *Error     { return e.kind }
func (e *nestedError) ABCICode() uint32 { return abciCode(e.parent) }

// Recover must be deferred. It turns a panic into an ErrPanic assigned to err.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

type kinder interface {
	Kind() *Error
}

func withStack(err error) error {
	if stackTrace(err) != nil {
		return err
	}
	return errors.WithStack(err)
}

// stackTrace returns the first stack trace found along the cause chain.
func stackTrace(err error) errors.StackTrace {
	type tracer interface {
		StackTrace() errors.StackTrace
	}
	for err != nil {
		if t, ok := err.(tracer); ok {
			return t.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}
