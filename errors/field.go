package errors

import (
	"fmt"
	"strings"
)

// Field attributes err to a message or model field, so that clients can
// point at the offending input. Use Go field names and dots for nesting,
// for example "Call.Amount". A nil err gives nil.
func Field(name string, err error, description string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{field: name, desc: description, parent: withStack(err)}
}

// AppendField adds a Field error for name to errs when fieldErr is not nil.
func AppendField(errs error, name string, fieldErr error) error {
	return Append(errs, Field(name, fieldErr, ""))
}

type fieldError struct {
	field  string
	desc   string
	parent error
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error  { return e.parent }
func (e *fieldError) Field() string { return e.field }

// FieldErrors collects the errors attributed to name anywhere in err,
// including every error clubbed together by Append.
func FieldErrors(err error, name string) []error {
	var found []error
	for !errIsNil(err) {
		switch e := err.(type) {
		case interface{ Field() string }:
			if e.Field() == name {
				return append(found, err)
			}
		case multiErr:
			for _, inner := range e {
				found = append(found, FieldErrors(inner, name)...)
			}
			return found
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return found
}

// Append clubs the non nil errs together. It returns nil when there are
// none and the error itself when there is one. A combined error matches and
// reports the code of its first member.
func Append(errs ...error) error {
	var all multiErr
	for _, err := range errs {
		if errIsNil(err) {
			continue
		}
		if m, ok := err.(multiErr); ok {
			all = append(all, m...)
		} else {
			all = append(all, err)
		}
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return all
	}
}

type multiErr []error

func (m multiErr) Error() string {
	lines := make([]string, len(m))
	for i, err := range m {
		lines[i] = "* " + err.Error()
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(lines, "\n\t"))
}

func (m multiErr) Cause() error     { return m[0] }
func (m multiErr) ABCICode() uint32 { return abciCode(m[0]) }
