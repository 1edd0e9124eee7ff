/*
Package assert holds the few assertions shared by the ledger tests that the
testify packages do not express, mostly around the errors package.
*/
package assert

import (
	"reflect"
	"testing"

	"github.com/iov-one/feeledger/errors"
)

// Tester is the part of testing.TB the assertions need.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails unless value is nil or a nil chan, func, interface, map,
// pointer or slice.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the stack of errors that carry one.
		t.Fatalf("want nil, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Equal fails unless want and got are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails unless fn panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("want a panic")
		}
	}()
	fn()
}

// FieldError checks the errors attached to fieldName by errors.Field. A nil
// want asserts the field has no error, otherwise exactly one error of kind
// want is expected.
func FieldError(t testing.TB, err error, fieldName string, want *errors.Error) {
	t.Helper()
	errs := errors.FieldErrors(err, fieldName)
	if want == nil {
		if len(errs) != 0 {
			t.Fatalf("want no %q error, got %v", fieldName, errs)
		}
		return
	}
	if len(errs) != 1 {
		t.Fatalf("want one %q error, got %v", fieldName, errs)
		return
	}
	if !want.Is(errs[0]) {
		t.Fatalf("want %q error %q, got %q", fieldName, want, errs[0])
	}
}

// IsErr fails unless got is want or matches it through an Is method.
func IsErr(t testing.TB, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if is, ok := want.(interface{ Is(error) bool }); ok && is.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
