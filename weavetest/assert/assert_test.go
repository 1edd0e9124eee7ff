package assert

import (
	"testing"

	"github.com/iov-one/feeledger/errors"
)

// recorder is a Tester that counts failures instead of stopping the test.
type recorder struct {
	testing.TB
	failures int
}

func (r *recorder) Fatal(args ...interface{}) {
	r.TB.Log(args...)
	r.failures++
}

func (r *recorder) Fatalf(format string, args ...interface{}) {
	r.TB.Logf(format, args...)
	r.failures++
}

func TestIsErr(t *testing.T) {
	cases := map[string]struct {
		want, got error
		fails     bool
	}{
		"same error":     {want: errors.ErrEmpty, got: errors.ErrEmpty},
		"both nil":       {},
		"wrapped":        {want: errors.ErrEmpty, got: errors.Wrap(errors.ErrEmpty, "balance")},
		"nested kind":    {want: errors.ErrUnauthorized, got: errors.Nest(errors.ErrState, errors.ErrUnauthorized.New("owner"), "delegate")},
		"nil want":       {got: errors.ErrEmpty, fails: true},
		"different kind": {want: errors.ErrUnauthorized, got: errors.ErrEmpty, fails: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := &recorder{TB: t}
			IsErr(r, tc.want, tc.got)
			if got := r.failures > 0; got != tc.fails {
				t.Fatalf("want failure %v, got %d failures", tc.fails, r.failures)
			}
		})
	}
}

func TestFieldError(t *testing.T) {
	fee := errors.Field("FeeValue", errors.ErrInput, "above 100")
	cases := map[string]struct {
		err   error
		field string
		want  *errors.Error
		fails bool
	}{
		"found":           {err: fee, field: "FeeValue", want: errors.ErrInput},
		"wrong kind":      {err: fee, field: "FeeValue", want: errors.ErrEmpty, fails: true},
		"absent":          {err: fee, field: "Owner"},
		"unexpected":      {err: fee, field: "FeeValue", fails: true},
		"missing":         {err: fee, field: "Owner", want: errors.ErrInput, fails: true},
		"duplicate field": {err: errors.Append(fee, errors.Field("FeeValue", errors.ErrInput, "again")), field: "FeeValue", want: errors.ErrInput, fails: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := &recorder{TB: t}
			FieldError(r, tc.err, tc.field, tc.want)
			if got := r.failures > 0; got != tc.fails {
				t.Fatalf("want failure %v, got %d failures", tc.fails, r.failures)
			}
		})
	}
}

func TestNilAndEqual(t *testing.T) {
	var nilSlice []byte
	var nilErr *errors.Error
	cases := map[string]struct {
		check func(Tester)
		fails bool
	}{
		"nil":             {check: func(r Tester) { Nil(r, nil) }},
		"nil slice":       {check: func(r Tester) { Nil(r, nilSlice) }},
		"typed nil error": {check: func(r Tester) { Nil(r, nilErr) }},
		"zero int":        {check: func(r Tester) { Nil(r, 0) }, fails: true},
		"equal bytes":     {check: func(r Tester) { Equal(r, []byte("a"), []byte("a")) }},
		"different types": {check: func(r Tester) { Equal(r, int64(1), 1) }, fails: true},
		"panics":          {check: func(r Tester) { Panics(r, func() { panic("boom") }) }},
		"does not panic":  {check: func(r Tester) { Panics(r, func() {}) }, fails: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := &recorder{TB: t}
			tc.check(r)
			if got := r.failures > 0; got != tc.fails {
				t.Fatalf("want failure %v, got %d failures", tc.fails, r.failures)
			}
		})
	}
}
