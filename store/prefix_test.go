package store

import (
	"testing"

	"github.com/iov-one/feeledger/weavetest/assert"
)

func TestPrefixRange(t *testing.T) {
	cases := map[string]struct {
		prefix []byte
		end    []byte
	}{
		"empty":           {nil, nil},
		"simple":          {[]byte{1, 2}, []byte{1, 3}},
		"carry over":      {[]byte{1, 0xff}, []byte{2}},
		"all max":         {[]byte{0xff, 0xff}, nil},
		"string prefixed": {[]byte("s:"), []byte("s;")},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			start, end := PrefixRange(tc.prefix)
			if tc.prefix != nil {
				assert.Equal(t, tc.prefix, start)
			}
			assert.Equal(t, tc.end, end)
		})
	}
}
