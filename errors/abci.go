package errors

import (
	"fmt"
	"reflect"
)

const (
	// SuccessABCICode is the code of a response that carries no error.
	SuccessABCICode = 0

	// Errors that do not resolve to a registered code are reported under
	// internalABCICode with internalABCILog as their only description.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log of the ABCI response reporting err.
//
// The code is the one of the first registered error found while unwrapping
// err. An error without one is internal: outside of debug mode its message
// is replaced with a generic text so that only registered failures reach
// clients. Debug mode formats every error with %+v, including stack traces
// when available.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

// abciCode unwraps err until an error exposing an ABCI code is found.
func abciCode(err error) uint32 {
	if errIsNil(err) {
		return SuccessABCICode
	}
	for !errIsNil(err) {
		if c, ok := err.(interface{ ABCICode() uint32 }); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return internalABCICode
}

// errIsNil reports whether err is nil, including a typed nil pointer stored
// in the error interface.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
