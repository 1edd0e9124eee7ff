/*
Package codec holds the amino codec shared by all messages and
transactions. Extensions register their message types from an init
function with RegisterMsg.
*/
package codec

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	amino "github.com/tendermint/go-amino"
)

// Amino is the codec every message and transaction is encoded with.
var Amino = amino.NewCodec()

func init() {
	Amino.RegisterInterface((*weave.Msg)(nil), nil)
}

// RegisterMsg makes a concrete message type known to the codec under name.
// It panics when the name is registered twice.
func RegisterMsg(msg weave.Msg, name string) {
	Amino.RegisterConcrete(msg, name, nil)
}

// RegisterConcrete registers a non message type that is serialized
// as part of an interface.
func RegisterConcrete(o interface{}, name string) {
	Amino.RegisterConcrete(o, name, nil)
}

// Marshal serializes a value in the binary amino format.
func Marshal(o interface{}) ([]byte, error) {
	bz, err := Amino.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrap(errors.ErrMsg, err.Error())
	}
	return bz, nil
}

// MustMarshal is Marshal that panics on error.
func MustMarshal(o interface{}) []byte {
	bz, err := Marshal(o)
	if err != nil {
		panic(err)
	}
	return bz
}

// Unmarshal deserializes data into ptr.
func Unmarshal(bz []byte, ptr interface{}) error {
	if err := Amino.UnmarshalBinaryBare(bz, ptr); err != nil {
		return errors.Wrap(errors.ErrMsg, err.Error())
	}
	return nil
}

// MarshalJSON serializes a value to amino JSON, which carries the
// registered type name of interface values.
func MarshalJSON(o interface{}) ([]byte, error) {
	bz, err := Amino.MarshalJSON(o)
	if err != nil {
		return nil, errors.Wrap(errors.ErrMsg, err.Error())
	}
	return bz, nil
}

// UnmarshalJSON deserializes amino JSON into ptr.
func UnmarshalJSON(bz []byte, ptr interface{}) error {
	if err := Amino.UnmarshalJSON(bz, ptr); err != nil {
		return errors.Wrap(errors.ErrMsg, err.Error())
	}
	return nil
}
