package feeledgerd

import (
	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/x/sigs"
)

// Tx is the amino encoded transaction of the feeledger chain. It carries
// exactly one message and the signatures authorizing it.
type Tx struct {
	Msg        weave.Msg            `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures,omitempty"`
}

// make sure tx fulfills all interfaces
var _ weave.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (weave.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// GetMsg returns the single message of the transaction.
func (tx *Tx) GetMsg() (weave.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "missing msg")
	}
	return tx.Msg, nil
}

// GetSignatures returns all signatures attached to the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign. Signatures are never part of
// the signed data.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Msg: tx.Msg}
	return unsigned.Marshal()
}

// Marshal serializes the transaction.
func (tx *Tx) Marshal() ([]byte, error) {
	return codec.Marshal(tx)
}

// Unmarshal deserializes the transaction.
func (tx *Tx) Unmarshal(bz []byte) error {
	return codec.Unmarshal(bz, tx)
}
