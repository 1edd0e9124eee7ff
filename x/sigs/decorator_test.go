package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/feeledger/crypto"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/store"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecorator(t *testing.T) {
	const chainID = "fee-chain"
	ctx := weave.WithChainID(context.Background(), chainID)
	priv := crypto.GenPrivKeyEd25519()
	signer := []weave.Condition{priv.PublicKey().Condition()}

	tx := NewStdTx([]byte("transfer"))
	first, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	second, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)

	strict := NewDecorator()
	lenient := strict.AllowMissingSigs()

	// Each step runs against the state the previous steps left behind.
	steps := []struct {
		name        string
		dec         Decorator
		sigs        []*StdSignature
		wantErr     *errors.Error
		wantSigners []weave.Condition
	}{
		{name: "unsigned", dec: strict, wantErr: errors.ErrUnauthorized},
		{name: "first nonce", dec: strict, sigs: []*StdSignature{first}, wantSigners: signer},
		{name: "replayed nonce", dec: strict, sigs: []*StdSignature{first}, wantErr: ErrInvalidSequence},
		{name: "unsigned allowed", dec: lenient, wantSigners: []weave.Condition{}},
		{name: "next nonce", dec: lenient, sigs: []*StdSignature{second}, wantSigners: signer},
	}

	phases := map[string]func(kv weave.KVStore, d Decorator, next *SigCheckHandler) error{
		"check": func(kv weave.KVStore, d Decorator, next *SigCheckHandler) error {
			_, err := d.Check(ctx, kv, tx, next)
			return err
		},
		"deliver": func(kv weave.KVStore, d Decorator, next *SigCheckHandler) error {
			_, err := d.Deliver(ctx, kv, tx, next)
			return err
		},
	}
	for phase, run := range phases {
		t.Run(phase, func(t *testing.T) {
			kv := store.MemStore()
			for _, st := range steps {
				next := new(SigCheckHandler)
				tx.Signatures = st.sigs
				err := run(kv, st.dec, next)
				if st.wantErr != nil {
					assert.True(t, st.wantErr.Is(err), "%s: %v", st.name, err)
					continue
				}
				require.NoError(t, err, st.name)
				assert.Equal(t, st.wantSigners, next.Signers, st.name)
			}
			nonce, err := NextNonce(kv, priv.PublicKey().Address())
			require.NoError(t, err)
			assert.Equal(t, int64(2), nonce)
		})
	}
}

func TestSignatureForOtherChainIsRejected(t *testing.T) {
	kv := store.MemStore()
	priv := crypto.GenPrivKeyEd25519()
	tx := NewStdTx([]byte("transfer"))
	sig, err := SignTx(priv, tx, "other-chain", 0)
	require.NoError(t, err)
	tx.Signatures = []*StdSignature{sig}

	ctx := weave.WithChainID(context.Background(), "fee-chain")
	_, err = NewDecorator().Deliver(ctx, kv, tx, new(SigCheckHandler))
	assert.Error(t, err)
}

func TestBuildSignBytes(t *testing.T) {
	a, err := BuildSignBytes([]byte("payload"), "test-chain", 0)
	require.NoError(t, err)
	b, err := BuildSignBytes([]byte("payload"), "test-chain", 1)
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)

	_, err = BuildSignBytes([]byte("payload"), "test-chain", -1)
	assert.True(t, ErrInvalidSequence.Is(err))
	_, err = BuildSignBytes([]byte("payload"), "", 0)
	assert.Error(t, err)
}

func TestBumpSequence(t *testing.T) {
	kv := store.MemStore()
	priv := crypto.GenPrivKeyEd25519()
	cond := priv.PublicKey().Condition()
	auth := &weavetest.Auth{Signer: cond}

	h := &bumpSequenceHandler{bucket: NewBucket(), auth: auth}
	tx := &weavetest.Tx{Msg: &BumpSequenceMsg{Increment: 5}}

	// unknown signer has no sequence yet
	_, err := h.Deliver(context.Background(), kv, tx)
	assert.Error(t, err)

	require.NoError(t, NewBucket().Save(kv, &UserData{Pubkey: priv.PublicKey(), Sequence: 3}))
	_, err = h.Deliver(context.Background(), kv, tx)
	require.NoError(t, err)

	nonce, err := NextNonce(kv, cond.Address())
	require.NoError(t, err)
	// the decorator adds the last one
	assert.Equal(t, int64(7), nonce)

	_, err = h.Check(context.Background(), kv, &weavetest.Tx{Msg: &BumpSequenceMsg{Increment: 0}})
	assert.Error(t, err)
}

// StdTx signs an opaque payload.
type StdTx struct {
	weave.Tx
	Payload    []byte
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)

func NewStdTx(payload []byte) *StdTx {
	return &StdTx{
		Tx:      &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/sigs"}},
		Payload: payload,
	}
}

func (tx *StdTx) GetSignBytes() ([]byte, error) {
	return tx.Payload, nil
}

func (tx *StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

// SigCheckHandler records the conditions the decorator authenticated.
type SigCheckHandler struct {
	Signers []weave.Condition
}

var _ weave.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &weave.CheckResult{}, nil
}

func (s *SigCheckHandler) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &weave.DeliverResult{}, nil
}
