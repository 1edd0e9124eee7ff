package feetoken_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/iov-one/feeledger/amount"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/store"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/weavetest"
	"github.com/iov-one/feeledger/weavetest/assert"
	"github.com/iov-one/feeledger/x/feetoken"
	"github.com/iov-one/feeledger/x/proxy"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t     *testing.T
	db    weave.CacheableKVStore
	auth  *weavetest.CtxAuth
	ctrl  *proxy.Controller
	impl  weave.Address
	token weave.Address

	owner        weave.Condition
	feeRecipient weave.Condition
	user1        weave.Condition
	user2        weave.Condition
}

func newFixture(t *testing.T, feeValue uint32) *fixture {
	t.Helper()

	auth := &weavetest.CtxAuth{Key: "auth"}
	f := &fixture{
		t:    t,
		db:   store.MemStore(),
		auth: auth,
		ctrl: proxy.NewController(proxy.NewCodebase(
			feetoken.NewToken(auth),
			feetoken.NewTokenVersion(auth, "feetoken/v2"),
		)),
		owner:        weavetest.NewCondition(),
		feeRecipient: weavetest.NewCondition(),
		user1:        weavetest.NewCondition(),
		user2:        weavetest.NewCondition(),
	}

	impl, err := f.ctrl.Codebase().Deploy(f.db, feetoken.CodeV1)
	require.NoError(t, err)
	f.impl = impl

	res, err := f.ctrl.Construct(f.as(f.owner), f.db, f.owner.Address(), impl, &feetoken.InitializeMsg{
		Name:         "My Token",
		Symbol:       "MTK",
		Owner:        f.owner.Address(),
		FeeRecipient: f.feeRecipient.Address(),
		FeeValue:     feeValue,
	})
	require.NoError(t, err)
	f.token = weave.Address(res.Data)
	return f
}

func (f *fixture) as(signer weave.Condition) weave.Context {
	return f.auth.SetConditions(context.Background(), signer)
}

func (f *fixture) call(signer weave.Condition, msg weave.Msg) (*weave.DeliverResult, error) {
	return f.ctrl.Call(f.as(signer), f.db, f.token, msg)
}

func (f *fixture) mustCall(signer weave.Condition, msg weave.Msg) *weave.DeliverResult {
	f.t.Helper()
	res, err := f.call(signer, msg)
	require.NoError(f.t, err)
	return res
}

func (f *fixture) reader() feetoken.Reader {
	return feetoken.NewReader(f.ctrl, f.db, f.token)
}

func (f *fixture) balance(c weave.Condition) amount.Amount {
	f.t.Helper()
	bal, err := f.reader().BalanceOf(c.Address())
	require.NoError(f.t, err)
	return bal
}

func (f *fixture) totalBalance(accounts ...weave.Condition) amount.Amount {
	f.t.Helper()
	var total amount.Amount
	for _, a := range accounts {
		var err error
		total, err = total.Add(f.balance(a))
		require.NoError(f.t, err)
	}
	return total
}

func tokens(n uint64) amount.Amount {
	return amount.Tokens(n)
}

func transfer(to weave.Condition, value amount.Amount) *feetoken.TransferMsg {
	return &feetoken.TransferMsg{To: to.Address(), Amount: value}
}

func TestInitialization(t *testing.T) {
	f := newFixture(t, 5)
	r := f.reader()

	name, err := r.Name()
	require.NoError(t, err)
	assert.Equal(t, "My Token", name)

	symbol, err := r.Symbol()
	require.NoError(t, err)
	assert.Equal(t, "MTK", symbol)

	recipient, err := r.FeeRecipient()
	require.NoError(t, err)
	assert.Equal(t, f.feeRecipient.Address(), recipient)

	fee, err := r.FeeValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), fee)

	owner, err := r.Owner()
	require.NoError(t, err)
	assert.Equal(t, f.owner.Address(), owner)

	decimals, err := r.Decimals()
	require.NoError(t, err)
	assert.Equal(t, uint64(18), decimals)

	paused, err := r.Paused()
	require.NoError(t, err)
	assert.Equal(t, false, paused)

	supply, err := r.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, feetoken.InitialSupply, supply)
	assert.Equal(t, feetoken.InitialSupply, f.balance(f.owner))

	_, err = f.call(f.user1, &feetoken.InitializeMsg{
		Name:         "Other",
		Symbol:       "OTH",
		Owner:        f.user1.Address(),
		FeeRecipient: f.user1.Address(),
		FeeValue:     0,
	})
	assert.IsErr(t, feetoken.ErrAlreadyInitialized, err)
	assert.IsErr(t, proxy.ErrDelegationFailure, err)

	owner, err = r.Owner()
	require.NoError(t, err)
	assert.Equal(t, f.owner.Address(), owner)
}

func TestConstructWithInvalidFeeCommitsNothing(t *testing.T) {
	f := newFixture(t, 5)

	next, err := f.ctrl.NextProxyAddress(f.db, f.owner.Address())
	require.NoError(t, err)

	_, err = f.ctrl.Construct(f.as(f.owner), f.db, f.owner.Address(), f.impl, &feetoken.InitializeMsg{
		Name:         "My Token",
		Symbol:       "MTK",
		Owner:        f.owner.Address(),
		FeeRecipient: f.feeRecipient.Address(),
		FeeValue:     101,
	})
	assert.IsErr(t, feetoken.ErrInvalidFeeValue, err)

	_, err = f.ctrl.ImplementationOf(f.db, next)
	assert.IsErr(t, proxy.ErrNotProxy, err)
	again, err := f.ctrl.NextProxyAddress(f.db, f.owner.Address())
	require.NoError(t, err)
	assert.Equal(t, next, again)
}

func TestTransferScenario(t *testing.T) {
	f := newFixture(t, 5)
	recipientBefore := f.balance(f.feeRecipient)

	res := f.mustCall(f.owner, transfer(f.user1, tokens(1000)))
	assert.Equal(t, tokens(950), f.balance(f.user1))
	assert.Equal(t, tokens(50), f.balance(f.feeRecipient))

	if len(res.Events) != 2 {
		t.Fatalf("want two transfer events, got %d", len(res.Events))
	}
	assert.Equal(t, feetoken.TransferEvent, res.Events[0].Type)
	assert.Equal(t, f.user1.Address().String(), res.Events[0].Attr("to"))
	assert.Equal(t, tokens(950).String(), res.Events[0].Attr("amount"))
	assert.Equal(t, f.feeRecipient.Address().String(), res.Events[1].Attr("to"))
	assert.Equal(t, tokens(50).String(), res.Events[1].Attr("amount"))

	ownerBefore := f.balance(f.owner)
	f.mustCall(f.user1, transfer(f.owner, tokens(100)))

	assert.Equal(t, tokens(850), f.balance(f.user1))
	ownerGain, err := f.balance(f.owner).Sub(ownerBefore)
	require.NoError(t, err)
	assert.Equal(t, tokens(95), ownerGain)
	recipientGain, err := f.balance(f.feeRecipient).Sub(recipientBefore)
	require.NoError(t, err)
	assert.Equal(t, tokens(55), recipientGain)

	assert.Equal(t, feetoken.InitialSupply, f.totalBalance(f.owner, f.feeRecipient, f.user1))
}

func TestChangeFeeValue(t *testing.T) {
	f := newFixture(t, 5)

	f.mustCall(f.owner, &feetoken.ChangeFeeValueMsg{NewFeeValue: 2})
	fee, err := f.reader().FeeValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), fee)

	f.mustCall(f.owner, transfer(f.user1, tokens(1000)))
	assert.Equal(t, tokens(20), f.balance(f.feeRecipient))
	assert.Equal(t, tokens(980), f.balance(f.user1))

	_, err = f.call(f.owner, &feetoken.ChangeFeeValueMsg{NewFeeValue: 101})
	assert.IsErr(t, feetoken.ErrInvalidFeeValue, err)
	fee, err = f.reader().FeeValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), fee)
}

func TestChangeRecipient(t *testing.T) {
	f := newFixture(t, 10)

	f.mustCall(f.owner, &feetoken.ChangeRecipientMsg{NewRecipient: f.user2.Address()})
	recipient, err := f.reader().FeeRecipient()
	require.NoError(t, err)
	assert.Equal(t, f.user2.Address(), recipient)

	f.mustCall(f.owner, transfer(f.user1, amount.NewAmount(1000)))
	assert.Equal(t, amount.NewAmount(100), f.balance(f.user2))
	assert.Equal(t, true, f.balance(f.feeRecipient).IsZero())
}

func TestAccessControl(t *testing.T) {
	cases := map[string]weave.Msg{
		"change recipient":   &feetoken.ChangeRecipientMsg{NewRecipient: weavetest.NewCondition().Address()},
		"change fee value":   &feetoken.ChangeFeeValueMsg{NewFeeValue: 1},
		"pause":              &feetoken.PauseMsg{},
		"unpause":            &feetoken.UnpauseMsg{},
		"transfer ownership": &feetoken.TransferOwnershipMsg{NewOwner: weavetest.NewCondition().Address()},
	}

	for testName, msg := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, 5)
			for _, signer := range []weave.Condition{f.user1, f.feeRecipient} {
				_, err := f.call(signer, msg)
				assert.IsErr(t, errors.ErrUnauthorized, err)
			}
		})
	}
}

func TestPauseGating(t *testing.T) {
	f := newFixture(t, 5)
	f.mustCall(f.owner, transfer(f.user1, tokens(100)))

	f.mustCall(f.owner, &feetoken.PauseMsg{})
	paused, err := f.reader().Paused()
	require.NoError(t, err)
	assert.Equal(t, true, paused)

	_, err = f.call(f.owner, transfer(f.user1, tokens(1)))
	assert.IsErr(t, feetoken.ErrPaused, err)
	// Paused must win over a balance failure.
	_, err = f.call(f.user2, transfer(f.user1, tokens(1)))
	assert.IsErr(t, feetoken.ErrPaused, err)
	if feetoken.ErrInsufficientBalance.Is(err) || errors.ErrUnauthorized.Is(err) {
		t.Fatalf("paused error must be distinguishable, got %v", err)
	}

	_, err = f.call(f.owner, &feetoken.PauseMsg{})
	assert.IsErr(t, feetoken.ErrPaused, err)

	f.mustCall(f.owner, &feetoken.UnpauseMsg{})
	_, err = f.call(f.owner, &feetoken.UnpauseMsg{})
	assert.IsErr(t, feetoken.ErrNotPaused, err)

	f.mustCall(f.user1, transfer(f.user2, tokens(20)))
	assert.Equal(t, tokens(19), f.balance(f.user2))
}

func TestTransferEdgeCases(t *testing.T) {
	cases := map[string]struct {
		feeValue uint32
		from     func(*fixture) weave.Condition
		to       func(*fixture) weave.Condition
		value    amount.Amount
		wantErr  *errors.Error
		// Expected balance changes, applied to the state before the
		// transfer.
		wantFrom      amount.Amount
		wantTo        amount.Amount
		wantRecipient amount.Amount
	}{
		"self transfer pays only the fee": {
			feeValue:      5,
			from:          func(f *fixture) weave.Condition { return f.user1 },
			to:            func(f *fixture) weave.Condition { return f.user1 },
			value:         amount.NewAmount(1000),
			wantFrom:      amount.NewAmount(10000 - 50),
			wantTo:        amount.NewAmount(10000 - 50),
			wantRecipient: amount.NewAmount(50),
		},
		"fee recipient receives net and fee": {
			feeValue:      5,
			from:          func(f *fixture) weave.Condition { return f.user1 },
			to:            func(f *fixture) weave.Condition { return f.feeRecipient },
			value:         amount.NewAmount(1000),
			wantFrom:      amount.NewAmount(9000),
			wantTo:        amount.NewAmount(1000),
			wantRecipient: amount.NewAmount(1000),
		},
		"zero amount": {
			feeValue:      5,
			from:          func(f *fixture) weave.Condition { return f.user1 },
			to:            func(f *fixture) weave.Condition { return f.user2 },
			value:         amount.NewAmount(0),
			wantFrom:      amount.NewAmount(10000),
			wantTo:        amount.NewAmount(0),
			wantRecipient: amount.NewAmount(0),
		},
		"zero fee": {
			feeValue:      0,
			from:          func(f *fixture) weave.Condition { return f.user1 },
			to:            func(f *fixture) weave.Condition { return f.user2 },
			value:         amount.NewAmount(1000),
			wantFrom:      amount.NewAmount(9000),
			wantTo:        amount.NewAmount(1000),
			wantRecipient: amount.NewAmount(0),
		},
		"fee is rounded down": {
			feeValue:      5,
			from:          func(f *fixture) weave.Condition { return f.user1 },
			to:            func(f *fixture) weave.Condition { return f.user2 },
			value:         amount.NewAmount(39),
			wantFrom:      amount.NewAmount(10000 - 39),
			wantTo:        amount.NewAmount(38),
			wantRecipient: amount.NewAmount(1),
		},
		"full fee": {
			feeValue:      100,
			from:          func(f *fixture) weave.Condition { return f.user1 },
			to:            func(f *fixture) weave.Condition { return f.user2 },
			value:         amount.NewAmount(1000),
			wantFrom:      amount.NewAmount(9000),
			wantTo:        amount.NewAmount(0),
			wantRecipient: amount.NewAmount(1000),
		},
		"insufficient balance": {
			feeValue:      5,
			from:          func(f *fixture) weave.Condition { return f.user1 },
			to:            func(f *fixture) weave.Condition { return f.user2 },
			value:         amount.NewAmount(10001),
			wantErr:       feetoken.ErrInsufficientBalance,
			wantFrom:      amount.NewAmount(10000),
			wantTo:        amount.NewAmount(0),
			wantRecipient: amount.NewAmount(0),
		},
		"empty account": {
			feeValue:      5,
			from:          func(f *fixture) weave.Condition { return f.user2 },
			to:            func(f *fixture) weave.Condition { return f.user1 },
			value:         amount.NewAmount(1),
			wantErr:       feetoken.ErrInsufficientBalance,
			wantFrom:      amount.NewAmount(0),
			wantTo:        amount.NewAmount(10000),
			wantRecipient: amount.NewAmount(0),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, 0)
			f.mustCall(f.owner, transfer(f.user1, amount.NewAmount(10000)))
			f.mustCall(f.owner, &feetoken.ChangeFeeValueMsg{NewFeeValue: tc.feeValue})

			_, err := f.call(tc.from(f), transfer(tc.to(f), tc.value))
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tc.wantFrom, f.balance(tc.from(f)))
			assert.Equal(t, tc.wantTo, f.balance(tc.to(f)))
			assert.Equal(t, tc.wantRecipient, f.balance(f.feeRecipient))
			assert.Equal(t, feetoken.InitialSupply, f.totalBalance(f.owner, f.feeRecipient, f.user1, f.user2))
		})
	}
}

func TestBalanceConservation(t *testing.T) {
	f := newFixture(t, 7)
	accounts := []weave.Condition{f.owner, f.feeRecipient, f.user1, f.user2}
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		from := accounts[rnd.Intn(len(accounts))]
		to := accounts[rnd.Intn(len(accounts))]
		value := amount.NewAmount(uint64(rnd.Int63n(1e6)))
		if i%20 == 0 {
			f.mustCall(f.owner, &feetoken.ChangeFeeValueMsg{NewFeeValue: uint32(rnd.Intn(101))})
		}

		fee, err := f.reader().FeeValue()
		require.NoError(t, err)
		wantFee, err := value.Percent(fee)
		require.NoError(t, err)
		recipientBefore := f.balance(f.feeRecipient)
		fromBefore := f.balance(from)

		_, err = f.call(from, transfer(to, value))
		switch {
		case fromBefore.LessThan(value):
			assert.IsErr(t, feetoken.ErrInsufficientBalance, err)
		case err != nil:
			t.Fatalf("transfer %d: %s", i, err)
		case from.Equals(f.feeRecipient) || to.Equals(f.feeRecipient):
		default:
			gain, err := f.balance(f.feeRecipient).Sub(recipientBefore)
			require.NoError(t, err)
			assert.Equal(t, wantFee, gain)
		}

		assert.Equal(t, feetoken.InitialSupply, f.totalBalance(accounts...))
	}
}

func TestTransferOwnership(t *testing.T) {
	f := newFixture(t, 5)

	f.mustCall(f.owner, &feetoken.TransferOwnershipMsg{NewOwner: f.user1.Address()})
	owner, err := f.reader().Owner()
	require.NoError(t, err)
	assert.Equal(t, f.user1.Address(), owner)

	_, err = f.call(f.owner, &feetoken.PauseMsg{})
	assert.IsErr(t, errors.ErrUnauthorized, err)
	f.mustCall(f.user1, &feetoken.PauseMsg{})
}

func TestImplementationCannotBeInitialized(t *testing.T) {
	f := newFixture(t, 5)

	_, err := f.ctrl.Call(f.as(f.user1), f.db, f.impl, &feetoken.InitializeMsg{
		Name:         "Hijack",
		Symbol:       "HJK",
		Owner:        f.user1.Address(),
		FeeRecipient: f.user1.Address(),
		FeeValue:     100,
	})
	assert.IsErr(t, feetoken.ErrAlreadyInitialized, err)

	_, err = f.ctrl.Call(f.as(f.user1), f.db, f.impl, transfer(f.user2, amount.NewAmount(1)))
	assert.IsErr(t, errors.ErrState, err)
}

func TestUpgradePreservesState(t *testing.T) {
	f := newFixture(t, 5)
	f.mustCall(f.owner, transfer(f.user1, tokens(1000)))

	v2, err := f.ctrl.Codebase().Deploy(f.db, "feetoken/v2")
	require.NoError(t, err)

	_, err = f.ctrl.Upgrade(f.as(f.user1), f.db, f.token, v2, nil)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	impl, err := f.ctrl.ImplementationOf(f.db, f.token)
	require.NoError(t, err)
	assert.Equal(t, f.impl, impl)

	res, err := f.ctrl.Upgrade(f.as(f.owner), f.db, f.token, v2, &feetoken.ChangeFeeValueMsg{NewFeeValue: 3})
	require.NoError(t, err)
	assert.Equal(t, proxy.UpgradedEvent, res.Events[0].Type)
	assert.Equal(t, v2.String(), res.Events[0].Attr("implementation"))

	impl, err = f.ctrl.ImplementationOf(f.db, f.token)
	require.NoError(t, err)
	assert.Equal(t, v2, impl)

	assert.Equal(t, tokens(950), f.balance(f.user1))
	fee, err := f.reader().FeeValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), fee)
	name, err := f.reader().Name()
	require.NoError(t, err)
	assert.Equal(t, "My Token", name)

	f.mustCall(f.user1, transfer(f.user2, tokens(100)))
	assert.Equal(t, tokens(97), f.balance(f.user2))
}

func TestFailedUpgradeCallRollsBack(t *testing.T) {
	f := newFixture(t, 5)
	v2, err := f.ctrl.Codebase().Deploy(f.db, "feetoken/v2")
	require.NoError(t, err)

	tooMuch, err := feetoken.InitialSupply.Add(amount.NewAmount(1))
	require.NoError(t, err)
	_, err = f.ctrl.Upgrade(f.as(f.owner), f.db, f.token, v2, transfer(f.user1, tooMuch))
	assert.IsErr(t, feetoken.ErrInsufficientBalance, err)

	impl, err := f.ctrl.ImplementationOf(f.db, f.token)
	require.NoError(t, err)
	assert.Equal(t, f.impl, impl)
}

func TestCheckDoesNotWrite(t *testing.T) {
	f := newFixture(t, 5)

	_, err := f.ctrl.CheckCall(f.as(f.owner), f.db, f.token, transfer(f.user1, tokens(10)))
	require.NoError(t, err)
	assert.Equal(t, true, f.balance(f.user1).IsZero())

	_, err = f.ctrl.CheckCall(f.as(f.user1), f.db, f.token, transfer(f.owner, tokens(10)))
	assert.IsErr(t, feetoken.ErrInsufficientBalance, err)

	_, err = f.ctrl.CheckCall(f.as(f.user1), f.db, f.token, &feetoken.PauseMsg{})
	assert.IsErr(t, errors.ErrUnauthorized, err)
}
