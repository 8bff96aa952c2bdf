package consensus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func verify(t *testing.T, rtx *ResolvedTransaction) ([]GroupVerdict, error) {
	t.Helper()
	return VerifyTransaction(rtx, testRegistry())
}

func requireRejectedAt(t *testing.T, err error, input int, code ErrorCode) {
	t.Helper()
	var se *ScriptError
	require.True(t, errors.As(err, &se), "expected *ScriptError, got %T: %v", err, err)
	require.Equal(t, input, se.InputIndex)
	requireLockCode(t, err, code)
}

func TestTokenBuyLock_BuyExact(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.seller, f.sudt, u128le(9_000)).
		output(f.buyer, f.sudt, u128le(100)).
		output(f.seller, f.sudt, u128le(8_900)).
		build()

	verdicts, err := verify(t, rtx)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	require.Equal(t, PathPurchase, verdicts[0].Path)
}

func TestTokenBuyLock_BuyExtra(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.seller, f.sudt, u128le(9_000)).
		output(f.buyer, f.sudt, u128le(1_000)).
		output(f.seller, f.sudt, u128le(8_000)).
		build()

	_, err := verify(t, rtx)
	require.NoError(t, err)
}

func TestTokenBuyLock_BuyShort(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.seller, f.sudt, u128le(9_000)).
		output(f.buyer, f.sudt, u128le(99)).
		output(f.seller, f.sudt, u128le(8_901)).
		build()

	_, err := verify(t, rtx)
	requireRejectedAt(t, err, 0, LOCK_ERR_AMOUNT)
}

func TestTokenBuyLock_WrongTokenType(t *testing.T) {
	f := newFixture()
	other := sudtType(alwaysSuccessLock(4))
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.seller, other, u128le(9_000)).
		output(f.buyer, other, u128le(100)).
		output(f.seller, other, u128le(8_900)).
		build()

	_, err := verify(t, rtx)
	requireRejectedAt(t, err, 0, LOCK_ERR_AMOUNT)
}

func TestTokenBuyLock_InvalidArgs(t *testing.T) {
	f := newFixture()
	for _, n := range []int{0, 1, 31, 33, 64} {
		lock := Script{CodeHash: tokenBuyCodeHash, HashType: HashTypeData, Args: make([]byte, n)}
		rtx := newTx().
			input(lock, nil, escrowData(f.buyer.Hash(), 100)).
			input(f.buyer, nil, nil).
			output(f.buyer, f.sudt, u128le(100)).
			build()

		_, err := verify(t, rtx)
		requireRejectedAt(t, err, 0, LOCK_ERR_ARGS_LENGTH)
	}
}

func TestTokenBuyLock_InvalidEscrowData(t *testing.T) {
	f := newFixture()
	short := append(f.buyer.Hash().Bytes(), u128le(100)[:8]...)
	rtx := newTx().
		input(f.lock, nil, short).
		input(f.seller, f.sudt, u128le(9_000)).
		output(f.buyer, f.sudt, u128le(100)).
		output(f.seller, f.sudt, u128le(8_900)).
		build()

	_, err := verify(t, rtx)
	requireRejectedAt(t, err, 0, LOCK_ERR_DATA_LENGTH)
}

func TestTokenBuyLock_InvalidEscrowDataEvenWhenOwnerSigns(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, f.buyer.Hash().Bytes()).
		input(f.buyer, nil, nil).
		output(f.buyer, nil, nil).
		build()

	_, err := verify(t, rtx)
	requireRejectedAt(t, err, 0, LOCK_ERR_DATA_LENGTH)
}

func TestTokenBuyLock_TrailingEscrowBytesIgnored(t *testing.T) {
	f := newFixture()
	data := append(escrowData(f.buyer.Hash(), 100), 0xde, 0xad, 0xbe, 0xef)
	rtx := newTx().
		input(f.lock, nil, data).
		output(f.buyer, f.sudt, u128le(100)).
		build()

	_, err := verify(t, rtx)
	require.NoError(t, err)
}

func TestTokenBuyLock_MultipleCellsSameOwner(t *testing.T) {
	f := newFixture()
	build := func(paid uint64) *ResolvedTransaction {
		return newTx().
			input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
			input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
			input(f.seller, f.sudt, u128le(9_000)).
			output(f.buyer, f.sudt, u128le(paid)).
			output(f.seller, f.sudt, u128le(9_000-paid)).
			build()
	}

	_, err := verify(t, build(200))
	require.NoError(t, err)

	_, err = verify(t, build(199))
	requireRejectedAt(t, err, 0, LOCK_ERR_AMOUNT)
}

func TestTokenBuyLock_MultipleCellsDifferentOwners(t *testing.T) {
	f := newFixture()
	build := func(paid1, paid2 uint64) *ResolvedTransaction {
		return newTx().
			input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
			input(f.lock, nil, escrowData(f.buyer2.Hash(), 100)).
			input(f.seller, f.sudt, u128le(9_000)).
			output(f.buyer, f.sudt, u128le(paid1)).
			output(f.buyer2, f.sudt, u128le(paid2)).
			output(f.seller, f.sudt, u128le(9_000-paid1-paid2)).
			build()
	}

	t.Run("exact", func(t *testing.T) {
		_, err := verify(t, build(100, 100))
		require.NoError(t, err)
	})
	t.Run("extra", func(t *testing.T) {
		_, err := verify(t, build(1_000, 1_000))
		require.NoError(t, err)
	})
	t.Run("first short", func(t *testing.T) {
		_, err := verify(t, build(99, 100))
		requireRejectedAt(t, err, 0, LOCK_ERR_AMOUNT)
	})
	t.Run("second short", func(t *testing.T) {
		_, err := verify(t, build(100, 99))
		requireRejectedAt(t, err, 0, LOCK_ERR_AMOUNT)
	})
	t.Run("surplus does not cover other owner", func(t *testing.T) {
		_, err := verify(t, build(1_000, 99))
		requireRejectedAt(t, err, 0, LOCK_ERR_AMOUNT)
	})
}

func TestTokenBuyLock_PaymentSplitAcrossOutputs(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		output(f.buyer, f.sudt, u128le(40)).
		output(f.buyer, nil, nil).
		output(f.buyer, f.sudt, u128le(60)).
		build()

	_, err := verify(t, rtx)
	require.NoError(t, err)
}

func TestTokenBuyLock_WithdrawalByOwner(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.buyer, nil, nil).
		output(f.buyer, nil, nil).
		build()

	verdicts, err := verify(t, rtx)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	require.Equal(t, PathOwner, verdicts[0].Path)
}

func TestTokenBuyLock_WithdrawalByMultipleOwners(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.lock, nil, escrowData(f.buyer2.Hash(), 100)).
		input(f.buyer, nil, nil).
		input(f.buyer2, nil, nil).
		output(f.buyer, nil, nil).
		build()

	_, err := verify(t, rtx)
	require.NoError(t, err)
}

func TestTokenBuyLock_WithdrawalByMultipleOwnersMissingOne(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.lock, nil, escrowData(f.buyer2.Hash(), 100)).
		input(f.buyer, nil, nil).
		output(f.buyer, nil, nil).
		build()

	_, err := verify(t, rtx)
	requireRejectedAt(t, err, 0, LOCK_ERR_AMOUNT)
}

func TestTokenBuyLock_WithdrawalByNotOwner(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.seller, nil, nil).
		output(f.seller, nil, nil).
		build()

	_, err := verify(t, rtx)
	requireRejectedAt(t, err, 0, LOCK_ERR_AMOUNT)
}

func TestTokenBuyLock_OwnerModeIgnoresOutputs(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 1_000_000)).
		input(f.buyer, nil, nil).
		output(f.seller, f.sudt, []byte{0x01}).
		build()

	path, err := ValidateTokenBuyLock(groupContext(t, rtx, f.lock))
	require.NoError(t, err)
	require.Equal(t, PathOwner, path)
}

func TestTokenBuyLock_MalformedCountedOutput(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		output(f.buyer, f.sudt, []byte{0x64}).
		build()

	_, err := verify(t, rtx)
	requireRejectedAt(t, err, 0, LOCK_ERR_ENCODING)
}

func TestTokenBuyLock_MalformedUncountedOutputIgnored(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		output(f.seller, f.sudt, []byte{0x01}).
		output(f.buyer, f.sudt, u128le(100)).
		build()

	_, err := verify(t, rtx)
	require.NoError(t, err)
}

func TestTokenBuyLock_ZeroRequirementAccepted(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 0)).
		output(f.seller, nil, nil).
		build()

	_, err := verify(t, rtx)
	require.NoError(t, err)
}

func TestTokenBuyLock_SeparateGroupsPerTokenType(t *testing.T) {
	f := newFixture()
	other := sudtType(alwaysSuccessLock(4))
	otherLock := tokenBuyLock(other.Hash())
	rtx := newTx().
		input(f.seller, nil, nil).
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(otherLock, nil, escrowData(f.buyer.Hash(), 50)).
		output(f.buyer, f.sudt, u128le(100)).
		output(f.buyer, other, u128le(49)).
		build()

	verdicts, err := verify(t, rtx)
	requireRejectedAt(t, err, 2, LOCK_ERR_AMOUNT)
	require.Nil(t, verdicts)
}
