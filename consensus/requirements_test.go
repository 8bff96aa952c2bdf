package consensus

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAggregateRequirements_SumsPerOwner(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.seller, nil, nil).
		input(f.lock, nil, escrowData(f.buyer2.Hash(), 7)).
		input(f.lock, nil, escrowData(f.buyer.Hash(), 250)).
		build()

	reqs, err := AggregateRequirements(groupContext(t, rtx, f.lock))
	require.NoError(t, err)
	require.Equal(t, 2, reqs.Len())

	got, ok := reqs.Get(f.buyer.Hash())
	require.True(t, ok)
	require.Equal(t, uint64(350), got.Uint64())

	got, ok = reqs.Get(f.buyer2.Hash())
	require.True(t, ok)
	require.Equal(t, uint64(7), got.Uint64())

	_, ok = reqs.Get(f.seller.Hash())
	require.False(t, ok)
}

func TestAggregateRequirements_MalformedCellAborts(t *testing.T) {
	f := newFixture()
	rtx := newTx().
		input(f.lock, nil, escrowData(f.buyer.Hash(), 100)).
		input(f.lock, nil, make([]byte, 47)).
		build()

	reqs, err := AggregateRequirements(groupContext(t, rtx, f.lock))
	requireLockCode(t, err, LOCK_ERR_DATA_LENGTH)
	require.Nil(t, reqs)
}

func TestAggregateRequirements_BeyondU128StaysUnpayable(t *testing.T) {
	f := newFixture()
	maxU128 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
	data, err := EncodeEscrowCell(f.buyer.Hash(), maxU128)
	require.NoError(t, err)

	rtx := newTx().
		input(f.lock, nil, data).
		input(f.lock, nil, data).
		build()

	// Two u128 maxima fit the accumulator; no u128 payment can reach the sum.
	reqs, err := AggregateRequirements(groupContext(t, rtx, f.lock))
	require.NoError(t, err)
	got, _ := reqs.Get(f.buyer.Hash())
	require.Equal(t, 129, got.BitLen())

	err = VerifySettlement(groupContext(t, rtx, f.lock), reqs, f.sudtHash)
	requireLockCode(t, err, LOCK_ERR_AMOUNT)
}

func TestRequirementMap_OwnersSorted(t *testing.T) {
	m := newRequirementMap()
	require.NoError(t, m.add(Hash{0x03}, uint256.NewInt(1)))
	require.NoError(t, m.add(Hash{0x01}, uint256.NewInt(1)))
	require.NoError(t, m.add(Hash{0x02}, uint256.NewInt(1)))
	require.Equal(t, []Hash{{0x01}, {0x02}, {0x03}}, m.Owners())
}

func TestRequirementMap_GetReturnsCopy(t *testing.T) {
	m := newRequirementMap()
	require.NoError(t, m.add(Hash{0x01}, uint256.NewInt(5)))
	v, _ := m.Get(Hash{0x01})
	v.SetUint64(0)
	again, _ := m.Get(Hash{0x01})
	require.Equal(t, uint64(5), again.Uint64())
}

// Permuting the escrow cells of a group never changes the aggregated amounts.
func TestAggregateRequirements_OrderIndependent(t *testing.T) {
	f := newFixture()
	owners := []Script{f.buyer, f.buyer2, f.seller, alwaysSuccessLock(9)}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "cells")
		cells := make([][]byte, n)
		for i := range cells {
			o := rapid.SampledFrom(owners).Draw(t, "owner")
			a := rapid.Uint64().Draw(t, "amount")
			cells[i] = escrowData(o.Hash(), a)
		}
		shuffled := rapid.Permutation(cells).Draw(t, "shuffled")

		aggregate := func(cells [][]byte) *RequirementMap {
			b := newTx()
			for _, c := range cells {
				b.input(f.lock, nil, c)
			}
			rtx := b.build()
			q, err := NewTxContext(rtx, f.lock.Args, allIndices(len(cells)))
			if err != nil {
				t.Fatalf("context: %v", err)
			}
			reqs, err := AggregateRequirements(q)
			if err != nil {
				t.Fatalf("aggregate: %v", err)
			}
			return reqs
		}

		a, b := aggregate(cells), aggregate(shuffled)
		if len(a.Owners()) != len(b.Owners()) {
			t.Fatalf("owner count %d != %d", len(a.Owners()), len(b.Owners()))
		}
		for _, o := range a.Owners() {
			va, _ := a.Get(o)
			vb, ok := b.Get(o)
			if !ok || !va.Eq(vb) {
				t.Fatalf("owner %s: %v != %v", o, va, vb)
			}
		}
	})
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
