package consensus

import (
	"encoding/binary"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	alwaysSuccessCodeHash = Hash{0xa1}
	sudtCodeHash          = Hash{0x5d}
	tokenBuyCodeHash      = Hash{0x7b}
	legacyTokenBuyHash    = Hash{0x7a}
)

func alwaysSuccessLock(tag byte) Script {
	return Script{CodeHash: alwaysSuccessCodeHash, HashType: HashTypeData, Args: []byte{tag}}
}

func sudtType(issuer Script) *Script {
	h := issuer.Hash()
	return &Script{CodeHash: sudtCodeHash, HashType: HashTypeData, Args: h[:]}
}

func tokenBuyLock(tokenType Hash) Script {
	return Script{CodeHash: tokenBuyCodeHash, HashType: HashTypeData, Args: append([]byte(nil), tokenType[:]...)}
}

func u128le(v uint64) []byte {
	b := make([]byte, TOKEN_AMOUNT_LEN)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func escrowData(owner Hash, amount uint64) []byte {
	b := append([]byte(nil), owner[:]...)
	return append(b, u128le(amount)...)
}

// txBuilder assembles resolved transactions the way the host would present them.
type txBuilder struct {
	inputs  []Cell
	outputs []CellOutput
	data    [][]byte
}

func newTx() *txBuilder {
	return &txBuilder{}
}

func (b *txBuilder) input(lock Script, typ *Script, data []byte) *txBuilder {
	b.inputs = append(b.inputs, Cell{
		Output: CellOutput{Capacity: 100_000_000_000, Lock: lock, Type: typ},
		Data:   data,
	})
	return b
}

func (b *txBuilder) output(lock Script, typ *Script, data []byte) *txBuilder {
	b.outputs = append(b.outputs, CellOutput{Capacity: 100_000_000_000, Lock: lock, Type: typ})
	b.data = append(b.data, data)
	return b
}

func (b *txBuilder) build() *ResolvedTransaction {
	tx := &Transaction{Outputs: b.outputs, OutputsData: b.data}
	for i := range b.inputs {
		var h Hash
		h[0] = 0xee
		h[1] = byte(i)
		tx.Inputs = append(tx.Inputs, OutPoint{TxHash: h, Index: uint32(i)})
	}
	return &ResolvedTransaction{Tx: tx, InputCells: b.inputs}
}

// groupContext returns the query view of the group locked by lock.
func groupContext(t *testing.T, rtx *ResolvedTransaction, lock Script) *TxContext {
	t.Helper()
	want := lock.Hash()
	var group []int
	for i, c := range rtx.InputCells {
		if c.Output.Lock.Hash() == want {
			group = append(group, i)
		}
	}
	q, err := NewTxContext(rtx, lock.Args, group)
	require.NoError(t, err)
	return q
}

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(tokenBuyCodeHash, ValidateTokenBuyLock)
	reg.Register(legacyTokenBuyHash, ValidateLegacyTokenBuyLock)
	return reg
}

func requireLockCode(t *testing.T, err error, want ErrorCode) {
	t.Helper()
	require.Error(t, err)
	got, ok := ErrorCodeOf(err)
	require.Truef(t, ok, "expected *LockError, got %T: %v", err, err)
	require.Equal(t, want, got)
}

func amount(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// fixture mirrors the usual cast: a buyer owning the escrow, a seller taking
// the change, and the token issuer whose lock hash parametrises the sUDT type.
type fixture struct {
	buyer    Script
	buyer2   Script
	seller   Script
	sudt     *Script
	sudtHash Hash
	lock     Script
}

func newFixture() fixture {
	f := fixture{
		buyer:  alwaysSuccessLock(0),
		buyer2: alwaysSuccessLock(2),
		seller: alwaysSuccessLock(1),
		sudt:   sudtType(alwaysSuccessLock(3)),
	}
	f.sudtHash = f.sudt.Hash()
	f.lock = tokenBuyLock(f.sudtHash)
	return f
}
