package node

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"rubin.dev/tokenbuy/consensus"
)

var (
	alwaysSuccessCodeHash = consensus.Hash{0xa1}
	sudtCodeHash          = consensus.Hash{0x5d}
)

func userLock(tag byte) consensus.Script {
	return consensus.Script{CodeHash: alwaysSuccessCodeHash, HashType: consensus.HashTypeData, Args: []byte{tag}}
}

func sudtType(issuer consensus.Script) *consensus.Script {
	h := issuer.Hash()
	return &consensus.Script{CodeHash: sudtCodeHash, HashType: consensus.HashTypeData, Args: h.Bytes()}
}

func u128le(v uint64) []byte {
	b := make([]byte, consensus.TOKEN_AMOUNT_LEN)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func escrowData(owner consensus.Hash, amount uint64) []byte {
	return append(owner.Bytes(), u128le(amount)...)
}

type scenario struct {
	buyer  consensus.Script
	seller consensus.Script
	sudt   *consensus.Script
	lock   consensus.Script
}

func newScenario(t *testing.T) scenario {
	t.Helper()
	codeHash, err := consensus.ParseHash(DefaultLockCodeHash)
	require.NoError(t, err)
	s := scenario{buyer: userLock(0), seller: userLock(1), sudt: sudtType(userLock(3))}
	th := s.sudt.Hash()
	s.lock = consensus.Script{CodeHash: codeHash, HashType: consensus.HashTypeData, Args: th.Bytes()}
	return s
}

func cellJSON(lock consensus.Script, typ *consensus.Script, data []byte) CellJSON {
	out := consensus.CellOutput{Capacity: 100_000_000_000, Lock: lock, Type: typ}
	return CellToJSON(consensus.Cell{Output: out, Data: data})
}

// buyTx pays paid tokens to the buyer against an escrow asking for 100.
func (s scenario) buyTx(name string, paid uint64) *TxFile {
	escrow := cellJSON(s.lock, nil, escrowData(s.buyer.Hash(), 100))
	funding := cellJSON(s.seller, s.sudt, u128le(9_000))
	return &TxFile{
		Name:   name,
		Inputs: []InputJSON{{Cell: &escrow}, {Cell: &funding}},
		Outputs: []CellJSON{
			cellJSON(s.buyer, s.sudt, u128le(paid)),
			cellJSON(s.seller, s.sudt, u128le(9_000-paid)),
		},
	}
}

func testVerifier(t *testing.T) *Verifier {
	t.Helper()
	reg, err := DefaultConfig().Registry()
	require.NoError(t, err)
	return NewVerifier(reg, nil, NopLoggers().Verify)
}
