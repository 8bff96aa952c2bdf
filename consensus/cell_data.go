package consensus

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	SCRIPT_HASH_LEN     = 32
	SCRIPT_ARGS_LEN     = SCRIPT_HASH_LEN
	TOKEN_AMOUNT_LEN    = 16
	ESCROW_DATA_MIN_LEN = SCRIPT_HASH_LEN + TOKEN_AMOUNT_LEN
)

// EscrowCell is the decoded payload of a cell locked by the token-buy lock.
type EscrowCell struct {
	Owner  Hash
	Amount *uint256.Int
}

// ReadEscrowCell decodes owner_lock_hash(32) || amount(u128 le) from the leading
// bytes of data. Trailing bytes are ignored.
func ReadEscrowCell(data []byte) (EscrowCell, error) {
	if len(data) < ESCROW_DATA_MIN_LEN {
		return EscrowCell{}, lockerr(LOCK_ERR_DATA_LENGTH, fmt.Sprintf("escrow cell data %d bytes, need %d", len(data), ESCROW_DATA_MIN_LEN))
	}
	var c EscrowCell
	copy(c.Owner[:], data[:SCRIPT_HASH_LEN])
	c.Amount = readU128LE(data[SCRIPT_HASH_LEN:ESCROW_DATA_MIN_LEN])
	return c, nil
}

// ReadTokenBalance decodes the u128 le balance at the head of a token cell.
func ReadTokenBalance(data []byte) (*uint256.Int, error) {
	if len(data) < TOKEN_AMOUNT_LEN {
		return nil, lockerr(LOCK_ERR_ENCODING, fmt.Sprintf("token cell data %d bytes, need %d", len(data), TOKEN_AMOUNT_LEN))
	}
	return readU128LE(data[:TOKEN_AMOUNT_LEN]), nil
}

// EncodeEscrowCell is the inverse of ReadEscrowCell.
func EncodeEscrowCell(owner Hash, amount *uint256.Int) ([]byte, error) {
	a, err := EncodeTokenAmount(amount)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, ESCROW_DATA_MIN_LEN)
	out = append(out, owner[:]...)
	return append(out, a...), nil
}

// EncodeTokenAmount renders v as 16 little-endian bytes.
func EncodeTokenAmount(v *uint256.Int) ([]byte, error) {
	if v == nil {
		return nil, lockerr(LOCK_ERR_ITEM_MISSING, "nil amount")
	}
	if v.BitLen() > 8*TOKEN_AMOUNT_LEN {
		return nil, lockerr(LOCK_ERR_OVERFLOW, "amount exceeds u128")
	}
	be := v.Bytes32()
	out := make([]byte, TOKEN_AMOUNT_LEN)
	for i := 0; i < TOKEN_AMOUNT_LEN; i++ {
		out[i] = be[31-i]
	}
	return out, nil
}

func readU128LE(b []byte) *uint256.Int {
	var be [TOKEN_AMOUNT_LEN]byte
	for i := 0; i < TOKEN_AMOUNT_LEN; i++ {
		be[TOKEN_AMOUNT_LEN-1-i] = b[i]
	}
	return new(uint256.Int).SetBytes16(be[:])
}

// addAmount returns acc+v, failing closed instead of wrapping.
func addAmount(acc, v *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(acc, v)
	if overflow {
		return nil, lockerr(LOCK_ERR_OVERFLOW, "amount accumulator overflow")
	}
	return sum, nil
}
