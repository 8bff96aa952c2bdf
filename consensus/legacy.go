package consensus

import (
	"fmt"

	"github.com/holiman/uint256"
)

// LegacyEscrowCell is the payload of the single-cell token-buy layout: the owner
// lives in the script args and the cell names the token type it must be paid in.
type LegacyEscrowCell struct {
	TokenType Hash
	Amount    *uint256.Int
}

func ReadLegacyEscrowCell(data []byte) (LegacyEscrowCell, error) {
	if len(data) < ESCROW_DATA_MIN_LEN {
		return LegacyEscrowCell{}, lockerr(LOCK_ERR_DATA_LENGTH, fmt.Sprintf("legacy escrow cell data %d bytes, need %d", len(data), ESCROW_DATA_MIN_LEN))
	}
	var c LegacyEscrowCell
	copy(c.TokenType[:], data[:SCRIPT_HASH_LEN])
	c.Amount = readU128LE(data[SCRIPT_HASH_LEN:ESCROW_DATA_MIN_LEN])
	return c, nil
}

// ValidateLegacyTokenBuyLock runs the single-cell layout. It is registered under
// its own code hash so cells locked before the multi-owner layout stay spendable.
func ValidateLegacyTokenBuyLock(q CellQuery) (Path, error) {
	args := q.ScriptArgs()
	if len(args) != SCRIPT_ARGS_LEN {
		return PathNone, lockerr(LOCK_ERR_ARGS_LENGTH, fmt.Sprintf("args %d bytes, need %d", len(args), SCRIPT_ARGS_LEN))
	}
	var owner Hash
	copy(owner[:], args)

	if n := q.CellCount(SourceGroupInput); n != 1 {
		return PathNone, lockerr(LOCK_ERR_TRANSACTION_STRUCTURE, fmt.Sprintf("legacy lock groups %d cells, need exactly 1", n))
	}
	data, err := q.CellData(0, SourceGroupInput)
	if err != nil {
		return PathNone, err
	}
	cell, err := ReadLegacyEscrowCell(data)
	if err != nil {
		return PathNone, err
	}

	inputs, err := collectInputLockHashes(q)
	if err != nil {
		return PathNone, err
	}
	if _, ok := inputs[owner]; ok {
		return PathOwner, nil
	}

	delivered, err := DeliveredAmount(q, owner, cell.TokenType)
	if err != nil {
		return PathNone, err
	}
	if delivered.Lt(cell.Amount) {
		return PathNone, lockerr(LOCK_ERR_AMOUNT, fmt.Sprintf("owner %s delivered %s < required %s", owner, delivered.Dec(), cell.Amount.Dec()))
	}
	return PathPurchase, nil
}
