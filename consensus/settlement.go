package consensus

import (
	"fmt"

	"github.com/holiman/uint256"
)

// DeliveredAmount sums the balances of outputs locked by owner and typed by
// tokenType. Plain capacity cells and cells of any other type never count.
func DeliveredAmount(q CellQuery, owner Hash, tokenType Hash) (*uint256.Int, error) {
	total := new(uint256.Int)
	err := ForEachCell(q, SourceOutput, func(i int) error {
		typeHash, ok, err := q.TypeHash(i, SourceOutput)
		if err != nil {
			return err
		}
		if !ok || typeHash != tokenType {
			return nil
		}
		lockHash, err := q.LockHash(i, SourceOutput)
		if err != nil {
			return err
		}
		if lockHash != owner {
			return nil
		}
		data, err := q.CellData(i, SourceOutput)
		if err != nil {
			return err
		}
		balance, err := ReadTokenBalance(data)
		if err != nil {
			return err
		}
		total, err = addAmount(total, balance)
		return err
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

// VerifySettlement checks each owner independently: surplus paid to one owner
// never covers a shortfall to another.
func VerifySettlement(q CellQuery, reqs *RequirementMap, tokenType Hash) error {
	for _, owner := range reqs.Owners() {
		required := reqs.amounts[owner]
		delivered, err := DeliveredAmount(q, owner, tokenType)
		if err != nil {
			return err
		}
		if delivered.Lt(required) {
			return lockerr(LOCK_ERR_AMOUNT, fmt.Sprintf("owner %s delivered %s < required %s", owner, delivered.Dec(), required.Dec()))
		}
	}
	return nil
}
