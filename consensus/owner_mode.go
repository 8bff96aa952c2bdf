package consensus

// CheckOwnerMode reports whether every owner named by the escrow cells in the
// group also locks some input of the transaction. A malformed escrow payload is
// an error even when the owners would otherwise all be present.
func CheckOwnerMode(q CellQuery) (bool, error) {
	owners, err := collectOwners(q)
	if err != nil {
		return false, err
	}
	inputs, err := collectInputLockHashes(q)
	if err != nil {
		return false, err
	}
	for owner := range owners {
		if _, ok := inputs[owner]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func collectOwners(q CellQuery) (map[Hash]struct{}, error) {
	owners := make(map[Hash]struct{}, q.CellCount(SourceGroupInput))
	err := ForEachCell(q, SourceGroupInput, func(i int) error {
		data, err := q.CellData(i, SourceGroupInput)
		if err != nil {
			return err
		}
		c, err := ReadEscrowCell(data)
		if err != nil {
			return err
		}
		owners[c.Owner] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return owners, nil
}

func collectInputLockHashes(q CellQuery) (map[Hash]struct{}, error) {
	locks := make(map[Hash]struct{}, q.CellCount(SourceInput))
	err := ForEachCell(q, SourceInput, func(i int) error {
		h, err := q.LockHash(i, SourceInput)
		if err != nil {
			return err
		}
		locks[h] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return locks, nil
}
