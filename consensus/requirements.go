package consensus

import (
	"bytes"
	"slices"

	"github.com/holiman/uint256"
)

// RequirementMap holds, per owner lock hash, the total token amount the escrow
// cells of one group promise to that owner.
type RequirementMap struct {
	amounts map[Hash]*uint256.Int
}

func newRequirementMap() *RequirementMap {
	return &RequirementMap{amounts: make(map[Hash]*uint256.Int)}
}

func (m *RequirementMap) add(owner Hash, amount *uint256.Int) error {
	acc, ok := m.amounts[owner]
	if !ok {
		acc = new(uint256.Int)
	}
	sum, err := addAmount(acc, amount)
	if err != nil {
		return err
	}
	m.amounts[owner] = sum
	return nil
}

func (m *RequirementMap) Len() int {
	return len(m.amounts)
}

// Get returns a copy of the aggregated amount for owner.
func (m *RequirementMap) Get(owner Hash) (*uint256.Int, bool) {
	v, ok := m.amounts[owner]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// Owners returns the owner lock hashes in ascending byte order.
func (m *RequirementMap) Owners() []Hash {
	out := make([]Hash, 0, len(m.amounts))
	for h := range m.amounts {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b Hash) int {
		return bytes.Compare(a[:], b[:])
	})
	return out
}

// AggregateRequirements scans every escrow cell of the group once and sums the
// promised amounts per owner. Any malformed cell aborts the whole aggregation.
func AggregateRequirements(q CellQuery) (*RequirementMap, error) {
	reqs := newRequirementMap()
	err := ForEachCell(q, SourceGroupInput, func(i int) error {
		data, err := q.CellData(i, SourceGroupInput)
		if err != nil {
			return err
		}
		c, err := ReadEscrowCell(data)
		if err != nil {
			return err
		}
		return reqs.add(c.Owner, c.Amount)
	})
	if err != nil {
		return nil, err
	}
	return reqs, nil
}
