package consensus

import "fmt"

// Source selects the partition of transaction cells a query reads from.
type Source uint8

const (
	SourceInput Source = iota
	SourceGroupInput
	SourceOutput
)

func (s Source) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceGroupInput:
		return "group_input"
	case SourceOutput:
		return "output"
	default:
		return fmt.Sprintf("source(%d)", uint8(s))
	}
}

// CellQuery is the read-only view of a transaction a lock predicate runs against.
type CellQuery interface {
	// ScriptArgs returns the args of the currently executing lock script.
	ScriptArgs() []byte
	CellCount(src Source) int
	LockHash(i int, src Source) (Hash, error)
	// TypeHash reports false when the cell carries no type script.
	TypeHash(i int, src Source) (Hash, bool, error)
	CellData(i int, src Source) ([]byte, error)
}

// ForEachCell calls fn for every index of src in order, stopping at the first error.
func ForEachCell(q CellQuery, src Source, fn func(i int) error) error {
	n := q.CellCount(src)
	for i := 0; i < n; i++ {
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

// TxContext serves CellQuery for one script group of a resolved transaction.
type TxContext struct {
	rtx   *ResolvedTransaction
	args  []byte
	group []int
}

// NewTxContext builds the query view for the group of inputs at indices group,
// executing a lock script with the given args.
func NewTxContext(rtx *ResolvedTransaction, args []byte, group []int) (*TxContext, error) {
	if err := rtx.checkStructure(); err != nil {
		return nil, err
	}
	for _, idx := range group {
		if idx < 0 || idx >= len(rtx.InputCells) {
			return nil, lockerr(LOCK_ERR_INDEX_OUT_OF_BOUND, "group input index out of range")
		}
	}
	return &TxContext{
		rtx:   rtx,
		args:  append([]byte(nil), args...),
		group: append([]int(nil), group...),
	}, nil
}

func (c *TxContext) ScriptArgs() []byte {
	return c.args
}

func (c *TxContext) CellCount(src Source) int {
	switch src {
	case SourceInput:
		return len(c.rtx.InputCells)
	case SourceGroupInput:
		return len(c.group)
	case SourceOutput:
		return len(c.rtx.Tx.Outputs)
	default:
		return 0
	}
}

func (c *TxContext) output(i int, src Source) (CellOutput, []byte, error) {
	switch src {
	case SourceInput:
		if i < 0 || i >= len(c.rtx.InputCells) {
			return CellOutput{}, nil, lockerr(LOCK_ERR_INDEX_OUT_OF_BOUND, "input index out of range")
		}
		cell := c.rtx.InputCells[i]
		return cell.Output, cell.Data, nil
	case SourceGroupInput:
		if i < 0 || i >= len(c.group) {
			return CellOutput{}, nil, lockerr(LOCK_ERR_INDEX_OUT_OF_BOUND, "group input index out of range")
		}
		cell := c.rtx.InputCells[c.group[i]]
		return cell.Output, cell.Data, nil
	case SourceOutput:
		if i < 0 || i >= len(c.rtx.Tx.Outputs) {
			return CellOutput{}, nil, lockerr(LOCK_ERR_INDEX_OUT_OF_BOUND, "output index out of range")
		}
		return c.rtx.Tx.Outputs[i], c.rtx.Tx.OutputsData[i], nil
	default:
		return CellOutput{}, nil, lockerr(LOCK_ERR_INDEX_OUT_OF_BOUND, "unknown source")
	}
}

func (c *TxContext) LockHash(i int, src Source) (Hash, error) {
	out, _, err := c.output(i, src)
	if err != nil {
		return Hash{}, err
	}
	return out.Lock.Hash(), nil
}

func (c *TxContext) TypeHash(i int, src Source) (Hash, bool, error) {
	out, _, err := c.output(i, src)
	if err != nil {
		return Hash{}, false, err
	}
	h, ok := out.TypeHash()
	return h, ok, nil
}

func (c *TxContext) CellData(i int, src Source) ([]byte, error) {
	_, data, err := c.output(i, src)
	if err != nil {
		return nil, err
	}
	return data, nil
}
