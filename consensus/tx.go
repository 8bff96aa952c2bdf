package consensus

const (
	HashTypeData byte = 0x00
	HashTypeType byte = 0x01
)

// Script identifies a lock or type condition. Cells are matched by Script.Hash,
// never by comparing scripts field by field.
type Script struct {
	CodeHash Hash
	HashType byte
	Args     []byte
}

// Hash is blake2b-256 over code_hash || hash_type || u32le(len(args)) || args.
func (s Script) Hash() Hash {
	b := make([]byte, 0, HashSize+1+4+len(s.Args))
	return blake2b256(appendScript(b, s))
}

type CellOutput struct {
	Capacity uint64
	Lock     Script
	Type     *Script
}

// TypeHash returns the hash of the output's type script, or false for a plain
// capacity cell.
func (o CellOutput) TypeHash() (Hash, bool) {
	if o.Type == nil {
		return Hash{}, false
	}
	return o.Type.Hash(), true
}

type Cell struct {
	Output CellOutput
	Data   []byte
}

type OutPoint struct {
	TxHash Hash
	Index  uint32
}

type Transaction struct {
	Inputs      []OutPoint
	Outputs     []CellOutput
	OutputsData [][]byte
}

// Hash commits to inputs, outputs and output data in order.
func (tx *Transaction) Hash() Hash {
	b := make([]byte, 0, 256)
	// #nosec G115 -- counts are bounded by the transaction size limit.
	b = appendU32le(b, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		b = append(b, in.TxHash[:]...)
		b = appendU32le(b, in.Index)
	}
	// #nosec G115 -- see above.
	b = appendU32le(b, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		b = appendU64le(b, out.Capacity)
		b = appendScript(b, out.Lock)
		if out.Type == nil {
			b = append(b, 0x00)
		} else {
			b = append(b, 0x01)
			b = appendScript(b, *out.Type)
		}
	}
	// #nosec G115 -- see above.
	b = appendU32le(b, uint32(len(tx.OutputsData)))
	for _, d := range tx.OutputsData {
		b = appendBytes(b, d)
	}
	return blake2b256(b)
}

// ResolvedTransaction pairs a transaction with the live cells its inputs consume.
type ResolvedTransaction struct {
	Tx         *Transaction
	InputCells []Cell
}

func (rtx *ResolvedTransaction) checkStructure() error {
	if rtx == nil || rtx.Tx == nil {
		return lockerr(LOCK_ERR_ITEM_MISSING, "nil transaction")
	}
	if len(rtx.InputCells) != len(rtx.Tx.Inputs) {
		return lockerr(LOCK_ERR_LENGTH_NOT_ENOUGH, "resolved input count mismatch")
	}
	if len(rtx.Tx.Outputs) != len(rtx.Tx.OutputsData) {
		return lockerr(LOCK_ERR_LENGTH_NOT_ENOUGH, "outputs and outputs_data length mismatch")
	}
	return nil
}
