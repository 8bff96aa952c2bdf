package node

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"rubin.dev/tokenbuy/consensus"
	"rubin.dev/tokenbuy/node/store"
)

// ScriptJSON is a script as it appears in transaction fixtures. Byte fields are
// hex with an optional 0x prefix.
type ScriptJSON struct {
	CodeHash string `json:"code_hash"`
	HashType string `json:"hash_type"`
	Args     string `json:"args"`
}

type CellJSON struct {
	Capacity uint64      `json:"capacity"`
	Lock     ScriptJSON  `json:"lock"`
	Type     *ScriptJSON `json:"type,omitempty"`
	Data     string      `json:"data"`
}

type OutPointJSON struct {
	TxHash string `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

// InputJSON names a consumed cell either by out-point (resolved against the
// cell store) or by embedding the cell itself.
type InputJSON struct {
	OutPoint *OutPointJSON `json:"out_point,omitempty"`
	Cell     *CellJSON     `json:"cell,omitempty"`
}

type TxFile struct {
	Name    string      `json:"name,omitempty"`
	Inputs  []InputJSON `json:"inputs"`
	Outputs []CellJSON  `json:"outputs"`
}

func DecodeTxFile(r io.Reader) (*TxFile, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var f TxFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode tx file: %w", err)
	}
	return &f, nil
}

func ReadTxFile(path string) (*TxFile, error) {
	raw, err := readFileByPath(path)
	if err != nil {
		return nil, err
	}
	f, err := DecodeTxFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = path
	}
	return f, nil
}

func decodeHex(field, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%s: bad hex: %w", field, err)
	}
	return b, nil
}

func encodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func parseHashType(s string) (byte, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "data", "":
		return consensus.HashTypeData, nil
	case "type":
		return consensus.HashTypeType, nil
	default:
		return 0, fmt.Errorf("unknown hash_type %q", s)
	}
}

func hashTypeName(t byte) string {
	if t == consensus.HashTypeType {
		return "type"
	}
	return "data"
}

func (s ScriptJSON) Script() (consensus.Script, error) {
	codeHash, err := consensus.ParseHash(s.CodeHash)
	if err != nil {
		return consensus.Script{}, fmt.Errorf("code_hash: %w", err)
	}
	ht, err := parseHashType(s.HashType)
	if err != nil {
		return consensus.Script{}, err
	}
	args, err := decodeHex("args", s.Args)
	if err != nil {
		return consensus.Script{}, err
	}
	return consensus.Script{CodeHash: codeHash, HashType: ht, Args: args}, nil
}

func ScriptToJSON(s consensus.Script) ScriptJSON {
	return ScriptJSON{
		CodeHash: encodeHex(s.CodeHash[:]),
		HashType: hashTypeName(s.HashType),
		Args:     encodeHex(s.Args),
	}
}

func (c CellJSON) Cell() (consensus.Cell, error) {
	lock, err := c.Lock.Script()
	if err != nil {
		return consensus.Cell{}, fmt.Errorf("lock: %w", err)
	}
	out := consensus.CellOutput{Capacity: c.Capacity, Lock: lock}
	if c.Type != nil {
		typ, err := c.Type.Script()
		if err != nil {
			return consensus.Cell{}, fmt.Errorf("type: %w", err)
		}
		out.Type = &typ
	}
	data, err := decodeHex("data", c.Data)
	if err != nil {
		return consensus.Cell{}, err
	}
	return consensus.Cell{Output: out, Data: data}, nil
}

func CellToJSON(c consensus.Cell) CellJSON {
	out := CellJSON{
		Capacity: c.Output.Capacity,
		Lock:     ScriptToJSON(c.Output.Lock),
		Data:     encodeHex(c.Data),
	}
	if c.Output.Type != nil {
		t := ScriptToJSON(*c.Output.Type)
		out.Type = &t
	}
	return out
}

func (p OutPointJSON) OutPoint() (consensus.OutPoint, error) {
	h, err := consensus.ParseHash(p.TxHash)
	if err != nil {
		return consensus.OutPoint{}, fmt.Errorf("tx_hash: %w", err)
	}
	return consensus.OutPoint{TxHash: h, Index: p.Index}, nil
}

// Resolve builds the transaction and looks up every input. Embedded cells win
// over the store; cells may be nil when every input is embedded. An embedded
// input without an out-point is given the zero tx hash and its input position.
func (f *TxFile) Resolve(cells *store.CellStore) (*consensus.ResolvedTransaction, error) {
	tx := &consensus.Transaction{
		Inputs:      make([]consensus.OutPoint, 0, len(f.Inputs)),
		Outputs:     make([]consensus.CellOutput, 0, len(f.Outputs)),
		OutputsData: make([][]byte, 0, len(f.Outputs)),
	}
	inputCells := make([]consensus.Cell, 0, len(f.Inputs))
	for i, in := range f.Inputs {
		var p consensus.OutPoint
		if in.OutPoint != nil {
			op, err := in.OutPoint.OutPoint()
			if err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			p = op
		} else {
			// #nosec G115 -- fixture input counts are tiny.
			p = consensus.OutPoint{Index: uint32(i)}
		}
		var c consensus.Cell
		switch {
		case in.Cell != nil:
			cell, err := in.Cell.Cell()
			if err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			c = cell
		case in.OutPoint == nil:
			return nil, fmt.Errorf("input %d: needs out_point or cell", i)
		case cells == nil:
			return nil, fmt.Errorf("input %d: out_point given but no cell store open", i)
		default:
			cell, err := cells.Get(p)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil, fmt.Errorf("input %d (%s:%d): %w", i, p.TxHash, p.Index, err)
				}
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			c = cell
		}
		tx.Inputs = append(tx.Inputs, p)
		inputCells = append(inputCells, c)
	}
	for i, o := range f.Outputs {
		c, err := o.Cell()
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		tx.Outputs = append(tx.Outputs, c.Output)
		tx.OutputsData = append(tx.OutputsData, c.Data)
	}
	return &consensus.ResolvedTransaction{Tx: tx, InputCells: inputCells}, nil
}
