package store

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"rubin.dev/tokenbuy/consensus"
)

func encodeOutPointKey(p consensus.OutPoint) []byte {
	// tx_hash(32) || index(u32 big-endian), so iteration follows (tx, index) order.
	out := make([]byte, consensus.HashSize+4)
	copy(out[:consensus.HashSize], p.TxHash[:])
	binary.BigEndian.PutUint32(out[consensus.HashSize:], p.Index)
	return out
}

func decodeOutPointKey(b []byte) (consensus.OutPoint, error) {
	if len(b) != consensus.HashSize+4 {
		return consensus.OutPoint{}, fmt.Errorf("outpoint: expected %d bytes, got %d", consensus.HashSize+4, len(b))
	}
	var p consensus.OutPoint
	copy(p.TxHash[:], b[:consensus.HashSize])
	p.Index = binary.BigEndian.Uint32(b[consensus.HashSize:])
	return p, nil
}

type scriptRecord struct {
	CodeHash []byte `cbor:"1,keyasint"`
	HashType uint8  `cbor:"2,keyasint"`
	Args     []byte `cbor:"3,keyasint"`
}

type cellRecord struct {
	Capacity uint64        `cbor:"1,keyasint"`
	Lock     scriptRecord  `cbor:"2,keyasint"`
	Type     *scriptRecord `cbor:"3,keyasint,omitempty"`
	Data     []byte        `cbor:"4,keyasint"`
}

var cellEncMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func toScriptRecord(s consensus.Script) scriptRecord {
	return scriptRecord{
		CodeHash: append([]byte(nil), s.CodeHash[:]...),
		HashType: s.HashType,
		Args:     append([]byte(nil), s.Args...),
	}
}

func (r scriptRecord) script() (consensus.Script, error) {
	if len(r.CodeHash) != consensus.HashSize {
		return consensus.Script{}, fmt.Errorf("cell: code_hash must be %d bytes, got %d", consensus.HashSize, len(r.CodeHash))
	}
	var s consensus.Script
	copy(s.CodeHash[:], r.CodeHash)
	s.HashType = r.HashType
	s.Args = append([]byte(nil), r.Args...)
	return s, nil
}

func encodeCell(c consensus.Cell) ([]byte, error) {
	rec := cellRecord{
		Capacity: c.Output.Capacity,
		Lock:     toScriptRecord(c.Output.Lock),
		Data:     append([]byte(nil), c.Data...),
	}
	if c.Output.Type != nil {
		t := toScriptRecord(*c.Output.Type)
		rec.Type = &t
	}
	b, err := cellEncMode.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("cell: encode: %w", err)
	}
	return b, nil
}

func decodeCell(b []byte) (consensus.Cell, error) {
	var rec cellRecord
	if err := cbor.Unmarshal(b, &rec); err != nil {
		return consensus.Cell{}, fmt.Errorf("cell: decode: %w", err)
	}
	lock, err := rec.Lock.script()
	if err != nil {
		return consensus.Cell{}, err
	}
	c := consensus.Cell{
		Output: consensus.CellOutput{Capacity: rec.Capacity, Lock: lock},
		Data:   rec.Data,
	}
	if rec.Type != nil {
		typ, err := rec.Type.script()
		if err != nil {
			return consensus.Cell{}, err
		}
		c.Output.Type = &typ
	}
	return c, nil
}
