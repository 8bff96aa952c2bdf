package store

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"rubin.dev/tokenbuy/consensus"
)

type Options struct {
	DataDir   string
	Backend   string
	CacheSize int
	Log       zerolog.Logger
}

// CellStore keeps the live cells transactions are resolved against.
type CellStore struct {
	kv    KV
	cache *lru.Cache[consensus.OutPoint, consensus.Cell]
	log   zerolog.Logger
}

func Open(opts Options) (*CellStore, error) {
	if opts.DataDir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	var (
		kv  KV
		err error
	)
	dir := CellsDir(opts.DataDir, opts.Backend)
	switch opts.Backend {
	case BackendBolt:
		kv, err = openBolt(dir)
	case BackendPebble:
		kv, err = openPebble(dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	s, err := NewCellStore(kv, opts.CacheSize, opts.Log)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	s.log.Debug().Str("backend", opts.Backend).Str("dir", dir).Msg("cell store opened")
	return s, nil
}

// NewCellStore wraps kv. A cacheSize of zero disables the read cache.
func NewCellStore(kv KV, cacheSize int, log zerolog.Logger) (*CellStore, error) {
	s := &CellStore{kv: kv, log: log}
	if cacheSize > 0 {
		c, err := lru.New[consensus.OutPoint, consensus.Cell](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("cell cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

func (s *CellStore) Put(p consensus.OutPoint, c consensus.Cell) error {
	val, err := encodeCell(c)
	if err != nil {
		return err
	}
	if err := s.kv.Put(encodeOutPointKey(p), val); err != nil {
		return fmt.Errorf("put cell %s:%d: %w", p.TxHash, p.Index, err)
	}
	if s.cache != nil {
		s.cache.Remove(p)
	}
	return nil
}

// cloneCell copies every byte slice of c so cached cells never alias
// caller-owned memory.
func cloneCell(c consensus.Cell) consensus.Cell {
	out := c
	out.Data = bytes.Clone(c.Data)
	out.Output.Lock.Args = bytes.Clone(c.Output.Lock.Args)
	if c.Output.Type != nil {
		typ := *c.Output.Type
		typ.Args = bytes.Clone(typ.Args)
		out.Output.Type = &typ
	}
	return out
}

// Get returns ErrNotFound when no live cell exists at p. The returned cell is
// the caller's to modify.
func (s *CellStore) Get(p consensus.OutPoint) (consensus.Cell, error) {
	if s.cache != nil {
		if c, ok := s.cache.Get(p); ok {
			return cloneCell(c), nil
		}
	}
	val, ok, err := s.kv.Get(encodeOutPointKey(p))
	if err != nil {
		return consensus.Cell{}, fmt.Errorf("get cell %s:%d: %w", p.TxHash, p.Index, err)
	}
	if !ok {
		return consensus.Cell{}, ErrNotFound
	}
	c, err := decodeCell(val)
	if err != nil {
		return consensus.Cell{}, err
	}
	if s.cache != nil {
		s.cache.Add(p, cloneCell(c))
	}
	return c, nil
}

func (s *CellStore) Delete(p consensus.OutPoint) error {
	if s.cache != nil {
		s.cache.Remove(p)
	}
	return s.kv.Delete(encodeOutPointKey(p))
}

// List visits every stored cell in out-point order.
func (s *CellStore) List(fn func(consensus.OutPoint, consensus.Cell) error) error {
	return s.kv.ForEach(func(k, v []byte) error {
		p, err := decodeOutPointKey(k)
		if err != nil {
			return err
		}
		c, err := decodeCell(v)
		if err != nil {
			return err
		}
		return fn(p, c)
	})
}

// Resolve looks up every input of tx.
func (s *CellStore) Resolve(tx *consensus.Transaction) (*consensus.ResolvedTransaction, error) {
	cells := make([]consensus.Cell, 0, len(tx.Inputs))
	for i, in := range tx.Inputs {
		c, err := s.Get(in)
		if err != nil {
			return nil, fmt.Errorf("input %d (%s:%d): %w", i, in.TxHash, in.Index, err)
		}
		cells = append(cells, c)
	}
	return &consensus.ResolvedTransaction{Tx: tx, InputCells: cells}, nil
}

func (s *CellStore) Close() error {
	if s == nil || s.kv == nil {
		return nil
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	return s.kv.Close()
}
