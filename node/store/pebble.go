package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

// cellPrefix namespaces cell keys; prefixEnd is the first key past it.
var (
	cellPrefix = []byte("c/")
	prefixEnd  = []byte("c0")
)

type pebbleKV struct {
	db     *pebble.DB
	cache  *pebble.Cache
	closed bool
	mu     sync.RWMutex
}

func openPebble(dir string) (*pebbleKV, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	cache := pebble.NewCache(16 * 1024 * 1024)
	opts := &pebble.Options{
		Cache:        cache,
		MemTableSize: 8 * 1024 * 1024,
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		cache.Unref()
		return nil, fmt.Errorf("open pebble: %w", err)
	}
	return &pebbleKV{db: db, cache: cache}, nil
}

func prefixed(key []byte) []byte {
	out := make([]byte, 0, len(cellPrefix)+len(key))
	out = append(out, cellPrefix...)
	return append(out, key...)
}

func (p *pebbleKV) Get(key []byte) ([]byte, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, false, ErrClosed
	}

	value, closer, err := p.db.Get(prefixed(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	return append([]byte(nil), value...), true, nil
}

func (p *pebbleKV) Put(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.db.Set(prefixed(key), value, pebble.Sync)
}

func (p *pebbleKV) Delete(key []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.db.Delete(prefixed(key), pebble.Sync)
}

func (p *pebbleKV) ForEach(fn func(key, value []byte) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: cellPrefix,
		UpperBound: prefixEnd,
	})
	if err != nil {
		return fmt.Errorf("pebble iterator: %w", err)
	}
	defer iter.Close()
	for ok := iter.First(); ok; ok = iter.Next() {
		k := append([]byte(nil), iter.Key()[len(cellPrefix):]...)
		v, err := iter.ValueAndErr()
		if err != nil {
			return fmt.Errorf("pebble value: %w", err)
		}
		if err := fn(k, append([]byte(nil), v...)); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (p *pebbleKV) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	err := p.db.Close()
	// the DB holds its own reference; drop ours once it is gone.
	p.cache.Unref()
	p.cache = nil
	return err
}
