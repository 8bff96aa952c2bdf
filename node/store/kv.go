package store

import "errors"

var (
	ErrClosed   = errors.New("cellstore: database is closed")
	ErrNotFound = errors.New("cellstore: cell not found")
)

// KV is the byte-level storage a CellStore sits on. Both backends keep cells
// in their own namespace, so keys passed here are raw out-point keys.
type KV interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	// ForEach visits every pair in key order until fn returns an error.
	ForEach(fn func(key, value []byte) error) error
	Close() error
}

const (
	BackendBolt   = "bolt"
	BackendPebble = "pebble"
)
