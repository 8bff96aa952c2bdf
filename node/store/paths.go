package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// CellsDir returns the on-disk directory of the cell store for backend:
//
//	datadir/cells/<backend>/
func CellsDir(datadir string, backend string) string {
	return filepath.Join(datadir, "cells", backend)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}
