package node

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// maxFixtureBytes bounds any operator-supplied file read into memory.
const maxFixtureBytes = 16 << 20

func readFileByPath(path string) ([]byte, error) {
	return readFileFromDir(filepath.Dir(path), filepath.Base(path))
}

// ReadOperatorInput reads an operator-supplied JSON argument under the same
// size limit as transaction fixtures. "-" reads r instead of a file.
func ReadOperatorInput(path string, r io.Reader) ([]byte, error) {
	if path != "-" {
		return readFileByPath(path)
	}
	b, err := io.ReadAll(io.LimitReader(r, maxFixtureBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxFixtureBytes {
		return nil, fmt.Errorf("stdin exceeds limit %d", maxFixtureBytes)
	}
	return b, nil
}

// readFileFromDir reads a single entry of dir; name may not climb out of it.
func readFileFromDir(dir, name string) ([]byte, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid file name: %q", name)
	}
	fsys := os.DirFS(dir)
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", name)
	}
	if info.Size() > maxFixtureBytes {
		return nil, fmt.Errorf("%s: %d bytes exceeds limit %d", name, info.Size(), maxFixtureBytes)
	}
	return fs.ReadFile(fsys, name)
}
