package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"rubin.dev/tokenbuy/node"
	"rubin.dev/tokenbuy/node/store"
)

func needsStore(files []*node.TxFile) bool {
	for _, f := range files {
		for _, in := range f.Inputs {
			if in.Cell == nil && in.OutPoint != nil {
				return true
			}
		}
	}
	return false
}

// verifier opens the cell store only when some input must be looked up.
func (a *app) verifier(files []*node.TxFile) (*node.Verifier, func(), error) {
	reg, err := a.cfg.Registry()
	if err != nil {
		return nil, nil, err
	}
	var cells *store.CellStore
	closeFn := func() {}
	if needsStore(files) {
		cells, err = a.openStore()
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() {
			if err := cells.Close(); err != nil {
				a.logs.Store.Warn().Err(err).Msg("close cell store")
			}
		}
	}
	return node.NewVerifier(reg, cells, a.logs.Verify), closeFn, nil
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <tx.json>",
		Short: "Verify one transaction fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := node.ReadTxFile(args[0])
			if err != nil {
				return err
			}
			v, closeFn, err := a.verifier([]*node.TxFile{f})
			if err != nil {
				return err
			}
			defer closeFn()
			rep, err := v.Verify(cmd.Context(), f)
			if err != nil {
				return err
			}
			if err := a.writeJSON(rep); err != nil {
				return err
			}
			if !rep.Accepted {
				return fmt.Errorf("transaction rejected: %s", rep.Code)
			}
			return nil
		},
	}
}

// collectTxFiles expands directories to the *.json files directly inside them.
func collectTxFiles(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
				continue
			}
			out = append(out, filepath.Join(p, e.Name()))
		}
	}
	return out, nil
}

func newVerifyBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-batch <tx.json|dir>...",
		Short: "Verify many independent transaction fixtures concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectTxFiles(args)
			if err != nil {
				return err
			}
			files := make([]*node.TxFile, 0, len(paths))
			for _, p := range paths {
				f, err := node.ReadTxFile(p)
				if err != nil {
					return err
				}
				files = append(files, f)
			}
			v, closeFn, err := a.verifier(files)
			if err != nil {
				return err
			}
			defer closeFn()
			reports, err := node.VerifyBatch(cmd.Context(), v, files, a.cfg.Workers)
			if err != nil {
				return err
			}
			if err := a.writeJSON(reports); err != nil {
				return err
			}
			rejected := 0
			for _, r := range reports {
				if !r.Accepted {
					rejected++
				}
			}
			a.logs.CLI.Info().Int("total", len(reports)).Int("rejected", rejected).Msg("batch verified")
			if rejected > 0 {
				return fmt.Errorf("%d of %d transactions rejected", rejected, len(reports))
			}
			return nil
		},
	}
}
