package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"rubin.dev/tokenbuy/consensus"
	"rubin.dev/tokenbuy/node"
)

type cellEntry struct {
	OutPoint node.OutPointJSON `json:"out_point"`
	Cell     node.CellJSON     `json:"cell"`
}

func outPointFlags(cmd *cobra.Command, txHash *string, index *uint32) {
	cmd.Flags().StringVar(txHash, "tx-hash", "", "hash of the transaction that created the cell")
	cmd.Flags().Uint32Var(index, "index", 0, "output index within that transaction")
	_ = cmd.MarkFlagRequired("tx-hash")
}

func parseOutPoint(txHash string, index uint32) (consensus.OutPoint, error) {
	return node.OutPointJSON{TxHash: txHash, Index: index}.OutPoint()
}

func newCellsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cells",
		Short: "Manage the live cells transactions are resolved against",
	}
	cmd.AddCommand(newCellsPutCmd(a), newCellsGetCmd(a), newCellsDeleteCmd(a), newCellsListCmd(a))
	return cmd
}

func newCellsPutCmd(a *app) *cobra.Command {
	var (
		txHash string
		index  uint32
	)
	cmd := &cobra.Command{
		Use:   "put <cell.json>",
		Short: "Store a cell under an out-point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseOutPoint(txHash, index)
			if err != nil {
				return err
			}
			raw, err := node.ReadOperatorInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			var cj node.CellJSON
			if err := json.Unmarshal(raw, &cj); err != nil {
				return fmt.Errorf("decode cell: %w", err)
			}
			c, err := cj.Cell()
			if err != nil {
				return err
			}
			cells, err := a.openStore()
			if err != nil {
				return err
			}
			defer cells.Close()
			if err := cells.Put(p, c); err != nil {
				return err
			}
			a.logs.Store.Info().Str("tx_hash", p.TxHash.String()).Uint32("index", p.Index).Msg("cell stored")
			return nil
		},
	}
	outPointFlags(cmd, &txHash, &index)
	return cmd
}

func newCellsGetCmd(a *app) *cobra.Command {
	var (
		txHash string
		index  uint32
	)
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the cell stored under an out-point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parseOutPoint(txHash, index)
			if err != nil {
				return err
			}
			cells, err := a.openStore()
			if err != nil {
				return err
			}
			defer cells.Close()
			c, err := cells.Get(p)
			if err != nil {
				return err
			}
			return a.writeJSON(node.CellToJSON(c))
		},
	}
	outPointFlags(cmd, &txHash, &index)
	return cmd
}

func newCellsDeleteCmd(a *app) *cobra.Command {
	var (
		txHash string
		index  uint32
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the cell stored under an out-point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parseOutPoint(txHash, index)
			if err != nil {
				return err
			}
			cells, err := a.openStore()
			if err != nil {
				return err
			}
			defer cells.Close()
			return cells.Delete(p)
		},
	}
	outPointFlags(cmd, &txHash, &index)
	return cmd
}

func newCellsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every stored cell in out-point order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cells, err := a.openStore()
			if err != nil {
				return err
			}
			defer cells.Close()
			entries := []cellEntry{}
			err = cells.List(func(p consensus.OutPoint, c consensus.Cell) error {
				entries = append(entries, cellEntry{
					OutPoint: node.OutPointJSON{TxHash: p.TxHash.String(), Index: p.Index},
					Cell:     node.CellToJSON(c),
				})
				return nil
			})
			if err != nil {
				return err
			}
			return a.writeJSON(entries)
		},
	}
}
