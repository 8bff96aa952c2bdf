package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rubin.dev/tokenbuy/node"
)

func newScriptHashCmd(a *app) *cobra.Command {
	var s node.ScriptJSON
	cmd := &cobra.Command{
		Use:   "script-hash",
		Short: "Print the hash cells are matched by for a script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			script, err := s.Script()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, "0x"+script.Hash().String())
			return err
		},
	}
	cmd.Flags().StringVar(&s.CodeHash, "code-hash", "", "32-byte code hash, hex")
	cmd.Flags().StringVar(&s.HashType, "hash-type", "data", "data|type")
	cmd.Flags().StringVar(&s.Args, "args", "", "script args, hex")
	_ = cmd.MarkFlagRequired("code-hash")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(a.out, Version)
			return err
		},
	}
}
