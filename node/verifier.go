package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"rubin.dev/tokenbuy/consensus"
	"rubin.dev/tokenbuy/node/store"
)

// GroupReport describes one lock group that ran and passed.
type GroupReport struct {
	ScriptHash string `json:"script_hash"`
	Inputs     []int  `json:"inputs"`
	Path       string `json:"path"`
}

// Report is the verdict for one transaction. Rejections are reported here, not
// as errors; Verify only fails when the transaction could not be assembled.
type Report struct {
	Name       string              `json:"name,omitempty"`
	TxHash     string              `json:"tx_hash"`
	Accepted   bool                `json:"accepted"`
	Code       consensus.ErrorCode `json:"code,omitempty"`
	ExitCode   int8                `json:"exit_code"`
	GroupIndex int                 `json:"group_index"`
	InputIndex int                 `json:"input_index"`
	Message    string              `json:"message,omitempty"`
	Groups     []GroupReport       `json:"groups,omitempty"`
}

type Verifier struct {
	Registry *consensus.Registry
	Store    *store.CellStore
	Log      zerolog.Logger
}

func NewVerifier(reg *consensus.Registry, cells *store.CellStore, log zerolog.Logger) *Verifier {
	return &Verifier{Registry: reg, Store: cells, Log: log}
}

func (v *Verifier) Verify(ctx context.Context, f *TxFile) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if v.Registry == nil {
		return Report{}, errors.New("verifier: nil registry")
	}
	rtx, err := f.Resolve(v.Store)
	if err != nil {
		return Report{}, err
	}
	return v.VerifyResolved(f.Name, rtx)
}

// VerifyResolved runs the registry against an already resolved transaction.
func (v *Verifier) VerifyResolved(name string, rtx *consensus.ResolvedTransaction) (Report, error) {
	rep := Report{Name: name, GroupIndex: -1, InputIndex: -1}
	if rtx != nil && rtx.Tx != nil {
		rep.TxHash = rtx.Tx.Hash().String()
	}
	verdicts, err := consensus.VerifyTransaction(rtx, v.Registry)
	if err != nil {
		code, ok := consensus.ErrorCodeOf(err)
		if !ok {
			return Report{}, fmt.Errorf("verify %s: %w", name, err)
		}
		rep.Code = code
		rep.ExitCode = code.ExitCode()
		rep.Message = err.Error()
		var se *consensus.ScriptError
		if errors.As(err, &se) {
			rep.GroupIndex = se.GroupIndex
			rep.InputIndex = se.InputIndex
		}
		v.Log.Info().
			Str("tx", name).
			Str("tx_hash", rep.TxHash).
			Str("code", string(code)).
			Int("group", rep.GroupIndex).
			Int("input", rep.InputIndex).
			Msg("transaction rejected")
		return rep, nil
	}

	rep.Accepted = true
	for _, gv := range verdicts {
		rep.Groups = append(rep.Groups, GroupReport{
			ScriptHash: gv.Group.ScriptHash.String(),
			Inputs:     gv.Group.InputIndices,
			Path:       gv.Path.String(),
		})
		v.Log.Debug().
			Str("tx", name).
			Str("script_hash", gv.Group.ScriptHash.String()).
			Str("path", gv.Path.String()).
			Ints("inputs", gv.Group.InputIndices).
			Msg("lock group passed")
	}
	v.Log.Info().
		Str("tx", name).
		Str("tx_hash", rep.TxHash).
		Int("groups", len(rep.Groups)).
		Msg("transaction accepted")
	return rep, nil
}
