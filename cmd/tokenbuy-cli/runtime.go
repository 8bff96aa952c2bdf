package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/holiman/uint256"

	"rubin.dev/tokenbuy/consensus"
	"rubin.dev/tokenbuy/node"
)

type Request struct {
	Op                 string           `json:"op"`
	Tx                 *node.TxFile     `json:"tx,omitempty"`
	Script             *node.ScriptJSON `json:"script,omitempty"`
	DataHex            string           `json:"data,omitempty"`
	Owner              string           `json:"owner,omitempty"`
	Amount             string           `json:"amount,omitempty"`
	LockCodeHash       string           `json:"lock_code_hash,omitempty"`
	LegacyLockCodeHash string           `json:"legacy_lock_code_hash,omitempty"`
}

type Response struct {
	Ok         bool               `json:"ok"`
	Err        string             `json:"err,omitempty"`
	ExitCode   int8               `json:"exit_code,omitempty"`
	InputIndex *int               `json:"input_index,omitempty"`
	Groups     []node.GroupReport `json:"groups,omitempty"`
	HashHex    string             `json:"hash,omitempty"`
	Owner      string             `json:"owner,omitempty"`
	Amount     string             `json:"amount,omitempty"`
	DataHex    string             `json:"data,omitempty"`
}

func writeResp(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	return hex.DecodeString(s)
}

func registryFor(req Request) (*consensus.Registry, error) {
	cfg := node.DefaultConfig()
	if req.LockCodeHash != "" {
		cfg.LockCodeHash = req.LockCodeHash
	}
	cfg.LegacyLockCodeHash = req.LegacyLockCodeHash
	return cfg.Registry()
}

// run handles one request and reports whether it succeeded.
func run(r io.Reader, w io.Writer) bool {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		writeResp(w, Response{Ok: false, Err: fmt.Sprintf("bad request: %v", err)})
		return false
	}
	resp := handle(req)
	writeResp(w, resp)
	return resp.Ok
}

func handle(req Request) Response {
	switch req.Op {
	case "verify_tx":
		if req.Tx == nil {
			return Response{Ok: false, Err: "missing tx"}
		}
		reg, err := registryFor(req)
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		v := node.NewVerifier(reg, nil, node.NopLoggers().Verify)
		rep, err := v.Verify(context.Background(), req.Tx)
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		resp := Response{Ok: rep.Accepted, HashHex: rep.TxHash, Groups: rep.Groups}
		if !rep.Accepted {
			resp.Err = string(rep.Code)
			resp.ExitCode = rep.ExitCode
			if rep.InputIndex >= 0 {
				idx := rep.InputIndex
				resp.InputIndex = &idx
			}
		}
		return resp

	case "tx_hash":
		if req.Tx == nil {
			return Response{Ok: false, Err: "missing tx"}
		}
		rtx, err := req.Tx.Resolve(nil)
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		return Response{Ok: true, HashHex: rtx.Tx.Hash().String()}

	case "script_hash":
		if req.Script == nil {
			return Response{Ok: false, Err: "missing script"}
		}
		s, err := req.Script.Script()
		if err != nil {
			return Response{Ok: false, Err: err.Error()}
		}
		return Response{Ok: true, HashHex: s.Hash().String()}

	case "parse_escrow":
		data, err := decodeHex(req.DataHex)
		if err != nil {
			return Response{Ok: false, Err: "bad hex"}
		}
		c, err := consensus.ReadEscrowCell(data)
		if err != nil {
			return lockErrResponse(err)
		}
		return Response{Ok: true, Owner: c.Owner.String(), Amount: c.Amount.Dec()}

	case "encode_escrow":
		owner, err := consensus.ParseHash(req.Owner)
		if err != nil {
			return Response{Ok: false, Err: "bad owner"}
		}
		amount, err := uint256.FromDecimal(req.Amount)
		if err != nil {
			return Response{Ok: false, Err: "bad amount"}
		}
		data, err := consensus.EncodeEscrowCell(owner, amount)
		if err != nil {
			return lockErrResponse(err)
		}
		return Response{Ok: true, DataHex: hex.EncodeToString(data)}

	default:
		return Response{Ok: false, Err: "unknown op"}
	}
}

func lockErrResponse(err error) Response {
	var le *consensus.LockError
	if errors.As(err, &le) {
		return Response{Ok: false, Err: string(le.Code), ExitCode: le.Code.ExitCode()}
	}
	return Response{Ok: false, Err: err.Error()}
}
