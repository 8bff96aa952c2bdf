package consensus

import "fmt"

// Path tells which branch accepted a token-buy group.
type Path uint8

const (
	PathNone Path = iota
	PathOwner
	PathPurchase
)

func (p Path) String() string {
	switch p {
	case PathOwner:
		return "owner"
	case PathPurchase:
		return "purchase"
	default:
		return "none"
	}
}

// ValidateTokenBuyLock runs the token-buy lock over one script group.
//
// Args carry the type hash of the token the escrow must be paid in. The group is
// accepted outright when every escrow owner also locks an input of the
// transaction; otherwise the outputs must pay each owner at least the sum of
// the amounts its escrow cells ask for.
func ValidateTokenBuyLock(q CellQuery) (Path, error) {
	args := q.ScriptArgs()
	if len(args) != SCRIPT_ARGS_LEN {
		return PathNone, lockerr(LOCK_ERR_ARGS_LENGTH, fmt.Sprintf("args %d bytes, need %d", len(args), SCRIPT_ARGS_LEN))
	}
	var tokenType Hash
	copy(tokenType[:], args)

	owner, err := CheckOwnerMode(q)
	if err != nil {
		return PathNone, err
	}
	if owner {
		return PathOwner, nil
	}

	reqs, err := AggregateRequirements(q)
	if err != nil {
		return PathNone, err
	}
	if err := VerifySettlement(q, reqs, tokenType); err != nil {
		return PathNone, err
	}
	return PathPurchase, nil
}
