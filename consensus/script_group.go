package consensus

import "fmt"

// Predicate validates one lock script group.
type Predicate func(q CellQuery) (Path, error)

// ScriptGroup is the set of inputs sharing one lock script.
type ScriptGroup struct {
	Script       Script
	ScriptHash   Hash
	InputIndices []int
}

// GroupInputs partitions the inputs of rtx by lock script hash, in order of
// first appearance.
func GroupInputs(rtx *ResolvedTransaction) ([]ScriptGroup, error) {
	if err := rtx.checkStructure(); err != nil {
		return nil, err
	}
	var groups []ScriptGroup
	byHash := make(map[Hash]int)
	for i, cell := range rtx.InputCells {
		h := cell.Output.Lock.Hash()
		gi, ok := byHash[h]
		if !ok {
			gi = len(groups)
			byHash[h] = gi
			groups = append(groups, ScriptGroup{Script: cell.Output.Lock, ScriptHash: h})
		}
		groups[gi].InputIndices = append(groups[gi].InputIndices, i)
	}
	return groups, nil
}

// Registry maps lock code hashes to the predicates that enforce them.
type Registry struct {
	predicates map[Hash]Predicate
}

func NewRegistry() *Registry {
	return &Registry{predicates: make(map[Hash]Predicate)}
}

func (r *Registry) Register(codeHash Hash, p Predicate) {
	r.predicates[codeHash] = p
}

func (r *Registry) Lookup(codeHash Hash) (Predicate, bool) {
	p, ok := r.predicates[codeHash]
	return p, ok
}

// ScriptError reports the group that rejected a transaction.
type ScriptError struct {
	GroupIndex int
	InputIndex int
	ScriptHash Hash
	Err        error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("lock script of input %d (group %d, script %s): %v", e.InputIndex, e.GroupIndex, e.ScriptHash, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// GroupVerdict records how an accepted group passed.
type GroupVerdict struct {
	Group ScriptGroup
	Path  Path
}

// VerifyTransaction runs the registered predicate of every input lock group.
// Groups whose code hash is not registered are assumed satisfied by their own
// lock and skipped. The first rejection aborts with a *ScriptError.
func VerifyTransaction(rtx *ResolvedTransaction, reg *Registry) ([]GroupVerdict, error) {
	groups, err := GroupInputs(rtx)
	if err != nil {
		return nil, err
	}
	var verdicts []GroupVerdict
	for gi, g := range groups {
		p, ok := reg.Lookup(g.Script.CodeHash)
		if !ok {
			continue
		}
		q, err := NewTxContext(rtx, g.Script.Args, g.InputIndices)
		if err != nil {
			return nil, err
		}
		path, err := p(q)
		if err != nil {
			return nil, &ScriptError{
				GroupIndex: gi,
				InputIndex: g.InputIndices[0],
				ScriptHash: g.ScriptHash,
				Err:        err,
			}
		}
		verdicts = append(verdicts, GroupVerdict{Group: g, Path: path})
	}
	return verdicts, nil
}
