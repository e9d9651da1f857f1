// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entries

import (
	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/hash"
	"github.com/nervina-labs/cota-aggregator-go/smt"
)

// proveAt derives a compiled proof covering leaves against the tree
// rooted at root, for owner lockHash. This is the "Prove" phase of spec
// §4.7 step 4: it runs after the commit, once the root is stable, using
// a fresh read-only transaction.
func (env *Env) proveAt(lockHash hash.Hash256, root hash.Hash256, leaves []smt.KV) (smt.CompiledProof, error) {
	txn := env.Store.Begin(lockHash)
	tree := smt.Load(txn, root)

	keys := make([]smt.Key32, len(leaves))
	for i, l := range leaves {
		keys[i] = l.Key
	}
	proof, err := tree.MerkleProof(keys)
	if err != nil {
		return nil, errortypes.NewSMTProofError(err.Error())
	}
	compiled, err := proof.Compile(leaves)
	if err != nil {
		return nil, errortypes.NewSMTProofError(err.Error())
	}
	return compiled, nil
}
