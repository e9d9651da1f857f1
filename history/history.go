// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package history implements the history loader (component C5): given an
// owner's lock script, it returns a sparse Merkle tree positioned at the
// state that agrees with the chain's most recent commitment, reconciling
// from the relational index when the persistent store has drifted. It is
// grounded on the original implementation's generate_history_smt /
// generate_mysql_smt flow (entries/smt.rs), rendered as plain Go control
// flow in place of that flow's Result-returning chain.
package history

import (
	"context"

	"github.com/nervina-labs/cota-aggregator-go/chainfacade"
	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/hash"
	"github.com/nervina-labs/cota-aggregator-go/index"
	"github.com/nervina-labs/cota-aggregator-go/leaf"
	"github.com/nervina-labs/cota-aggregator-go/smt"
	"github.com/nervina-labs/cota-aggregator-go/smtstore"
)

// Loader reconciles a persistent tree against the chain and, when needed,
// the relational index. A Loader is stateless across calls; all per-owner
// state lives in the store and index it is handed.
type Loader struct {
	Source index.Source
	Facade chainfacade.Facade

	// Strict, when true, turns an unreconcilable rebuild (spec §4.5's
	// "rebuilt root does not match any known reference") into a fatal
	// SMTError instead of silently trusting the rebuilt root.
	Strict bool
}

// NewLoader returns a Loader backed by source and facade.
func NewLoader(source index.Source, facade chainfacade.Facade) *Loader {
	return &Loader{Source: source, Facade: facade}
}

// Owner identifies the scope an operation builder is working against: its
// lock_hash (always required) plus, for recognized batch-lock scripts,
// the canonical master-key scope of spec §4.5 step 7.
type Owner struct {
	LockHash   hash.Hash256
	LockScript []byte
	MasterArgs *[20]byte
}

// Load returns a tree over txn whose state agrees with the chain's most
// recent root for owner, reconciling via replay or a full index rebuild
// as needed. txn must already be open under the owner's lock (C6) — Load
// itself never acquires or releases it. When Load rebuilds from the
// index, it stages the recovered root on txn so that committing txn
// (even with no further writes) persists the correction.
func (l *Loader) Load(ctx context.Context, txn *smtstore.Txn, store *smtstore.Store, owner Owner) (*smt.Tree, error) {
	storedRoot, hasStoredRoot, err := store.GetRoot(owner.LockHash)
	if err != nil {
		return nil, err
	}
	if !hasStoredRoot {
		return l.rebuildFromIndex(ctx, txn, owner, nil)
	}

	tree := smt.Load(txn, storedRoot)

	chainRoot, hasChainRoot, err := l.Facade.GetCotaSmtRoot(ctx, owner.LockScript)
	if err != nil {
		return nil, err
	}
	if hasChainRoot && chainRoot == tree.Root() {
		return tree, nil
	}

	// Replay the pending TEMP_LEAVES staging set, undoing a partial
	// commit, per spec §4.5 step 5.
	tempLeaves, hasTempLeaves, err := store.GetLeaves(owner.LockHash)
	if err != nil {
		return nil, err
	}
	if hasTempLeaves && len(tempLeaves) > 0 {
		replayed := smt.Load(txn, storedRoot)
		if err := replayed.UpdateAll(tempLeaves); err != nil {
			return nil, errortypes.NewSMTError(err)
		}
		if hasChainRoot && chainRoot == replayed.Root() {
			return replayed, nil
		}
	}

	return l.rebuildFromIndex(ctx, txn, owner, chainRootPtr(hasChainRoot, chainRoot))
}

func chainRootPtr(has bool, root hash.Hash256) *hash.Hash256 {
	if !has {
		return nil
	}
	return &root
}

// rebuildFromIndex is spec §4.5 step 6: enumerate every row for owner
// from the relational index, derive (key, value) pairs via the leaf
// codec, and update_all them into a fresh tree.
func (l *Loader) rebuildFromIndex(ctx context.Context, txn *smtstore.Txn, owner Owner, chainRoot *hash.Hash256) (*smt.Tree, error) {
	var (
		hist index.OwnerHistory
		err  error
	)
	if owner.MasterArgs != nil {
		hist, err = l.Source.LoadByMasterArgs(*owner.MasterArgs)
	} else {
		hist, err = l.Source.LoadByLockHash(owner.LockHash)
	}
	if err != nil {
		return nil, errortypes.NewIndexerError("load owner history", err)
	}

	leaves, err := deriveLeaves(hist)
	if err != nil {
		return nil, errortypes.NewSMTError(err)
	}

	tree := smt.New(txn)
	if len(leaves) > 0 {
		if err := tree.UpdateAll(leaves); err != nil {
			return nil, errortypes.NewSMTError(err)
		}
	}

	if l.Strict && chainRoot != nil && *chainRoot != tree.Root() {
		return nil, errortypes.NewSMTError(&rebuildMismatchError{})
	}

	txn.StageRoot(tree.Root())
	return tree, nil
}

type rebuildMismatchError struct{}

func (e *rebuildMismatchError) Error() string {
	return "history: rebuilt root does not match any known reference"
}

// deriveLeaves turns one owner's relational-index rows into the flat
// (key, value) set a fresh tree is built from, mirroring
// entries/smt.rs's generate_mysql_smt leaf accumulation order: defines,
// then holds, then withdrawals (recording each one's version), then
// claims (recovering the settled withdrawal's version by lookup).
func deriveLeaves(hist index.OwnerHistory) ([]smt.KV, error) {
	leaves := make([]smt.KV, 0, len(hist.Defines)+len(hist.Holds)+len(hist.Withdrawals)+len(hist.Claims))

	for _, d := range hist.Defines {
		key, err := leaf.EncodeDefineKey(d.CotaID[:])
		if err != nil {
			return nil, err
		}
		value := leaf.EncodeDefineValue(d.Total, d.Issued, d.Configure)
		leaves = append(leaves, smt.KV{Key: key, Value: value})
	}

	for _, h := range hist.Holds {
		key, err := leaf.EncodeHoldKey(h.CotaID[:], h.TokenIndex)
		if err != nil {
			return nil, err
		}
		value, err := leaf.EncodeHoldValue(h.Configure, h.State, h.Characteristic[:])
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, smt.KV{Key: key, Value: value})
	}

	type cotaIndex struct {
		CotaID     [20]byte
		TokenIndex uint32
	}
	versionByIndex := make(map[cotaIndex]uint8, len(hist.Withdrawals))

	for _, w := range hist.Withdrawals {
		var key smt.Key32
		var value smt.Value32
		var err error
		if w.Version == 0 {
			key, err = leaf.EncodeWithdrawalKeyV0(w.CotaID[:], w.TokenIndex)
			if err == nil {
				value, err = leaf.EncodeWithdrawalValueV0(w.Configure, w.State, w.Characteristic[:], w.OutPoint[:], w.ReceiverLockScript)
			}
		} else {
			key, err = leaf.EncodeWithdrawalKeyV1(w.CotaID[:], w.TokenIndex, w.OutPoint[:])
			if err == nil {
				value, err = leaf.EncodeWithdrawalValueV1(w.Configure, w.State, w.Characteristic[:], w.ReceiverLockScript)
			}
		}
		if err != nil {
			return nil, err
		}
		versionByIndex[cotaIndex{w.CotaID, w.TokenIndex}] = w.Version
		leaves = append(leaves, smt.KV{Key: key, Value: value})
	}

	for _, c := range hist.Claims {
		key, err := leaf.EncodeClaimKey(c.CotaID[:], c.TokenIndex, c.OutPoint[:])
		if err != nil {
			return nil, err
		}
		version := versionByIndex[cotaIndex{c.CotaID, c.TokenIndex}]
		value := leaf.EncodeClaimValue(version)
		leaves = append(leaves, smt.KV{Key: key, Value: value})
	}

	return leaves, nil
}
