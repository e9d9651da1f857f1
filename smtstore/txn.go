// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package smtstore

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/hash"
	"github.com/nervina-labs/cota-aggregator-go/smt"
)

// Txn is a staged, all-or-nothing unit of work against one owner's tree:
// branch, leaf, root, and temp-leaves writes accumulate in memory until
// Commit flushes them to leveldb in a single atomic batch, or Abort
// discards them. It implements smt.Store so an smt.Tree can read and
// write directly through it, with read-your-own-writes semantics against
// the staged overlay before falling back to the committed store.
type Txn struct {
	store    *Store
	lockHash hash.Hash256

	dirtyLeaves   map[smt.Key32]*smt.Value32 // nil entry means deleted
	dirtyBranches map[smt.Key32]*smt.BranchNode
	dirtyRoot     *smt.Key32
	dirtyLeavesAt *[]smt.KV // pending TEMP_LEAVES value, if staged this txn
}

// Begin opens a new transaction scoped to lockHash.
func (s *Store) Begin(lockHash hash.Hash256) *Txn {
	return &Txn{
		store:         s,
		lockHash:      lockHash,
		dirtyLeaves:   make(map[smt.Key32]*smt.Value32),
		dirtyBranches: make(map[smt.Key32]*smt.BranchNode),
	}
}

func (t *Txn) GetLeaf(key smt.Key32) (smt.Value32, bool, error) {
	if v, ok := t.dirtyLeaves[key]; ok {
		if v == nil {
			return smt.Value32{}, false, nil
		}
		return *v, true, nil
	}
	raw, err := t.store.db.Get(ownerKey(familyLeaf, t.lockHash, key[:]), nil)
	if err == leveldb.ErrNotFound {
		return smt.Value32{}, false, nil
	}
	if err != nil {
		return smt.Value32{}, false, errortypes.NewStoreError("get leaf", err)
	}
	if len(raw) != 32 {
		return smt.Value32{}, false, errortypes.NewStoreError("corrupt leaf size", nil)
	}
	var v smt.Value32
	copy(v[:], raw)
	return v, true, nil
}

func (t *Txn) PutLeaf(key smt.Key32, value smt.Value32) error {
	v := value
	t.dirtyLeaves[key] = &v
	return nil
}

func (t *Txn) DeleteLeaf(key smt.Key32) error {
	t.dirtyLeaves[key] = nil
	return nil
}

func (t *Txn) GetBranch(nodeHash smt.Key32) (smt.BranchNode, bool, error) {
	if n, ok := t.dirtyBranches[nodeHash]; ok {
		if n == nil {
			return smt.BranchNode{}, false, nil
		}
		return *n, true, nil
	}
	raw, err := t.store.db.Get(ownerKey(familyBranch, t.lockHash, nodeHash[:]), nil)
	if err == leveldb.ErrNotFound {
		return smt.BranchNode{}, false, nil
	}
	if err != nil {
		return smt.BranchNode{}, false, errortypes.NewStoreError("get branch", err)
	}
	node, err := decodeBranch(raw)
	if err != nil {
		return smt.BranchNode{}, false, err
	}
	return node, true, nil
}

func (t *Txn) PutBranch(nodeHash smt.Key32, node smt.BranchNode) error {
	n := node
	t.dirtyBranches[nodeHash] = &n
	return nil
}

func (t *Txn) DeleteBranch(nodeHash smt.Key32) error {
	t.dirtyBranches[nodeHash] = nil
	return nil
}

// StageRoot records the new root to be persisted on Commit.
func (t *Txn) StageRoot(root smt.Key32) {
	t.dirtyRoot = &root
}

// StageTempLeaves records the TEMP_LEAVES staging set to be persisted on
// Commit. Spec §9 notes some builders persist an empty list as a valid
// "no pending changes" sentinel — callers may call this with nil/empty.
func (t *Txn) StageTempLeaves(kvs []smt.KV) {
	cp := append([]smt.KV(nil), kvs...)
	t.dirtyLeavesAt = &cp
}

// Commit flushes every staged write — branches, leaves, root, temp-leaves
// — to leveldb as one atomic batch. Per spec §4.3, it either fully
// commits or fully discards; goleveldb's Batch.Write already provides
// that guarantee.
func (t *Txn) Commit() error {
	batch := new(leveldb.Batch)
	for key, v := range t.dirtyLeaves {
		dbKey := ownerKey(familyLeaf, t.lockHash, key[:])
		if v == nil {
			batch.Delete(dbKey)
		} else {
			batch.Put(dbKey, v[:])
		}
	}
	for key, n := range t.dirtyBranches {
		dbKey := ownerKey(familyBranch, t.lockHash, key[:])
		if n == nil {
			batch.Delete(dbKey)
		} else {
			batch.Put(dbKey, encodeBranch(*n))
		}
	}
	if t.dirtyRoot != nil {
		batch.Put(ownerKey(familyRoot, t.lockHash, nil), t.dirtyRoot[:])
	}
	if t.dirtyLeavesAt != nil {
		batch.Put(ownerKey(familyTempLeaves, t.lockHash, nil), encodeTempLeaves(*t.dirtyLeavesAt))
	}
	if err := t.store.db.Write(batch, nil); err != nil {
		return errortypes.NewStoreError("commit batch", err)
	}
	if log != nil {
		log.Debugf("smtstore: committed %d leaf writes, %d branch writes for owner %x",
			len(t.dirtyLeaves), len(t.dirtyBranches), t.lockHash[:])
	}
	return nil
}

// Abort discards every staged write since Begin, per spec §4.3's "an
// abort discards every write since the last commit for that transaction".
func (t *Txn) Abort() {
	t.dirtyLeaves = make(map[smt.Key32]*smt.Value32)
	t.dirtyBranches = make(map[smt.Key32]*smt.BranchNode)
	t.dirtyRoot = nil
	t.dirtyLeavesAt = nil
}
