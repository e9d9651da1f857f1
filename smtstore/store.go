// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package smtstore implements the persistent SMT store (component C3): a
// per-owner mapping from lock_hash to {branch nodes, leaves, root,
// pending leaves}, backed by github.com/syndtr/goleveldb. The four
// logical column families of spec §4.3 are emulated with single-byte key
// prefixes followed by the owner's lock_hash, so a prefix scan over one
// family and one owner is a contiguous leveldb range — the same trick
// the teacher's schema tables document for MDBX's DupSort-style prefix
// grouping.
package smtstore

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/btcsuite/btclog"
	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/hash"
	"github.com/nervina-labs/cota-aggregator-go/smt"
)

// log is a logger that is initialized with no output filters. The package
// will not perform any logging by default until the caller requests it.
var log btclog.Logger

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}

const (
	familyBranch     byte = 'b'
	familyLeaf       byte = 'l'
	familyRoot       byte = 'r'
	familyTempLeaves byte = 't'
)

// Store wraps a single goleveldb handle shared by every owner's tree.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if absent) a leveldb store rooted at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errortypes.NewStoreError("open leveldb store", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying leveldb handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func ownerKey(family byte, lockHash hash.Hash256, rest []byte) []byte {
	key := make([]byte, 0, 1+32+len(rest))
	key = append(key, family)
	key = append(key, lockHash[:]...)
	key = append(key, rest...)
	return key
}

// OwnerPrefix returns the leveldb key range covering every record of
// family belonging to lockHash, usable for diagnostics or bulk deletion.
func (s *Store) OwnerPrefix(family byte, lockHash hash.Hash256) *util.Range {
	prefix := ownerKey(family, lockHash, nil)
	return util.BytesPrefix(prefix)
}

// GetRoot returns the persisted current root for lockHash, or false if no
// root has ever been committed for that owner.
func (s *Store) GetRoot(lockHash hash.Hash256) (smt.Key32, bool, error) {
	raw, err := s.db.Get(ownerKey(familyRoot, lockHash, nil), nil)
	if err == leveldb.ErrNotFound {
		return smt.Key32{}, false, nil
	}
	if err != nil {
		return smt.Key32{}, false, errortypes.NewStoreError("get root", err)
	}
	if len(raw) != 32 {
		return smt.Key32{}, false, errortypes.NewStoreError("corrupt root size", nil)
	}
	var root smt.Key32
	copy(root[:], raw)
	return root, true, nil
}

// GetLeaves returns the persisted TEMP_LEAVES staging set for lockHash —
// the most recent pending update batch, kept for crash recovery (spec
// §4.5 step 5).
func (s *Store) GetLeaves(lockHash hash.Hash256) ([]smt.KV, bool, error) {
	raw, err := s.db.Get(ownerKey(familyTempLeaves, lockHash, nil), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errortypes.NewStoreError("get temp leaves", err)
	}
	kvs, err := decodeTempLeaves(raw)
	if err != nil {
		return nil, false, errortypes.NewStoreError("corrupt temp leaves", err)
	}
	return kvs, true, nil
}

func encodeTempLeaves(kvs []smt.KV) []byte {
	out := make([]byte, 4, 4+len(kvs)*64)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(kvs)))
	for _, kv := range kvs {
		out = append(out, kv.Key[:]...)
		out = append(out, kv.Value[:]...)
	}
	return out
}

func decodeTempLeaves(raw []byte) ([]smt.KV, error) {
	if len(raw) < 4 {
		return nil, errortypes.NewStoreError("temp leaves truncated", nil)
	}
	count := binary.BigEndian.Uint32(raw[0:4])
	raw = raw[4:]
	if uint32(len(raw)) != count*64 {
		return nil, errortypes.NewStoreError("temp leaves length mismatch", nil)
	}
	out := make([]smt.KV, count)
	for i := uint32(0); i < count; i++ {
		off := i * 64
		copy(out[i].Key[:], raw[off:off+32])
		copy(out[i].Value[:], raw[off+32:off+64])
	}
	return out, nil
}

func encodeBranch(node smt.BranchNode) []byte {
	out := make([]byte, 64)
	copy(out[0:32], node.Left[:])
	copy(out[32:64], node.Right[:])
	return out
}

func decodeBranch(raw []byte) (smt.BranchNode, error) {
	if len(raw) != 64 {
		return smt.BranchNode{}, errortypes.NewStoreError("corrupt branch node size", nil)
	}
	var node smt.BranchNode
	copy(node.Left[:], raw[0:32])
	copy(node.Right[:], raw[32:64])
	return node, nil
}
