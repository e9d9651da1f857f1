// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package index declares the relational-index contract that the history
// loader (package history) rebuilds a persistent tree from. The schema
// and synchronizer that populate this index from chain blocks are an
// external collaborator out of scope here (spec §1); this package only
// defines the read contract and an in-memory double for tests.
package index

import "github.com/nervina-labs/cota-aggregator-go/hash"

// DefineRow is one row of the Define table: the collection-level record
// for a cota_id.
type DefineRow struct {
	CotaID      [20]byte
	Total       uint32
	Issued      uint32
	Configure   byte
	BlockNumber uint64
}

// HoldRow is one row of the Hold table: an owner's currently-held NFT.
type HoldRow struct {
	CotaID         [20]byte
	TokenIndex     uint32
	Configure      byte
	State          byte
	Characteristic [20]byte
}

// WithdrawRow is one row of the Withdraw table: an NFT that has left a
// Hold and is pending Claim by its receiver.
type WithdrawRow struct {
	CotaID             [20]byte
	TokenIndex         uint32
	Configure          byte
	State              byte
	Characteristic     [20]byte
	OutPoint           [24]byte
	ReceiverLockScript []byte
	Version            uint8
}

// ClaimRow is one row of the Claim table: a completed Claim record used
// to recover the settled Withdrawal's version byte during a rebuild.
type ClaimRow struct {
	CotaID     [20]byte
	TokenIndex uint32
	OutPoint   [24]byte
}

// OwnerHistory is the full set of rows belonging to one owner scope,
// as returned by Source.LoadByLockHash / LoadByMasterArgs.
type OwnerHistory struct {
	Defines     []DefineRow
	Holds       []HoldRow
	Withdrawals []WithdrawRow
	Claims      []ClaimRow
}

// Source is the relational-index read contract. A production
// implementation backs this with the MySQL-equivalent schema populated
// by the chain synchronizer; see package doc.
type Source interface {
	// LoadByLockHash returns every Define/Hold/Withdraw/Claim row scoped
	// to the owner identified by lockHash.
	LoadByLockHash(lockHash hash.Hash256) (OwnerHistory, error)

	// LoadByMasterArgs returns the union of rows across every
	// sub-address sharing the given batch-lock master key (spec §4.5
	// step 7's canonical owner scope for batch-lock variants).
	LoadByMasterArgs(masterArgs [20]byte) (OwnerHistory, error)

	// GetDefine is a point lookup used by operation builders' "Validate
	// & fetch" phase (spec §4.7 step 1), ahead of and independent from
	// taking the owner lock.
	GetDefine(lockHash hash.Hash256, cotaID [20]byte) (DefineRow, bool, error)

	// GetHold is a point lookup for a single (cota_id, token_index)'s
	// current Hold row.
	GetHold(lockHash hash.Hash256, cotaID [20]byte, tokenIndex uint32) (HoldRow, bool, error)

	// GetWithdrawal is a point lookup for a single (cota_id,
	// token_index)'s pending Withdrawal row under the withdrawal
	// owner's scope.
	GetWithdrawal(lockHash hash.Hash256, cotaID [20]byte, tokenIndex uint32) (WithdrawRow, bool, error)
}
