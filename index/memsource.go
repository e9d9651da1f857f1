// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package index

import "github.com/nervina-labs/cota-aggregator-go/hash"

// InMemorySource is a test double for Source: rows are indexed by the
// caller-supplied lock_hash/master_args directly, with no notion of the
// lock-script parsing a real synchronizer would perform.
type InMemorySource struct {
	byLockHash   map[hash.Hash256]OwnerHistory
	byMasterArgs map[[20]byte]OwnerHistory
}

// NewInMemorySource returns an empty InMemorySource.
func NewInMemorySource() *InMemorySource {
	return &InMemorySource{
		byLockHash:   make(map[hash.Hash256]OwnerHistory),
		byMasterArgs: make(map[[20]byte]OwnerHistory),
	}
}

// Seed replaces the full row set for a lock_hash-scoped owner.
func (m *InMemorySource) Seed(lockHash hash.Hash256, h OwnerHistory) {
	m.byLockHash[lockHash] = h
}

// SeedMasterArgs replaces the full row set for a batch-lock master-key
// scoped owner.
func (m *InMemorySource) SeedMasterArgs(masterArgs [20]byte, h OwnerHistory) {
	m.byMasterArgs[masterArgs] = h
}

func (m *InMemorySource) LoadByLockHash(lockHash hash.Hash256) (OwnerHistory, error) {
	return m.byLockHash[lockHash], nil
}

func (m *InMemorySource) LoadByMasterArgs(masterArgs [20]byte) (OwnerHistory, error) {
	return m.byMasterArgs[masterArgs], nil
}

func (m *InMemorySource) GetDefine(lockHash hash.Hash256, cotaID [20]byte) (DefineRow, bool, error) {
	for _, d := range m.byLockHash[lockHash].Defines {
		if d.CotaID == cotaID {
			return d, true, nil
		}
	}
	return DefineRow{}, false, nil
}

func (m *InMemorySource) GetHold(lockHash hash.Hash256, cotaID [20]byte, tokenIndex uint32) (HoldRow, bool, error) {
	for _, h := range m.byLockHash[lockHash].Holds {
		if h.CotaID == cotaID && h.TokenIndex == tokenIndex {
			return h, true, nil
		}
	}
	return HoldRow{}, false, nil
}

func (m *InMemorySource) GetWithdrawal(lockHash hash.Hash256, cotaID [20]byte, tokenIndex uint32) (WithdrawRow, bool, error) {
	for _, w := range m.byLockHash[lockHash].Withdrawals {
		if w.CotaID == cotaID && w.TokenIndex == tokenIndex {
			return w, true, nil
		}
	}
	return WithdrawRow{}, false, nil
}

// The mutators below simulate the chain synchronizer's role of keeping
// the index current as transactions confirm; production wiring
// populates the index from block data, not from the builders
// themselves, but tests exercising a full operation sequence need some
// way to advance the fixture between calls.

// PutDefine inserts or replaces a Define row for lockHash.
func (m *InMemorySource) PutDefine(lockHash hash.Hash256, row DefineRow) {
	h := m.byLockHash[lockHash]
	for i, d := range h.Defines {
		if d.CotaID == row.CotaID {
			h.Defines[i] = row
			m.byLockHash[lockHash] = h
			return
		}
	}
	h.Defines = append(h.Defines, row)
	m.byLockHash[lockHash] = h
}

// PutHold inserts or replaces a Hold row for lockHash.
func (m *InMemorySource) PutHold(lockHash hash.Hash256, row HoldRow) {
	h := m.byLockHash[lockHash]
	for i, existing := range h.Holds {
		if existing.CotaID == row.CotaID && existing.TokenIndex == row.TokenIndex {
			h.Holds[i] = row
			m.byLockHash[lockHash] = h
			return
		}
	}
	h.Holds = append(h.Holds, row)
	m.byLockHash[lockHash] = h
}

// RemoveHold deletes a Hold row for lockHash, if present.
func (m *InMemorySource) RemoveHold(lockHash hash.Hash256, cotaID [20]byte, tokenIndex uint32) {
	h := m.byLockHash[lockHash]
	out := h.Holds[:0]
	for _, existing := range h.Holds {
		if existing.CotaID == cotaID && existing.TokenIndex == tokenIndex {
			continue
		}
		out = append(out, existing)
	}
	h.Holds = out
	m.byLockHash[lockHash] = h
}

// PutWithdrawal inserts or replaces a Withdraw row for lockHash.
func (m *InMemorySource) PutWithdrawal(lockHash hash.Hash256, row WithdrawRow) {
	h := m.byLockHash[lockHash]
	for i, existing := range h.Withdrawals {
		if existing.CotaID == row.CotaID && existing.TokenIndex == row.TokenIndex {
			h.Withdrawals[i] = row
			m.byLockHash[lockHash] = h
			return
		}
	}
	h.Withdrawals = append(h.Withdrawals, row)
	m.byLockHash[lockHash] = h
}

// RemoveWithdrawal deletes a Withdraw row for lockHash, if present.
func (m *InMemorySource) RemoveWithdrawal(lockHash hash.Hash256, cotaID [20]byte, tokenIndex uint32) {
	h := m.byLockHash[lockHash]
	out := h.Withdrawals[:0]
	for _, existing := range h.Withdrawals {
		if existing.CotaID == cotaID && existing.TokenIndex == tokenIndex {
			continue
		}
		out = append(out, existing)
	}
	h.Withdrawals = out
	m.byLockHash[lockHash] = h
}

// PutClaim appends a Claim row for lockHash.
func (m *InMemorySource) PutClaim(lockHash hash.Hash256, row ClaimRow) {
	h := m.byLockHash[lockHash]
	h.Claims = append(h.Claims, row)
	m.byLockHash[lockHash] = h
}
