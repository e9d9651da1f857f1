// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainfacade

import (
	"context"

	"github.com/nervina-labs/cota-aggregator-go/hash"
)

// FakeFacade is an in-memory Facade double for tests: roots are keyed by
// the lock script bytes as a string and withdraw-info records by withdraw
// lock hash, with no network traffic.
type FakeFacade struct {
	Roots       map[string]hash.Hash256
	TipBlock    uint64
	WithdrawLog map[hash.Hash256]WithdrawInfo
}

// NewFakeFacade returns an empty FakeFacade.
func NewFakeFacade() *FakeFacade {
	return &FakeFacade{
		Roots:       make(map[string]hash.Hash256),
		WithdrawLog: make(map[hash.Hash256]WithdrawInfo),
	}
}

func (f *FakeFacade) GetCotaSmtRoot(_ context.Context, lockScript []byte) (hash.Hash256, bool, error) {
	root, ok := f.Roots[string(lockScript)]
	return root, ok, nil
}

func (f *FakeFacade) GetIndexerTipBlockNumber(_ context.Context) (uint64, error) {
	return f.TipBlock, nil
}

func (f *FakeFacade) GetWithdrawInfo(_ context.Context, _ uint64, withdrawLockHash hash.Hash256) (WithdrawInfo, error) {
	return f.WithdrawLog[withdrawLockHash], nil
}

var _ Facade = (*FakeFacade)(nil)
