// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainfacade

import (
	"context"

	"github.com/nervina-labs/cota-aggregator-go/hash"
)

// Facade is the subset of Client that the history loader and operation
// builders depend on, so tests can substitute a fake without standing
// up an HTTP server.
type Facade interface {
	GetCotaSmtRoot(ctx context.Context, lockScript []byte) (hash.Hash256, bool, error)
	GetIndexerTipBlockNumber(ctx context.Context) (uint64, error)
	GetWithdrawInfo(ctx context.Context, blockNumber uint64, withdrawLockHash hash.Hash256) (WithdrawInfo, error)
}

var _ Facade = (*Client)(nil)
