// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nervina-labs/cota-aggregator-go/hash"
)

func TestInMemorySourcePointLookups(t *testing.T) {
	src := NewInMemorySource()
	lockHash := hash.Hash256{0x01}
	cotaID := [20]byte{0xAA}

	src.PutDefine(lockHash, DefineRow{CotaID: cotaID, Total: 10, Issued: 1})
	d, ok, err := src.GetDefine(lockHash, cotaID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(10), d.Total)

	src.PutHold(lockHash, HoldRow{CotaID: cotaID, TokenIndex: 1})
	h, ok, err := src.GetHold(lockHash, cotaID, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(1), h.TokenIndex)

	src.RemoveHold(lockHash, cotaID, 1)
	_, ok, err = src.GetHold(lockHash, cotaID, 1)
	require.NoError(t, err)
	require.False(t, ok)

	src.PutWithdrawal(lockHash, WithdrawRow{CotaID: cotaID, TokenIndex: 1, Version: 1})
	w, ok, err := src.GetWithdrawal(lockHash, cotaID, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint8(1), w.Version)

	src.PutClaim(lockHash, ClaimRow{CotaID: cotaID, TokenIndex: 1})
	hist, err := src.LoadByLockHash(lockHash)
	require.NoError(t, err)
	require.Len(t, hist.Claims, 1)
}
