// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entries

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nervina-labs/cota-aggregator-go/chainfacade"
	"github.com/nervina-labs/cota-aggregator-go/hash"
	"github.com/nervina-labs/cota-aggregator-go/history"
	"github.com/nervina-labs/cota-aggregator-go/index"
	"github.com/nervina-labs/cota-aggregator-go/leaf"
	"github.com/nervina-labs/cota-aggregator-go/ownerlock"
	"github.com/nervina-labs/cota-aggregator-go/smt"
	"github.com/nervina-labs/cota-aggregator-go/smtstore"
	"github.com/nervina-labs/cota-aggregator-go/witness"
)

func newTestEnvWithFacade(t *testing.T) (*Env, *index.InMemorySource, *chainfacade.FakeFacade) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "smt")
	store, err := smtstore.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	src := index.NewInMemorySource()
	facade := chainfacade.NewFakeFacade()
	loader := history.NewLoader(src, facade)
	lock := ownerlock.NewSerializer()

	return NewEnv(store, lock, src, loader), src, facade
}

func TestSequentTransferExtractsWithdrawalProofFromChainWitness(t *testing.T) {
	env, src, facade := newTestEnvWithFacade(t)

	originOwnerScript := []byte("owner-origin")
	originOwnerLockHash := hash.Hash(originOwnerScript)

	// The Mint that originally committed the withdrawal on-chain, at
	// block 100.
	_, _, err := env.Define(context.Background(), DefineInput{
		LockScript: originOwnerScript,
		CotaID:     testCotaID,
		Total:      10,
	})
	require.NoError(t, err)
	src.PutDefine(originOwnerLockHash, index.DefineRow{CotaID: testCotaID, Total: 10})

	_, mintBlob, err := env.Mint(context.Background(), MintInput{
		LockScript: originOwnerScript,
		CotaID:     testCotaID,
		OutPoint:   [24]byte{0x77},
		Withdrawals: []MintWithdrawal{
			{TokenIndex: 0, State: 0, ToLockScript: []byte("owner-sender")},
		},
	})
	require.NoError(t, err)

	senderScript := []byte("owner-sender")
	senderLockHash := hash.Hash(senderScript)

	// Simulate the synchronizer recording that withdrawal against the
	// sender, and the aggregator publishing the Mint witness on-chain at
	// block 100.
	src.PutWithdrawal(senderLockHash, index.WithdrawRow{
		CotaID:             testCotaID,
		TokenIndex:         0,
		Configure:          0x00,
		State:              0,
		OutPoint:           [24]byte{0x77},
		ReceiverLockScript: senderScript,
		Version:            1,
	})
	facade.WithdrawLog[senderLockHash] = chainfacade.WithdrawInfo{
		Witnesses: [][]byte{append([]byte{2}, mintBlob...)}, // tag 2 = Mint
	}

	result, err := env.SequentTransfer(context.Background(), SequentTransferInput{
		LockScript:           senderScript,
		WithdrawalLockScript: senderScript,
		TransferOutPoint:     [24]byte{0x88},
		Transfers: []TransferItem{
			{CotaID: testCotaID, TokenIndex: 0, OutPoint: [24]byte{0x77}, ToLockScript: []byte("owner-final")},
		},
		OriginalBlockNumber: 100,
		Network:             witness.Mainnet,
	})
	require.NoError(t, err)
	require.NotEqual(t, smt.Zero, result.Root)
	require.NotEmpty(t, result.Blob)

	decoded, err := DecodeTransfer(result.Blob)
	require.NoError(t, err)
	require.Len(t, decoded.ClaimKeys, 1)
	require.NotEmpty(t, decoded.WithdrawalProof)
	require.NotEmpty(t, decoded.Proof)

	// The extracted withdrawal-side proof must verify against the
	// origin owner's committed Mint root, not the sender's tree.
	originRoot, _, err := env.Store.GetRoot(originOwnerLockHash)
	require.NoError(t, err)
	mintOutPoint := [24]byte{0x77}
	targetKey, err := leaf.EncodeWithdrawalKeyV1(testCotaID[:], 0, mintOutPoint[:])
	require.NoError(t, err)
	targetValue, err := leaf.EncodeWithdrawalValueV1(0x00, 0, make([]byte, 20), senderScript)
	require.NoError(t, err)
	ok := smt.Verify(originRoot, []smt.KV{{Key: targetKey, Value: targetValue}}, decoded.WithdrawalProof)
	require.True(t, ok)
}

func TestSequentTransferRequiresAtLeastOneItem(t *testing.T) {
	env, _, _ := newTestEnvWithFacade(t)
	_, err := env.SequentTransfer(context.Background(), SequentTransferInput{
		LockScript:           []byte("sender"),
		WithdrawalLockScript: []byte("sender"),
		Network:              witness.Testnet,
	})
	require.Error(t, err)
}

func TestSequentTransferFailsWhenWithdrawalNotRecorded(t *testing.T) {
	env, _, _ := newTestEnvWithFacade(t)
	_, err := env.SequentTransfer(context.Background(), SequentTransferInput{
		LockScript:           []byte("sender"),
		WithdrawalLockScript: []byte("sender"),
		TransferOutPoint:     [24]byte{0x01},
		Transfers: []TransferItem{
			{CotaID: testCotaID, TokenIndex: 0, OutPoint: [24]byte{0x02}, ToLockScript: []byte("dest")},
		},
		Network: witness.Testnet,
	})
	require.Error(t, err)
}
