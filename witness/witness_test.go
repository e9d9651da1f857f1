// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package witness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nervina-labs/cota-aggregator-go/chainfacade"
	"github.com/nervina-labs/cota-aggregator-go/entries"
	"github.com/nervina-labs/cota-aggregator-go/hash"
	"github.com/nervina-labs/cota-aggregator-go/history"
	"github.com/nervina-labs/cota-aggregator-go/index"
	"github.com/nervina-labs/cota-aggregator-go/leaf"
	"github.com/nervina-labs/cota-aggregator-go/ownerlock"
	"github.com/nervina-labs/cota-aggregator-go/smt"
	"github.com/nervina-labs/cota-aggregator-go/smtstore"
)

var testCotaID = [20]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e}

func newTestEnv(t *testing.T) (*entries.Env, *index.InMemorySource) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "smt")
	store, err := smtstore.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	src := index.NewInMemorySource()
	facade := chainfacade.NewFakeFacade()
	loader := history.NewLoader(src, facade)
	lock := ownerlock.NewSerializer()

	return entries.NewEnv(store, lock, src, loader), src
}

func TestExtractSubProofFindsMintWitness(t *testing.T) {
	env, src := newTestEnv(t)
	ownerScript := []byte("owner-mint")

	_, _, err := env.Define(context.Background(), entries.DefineInput{
		LockScript: ownerScript,
		CotaID:     testCotaID,
		Total:      10,
		Configure:  0x00,
	})
	require.NoError(t, err)
	src.PutDefine(hash.Hash(ownerScript), index.DefineRow{CotaID: testCotaID, Total: 10})

	_, mintBlob, err := env.Mint(context.Background(), entries.MintInput{
		LockScript: ownerScript,
		CotaID:     testCotaID,
		OutPoint:   [24]byte{0x11},
		Withdrawals: []entries.MintWithdrawal{
			{TokenIndex: 0, State: 0, ToLockScript: []byte("recipient")},
		},
	})
	require.NoError(t, err)

	witnessPayload := append([]byte{tagMint}, mintBlob...)

	mintOutPoint := [24]byte{0x11}
	targetKey, err := leaf.EncodeWithdrawalKeyV1(testCotaID[:], 0, mintOutPoint[:])
	require.NoError(t, err)

	proof, err := ExtractSubProof([][]byte{witnessPayload}, []smt.Key32{targetKey}, 1, Mainnet)
	require.NoError(t, err)
	require.NotEmpty(t, proof)

	targetValue, err := leaf.EncodeWithdrawalValueV1(0x00, 0, make([]byte, 20), []byte("recipient"))
	require.NoError(t, err)

	root, _, err := env.Store.GetRoot(hash.Hash(ownerScript))
	require.NoError(t, err)

	ok := smt.Verify(root, []smt.KV{{Key: targetKey, Value: targetValue}}, proof)
	require.True(t, ok)
}

func TestExtractSubProofFindsWithdrawWitness(t *testing.T) {
	env, src := newTestEnv(t)
	ownerScript := []byte("owner-withdraw")
	ownerLockHash := hash.Hash(ownerScript)

	src.PutHold(ownerLockHash, index.HoldRow{
		CotaID:     testCotaID,
		TokenIndex: 0,
		Configure:  0x00,
		State:      0x00,
	})

	root, blob, err := env.Withdraw(context.Background(), entries.WithdrawInput{
		LockScript: ownerScript,
		OutPoint:   [24]byte{0x22},
		Withdrawals: []entries.WithdrawItem{
			{CotaID: testCotaID, TokenIndex: 0, ToLockScript: []byte("recipient")},
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, smt.Zero, root)

	witnessPayload := append([]byte{tagWithdraw}, blob...)

	withdrawOutPoint := [24]byte{0x22}
	targetKey, err := leaf.EncodeWithdrawalKeyV1(testCotaID[:], 0, withdrawOutPoint[:])
	require.NoError(t, err)
	targetValue, err := leaf.EncodeWithdrawalValueV1(0x00, 0, make([]byte, 20), []byte("recipient"))
	require.NoError(t, err)

	proof, err := ExtractSubProof([][]byte{witnessPayload}, []smt.Key32{targetKey}, 1, Mainnet)
	require.NoError(t, err)
	ok := smt.Verify(root, []smt.KV{{Key: targetKey, Value: targetValue}}, proof)
	require.True(t, ok)
}

func TestExtractSubProofFindsTransferWitness(t *testing.T) {
	env, src := newTestEnv(t)
	senderScript := []byte("owner-transfer")
	senderLockHash := hash.Hash(senderScript)

	src.PutWithdrawal(senderLockHash, index.WithdrawRow{
		CotaID:             testCotaID,
		TokenIndex:         0,
		Configure:          0x00,
		State:              0x00,
		OutPoint:           [24]byte{0x44},
		ReceiverLockScript: senderScript,
		Version:            1,
	})

	root, blob, err := env.Transfer(context.Background(), entries.TransferInput{
		LockScript:           senderScript,
		WithdrawalLockScript: senderScript,
		TransferOutPoint:     [24]byte{0x55},
		Transfers: []entries.TransferItem{
			{CotaID: testCotaID, TokenIndex: 0, OutPoint: [24]byte{0x44}, ToLockScript: []byte("next-owner")},
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, smt.Zero, root)

	witnessPayload := append([]byte{tagTransfer}, blob...)

	transferOutPoint := [24]byte{0x55}
	targetKey, err := leaf.EncodeWithdrawalKeyV1(testCotaID[:], 0, transferOutPoint[:])
	require.NoError(t, err)
	targetValue, err := leaf.EncodeWithdrawalValueV1(0x00, 0, make([]byte, 20), []byte("next-owner"))
	require.NoError(t, err)

	proof, err := ExtractSubProof([][]byte{witnessPayload}, []smt.Key32{targetKey}, 1, Mainnet)
	require.NoError(t, err)
	ok := smt.Verify(root, []smt.KV{{Key: targetKey, Value: targetValue}}, proof)
	require.True(t, ok)
}

func TestExtractSubProofReturnsErrorWhenNoWitnessMatches(t *testing.T) {
	env, src := newTestEnv(t)
	ownerScript := []byte("owner-nomatch")

	_, _, err := env.Define(context.Background(), entries.DefineInput{
		LockScript: ownerScript,
		CotaID:     testCotaID,
		Total:      10,
	})
	require.NoError(t, err)
	src.PutDefine(hash.Hash(ownerScript), index.DefineRow{CotaID: testCotaID, Total: 10})

	_, mintBlob, err := env.Mint(context.Background(), entries.MintInput{
		LockScript: ownerScript,
		CotaID:     testCotaID,
		OutPoint:   [24]byte{0x11},
		Withdrawals: []entries.MintWithdrawal{
			{TokenIndex: 0, State: 0, ToLockScript: []byte("recipient")},
		},
	})
	require.NoError(t, err)
	witnessPayload := append([]byte{tagMint}, mintBlob...)

	bogusOutPoint := [24]byte{0x99}
	bogusKey, err := leaf.EncodeWithdrawalKeyV1(testCotaID[:], 99, bogusOutPoint[:])
	require.NoError(t, err)

	_, err = ExtractSubProof([][]byte{witnessPayload}, []smt.Key32{bogusKey}, 1, Mainnet)
	require.Error(t, err)
}

func TestPadDefineValueForcesSentinelPastPaddingHeight(t *testing.T) {
	value := smt.Value32{}
	padded := padDefineValue(value, PaddingHeightMainnet+1, Mainnet)
	require.Equal(t, byte(0xFF), padded[31])

	unpadded := padDefineValue(smt.Value32{0x01}, PaddingHeightMainnet-1, Mainnet)
	require.NotEqual(t, byte(0xFF), unpadded[31])
}
