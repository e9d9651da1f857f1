// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entries

import (
	"context"

	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/hash"
	"github.com/nervina-labs/cota-aggregator-go/index"
	"github.com/nervina-labs/cota-aggregator-go/leaf"
	"github.com/nervina-labs/cota-aggregator-go/smt"
	"github.com/nervina-labs/cota-aggregator-go/smtstore"
)

// withdrawalLeaf re-derives the (key, value) pair of a previously recorded
// Withdrawal leaf from its index row, picking the v0 or v1 shape
// according to the row's recorded version. Shared by Transfer,
// ClaimUpdate, TransferUpdate and SequentTransfer, all of which must reconstruct the
// exact leaf they are consuming in order to prove it.
func withdrawalLeaf(cotaID [20]byte, tokenIndex uint32, outPoint [24]byte, row index.WithdrawRow) (smt.Key32, smt.Value32, error) {
	if row.Version == 0 {
		key, err := leaf.EncodeWithdrawalKeyV0(cotaID[:], tokenIndex)
		if err != nil {
			return smt.Key32{}, smt.Value32{}, err
		}
		value, err := leaf.EncodeWithdrawalValueV0(row.Configure, row.State, row.Characteristic[:], outPoint[:], row.ReceiverLockScript)
		return key, value, err
	}
	key, err := leaf.EncodeWithdrawalKeyV1(cotaID[:], tokenIndex, outPoint[:])
	if err != nil {
		return smt.Key32{}, smt.Value32{}, err
	}
	value, err := leaf.EncodeWithdrawalValueV1(row.Configure, row.State, row.Characteristic[:], row.ReceiverLockScript)
	return key, value, err
}

// TransferItem is one item of Transfer's transfers[] input.
type TransferItem struct {
	CotaID       [20]byte
	TokenIndex   uint32
	OutPoint     [24]byte // the out_point the consumed Withdrawal was keyed on
	ToLockScript []byte
}

// TransferInput is Transfer's request shape (spec §4.7.6).
type TransferInput struct {
	LockScript           []byte
	WithdrawalLockScript []byte
	TransferOutPoint     [24]byte
	Transfers            []TransferItem
}

// Transfer marks each consumed Withdrawal as Claimed on the sender's own
// tree and writes a new Withdrawal-v1 leaf per target lock, using
// transfer_out_point as the new locator.
func (env *Env) Transfer(ctx context.Context, in TransferInput) (hash.Hash256, []byte, error) {
	senderLockHash := hash.Hash(in.LockScript)
	withdrawalLockHash := hash.Hash(in.WithdrawalLockScript)

	claimKeys := make([]smt.Key32, len(in.Transfers))
	claimValues := make([]smt.Value32, len(in.Transfers))
	newWithdrawalKeys := make([]smt.Key32, len(in.Transfers))
	newWithdrawalValues := make([]smt.Value32, len(in.Transfers))
	withdrawalProveLeaves := make([]smt.KV, len(in.Transfers))
	updates := make([]smt.KV, 0, 2*len(in.Transfers))

	for i, item := range in.Transfers {
		wRow, ok, err := env.Source.GetWithdrawal(withdrawalLockHash, item.CotaID, item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		if !ok {
			return hash.Hash256{}, nil, errortypes.NewPreconditionMissing(errortypes.SubKindHasNotWithdrawn, item.CotaID[:], item.TokenIndex)
		}

		wKey, wValue, err := withdrawalLeaf(item.CotaID, item.TokenIndex, item.OutPoint, wRow)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		withdrawalProveLeaves[i] = smt.KV{Key: wKey, Value: wValue}

		claimKey, err := leaf.EncodeClaimKey(item.CotaID[:], item.TokenIndex, item.OutPoint[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		claimValue := leaf.EncodeClaimValue(wRow.Version)

		newKey, err := leaf.EncodeWithdrawalKeyV1(item.CotaID[:], item.TokenIndex, in.TransferOutPoint[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		newValue, err := leaf.EncodeWithdrawalValueV1(wRow.Configure, wRow.State, wRow.Characteristic[:], item.ToLockScript)
		if err != nil {
			return hash.Hash256{}, nil, err
		}

		claimKeys[i] = claimKey
		claimValues[i] = claimValue
		newWithdrawalKeys[i] = newKey
		newWithdrawalValues[i] = newValue
		updates = append(updates,
			smt.KV{Key: claimKey, Value: claimValue},
			smt.KV{Key: newKey, Value: newValue},
		)
	}

	root, err := env.commit(ctx, senderLockHash, in.LockScript, func(txn *smtstore.Txn, tree *smt.Tree) error {
		if err := tree.UpdateAll(updates); err != nil {
			return err
		}
		txn.StageRoot(tree.Root())
		txn.StageTempLeaves(updates)
		return nil
	})
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	withdrawalStoredRoot, hasRoot, err := env.Store.GetRoot(withdrawalLockHash)
	if err != nil {
		return hash.Hash256{}, nil, err
	}
	if !hasRoot {
		return hash.Hash256{}, nil, errortypes.NewSMTError(nil)
	}
	withdrawalProof, err := env.proveAt(withdrawalLockHash, withdrawalStoredRoot, withdrawalProveLeaves)
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	// The blob declares its leaves as ClaimKeys[0..N] followed by
	// WithdrawalKeys[0..N] (see EncodeTransfer); the compiled proof must
	// be produced over that same grouped order, not the interleaved
	// per-item order updates was built in, or a witness replaying this
	// proof later (witness.reconstructLeaves) will desync from it for
	// any batch of more than one item.
	proveLeaves := make([]smt.KV, 0, 2*len(in.Transfers))
	for i := range in.Transfers {
		proveLeaves = append(proveLeaves, smt.KV{Key: claimKeys[i], Value: claimValues[i]})
	}
	for i := range in.Transfers {
		proveLeaves = append(proveLeaves, smt.KV{Key: newWithdrawalKeys[i], Value: newWithdrawalValues[i]})
	}
	proof, err := env.proveAt(senderLockHash, root, proveLeaves)
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	blob := EncodeTransfer(TransferEntries{
		ClaimKeys:        claimKeys,
		ClaimValues:      claimValues,
		WithdrawalKeys:   newWithdrawalKeys,
		WithdrawalValues: newWithdrawalValues,
		WithdrawalProof:  withdrawalProof,
		Proof:            proof,
	})
	return root, blob, nil
}

// ClaimUpdateItem is one item of ClaimUpdate's items[] input.
type ClaimUpdateItem struct {
	CotaID         [20]byte
	TokenIndex     uint32
	OutPoint       [24]byte
	State          byte
	Characteristic [20]byte
}

// ClaimUpdateInput is ClaimUpdate's request shape (spec §4.7.7): a Claim
// and an Update applied in one atomic update-set on the claim-side tree.
type ClaimUpdateInput struct {
	LockScript           []byte
	WithdrawalLockScript []byte
	Items                []ClaimUpdateItem
}

// ClaimUpdate performs Claim and Update together: the Hold leaf it
// writes already carries the caller-supplied state/characteristic
// instead of the values inherited from the consumed Withdrawal.
func (env *Env) ClaimUpdate(ctx context.Context, in ClaimUpdateInput) (hash.Hash256, []byte, error) {
	claimLockHash := hash.Hash(in.LockScript)
	withdrawalLockHash := hash.Hash(in.WithdrawalLockScript)

	holdKeys := make([]smt.Key32, len(in.Items))
	holdOldInfo := make([]smt.Value32, len(in.Items))
	holdNewValues := make([]smt.Value32, len(in.Items))
	claimKeys := make([]smt.Key32, len(in.Items))
	claimValues := make([]smt.Value32, len(in.Items))
	withdrawalProveLeaves := make([]smt.KV, len(in.Items))
	updates := make([]smt.KV, 0, 2*len(in.Items))

	for i, item := range in.Items {
		wRow, ok, err := env.Source.GetWithdrawal(withdrawalLockHash, item.CotaID, item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		if !ok {
			return hash.Hash256{}, nil, errortypes.NewPreconditionMissing(errortypes.SubKindHasNotWithdrawn, item.CotaID[:], item.TokenIndex)
		}

		wKey, wValue, err := withdrawalLeaf(item.CotaID, item.TokenIndex, item.OutPoint, wRow)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		withdrawalProveLeaves[i] = smt.KV{Key: wKey, Value: wValue}

		holdKey, err := leaf.EncodeHoldKey(item.CotaID[:], item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		oldInfo, err := leaf.EncodeHoldValue(wRow.Configure, wRow.State, wRow.Characteristic[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		newValue, err := leaf.EncodeHoldValue(wRow.Configure, item.State, item.Characteristic[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}

		claimKey, err := leaf.EncodeClaimKey(item.CotaID[:], item.TokenIndex, item.OutPoint[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		claimValue := leaf.EncodeClaimValue(wRow.Version)

		holdKeys[i] = holdKey
		holdOldInfo[i] = oldInfo
		holdNewValues[i] = newValue
		claimKeys[i] = claimKey
		claimValues[i] = claimValue
		updates = append(updates,
			smt.KV{Key: holdKey, Value: newValue},
			smt.KV{Key: claimKey, Value: claimValue},
		)
	}

	root, err := env.commit(ctx, claimLockHash, in.LockScript, func(txn *smtstore.Txn, tree *smt.Tree) error {
		if err := tree.UpdateAll(updates); err != nil {
			return err
		}
		txn.StageRoot(tree.Root())
		txn.StageTempLeaves(updates)
		return nil
	})
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	withdrawalStoredRoot, hasRoot, err := env.Store.GetRoot(withdrawalLockHash)
	if err != nil {
		return hash.Hash256{}, nil, err
	}
	if !hasRoot {
		return hash.Hash256{}, nil, errortypes.NewSMTError(nil)
	}
	withdrawalProof, err := env.proveAt(withdrawalLockHash, withdrawalStoredRoot, withdrawalProveLeaves)
	if err != nil {
		return hash.Hash256{}, nil, err
	}
	proof, err := env.proveAt(claimLockHash, root, updates)
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	blob := EncodeClaimUpdate(ClaimUpdateEntries{
		HoldKeys:        holdKeys,
		HoldOldInfo:     holdOldInfo,
		HoldNewValues:   holdNewValues,
		ClaimKeys:       claimKeys,
		ClaimValues:     claimValues,
		WithdrawalProof: withdrawalProof,
		Proof:           proof,
	})
	return root, blob, nil
}

// TransferUpdateItem is one item of TransferUpdate's items[] input.
type TransferUpdateItem struct {
	CotaID         [20]byte
	TokenIndex     uint32
	OutPoint       [24]byte
	ToLockScript   []byte
	State          byte
	Characteristic [20]byte
}

// TransferUpdateInput is TransferUpdate's request shape (spec §4.7.7): a
// Transfer and an Update applied in one atomic update-set.
type TransferUpdateInput struct {
	LockScript           []byte
	WithdrawalLockScript []byte
	TransferOutPoint     [24]byte
	Items                []TransferUpdateItem
}

// TransferUpdate performs Transfer and Update together: the new
// Withdrawal-v1 leaf it writes already carries the caller-supplied
// state/characteristic, while OldInfo records what it would have been
// absent the update.
func (env *Env) TransferUpdate(ctx context.Context, in TransferUpdateInput) (hash.Hash256, []byte, error) {
	senderLockHash := hash.Hash(in.LockScript)
	withdrawalLockHash := hash.Hash(in.WithdrawalLockScript)

	claimKeys := make([]smt.Key32, len(in.Items))
	claimValues := make([]smt.Value32, len(in.Items))
	oldInfo := make([]smt.Value32, len(in.Items))
	newWithdrawalKeys := make([]smt.Key32, len(in.Items))
	newWithdrawalValues := make([]smt.Value32, len(in.Items))
	withdrawalProveLeaves := make([]smt.KV, len(in.Items))
	updates := make([]smt.KV, 0, 2*len(in.Items))

	for i, item := range in.Items {
		wRow, ok, err := env.Source.GetWithdrawal(withdrawalLockHash, item.CotaID, item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		if !ok {
			return hash.Hash256{}, nil, errortypes.NewPreconditionMissing(errortypes.SubKindHasNotWithdrawn, item.CotaID[:], item.TokenIndex)
		}

		wKey, wValue, err := withdrawalLeaf(item.CotaID, item.TokenIndex, item.OutPoint, wRow)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		withdrawalProveLeaves[i] = smt.KV{Key: wKey, Value: wValue}

		claimKey, err := leaf.EncodeClaimKey(item.CotaID[:], item.TokenIndex, item.OutPoint[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		claimValue := leaf.EncodeClaimValue(wRow.Version)

		unchangedValue, err := leaf.EncodeWithdrawalValueV1(wRow.Configure, wRow.State, wRow.Characteristic[:], item.ToLockScript)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		newKey, err := leaf.EncodeWithdrawalKeyV1(item.CotaID[:], item.TokenIndex, in.TransferOutPoint[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		newValue, err := leaf.EncodeWithdrawalValueV1(wRow.Configure, item.State, item.Characteristic[:], item.ToLockScript)
		if err != nil {
			return hash.Hash256{}, nil, err
		}

		claimKeys[i] = claimKey
		claimValues[i] = claimValue
		oldInfo[i] = unchangedValue
		newWithdrawalKeys[i] = newKey
		newWithdrawalValues[i] = newValue
		updates = append(updates,
			smt.KV{Key: claimKey, Value: claimValue},
			smt.KV{Key: newKey, Value: newValue},
		)
	}

	root, err := env.commit(ctx, senderLockHash, in.LockScript, func(txn *smtstore.Txn, tree *smt.Tree) error {
		if err := tree.UpdateAll(updates); err != nil {
			return err
		}
		txn.StageRoot(tree.Root())
		txn.StageTempLeaves(updates)
		return nil
	})
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	withdrawalStoredRoot, hasRoot, err := env.Store.GetRoot(withdrawalLockHash)
	if err != nil {
		return hash.Hash256{}, nil, err
	}
	if !hasRoot {
		return hash.Hash256{}, nil, errortypes.NewSMTError(nil)
	}
	withdrawalProof, err := env.proveAt(withdrawalLockHash, withdrawalStoredRoot, withdrawalProveLeaves)
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	// Grouped claim-then-withdrawal order, matching the blob's declared
	// ClaimKeys/WithdrawalKeys vectors and witness.reconstructLeaves's
	// replay of them; see the matching comment in Transfer above.
	proveLeaves := make([]smt.KV, 0, 2*len(in.Items))
	for i := range in.Items {
		proveLeaves = append(proveLeaves, smt.KV{Key: claimKeys[i], Value: claimValues[i]})
	}
	for i := range in.Items {
		proveLeaves = append(proveLeaves, smt.KV{Key: newWithdrawalKeys[i], Value: newWithdrawalValues[i]})
	}
	proof, err := env.proveAt(senderLockHash, root, proveLeaves)
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	blob := EncodeTransferUpdate(TransferUpdateEntries{
		ClaimKeys:        claimKeys,
		ClaimValues:      claimValues,
		OldInfo:          oldInfo,
		WithdrawalKeys:   newWithdrawalKeys,
		WithdrawalValues: newWithdrawalValues,
		WithdrawalProof:  withdrawalProof,
		Proof:            proof,
	})
	return root, blob, nil
}

// SubkeyInput is Subkey's request shape (spec §4.ext).
type SubkeyInput struct {
	LockScript []byte
	ExtData    uint32
	AlgIndex   uint16
	PubkeyHash [20]byte
	Version    uint8
}

// Subkey registers a secondary signing key scoped to an ext_data
// permission bitmask.
func (env *Env) Subkey(ctx context.Context, in SubkeyInput) (hash.Hash256, []byte, error) {
	lockHash := hash.Hash(in.LockScript)

	key, err := leaf.EncodeSubkeyKey(in.ExtData, in.AlgIndex, in.PubkeyHash[:])
	if err != nil {
		return hash.Hash256{}, nil, err
	}
	value, err := leaf.EncodeSubkeyValue(in.Version, in.ExtData, in.AlgIndex, in.PubkeyHash[:])
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	root, err := env.commit(ctx, lockHash, in.LockScript, func(txn *smtstore.Txn, tree *smt.Tree) error {
		if err := tree.Update(key, value); err != nil {
			return err
		}
		txn.StageRoot(tree.Root())
		txn.StageTempLeaves([]smt.KV{{Key: key, Value: value}})
		return nil
	})
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	proof, err := env.proveAt(lockHash, root, []smt.KV{{Key: key, Value: value}})
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	blob := EncodeSubkey(SubkeyEntries{
		Keys:   []smt.Key32{key},
		Values: []smt.Value32{value},
		Proof:  proof,
	})
	return root, blob, nil
}

// SocialInput is Social's request shape (spec §4.ext).
type SocialInput struct {
	LockScript   []byte
	RecoveryMode uint8
	Must         uint8
	Total        uint8
	Signers      [][]byte
}

// Social registers a guardian/friend threshold recovery policy.
func (env *Env) Social(ctx context.Context, in SocialInput) (hash.Hash256, []byte, error) {
	lockHash := hash.Hash(in.LockScript)

	key := leaf.EncodeSocialKey(in.RecoveryMode, in.Must, in.Total, in.Signers)
	value := leaf.EncodeSocialValue(in.Signers)

	root, err := env.commit(ctx, lockHash, in.LockScript, func(txn *smtstore.Txn, tree *smt.Tree) error {
		if err := tree.Update(key, value); err != nil {
			return err
		}
		txn.StageRoot(tree.Root())
		txn.StageTempLeaves([]smt.KV{{Key: key, Value: value}})
		return nil
	})
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	proof, err := env.proveAt(lockHash, root, []smt.KV{{Key: key, Value: value}})
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	blob := EncodeSocial(SocialEntries{
		Keys:   []smt.Key32{key},
		Values: []smt.Value32{value},
		Proof:  proof,
	})
	return root, blob, nil
}
