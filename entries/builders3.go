// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entries

import (
	"context"

	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/hash"
	"github.com/nervina-labs/cota-aggregator-go/leaf"
	"github.com/nervina-labs/cota-aggregator-go/smt"
	"github.com/nervina-labs/cota-aggregator-go/smtstore"
	"github.com/nervina-labs/cota-aggregator-go/witness"
)

// SequentTransferInput is Sequent Transfer's request shape (spec
// §4.7.8): a Transfer whose consumed Withdrawal leaf is no longer
// locally provable, because the withdrawal owner's tree has since moved
// on past the transaction that actually committed it on-chain. The
// caller supplies the block at which that original commitment
// happened so the withdrawal-side proof can be reconstructed from the
// chain itself (C9) rather than the local store.
type SequentTransferInput struct {
	LockScript           []byte
	WithdrawalLockScript []byte
	TransferOutPoint     [24]byte
	Transfers            []TransferItem
	OriginalBlockNumber  uint64
	Network              witness.Network

	// SubkeyUnlockProof optionally carries a C7.ext subkey-unlock proof
	// authorizing this transfer on the sender's behalf. It rides
	// alongside the entries blob rather than inside it: the entries
	// codec's field layout is a fixed wire contract (spec §4.8), and
	// this augmentation has no declared slot in it.
	SubkeyUnlockProof []byte
}

// SequentTransferResult is Sequent Transfer's response: the same
// TransferEntries blob Transfer would produce, but with the withdrawal
// side proved via the chain facade and witness extractor instead of a
// local store lookup, plus the unlock proof passed through unchanged.
type SequentTransferResult struct {
	Root              hash.Hash256
	Blob              []byte
	SubkeyUnlockProof []byte
}

// SequentTransfer writes the same Claim + Withdrawal-v1 leaves Transfer
// would on the sender's tree, then replaces the withdrawal-side proof
// with a sub-proof extracted (C10) from the witnesses of the
// transaction that originally committed the consumed Withdrawal
// on-chain (C9), since every intermediate hand-off between that
// commitment and this transfer may have left the local store unable to
// reconstruct it directly.
func (env *Env) SequentTransfer(ctx context.Context, in SequentTransferInput) (SequentTransferResult, error) {
	if len(in.Transfers) == 0 {
		return SequentTransferResult{}, errortypes.NewRequestParamInvalid("transfers", errortypes.SubKindBadLength, "must contain at least one item")
	}

	senderLockHash := hash.Hash(in.LockScript)
	withdrawalLockHash := hash.Hash(in.WithdrawalLockScript)

	claimKeys := make([]smt.Key32, len(in.Transfers))
	claimValues := make([]smt.Value32, len(in.Transfers))
	newWithdrawalKeys := make([]smt.Key32, len(in.Transfers))
	newWithdrawalValues := make([]smt.Value32, len(in.Transfers))
	targetKeys := make([]smt.Key32, len(in.Transfers))
	updates := make([]smt.KV, 0, 2*len(in.Transfers))

	for i, item := range in.Transfers {
		wRow, ok, err := env.Source.GetWithdrawal(withdrawalLockHash, item.CotaID, item.TokenIndex)
		if err != nil {
			return SequentTransferResult{}, err
		}
		if !ok {
			return SequentTransferResult{}, errortypes.NewPreconditionMissing(errortypes.SubKindHasNotWithdrawn, item.CotaID[:], item.TokenIndex)
		}

		wKey, _, err := withdrawalLeaf(item.CotaID, item.TokenIndex, item.OutPoint, wRow)
		if err != nil {
			return SequentTransferResult{}, err
		}
		targetKeys[i] = wKey

		claimKey, err := leaf.EncodeClaimKey(item.CotaID[:], item.TokenIndex, item.OutPoint[:])
		if err != nil {
			return SequentTransferResult{}, err
		}
		claimValue := leaf.EncodeClaimValue(wRow.Version)

		newKey, err := leaf.EncodeWithdrawalKeyV1(item.CotaID[:], item.TokenIndex, in.TransferOutPoint[:])
		if err != nil {
			return SequentTransferResult{}, err
		}
		newValue, err := leaf.EncodeWithdrawalValueV1(wRow.Configure, wRow.State, wRow.Characteristic[:], item.ToLockScript)
		if err != nil {
			return SequentTransferResult{}, err
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
		return SequentTransferResult{}, err
	}

	info, err := env.Loader.Facade.GetWithdrawInfo(ctx, in.OriginalBlockNumber, withdrawalLockHash)
	if err != nil {
		return SequentTransferResult{}, err
	}
	withdrawalProof, err := witness.ExtractSubProof(info.Witnesses, targetKeys, in.OriginalBlockNumber, in.Network)
	if err != nil {
		return SequentTransferResult{}, err
	}

	// Prove over the blob's grouped leaf order (all claims, then all new
	// withdrawals), as Transfer does, so witness replay stays in step.
	proveLeaves := make([]smt.KV, 0, 2*len(in.Transfers))
	for i := range in.Transfers {
		proveLeaves = append(proveLeaves, smt.KV{Key: claimKeys[i], Value: claimValues[i]})
	}
	for i := range in.Transfers {
		proveLeaves = append(proveLeaves, smt.KV{Key: newWithdrawalKeys[i], Value: newWithdrawalValues[i]})
	}
	proof, err := env.proveAt(senderLockHash, root, proveLeaves)
	if err != nil {
		return SequentTransferResult{}, err
	}

	blob := EncodeTransfer(TransferEntries{
		ClaimKeys:        claimKeys,
		ClaimValues:      claimValues,
		WithdrawalKeys:   newWithdrawalKeys,
		WithdrawalValues: newWithdrawalValues,
		WithdrawalProof:  withdrawalProof,
		Proof:            proof,
	})

	return SequentTransferResult{Root: root, Blob: blob, SubkeyUnlockProof: in.SubkeyUnlockProof}, nil
}
