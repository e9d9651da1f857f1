// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entries

import (
	"context"

	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/hash"
	"github.com/nervina-labs/cota-aggregator-go/history"
	"github.com/nervina-labs/cota-aggregator-go/leaf"
	"github.com/nervina-labs/cota-aggregator-go/smt"
	"github.com/nervina-labs/cota-aggregator-go/smtstore"
)

// commit runs mutate inside owner's critical section (spec §4.7 step 3:
// history-load, apply update_all, persist temp-leaves + new root via an
// atomic commit), releasing the lock before returning.
func (env *Env) commit(ctx context.Context, lockHash hash.Hash256, lockScript []byte, mutate func(txn *smtstore.Txn, tree *smt.Tree) error) (hash.Hash256, error) {
	var resultRoot hash.Hash256
	err := env.Lock.WithLockContext(ctx, lockHash, func() error {
		txn := env.Store.Begin(lockHash)
		tree, err := env.Loader.Load(ctx, txn, env.Store, history.Owner{LockHash: lockHash, LockScript: lockScript})
		if err != nil {
			txn.Abort()
			return err
		}
		if err := mutate(txn, tree); err != nil {
			txn.Abort()
			return err
		}
		if err := txn.Commit(); err != nil {
			return err
		}
		resultRoot = tree.Root()
		return nil
	})
	return resultRoot, err
}

// DefineInput is Define's request shape (spec §4.7.1).
type DefineInput struct {
	LockScript []byte
	CotaID     [20]byte
	Total      uint32
	Issued     uint32
	Configure  byte
}

// Define inserts (or idempotently overwrites) one Define leaf.
func (env *Env) Define(ctx context.Context, in DefineInput) (hash.Hash256, []byte, error) {
	lockHash := hash.Hash(in.LockScript)

	key, err := leaf.EncodeDefineKey(in.CotaID[:])
	if err != nil {
		return hash.Hash256{}, nil, err
	}
	value := leaf.EncodeDefineValue(in.Total, in.Issued, in.Configure)

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

	blob := EncodeDefine(DefineEntries{
		Keys:   []smt.Key32{key},
		Values: []smt.Value32{value},
		Proof:  proof,
		Action: defineAction(in.Total),
	})
	return root, blob, nil
}

// MintWithdrawal is one item of Mint's withdrawals[] input.
type MintWithdrawal struct {
	TokenIndex     uint32
	State          byte
	Characteristic [20]byte
	ToLockScript   []byte
}

// MintInput is Mint's request shape (spec §4.7.2).
type MintInput struct {
	LockScript  []byte
	CotaID      [20]byte
	OutPoint    [24]byte
	Withdrawals []MintWithdrawal
}

// Mint increments the Define leaf's issued count and inserts one
// Withdrawal-v1 leaf per requested item.
func (env *Env) Mint(ctx context.Context, in MintInput) (hash.Hash256, []byte, error) {
	if len(in.Withdrawals) == 0 {
		return hash.Hash256{}, nil, errortypes.NewRequestParamInvalid("withdrawals", errortypes.SubKindBadLength, "mint requires at least one withdrawal")
	}
	lockHash := hash.Hash(in.LockScript)

	defineRow, ok, err := env.Source.GetDefine(lockHash, in.CotaID)
	if err != nil {
		return hash.Hash256{}, nil, err
	}
	if !ok {
		return hash.Hash256{}, nil, errortypes.NewPreconditionMissing(errortypes.SubKindCotaIDHasNotDefined, in.CotaID[:], 0)
	}

	defineKey, err := leaf.EncodeDefineKey(in.CotaID[:])
	if err != nil {
		return hash.Hash256{}, nil, err
	}
	oldDefineValue := leaf.EncodeDefineValue(defineRow.Total, defineRow.Issued, defineRow.Configure)
	newIssued := defineRow.Issued + uint32(len(in.Withdrawals))
	newDefineValue := leaf.EncodeDefineValue(defineRow.Total, newIssued, defineRow.Configure)

	withdrawalKeys := make([]smt.Key32, len(in.Withdrawals))
	withdrawalValues := make([]smt.Value32, len(in.Withdrawals))
	for i, w := range in.Withdrawals {
		key, err := leaf.EncodeWithdrawalKeyV1(in.CotaID[:], w.TokenIndex, in.OutPoint[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		value, err := leaf.EncodeWithdrawalValueV1(defineRow.Configure, w.State, w.Characteristic[:], w.ToLockScript)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		withdrawalKeys[i] = key
		withdrawalValues[i] = value
	}

	updates := make([]smt.KV, 0, 1+len(in.Withdrawals))
	updates = append(updates, smt.KV{Key: defineKey, Value: newDefineValue})
	for i := range withdrawalKeys {
		updates = append(updates, smt.KV{Key: withdrawalKeys[i], Value: withdrawalValues[i]})
	}

	root, err := env.commit(ctx, lockHash, in.LockScript, func(txn *smtstore.Txn, tree *smt.Tree) error {
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

	proveLeaves := make([]smt.KV, 0, 1+len(withdrawalKeys))
	proveLeaves = append(proveLeaves, smt.KV{Key: defineKey, Value: newDefineValue})
	for i := range withdrawalKeys {
		proveLeaves = append(proveLeaves, smt.KV{Key: withdrawalKeys[i], Value: withdrawalValues[i]})
	}
	proof, err := env.proveAt(lockHash, root, proveLeaves)
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	var action string
	if len(in.Withdrawals) == 1 {
		action = mintAction(in.CotaID, in.Withdrawals[0].TokenIndex, in.Withdrawals[0].ToLockScript, 1)
	}

	blob := EncodeMint(MintEntries{
		DefineKeys:       []smt.Key32{defineKey},
		DefineOldValues:  []smt.Value32{oldDefineValue},
		DefineNewValues:  []smt.Value32{newDefineValue},
		WithdrawalKeys:   withdrawalKeys,
		WithdrawalValues: withdrawalValues,
		Proof:            proof,
		Action:           action,
	})
	return root, blob, nil
}

// WithdrawItem is one item of Withdraw's withdrawals[] input.
type WithdrawItem struct {
	CotaID       [20]byte
	TokenIndex   uint32
	ToLockScript []byte
}

// WithdrawInput is Withdraw's request shape (spec §4.7.3).
type WithdrawInput struct {
	LockScript  []byte
	OutPoint    [24]byte
	Withdrawals []WithdrawItem
}

// Withdraw clears the Hold leaf and writes a Withdrawal-v1 leaf for
// each requested item.
func (env *Env) Withdraw(ctx context.Context, in WithdrawInput) (hash.Hash256, []byte, error) {
	lockHash := hash.Hash(in.LockScript)

	holdKeys := make([]smt.Key32, len(in.Withdrawals))
	withdrawalKeys := make([]smt.Key32, len(in.Withdrawals))
	withdrawalValues := make([]smt.Value32, len(in.Withdrawals))
	updates := make([]smt.KV, 0, 2*len(in.Withdrawals))

	for i, item := range in.Withdrawals {
		holdRow, ok, err := env.Source.GetHold(lockHash, item.CotaID, item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		if !ok {
			return hash.Hash256{}, nil, errortypes.NewPreconditionMissing(errortypes.SubKindHasNotHeld, item.CotaID[:], item.TokenIndex)
		}

		holdKey, err := leaf.EncodeHoldKey(item.CotaID[:], item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		withdrawalKey, err := leaf.EncodeWithdrawalKeyV1(item.CotaID[:], item.TokenIndex, in.OutPoint[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		withdrawalValue, err := leaf.EncodeWithdrawalValueV1(holdRow.Configure, holdRow.State, holdRow.Characteristic[:], item.ToLockScript)
		if err != nil {
			return hash.Hash256{}, nil, err
		}

		holdKeys[i] = holdKey
		withdrawalKeys[i] = withdrawalKey
		withdrawalValues[i] = withdrawalValue
		updates = append(updates,
			smt.KV{Key: holdKey, Value: leaf.ZeroHoldValue},
			smt.KV{Key: withdrawalKey, Value: withdrawalValue},
		)
	}

	root, err := env.commit(ctx, lockHash, in.LockScript, func(txn *smtstore.Txn, tree *smt.Tree) error {
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

	proveLeaves := make([]smt.KV, len(withdrawalKeys))
	for i := range withdrawalKeys {
		proveLeaves[i] = smt.KV{Key: withdrawalKeys[i], Value: withdrawalValues[i]}
	}
	proof, err := env.proveAt(lockHash, root, proveLeaves)
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	blob := EncodeWithdraw(WithdrawEntries{
		HoldKeys:         holdKeys,
		WithdrawalKeys:   withdrawalKeys,
		WithdrawalValues: withdrawalValues,
		Proof:            proof,
	})
	return root, blob, nil
}

// ClaimItem is one item of Claim's claims[] input.
type ClaimItem struct {
	CotaID     [20]byte
	TokenIndex uint32
	OutPoint   [24]byte
}

// ClaimInput is Claim's request shape (spec §4.7.4).
type ClaimInput struct {
	LockScript           []byte
	WithdrawalLockScript []byte
	Claims               []ClaimItem
}

// Claim writes one Hold and one Claim leaf per item on the claimer's
// tree, and derives a proof of the consumed Withdrawal leaves on the
// withdrawal owner's (unchanged) tree.
func (env *Env) Claim(ctx context.Context, in ClaimInput) (hash.Hash256, []byte, error) {
	claimLockHash := hash.Hash(in.LockScript)
	withdrawalLockHash := hash.Hash(in.WithdrawalLockScript)

	holdKeys := make([]smt.Key32, len(in.Claims))
	holdValues := make([]smt.Value32, len(in.Claims))
	claimKeys := make([]smt.Key32, len(in.Claims))
	claimValues := make([]smt.Value32, len(in.Claims))
	withdrawalProveLeaves := make([]smt.KV, len(in.Claims))
	updates := make([]smt.KV, 0, 2*len(in.Claims))

	for i, item := range in.Claims {
		wRow, ok, err := env.Source.GetWithdrawal(withdrawalLockHash, item.CotaID, item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		if !ok {
			return hash.Hash256{}, nil, errortypes.NewPreconditionMissing(errortypes.SubKindHasNotWithdrawn, item.CotaID[:], item.TokenIndex)
		}

		var withdrawalKey smt.Key32
		var withdrawalValue smt.Value32
		if wRow.Version == 0 {
			withdrawalKey, err = leaf.EncodeWithdrawalKeyV0(item.CotaID[:], item.TokenIndex)
			if err == nil {
				withdrawalValue, err = leaf.EncodeWithdrawalValueV0(wRow.Configure, wRow.State, wRow.Characteristic[:], item.OutPoint[:], wRow.ReceiverLockScript)
			}
		} else {
			withdrawalKey, err = leaf.EncodeWithdrawalKeyV1(item.CotaID[:], item.TokenIndex, item.OutPoint[:])
			if err == nil {
				withdrawalValue, err = leaf.EncodeWithdrawalValueV1(wRow.Configure, wRow.State, wRow.Characteristic[:], wRow.ReceiverLockScript)
			}
		}
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		withdrawalProveLeaves[i] = smt.KV{Key: withdrawalKey, Value: withdrawalValue}

		holdKey, err := leaf.EncodeHoldKey(item.CotaID[:], item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		holdValue, err := leaf.EncodeHoldValue(wRow.Configure, wRow.State, wRow.Characteristic[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		claimKey, err := leaf.EncodeClaimKey(item.CotaID[:], item.TokenIndex, item.OutPoint[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		claimValue := leaf.EncodeClaimValue(wRow.Version)

		holdKeys[i] = holdKey
		holdValues[i] = holdValue
		claimKeys[i] = claimKey
		claimValues[i] = claimValue
		updates = append(updates,
			smt.KV{Key: holdKey, Value: holdValue},
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

	claimProveLeaves := make([]smt.KV, 0, len(updates))
	for i := range holdKeys {
		claimProveLeaves = append(claimProveLeaves,
			smt.KV{Key: holdKeys[i], Value: holdValues[i]},
			smt.KV{Key: claimKeys[i], Value: claimValues[i]},
		)
	}
	claimProof, err := env.proveAt(claimLockHash, root, claimProveLeaves)
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	blob := EncodeClaim(ClaimEntries{
		HoldKeys:        holdKeys,
		HoldValues:      holdValues,
		ClaimKeys:       claimKeys,
		ClaimValues:     claimValues,
		WithdrawalProof: withdrawalProof,
		ClaimSideProof:  claimProof,
	})
	return root, blob, nil
}

// UpdateItem is one item of Update's nfts[] input.
type UpdateItem struct {
	CotaID         [20]byte
	TokenIndex     uint32
	State          byte
	Characteristic [20]byte
}

// UpdateInput is Update's request shape (spec §4.7.5).
type UpdateInput struct {
	LockScript []byte
	Nfts       []UpdateItem
}

// Update rewrites Hold leaves with new state/characteristic, leaving
// configure unchanged.
func (env *Env) Update(ctx context.Context, in UpdateInput) (hash.Hash256, []byte, error) {
	lockHash := hash.Hash(in.LockScript)

	holdKeys := make([]smt.Key32, len(in.Nfts))
	oldValues := make([]smt.Value32, len(in.Nfts))
	newValues := make([]smt.Value32, len(in.Nfts))
	updates := make([]smt.KV, len(in.Nfts))

	for i, item := range in.Nfts {
		row, ok, err := env.Source.GetHold(lockHash, item.CotaID, item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		if !ok {
			return hash.Hash256{}, nil, errortypes.NewPreconditionMissing(errortypes.SubKindHasNotHeld, item.CotaID[:], item.TokenIndex)
		}

		key, err := leaf.EncodeHoldKey(item.CotaID[:], item.TokenIndex)
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		oldValue, err := leaf.EncodeHoldValue(row.Configure, row.State, row.Characteristic[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}
		newValue, err := leaf.EncodeHoldValue(row.Configure, item.State, item.Characteristic[:])
		if err != nil {
			return hash.Hash256{}, nil, err
		}

		holdKeys[i] = key
		oldValues[i] = oldValue
		newValues[i] = newValue
		updates[i] = smt.KV{Key: key, Value: newValue}
	}

	root, err := env.commit(ctx, lockHash, in.LockScript, func(txn *smtstore.Txn, tree *smt.Tree) error {
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

	proof, err := env.proveAt(lockHash, root, updates)
	if err != nil {
		return hash.Hash256{}, nil, err
	}

	blob := EncodeUpdate(UpdateEntries{
		HoldKeys:      holdKeys,
		HoldOldValues: oldValues,
		HoldNewValues: newValues,
		Proof:         proof,
	})
	return root, blob, nil
}
