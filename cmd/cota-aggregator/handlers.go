// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nervina-labs/cota-aggregator-go/entries"
	"github.com/nervina-labs/cota-aggregator-go/errortypes"
)

func badParam(field, description string) error {
	return errortypes.NewRequestParamInvalid(field, errortypes.SubKindBadType, description)
}

// --- generate_define_cota_smt ---

type defineParams struct {
	LockScript string `json:"lock_script"`
	CotaID     string `json:"cota_id"`
	Total      string `json:"total"`
	Issued     string `json:"issued"`
	Configure  string `json:"configure"`
}

func handleDefine(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p defineParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	cotaID, err := hexArray20(p.CotaID)
	if err != nil {
		return nil, badParam("cota_id", err.Error())
	}
	total, err := parseUint(p.Total, 32)
	if err != nil {
		return nil, badParam("total", err.Error())
	}
	issued, err := parseUint(p.Issued, 32)
	if err != nil {
		return nil, badParam("issued", err.Error())
	}
	configure, err := parseUint(p.Configure, 8)
	if err != nil {
		return nil, badParam("configure", err.Error())
	}

	root, blob, err := env.Define(ctx, entries.DefineInput{
		LockScript: lockScript,
		CotaID:     cotaID,
		Total:      uint32(total),
		Issued:     uint32(issued),
		Configure:  byte(configure),
	})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}

// --- generate_mint_cota_smt ---

type mintWithdrawalParams struct {
	TokenIndex     string `json:"token_index"`
	State          string `json:"state"`
	Characteristic string `json:"characteristic"`
	ToLockScript   string `json:"to_lock_script"`
}

type mintParams struct {
	LockScript  string                  `json:"lock_script"`
	CotaID      string                  `json:"cota_id"`
	OutPoint    string                  `json:"out_point"`
	Withdrawals []mintWithdrawalParams  `json:"withdrawals"`
}

func handleMint(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p mintParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	cotaID, err := hexArray20(p.CotaID)
	if err != nil {
		return nil, badParam("cota_id", err.Error())
	}
	outPoint, err := hexArray24(p.OutPoint)
	if err != nil {
		return nil, badParam("out_point", err.Error())
	}
	withdrawals := make([]entries.MintWithdrawal, len(p.Withdrawals))
	for i, w := range p.Withdrawals {
		tokenIndex, err := parseUint(w.TokenIndex, 32)
		if err != nil {
			return nil, badParam(fmt.Sprintf("withdrawals[%d].token_index", i), err.Error())
		}
		state, err := parseUint(w.State, 8)
		if err != nil {
			return nil, badParam(fmt.Sprintf("withdrawals[%d].state", i), err.Error())
		}
		characteristic, err := hexArray20(w.Characteristic)
		if err != nil && w.Characteristic != "" {
			return nil, badParam(fmt.Sprintf("withdrawals[%d].characteristic", i), err.Error())
		}
		toLockScript, err := hexBytes(w.ToLockScript)
		if err != nil {
			return nil, badParam(fmt.Sprintf("withdrawals[%d].to_lock_script", i), err.Error())
		}
		withdrawals[i] = entries.MintWithdrawal{
			TokenIndex:     uint32(tokenIndex),
			State:          byte(state),
			Characteristic: characteristic,
			ToLockScript:   toLockScript,
		}
	}

	root, blob, err := env.Mint(ctx, entries.MintInput{
		LockScript:  lockScript,
		CotaID:      cotaID,
		OutPoint:    outPoint,
		Withdrawals: withdrawals,
	})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}

// --- generate_withdrawal_cota_smt ---

type withdrawItemParams struct {
	CotaID       string `json:"cota_id"`
	TokenIndex   string `json:"token_index"`
	ToLockScript string `json:"to_lock_script"`
}

type withdrawParams struct {
	LockScript  string               `json:"lock_script"`
	OutPoint    string               `json:"out_point"`
	Withdrawals []withdrawItemParams `json:"withdrawals"`
}

func handleWithdraw(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p withdrawParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	outPoint, err := hexArray24(p.OutPoint)
	if err != nil {
		return nil, badParam("out_point", err.Error())
	}
	items := make([]entries.WithdrawItem, len(p.Withdrawals))
	for i, w := range p.Withdrawals {
		cotaID, err := hexArray20(w.CotaID)
		if err != nil {
			return nil, badParam(fmt.Sprintf("withdrawals[%d].cota_id", i), err.Error())
		}
		tokenIndex, err := parseUint(w.TokenIndex, 32)
		if err != nil {
			return nil, badParam(fmt.Sprintf("withdrawals[%d].token_index", i), err.Error())
		}
		toLockScript, err := hexBytes(w.ToLockScript)
		if err != nil {
			return nil, badParam(fmt.Sprintf("withdrawals[%d].to_lock_script", i), err.Error())
		}
		items[i] = entries.WithdrawItem{CotaID: cotaID, TokenIndex: uint32(tokenIndex), ToLockScript: toLockScript}
	}

	root, blob, err := env.Withdraw(ctx, entries.WithdrawInput{LockScript: lockScript, OutPoint: outPoint, Withdrawals: items})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}

// --- generate_claim_cota_smt ---

type claimItemParams struct {
	CotaID     string `json:"cota_id"`
	TokenIndex string `json:"token_index"`
	OutPoint   string `json:"out_point"`
}

type claimParams struct {
	LockScript           string            `json:"lock_script"`
	WithdrawalLockScript string            `json:"withdrawal_lock_script"`
	Claims               []claimItemParams `json:"claims"`
}

func handleClaim(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p claimParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	withdrawalLockScript, err := hexBytes(p.WithdrawalLockScript)
	if err != nil {
		return nil, badParam("withdrawal_lock_script", err.Error())
	}
	claims := make([]entries.ClaimItem, len(p.Claims))
	for i, c := range p.Claims {
		cotaID, err := hexArray20(c.CotaID)
		if err != nil {
			return nil, badParam(fmt.Sprintf("claims[%d].cota_id", i), err.Error())
		}
		tokenIndex, err := parseUint(c.TokenIndex, 32)
		if err != nil {
			return nil, badParam(fmt.Sprintf("claims[%d].token_index", i), err.Error())
		}
		outPoint, err := hexArray24(c.OutPoint)
		if err != nil {
			return nil, badParam(fmt.Sprintf("claims[%d].out_point", i), err.Error())
		}
		claims[i] = entries.ClaimItem{CotaID: cotaID, TokenIndex: uint32(tokenIndex), OutPoint: outPoint}
	}

	root, blob, err := env.Claim(ctx, entries.ClaimInput{
		LockScript:           lockScript,
		WithdrawalLockScript: withdrawalLockScript,
		Claims:               claims,
	})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}

// --- generate_update_cota_smt ---

type updateItemParams struct {
	CotaID         string `json:"cota_id"`
	TokenIndex     string `json:"token_index"`
	State          string `json:"state"`
	Characteristic string `json:"characteristic"`
}

type updateParams struct {
	LockScript string             `json:"lock_script"`
	Nfts       []updateItemParams `json:"nfts"`
}

func handleUpdate(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p updateParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	items := make([]entries.UpdateItem, len(p.Nfts))
	for i, u := range p.Nfts {
		cotaID, err := hexArray20(u.CotaID)
		if err != nil {
			return nil, badParam(fmt.Sprintf("nfts[%d].cota_id", i), err.Error())
		}
		tokenIndex, err := parseUint(u.TokenIndex, 32)
		if err != nil {
			return nil, badParam(fmt.Sprintf("nfts[%d].token_index", i), err.Error())
		}
		state, err := parseUint(u.State, 8)
		if err != nil {
			return nil, badParam(fmt.Sprintf("nfts[%d].state", i), err.Error())
		}
		characteristic, err := hexArray20(u.Characteristic)
		if err != nil {
			return nil, badParam(fmt.Sprintf("nfts[%d].characteristic", i), err.Error())
		}
		items[i] = entries.UpdateItem{CotaID: cotaID, TokenIndex: uint32(tokenIndex), State: byte(state), Characteristic: characteristic}
	}

	root, blob, err := env.Update(ctx, entries.UpdateInput{LockScript: lockScript, Nfts: items})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}

// --- generate_transfer_cota_smt ---

type transferItemParams struct {
	CotaID       string `json:"cota_id"`
	TokenIndex   string `json:"token_index"`
	OutPoint     string `json:"out_point"`
	ToLockScript string `json:"to_lock_script"`
}

type transferParams struct {
	LockScript           string               `json:"lock_script"`
	WithdrawalLockScript string               `json:"withdrawal_lock_script"`
	TransferOutPoint     string               `json:"transfer_out_point"`
	Transfers            []transferItemParams `json:"transfers"`
}

func handleTransfer(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p transferParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	withdrawalLockScript, err := hexBytes(p.WithdrawalLockScript)
	if err != nil {
		return nil, badParam("withdrawal_lock_script", err.Error())
	}
	transferOutPoint, err := hexArray24(p.TransferOutPoint)
	if err != nil {
		return nil, badParam("transfer_out_point", err.Error())
	}
	items := make([]entries.TransferItem, len(p.Transfers))
	for i, t := range p.Transfers {
		cotaID, err := hexArray20(t.CotaID)
		if err != nil {
			return nil, badParam(fmt.Sprintf("transfers[%d].cota_id", i), err.Error())
		}
		tokenIndex, err := parseUint(t.TokenIndex, 32)
		if err != nil {
			return nil, badParam(fmt.Sprintf("transfers[%d].token_index", i), err.Error())
		}
		outPoint, err := hexArray24(t.OutPoint)
		if err != nil {
			return nil, badParam(fmt.Sprintf("transfers[%d].out_point", i), err.Error())
		}
		toLockScript, err := hexBytes(t.ToLockScript)
		if err != nil {
			return nil, badParam(fmt.Sprintf("transfers[%d].to_lock_script", i), err.Error())
		}
		items[i] = entries.TransferItem{CotaID: cotaID, TokenIndex: uint32(tokenIndex), OutPoint: outPoint, ToLockScript: toLockScript}
	}

	root, blob, err := env.Transfer(ctx, entries.TransferInput{
		LockScript:           lockScript,
		WithdrawalLockScript: withdrawalLockScript,
		TransferOutPoint:     transferOutPoint,
		Transfers:            items,
	})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}

// --- generate_claim_update_cota_smt ---

type claimUpdateItemParams struct {
	CotaID         string `json:"cota_id"`
	TokenIndex     string `json:"token_index"`
	OutPoint       string `json:"out_point"`
	State          string `json:"state"`
	Characteristic string `json:"characteristic"`
}

type claimUpdateParams struct {
	LockScript           string                  `json:"lock_script"`
	WithdrawalLockScript string                  `json:"withdrawal_lock_script"`
	Items                []claimUpdateItemParams `json:"items"`
}

func handleClaimUpdate(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p claimUpdateParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	withdrawalLockScript, err := hexBytes(p.WithdrawalLockScript)
	if err != nil {
		return nil, badParam("withdrawal_lock_script", err.Error())
	}
	items := make([]entries.ClaimUpdateItem, len(p.Items))
	for i, it := range p.Items {
		cotaID, err := hexArray20(it.CotaID)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].cota_id", i), err.Error())
		}
		tokenIndex, err := parseUint(it.TokenIndex, 32)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].token_index", i), err.Error())
		}
		outPoint, err := hexArray24(it.OutPoint)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].out_point", i), err.Error())
		}
		state, err := parseUint(it.State, 8)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].state", i), err.Error())
		}
		characteristic, err := hexArray20(it.Characteristic)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].characteristic", i), err.Error())
		}
		items[i] = entries.ClaimUpdateItem{
			CotaID: cotaID, TokenIndex: uint32(tokenIndex), OutPoint: outPoint,
			State: byte(state), Characteristic: characteristic,
		}
	}

	root, blob, err := env.ClaimUpdate(ctx, entries.ClaimUpdateInput{
		LockScript:           lockScript,
		WithdrawalLockScript: withdrawalLockScript,
		Items:                items,
	})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}

// --- generate_transfer_update_cota_smt ---

type transferUpdateItemParams struct {
	CotaID         string `json:"cota_id"`
	TokenIndex     string `json:"token_index"`
	OutPoint       string `json:"out_point"`
	ToLockScript   string `json:"to_lock_script"`
	State          string `json:"state"`
	Characteristic string `json:"characteristic"`
}

type transferUpdateParams struct {
	LockScript           string                       `json:"lock_script"`
	WithdrawalLockScript string                       `json:"withdrawal_lock_script"`
	TransferOutPoint     string                       `json:"transfer_out_point"`
	Items                []transferUpdateItemParams   `json:"items"`
}

func handleTransferUpdate(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p transferUpdateParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	withdrawalLockScript, err := hexBytes(p.WithdrawalLockScript)
	if err != nil {
		return nil, badParam("withdrawal_lock_script", err.Error())
	}
	transferOutPoint, err := hexArray24(p.TransferOutPoint)
	if err != nil {
		return nil, badParam("transfer_out_point", err.Error())
	}
	items := make([]entries.TransferUpdateItem, len(p.Items))
	for i, it := range p.Items {
		cotaID, err := hexArray20(it.CotaID)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].cota_id", i), err.Error())
		}
		tokenIndex, err := parseUint(it.TokenIndex, 32)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].token_index", i), err.Error())
		}
		outPoint, err := hexArray24(it.OutPoint)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].out_point", i), err.Error())
		}
		toLockScript, err := hexBytes(it.ToLockScript)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].to_lock_script", i), err.Error())
		}
		state, err := parseUint(it.State, 8)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].state", i), err.Error())
		}
		characteristic, err := hexArray20(it.Characteristic)
		if err != nil {
			return nil, badParam(fmt.Sprintf("items[%d].characteristic", i), err.Error())
		}
		items[i] = entries.TransferUpdateItem{
			CotaID: cotaID, TokenIndex: uint32(tokenIndex), OutPoint: outPoint,
			ToLockScript: toLockScript, State: byte(state), Characteristic: characteristic,
		}
	}

	root, blob, err := env.TransferUpdate(ctx, entries.TransferUpdateInput{
		LockScript:           lockScript,
		WithdrawalLockScript: withdrawalLockScript,
		TransferOutPoint:     transferOutPoint,
		Items:                items,
	})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}

// --- generate_extension_subkey_smt ---

type subkeyParams struct {
	LockScript string `json:"lock_script"`
	ExtData    string `json:"ext_data"`
	AlgIndex   string `json:"alg_index"`
	PubkeyHash string `json:"pubkey_hash"`
	Version    string `json:"version"`
}

func handleSubkey(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p subkeyParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	extData, err := parseUint(p.ExtData, 32)
	if err != nil {
		return nil, badParam("ext_data", err.Error())
	}
	algIndex, err := parseUint(p.AlgIndex, 16)
	if err != nil {
		return nil, badParam("alg_index", err.Error())
	}
	pubkeyHash, err := hexArray20(p.PubkeyHash)
	if err != nil {
		return nil, badParam("pubkey_hash", err.Error())
	}
	version, err := parseUint(p.Version, 8)
	if err != nil {
		return nil, badParam("version", err.Error())
	}

	root, blob, err := env.Subkey(ctx, entries.SubkeyInput{
		LockScript: lockScript,
		ExtData:    uint32(extData),
		AlgIndex:   uint16(algIndex),
		PubkeyHash: pubkeyHash,
		Version:    uint8(version),
	})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}

// --- generate_extension_social_smt ---

type socialParams struct {
	LockScript   string   `json:"lock_script"`
	RecoveryMode string   `json:"recovery_mode"`
	Must         string   `json:"must"`
	Total        string   `json:"total"`
	Signers      []string `json:"signers"`
}

func handleSocial(ctx context.Context, env *entries.Env, raw json.RawMessage) (interface{}, error) {
	var p socialParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, badParam("params", err.Error())
	}
	lockScript, err := hexBytes(p.LockScript)
	if err != nil {
		return nil, badParam("lock_script", err.Error())
	}
	recoveryMode, err := parseUint(p.RecoveryMode, 8)
	if err != nil {
		return nil, badParam("recovery_mode", err.Error())
	}
	must, err := parseUint(p.Must, 8)
	if err != nil {
		return nil, badParam("must", err.Error())
	}
	total, err := parseUint(p.Total, 8)
	if err != nil {
		return nil, badParam("total", err.Error())
	}
	signers := make([][]byte, len(p.Signers))
	for i, s := range p.Signers {
		b, err := hexBytes(s)
		if err != nil {
			return nil, badParam(fmt.Sprintf("signers[%d]", i), err.Error())
		}
		signers[i] = b
	}

	root, blob, err := env.Social(ctx, entries.SocialInput{
		LockScript:   lockScript,
		RecoveryMode: uint8(recoveryMode),
		Must:         uint8(must),
		Total:        uint8(total),
		Signers:      signers,
	})
	if err != nil {
		return nil, err
	}
	return methodResult{SmtRootHash: toHex(root[:]), Entries: toHex(blob)}, nil
}
