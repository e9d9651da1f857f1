// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package witness implements the witness sub-proof extractor (component
// C10): given a transaction's witnesses, it locates the one that commits
// the caller's target leaves and shrinks its compiled Merkle proof down
// to cover only those leaves, for embedding in a Sequent Transfer entries
// blob. Grounded on original_source/src/entries/witness.rs's
// parse_witness_withdraw_proof.
package witness

import (
	"github.com/nervina-labs/cota-aggregator-go/entries"
	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/smt"
)

// Input-type tags identifying which operation an input_type-carrying
// witness commits, per spec §4.10.
const (
	tagMint           byte = 2
	tagWithdraw       byte = 3
	tagTransfer       byte = 6
	tagTransferUpdate byte = 8
)

// Network selects which of the two protocol PADDING_HEIGHT constants
// applies when reconstructing historical Define leaves (spec §4.10).
type Network uint8

const (
	Mainnet Network = iota
	Testnet
)

// Real protocol constants per original_source/src/entries/constants.rs:
// the block height past which every Define leaf's value is treated as
// 0xFF-padded regardless of its recorded content, compensating for an
// earlier protocol version that hashed zero-padded Define values
// incorrectly.
const (
	PaddingHeightMainnet uint64 = 7220728
	PaddingHeightTestnet uint64 = 5466881
)

func paddingHeight(network Network) uint64 {
	if network == Testnet {
		return PaddingHeightTestnet
	}
	return PaddingHeightMainnet
}

// padDefineValue applies spec §4.10's padding rule: past PADDING_HEIGHT,
// or when the raw value is the all-zero sentinel, the value's last byte
// is forced to 0xFF before it is used as a leaf value.
func padDefineValue(value smt.Value32, blockNumber uint64, network Network) smt.Value32 {
	afterPadding := blockNumber > paddingHeight(network)
	if afterPadding || value == (smt.Value32{}) {
		value[31] = 0xFF
	}
	return value
}

// ExtractSubProof walks witnesses (each the raw input_type payload: tag
// byte followed by an entries-codec blob) looking for one whose commited
// leaf set is a superset of targetKeys, reconstructs the full leaf set
// that witness proved (including non-target leaves, carried only to
// rebuild the tree path), and extracts a compiled sub-proof covering only
// targetKeys.
//
// Because the entries codec already stores final, hashed smt.Key32/
// smt.Value32 pairs rather than the unhashed molecule key structs the
// original implementation matches against, targetKeys here are the
// already-derived tree keys (e.g. via leaf.EncodeWithdrawalKeyV1) the
// caller is looking for, not raw (cota_id, token_index) pairs — the
// caller, which just resolved the withdrawal via the chain facade (C9),
// already has enough information to compute them directly.
func ExtractSubProof(witnesses [][]byte, targetKeys []smt.Key32, blockNumber uint64, network Network) (smt.CompiledProof, error) {
	for _, raw := range witnesses {
		if len(raw) < 1 {
			continue
		}
		tag := raw[0]
		blob := raw[1:]

		leaves, proof, ok := reconstructLeaves(tag, blob, blockNumber, network)
		if !ok {
			continue
		}

		if proof, err := tryExtract(leaves, proof, targetKeys); err == nil {
			return proof, nil
		}
	}
	return nil, errortypes.NewWitnessParseError("no witness commits the requested leaves")
}

// reconstructLeaves decodes blob per tag and rebuilds the full ordered
// leaf list the witness's compiled proof was produced against, mirroring
// parse_define/parse_hold/parse_claim plus the withdrawal tail every
// flow shares.
func reconstructLeaves(tag byte, blob []byte, blockNumber uint64, network Network) ([]smt.KV, smt.CompiledProof, bool) {
	switch tag {
	case tagMint:
		e, err := entries.DecodeMint(blob)
		if err != nil {
			return nil, nil, false
		}
		leaves := defineLeaves(e.DefineKeys, e.DefineNewValues, blockNumber, network)
		leaves = append(leaves, withdrawalLeaves(e.WithdrawalKeys, e.WithdrawalValues)...)
		return leaves, e.Proof, true

	case tagWithdraw:
		e, err := entries.DecodeWithdraw(blob)
		if err != nil {
			return nil, nil, false
		}
		// The Withdraw builder (builders.go) compiles its proof over the
		// withdrawal leaves alone; the Hold leaves it also touches never
		// enter the compiled proof's leaf set.
		leaves := withdrawalLeaves(e.WithdrawalKeys, e.WithdrawalValues)
		return leaves, e.Proof, true

	case tagTransfer:
		e, err := entries.DecodeTransfer(blob)
		if err != nil {
			return nil, nil, false
		}
		leaves := claimLeaves(e.ClaimKeys, e.ClaimValues)
		leaves = append(leaves, withdrawalLeaves(e.WithdrawalKeys, e.WithdrawalValues)...)
		return leaves, e.Proof, true

	case tagTransferUpdate:
		e, err := entries.DecodeTransferUpdate(blob)
		if err != nil {
			return nil, nil, false
		}
		leaves := claimLeaves(e.ClaimKeys, e.ClaimValues)
		leaves = append(leaves, withdrawalLeaves(e.WithdrawalKeys, e.WithdrawalValues)...)
		return leaves, e.Proof, true

	default:
		return nil, nil, false
	}
}

func defineLeaves(keys []smt.Key32, values []smt.Value32, blockNumber uint64, network Network) []smt.KV {
	out := make([]smt.KV, len(keys))
	for i := range keys {
		out[i] = smt.KV{Key: keys[i], Value: padDefineValue(values[i], blockNumber, network)}
	}
	return out
}

func claimLeaves(keys []smt.Key32, values []smt.Value32) []smt.KV {
	out := make([]smt.KV, len(keys))
	for i := range keys {
		out[i] = smt.KV{Key: keys[i], Value: values[i]}
	}
	return out
}

func withdrawalLeaves(keys []smt.Key32, values []smt.Value32) []smt.KV {
	out := make([]smt.KV, len(keys))
	for i := range keys {
		out[i] = smt.KV{Key: keys[i], Value: values[i]}
	}
	return out
}

// tryExtract calls smt.ExtractSubProof and additionally requires that
// every targetKey actually appear among leaves — a witness whose leaf
// set happens not to include the caller's targets is not a match, and
// the caller should keep scanning subsequent witnesses.
func tryExtract(leaves []smt.KV, proof smt.CompiledProof, targetKeys []smt.Key32) (smt.CompiledProof, error) {
	present := make(map[smt.Key32]bool, len(leaves))
	for _, l := range leaves {
		present[l.Key] = true
	}
	for _, k := range targetKeys {
		if !present[k] {
			return nil, errortypes.NewWitnessParseError("target key not present in this witness's leaf set")
		}
	}
	return smt.ExtractSubProof(leaves, proof, targetKeys)
}
