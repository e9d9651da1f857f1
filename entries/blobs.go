// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entries

import (
	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/smt"
)

// DefineEntries is the entries blob for a Define operation (tag 1).
type DefineEntries struct {
	Keys   []smt.Key32
	Values []smt.Value32
	Proof  smt.CompiledProof
	Action string
}

func EncodeDefine(e DefineEntries) []byte {
	w := newWriter(TagDefine)
	w.put32Vector(toKeyVec(e.Keys))
	w.put32Vector(toValueVec(e.Values))
	w.putBytes(e.Proof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeDefine(blob []byte) (DefineEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return DefineEntries{}, err
	}
	if tag != TagDefine {
		return DefineEntries{}, errortypes.NewWitnessParseError("not a define entries blob")
	}
	var e DefineEntries
	keys, err := r.get32Vector()
	if err != nil {
		return DefineEntries{}, err
	}
	values, err := r.get32Vector()
	if err != nil {
		return DefineEntries{}, err
	}
	proof, err := r.getBytes()
	if err != nil {
		return DefineEntries{}, err
	}
	action, err := r.getAction()
	if err != nil {
		return DefineEntries{}, err
	}
	e.Keys = fromVec(keys)
	e.Values = fromVec(values)
	e.Proof = proof
	e.Action = action
	return e, nil
}

// MintEntries is the entries blob for a Mint operation (tag 2): one
// updated Define leaf plus N new Withdrawal-v1 leaves.
type MintEntries struct {
	DefineKeys       []smt.Key32
	DefineOldValues  []smt.Value32
	DefineNewValues  []smt.Value32
	WithdrawalKeys   []smt.Key32
	WithdrawalValues []smt.Value32
	Proof            smt.CompiledProof
	Action           string
}

func EncodeMint(e MintEntries) []byte {
	w := newWriter(TagMint)
	w.put32Vector(toKeyVec(e.DefineKeys))
	w.put32Vector(toValueVec(e.DefineOldValues))
	w.put32Vector(toValueVec(e.DefineNewValues))
	w.put32Vector(toKeyVec(e.WithdrawalKeys))
	w.put32Vector(toValueVec(e.WithdrawalValues))
	w.putBytes(e.Proof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeMint(blob []byte) (MintEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return MintEntries{}, err
	}
	if tag != TagMint {
		return MintEntries{}, errortypes.NewWitnessParseError("not a mint entries blob")
	}
	var e MintEntries
	var raw [][32]byte
	if raw, err = r.get32Vector(); err != nil {
		return MintEntries{}, err
	}
	e.DefineKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return MintEntries{}, err
	}
	e.DefineOldValues = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return MintEntries{}, err
	}
	e.DefineNewValues = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return MintEntries{}, err
	}
	e.WithdrawalKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return MintEntries{}, err
	}
	e.WithdrawalValues = fromVec(raw)
	if e.Proof, err = r.getBytes(); err != nil {
		return MintEntries{}, err
	}
	if e.Action, err = r.getAction(); err != nil {
		return MintEntries{}, err
	}
	return e, nil
}

// WithdrawEntries is the entries blob for a Withdraw operation (tag 3):
// N cleared Hold leaves plus N new Withdrawal-v1 leaves.
type WithdrawEntries struct {
	HoldKeys         []smt.Key32
	WithdrawalKeys   []smt.Key32
	WithdrawalValues []smt.Value32
	Proof            smt.CompiledProof
	Action           string
}

func EncodeWithdraw(e WithdrawEntries) []byte {
	w := newWriter(TagWithdraw)
	w.put32Vector(toKeyVec(e.HoldKeys))
	w.put32Vector(toKeyVec(e.WithdrawalKeys))
	w.put32Vector(toValueVec(e.WithdrawalValues))
	w.putBytes(e.Proof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeWithdraw(blob []byte) (WithdrawEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return WithdrawEntries{}, err
	}
	if tag != TagWithdraw {
		return WithdrawEntries{}, errortypes.NewWitnessParseError("not a withdraw entries blob")
	}
	var e WithdrawEntries
	var raw [][32]byte
	if raw, err = r.get32Vector(); err != nil {
		return WithdrawEntries{}, err
	}
	e.HoldKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return WithdrawEntries{}, err
	}
	e.WithdrawalKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return WithdrawEntries{}, err
	}
	e.WithdrawalValues = fromVec(raw)
	if e.Proof, err = r.getBytes(); err != nil {
		return WithdrawEntries{}, err
	}
	if e.Action, err = r.getAction(); err != nil {
		return WithdrawEntries{}, err
	}
	return e, nil
}

// ClaimEntries is the entries blob for a Claim operation (tag 4): two
// trees are involved, so it carries two compiled proofs — one over the
// withdrawal-side tree (unchanged, proves the consumed Withdrawal
// leaves) and one over the claim-side tree (new Hold + Claim leaves).
type ClaimEntries struct {
	HoldKeys        []smt.Key32
	HoldValues      []smt.Value32
	ClaimKeys       []smt.Key32
	ClaimValues     []smt.Value32
	WithdrawalProof smt.CompiledProof
	ClaimSideProof  smt.CompiledProof
	Action          string
}

func EncodeClaim(e ClaimEntries) []byte {
	w := newWriter(TagClaim)
	w.put32Vector(toKeyVec(e.HoldKeys))
	w.put32Vector(toValueVec(e.HoldValues))
	w.put32Vector(toKeyVec(e.ClaimKeys))
	w.put32Vector(toValueVec(e.ClaimValues))
	w.putBytes(e.WithdrawalProof)
	w.putBytes(e.ClaimSideProof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeClaim(blob []byte) (ClaimEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return ClaimEntries{}, err
	}
	if tag != TagClaim {
		return ClaimEntries{}, errortypes.NewWitnessParseError("not a claim entries blob")
	}
	var e ClaimEntries
	var raw [][32]byte
	if raw, err = r.get32Vector(); err != nil {
		return ClaimEntries{}, err
	}
	e.HoldKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return ClaimEntries{}, err
	}
	e.HoldValues = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return ClaimEntries{}, err
	}
	e.ClaimKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return ClaimEntries{}, err
	}
	e.ClaimValues = fromVec(raw)
	if e.WithdrawalProof, err = r.getBytes(); err != nil {
		return ClaimEntries{}, err
	}
	if e.ClaimSideProof, err = r.getBytes(); err != nil {
		return ClaimEntries{}, err
	}
	if e.Action, err = r.getAction(); err != nil {
		return ClaimEntries{}, err
	}
	return e, nil
}

// UpdateEntries is the entries blob for an Update operation (tag 5).
type UpdateEntries struct {
	HoldKeys      []smt.Key32
	HoldOldValues []smt.Value32
	HoldNewValues []smt.Value32
	Proof         smt.CompiledProof
	Action        string
}

func EncodeUpdate(e UpdateEntries) []byte {
	w := newWriter(TagUpdate)
	w.put32Vector(toKeyVec(e.HoldKeys))
	w.put32Vector(toValueVec(e.HoldOldValues))
	w.put32Vector(toValueVec(e.HoldNewValues))
	w.putBytes(e.Proof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeUpdate(blob []byte) (UpdateEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return UpdateEntries{}, err
	}
	if tag != TagUpdate {
		return UpdateEntries{}, errortypes.NewWitnessParseError("not an update entries blob")
	}
	var e UpdateEntries
	var raw [][32]byte
	if raw, err = r.get32Vector(); err != nil {
		return UpdateEntries{}, err
	}
	e.HoldKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return UpdateEntries{}, err
	}
	e.HoldOldValues = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return UpdateEntries{}, err
	}
	e.HoldNewValues = fromVec(raw)
	if e.Proof, err = r.getBytes(); err != nil {
		return UpdateEntries{}, err
	}
	if e.Action, err = r.getAction(); err != nil {
		return UpdateEntries{}, err
	}
	return e, nil
}

// TransferEntries is the entries blob for a Transfer operation (tag 6):
// consumed Withdrawals are marked Claimed and new Withdrawal-v1 leaves
// point at each transfer target. Proof covers the sender tree;
// WithdrawalProof covers the original withdrawal tree the consumed
// leaves came from.
type TransferEntries struct {
	ClaimKeys        []smt.Key32
	ClaimValues      []smt.Value32
	WithdrawalKeys   []smt.Key32
	WithdrawalValues []smt.Value32
	WithdrawalProof  smt.CompiledProof
	Proof            smt.CompiledProof
	Action           string
}

func EncodeTransfer(e TransferEntries) []byte {
	w := newWriter(TagTransfer)
	w.put32Vector(toKeyVec(e.ClaimKeys))
	w.put32Vector(toValueVec(e.ClaimValues))
	w.put32Vector(toKeyVec(e.WithdrawalKeys))
	w.put32Vector(toValueVec(e.WithdrawalValues))
	w.putBytes(e.WithdrawalProof)
	w.putBytes(e.Proof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeTransfer(blob []byte) (TransferEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return TransferEntries{}, err
	}
	if tag != TagTransfer {
		return TransferEntries{}, errortypes.NewWitnessParseError("not a transfer entries blob")
	}
	var e TransferEntries
	var raw [][32]byte
	if raw, err = r.get32Vector(); err != nil {
		return TransferEntries{}, err
	}
	e.ClaimKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return TransferEntries{}, err
	}
	e.ClaimValues = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return TransferEntries{}, err
	}
	e.WithdrawalKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return TransferEntries{}, err
	}
	e.WithdrawalValues = fromVec(raw)
	if e.WithdrawalProof, err = r.getBytes(); err != nil {
		return TransferEntries{}, err
	}
	if e.Proof, err = r.getBytes(); err != nil {
		return TransferEntries{}, err
	}
	if e.Action, err = r.getAction(); err != nil {
		return TransferEntries{}, err
	}
	return e, nil
}

// ClaimUpdateEntries is the entries blob for a ClaimUpdate composite
// operation (tag 7): a Claim and an Update applied in one atomic
// update-set on the claim-side tree, with an extra old_info record per
// item (the Hold value the item would have carried absent the update).
type ClaimUpdateEntries struct {
	HoldKeys        []smt.Key32
	HoldOldInfo     []smt.Value32
	HoldNewValues   []smt.Value32
	ClaimKeys       []smt.Key32
	ClaimValues     []smt.Value32
	WithdrawalProof smt.CompiledProof
	Proof           smt.CompiledProof
	Action          string
}

func EncodeClaimUpdate(e ClaimUpdateEntries) []byte {
	w := newWriter(TagClaimUpdate)
	w.put32Vector(toKeyVec(e.HoldKeys))
	w.put32Vector(toValueVec(e.HoldOldInfo))
	w.put32Vector(toValueVec(e.HoldNewValues))
	w.put32Vector(toKeyVec(e.ClaimKeys))
	w.put32Vector(toValueVec(e.ClaimValues))
	w.putBytes(e.WithdrawalProof)
	w.putBytes(e.Proof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeClaimUpdate(blob []byte) (ClaimUpdateEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return ClaimUpdateEntries{}, err
	}
	if tag != TagClaimUpdate {
		return ClaimUpdateEntries{}, errortypes.NewWitnessParseError("not a claim-update entries blob")
	}
	var e ClaimUpdateEntries
	var raw [][32]byte
	if raw, err = r.get32Vector(); err != nil {
		return ClaimUpdateEntries{}, err
	}
	e.HoldKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return ClaimUpdateEntries{}, err
	}
	e.HoldOldInfo = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return ClaimUpdateEntries{}, err
	}
	e.HoldNewValues = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return ClaimUpdateEntries{}, err
	}
	e.ClaimKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return ClaimUpdateEntries{}, err
	}
	e.ClaimValues = fromVec(raw)
	if e.WithdrawalProof, err = r.getBytes(); err != nil {
		return ClaimUpdateEntries{}, err
	}
	if e.Proof, err = r.getBytes(); err != nil {
		return ClaimUpdateEntries{}, err
	}
	if e.Action, err = r.getAction(); err != nil {
		return ClaimUpdateEntries{}, err
	}
	return e, nil
}

// TransferUpdateEntries is the entries blob for a TransferUpdate
// composite operation (tag 8): a Transfer and an Update applied in one
// atomic update-set, carrying an old_info record per item.
type TransferUpdateEntries struct {
	ClaimKeys        []smt.Key32
	ClaimValues      []smt.Value32
	OldInfo          []smt.Value32
	WithdrawalKeys   []smt.Key32
	WithdrawalValues []smt.Value32
	WithdrawalProof  smt.CompiledProof
	Proof            smt.CompiledProof
	Action           string
}

func EncodeTransferUpdate(e TransferUpdateEntries) []byte {
	w := newWriter(TagTransferUpdate)
	w.put32Vector(toKeyVec(e.ClaimKeys))
	w.put32Vector(toValueVec(e.ClaimValues))
	w.put32Vector(toValueVec(e.OldInfo))
	w.put32Vector(toKeyVec(e.WithdrawalKeys))
	w.put32Vector(toValueVec(e.WithdrawalValues))
	w.putBytes(e.WithdrawalProof)
	w.putBytes(e.Proof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeTransferUpdate(blob []byte) (TransferUpdateEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return TransferUpdateEntries{}, err
	}
	if tag != TagTransferUpdate {
		return TransferUpdateEntries{}, errortypes.NewWitnessParseError("not a transfer-update entries blob")
	}
	var e TransferUpdateEntries
	var raw [][32]byte
	if raw, err = r.get32Vector(); err != nil {
		return TransferUpdateEntries{}, err
	}
	e.ClaimKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return TransferUpdateEntries{}, err
	}
	e.ClaimValues = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return TransferUpdateEntries{}, err
	}
	e.OldInfo = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return TransferUpdateEntries{}, err
	}
	e.WithdrawalKeys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return TransferUpdateEntries{}, err
	}
	e.WithdrawalValues = fromVec(raw)
	if e.WithdrawalProof, err = r.getBytes(); err != nil {
		return TransferUpdateEntries{}, err
	}
	if e.Proof, err = r.getBytes(); err != nil {
		return TransferUpdateEntries{}, err
	}
	if e.Action, err = r.getAction(); err != nil {
		return TransferUpdateEntries{}, err
	}
	return e, nil
}

// SubkeyEntries is the entries blob for a subkey-registration operation
// (tag 9, spec §4.ext).
type SubkeyEntries struct {
	Keys   []smt.Key32
	Values []smt.Value32
	Proof  smt.CompiledProof
	Action string
}

func EncodeSubkey(e SubkeyEntries) []byte {
	w := newWriter(TagSubkey)
	w.put32Vector(toKeyVec(e.Keys))
	w.put32Vector(toValueVec(e.Values))
	w.putBytes(e.Proof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeSubkey(blob []byte) (SubkeyEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return SubkeyEntries{}, err
	}
	if tag != TagSubkey {
		return SubkeyEntries{}, errortypes.NewWitnessParseError("not a subkey entries blob")
	}
	var e SubkeyEntries
	var raw [][32]byte
	if raw, err = r.get32Vector(); err != nil {
		return SubkeyEntries{}, err
	}
	e.Keys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return SubkeyEntries{}, err
	}
	e.Values = fromVec(raw)
	if e.Proof, err = r.getBytes(); err != nil {
		return SubkeyEntries{}, err
	}
	if e.Action, err = r.getAction(); err != nil {
		return SubkeyEntries{}, err
	}
	return e, nil
}

// SocialEntries is the entries blob for a social-recovery-registration
// operation (tag 10, spec §4.ext).
type SocialEntries struct {
	Keys   []smt.Key32
	Values []smt.Value32
	Proof  smt.CompiledProof
	Action string
}

func EncodeSocial(e SocialEntries) []byte {
	w := newWriter(TagSocial)
	w.put32Vector(toKeyVec(e.Keys))
	w.put32Vector(toValueVec(e.Values))
	w.putBytes(e.Proof)
	w.putAction(e.Action)
	return w.bytes()
}

func DecodeSocial(blob []byte) (SocialEntries, error) {
	r, tag, err := newReader(blob)
	if err != nil {
		return SocialEntries{}, err
	}
	if tag != TagSocial {
		return SocialEntries{}, errortypes.NewWitnessParseError("not a social entries blob")
	}
	var e SocialEntries
	var raw [][32]byte
	if raw, err = r.get32Vector(); err != nil {
		return SocialEntries{}, err
	}
	e.Keys = fromVec(raw)
	if raw, err = r.get32Vector(); err != nil {
		return SocialEntries{}, err
	}
	e.Values = fromVec(raw)
	if e.Proof, err = r.getBytes(); err != nil {
		return SocialEntries{}, err
	}
	if e.Action, err = r.getAction(); err != nil {
		return SocialEntries{}, err
	}
	return e, nil
}
