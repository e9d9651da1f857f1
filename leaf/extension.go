// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leaf

import (
	"github.com/nervina-labs/cota-aggregator-go/hash"
)

const pubkeyHashLen = 20

// Subkey holds the decoded contents of a Subkey extension leaf: a
// secondary signing key scoped to an ext_data permission bitmask, as
// registered for social-recovery and mobile-subkey unlock flows.
type Subkey struct {
	ExtData    uint32
	AlgIndex   uint16
	PubkeyHash [pubkeyHashLen]byte
	Version    uint8
}

// EncodeSubkeyKey builds the key for a Subkey leaf: Blake2b-256 of
// {tag ‖ ext_data ‖ alg_index ‖ pubkey_hash}.
func EncodeSubkeyKey(extData uint32, algIndex uint16, pubkeyHash []byte) (Key32, error) {
	if err := checkLen("pubkey_hash", pubkeyHash, pubkeyHashLen); err != nil {
		return Key32{}, err
	}
	body := make([]byte, 0, 2+4+2+pubkeyHashLen)
	body = append(body, beUint16(TagSubkey)...)
	body = append(body, beUint32(extData)...)
	body = append(body, beUint16(algIndex)...)
	body = append(body, pubkeyHash...)
	return hash.Hash(body), nil
}

// EncodeSubkeyValue builds the value for a Subkey leaf: Blake2b-256 of
// {version ‖ ext_data ‖ alg_index ‖ pubkey_hash}.
func EncodeSubkeyValue(version uint8, extData uint32, algIndex uint16, pubkeyHash []byte) (Value32, error) {
	if err := checkLen("pubkey_hash", pubkeyHash, pubkeyHashLen); err != nil {
		return Value32{}, err
	}
	body := make([]byte, 0, 1+4+2+pubkeyHashLen)
	body = append(body, version)
	body = append(body, beUint32(extData)...)
	body = append(body, beUint16(algIndex)...)
	body = append(body, pubkeyHash...)
	return hash.Hash(body), nil
}

// SocialRecovery holds the decoded contents of a Social-recovery extension
// leaf: a guardian/friend threshold policy that can re-derive an owner's
// lock after proving control of `must` of its `signers`.
type SocialRecovery struct {
	RecoveryMode uint8
	Must         uint8
	Total        uint8
	Signers      [][]byte // each entry is a pubkey hash
}

// EncodeSocialKey builds the key for a Social-recovery leaf: Blake2b-256
// of {tag ‖ recovery_mode ‖ must ‖ total ‖ signers...}.
func EncodeSocialKey(recoveryMode, must, total uint8, signers [][]byte) Key32 {
	body := make([]byte, 0, 2+3+20*len(signers))
	body = append(body, beUint16(TagSocial)...)
	body = append(body, recoveryMode, must, total)
	for _, s := range signers {
		body = append(body, s...)
	}
	return hash.Hash(body)
}

// EncodeSocialValue builds the value for a Social-recovery leaf:
// Blake2b-256 over the concatenated signer pubkey hashes.
func EncodeSocialValue(signers [][]byte) Value32 {
	body := make([]byte, 0, 20*len(signers))
	for _, s := range signers {
		body = append(body, s...)
	}
	return hash.Hash(body)
}
