// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package leaf implements the key/value encoding scheme for the sparse
// Merkle tree leaves of the CoTA aggregator: Define, Hold, Withdrawal,
// Claim, and the Subkey/Social extension classes, across both wire-format
// versions (v0/v1) that the protocol has carried.
//
// Every exported Encode* function here is pure and total over
// structurally-valid input: it never touches the network, a database, or
// the SMT store. Encode* functions reject malformed input lengths with a
// *CodecError so callers can distinguish "bad input" from "bug". Decode*
// functions take fixed-size 32-byte values and never fail; they perform
// no length or tag validation.
package leaf

import (
	"encoding/binary"
	"fmt"

	"github.com/nervina-labs/cota-aggregator-go/hash"
)

// Leaf class tags. The high two bytes of every non-extension, non-claim key
// identify which class the leaf belongs to (spec invariant 1).
const (
	TagDefine     uint16 = 0x8100
	TagHold       uint16 = 0x8101
	TagWithdrawal uint16 = 0x8102
	TagClaim      uint16 = 0x8103
	TagSubkey     uint16 = 0x8104
	TagSocial     uint16 = 0x8105
)

// Withdrawal/Claim version numbers. Version 0 keys a Withdrawal by
// (cota_id, token_index) alone; version 1 folds the out_point into the key
// so that multiple historical withdrawals of the same token can coexist in
// one tree across their lifetimes.
const (
	VersionV0 uint8 = 0
	VersionV1 uint8 = 1
)

const (
	cotaIDLen     = 20
	tokenIndexLen = 4
	outPointLen   = 24
	charLen       = 20
)

// Key32 and Value32 are the fixed-width key/value pair every SMT leaf is
// built from.
type Key32 = hash.Hash256
type Value32 = hash.Hash256

// CodecError reports a structurally invalid input to a leaf encoder —
// the wrong length for a fixed-width field. It is the only error any
// function in this package returns.
type CodecError struct {
	Field string
	Want  int
	Got   int
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("leaf codec: field %q must be %d bytes, got %d", e.Field, e.Want, e.Got)
}

func checkLen(field string, b []byte, want int) error {
	if len(b) != want {
		return &CodecError{Field: field, Want: want, Got: len(b)}
	}
	return nil
}

// packTagged lays out tag(2) followed by body, zero-padded to 32 bytes.
// It panics if body is already longer than 30 bytes — a programmer error,
// since every call site here supplies a fixed, known-short body.
func packTagged(tag uint16, body []byte) Key32 {
	if len(body) > 30 {
		panic("leaf: tagged body exceeds 30 bytes")
	}
	var out Key32
	binary.BigEndian.PutUint16(out[0:2], tag)
	copy(out[2:], body)
	return out
}

// beUint32 returns the 4-byte big-endian encoding of v.
func beUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// beUint16 returns the 2-byte big-endian encoding of v.
func beUint16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}
