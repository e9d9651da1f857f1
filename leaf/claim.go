// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leaf

import (
	"github.com/nervina-labs/cota-aggregator-go/hash"
)

// claimValuePadByte is the padding byte that fills every position past the
// leading version byte of a Claim value (spec §3).
const claimValuePadByte = 0xFF

// EncodeClaimKey builds a Claim key: Blake2b-256 of
// {tag ‖ cota_id ‖ token_index ‖ out_point}. It shares its preimage shape
// with EncodeWithdrawalKeyV1 but under TagClaim, so a Claim and the
// Withdrawal it settles never collide even though both derive from the
// same (cota_id, token_index, out_point) triple.
func EncodeClaimKey(cotaID []byte, tokenIndex uint32, outPoint []byte) (Key32, error) {
	if err := checkLen("cota_id", cotaID, cotaIDLen); err != nil {
		return Key32{}, err
	}
	if err := checkLen("out_point", outPoint, outPointLen); err != nil {
		return Key32{}, err
	}
	body := make([]byte, 0, 2+cotaIDLen+tokenIndexLen+outPointLen)
	body = append(body, beUint16(TagClaim)...)
	body = append(body, cotaID...)
	body = append(body, beUint32(tokenIndex)...)
	body = append(body, outPoint...)
	return hash.Hash(body), nil
}

// EncodeClaimValue builds a Claim value: the settled Withdrawal's version
// byte followed by 31 bytes of 0xFF (spec invariant 3/4 and property P8).
func EncodeClaimValue(withdrawalVersion uint8) Value32 {
	var out Value32
	out[0] = withdrawalVersion
	for i := 1; i < len(out); i++ {
		out[i] = claimValuePadByte
	}
	return out
}

// DecodeClaimValue extracts the settled Withdrawal's version byte from a
// Claim value. It does not validate the padding; the caller that cares
// about well-formedness (e.g. a reconciliation check) should do so
// explicitly via IsWellFormedClaimValue.
func DecodeClaimValue(value Value32) (version uint8) {
	return value[0]
}

// IsWellFormedClaimValue reports whether value matches the literal pattern
// produced by EncodeClaimValue for some version byte.
func IsWellFormedClaimValue(value Value32) bool {
	for i := 1; i < len(value); i++ {
		if value[i] != claimValuePadByte {
			return false
		}
	}
	return true
}
