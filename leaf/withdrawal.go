// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leaf

import (
	"github.com/nervina-labs/cota-aggregator-go/hash"
)

// Withdrawal holds the decoded contents of a Withdrawal leaf: which NFT is
// being withdrawn, to which out_point-scoped transaction, to which
// receiving lock script, carrying which prior Hold state.
type Withdrawal struct {
	CotaID             [cotaIDLen]byte
	TokenIndex         uint32
	Configure          byte
	State              byte
	Characteristic     [charLen]byte
	OutPoint           [outPointLen]byte
	ReceiverLockScript []byte
	Version            uint8
}

// EncodeWithdrawalKeyV0 builds the v0 Withdrawal key: tag ‖ cota_id ‖
// token_index, zero-padded to 32 bytes. Identical in shape to a Hold key
// with a different tag — spec invariant 2 relies on this symmetry to move
// a leaf between the two classes.
func EncodeWithdrawalKeyV0(cotaID []byte, tokenIndex uint32) (Key32, error) {
	if err := checkLen("cota_id", cotaID, cotaIDLen); err != nil {
		return Key32{}, err
	}
	body := make([]byte, 0, cotaIDLen+tokenIndexLen)
	body = append(body, cotaID...)
	body = append(body, beUint32(tokenIndex)...)
	return packTagged(TagWithdrawal, body), nil
}

// EncodeWithdrawalValueV0 builds the v0 Withdrawal value: Blake2b-256 of
// {cota_info ‖ out_point ‖ to_lock}.
func EncodeWithdrawalValueV0(configure, state byte, characteristic []byte, outPoint []byte, toLock []byte) (Value32, error) {
	info, err := HoldInfo(configure, state, characteristic)
	if err != nil {
		return Value32{}, err
	}
	if err := checkLen("out_point", outPoint, outPointLen); err != nil {
		return Value32{}, err
	}
	return hash.Hash(info, outPoint, toLock), nil
}

// EncodeWithdrawalKeyV1 builds the v1 Withdrawal key: Blake2b-256 of
// {tag ‖ cota_id ‖ token_index ‖ out_point}. Folding out_point into the key
// lets multiple historical withdrawals of the same (cota_id, token_index)
// coexist, one per spending transaction.
func EncodeWithdrawalKeyV1(cotaID []byte, tokenIndex uint32, outPoint []byte) (Key32, error) {
	if err := checkLen("cota_id", cotaID, cotaIDLen); err != nil {
		return Key32{}, err
	}
	if err := checkLen("out_point", outPoint, outPointLen); err != nil {
		return Key32{}, err
	}
	body := make([]byte, 0, 2+cotaIDLen+tokenIndexLen+outPointLen)
	body = append(body, beUint16(TagWithdrawal)...)
	body = append(body, cotaID...)
	body = append(body, beUint32(tokenIndex)...)
	body = append(body, outPoint...)
	return hash.Hash(body), nil
}

// EncodeWithdrawalValueV1 builds the v1 Withdrawal value: Blake2b-256 of
// {cota_info ‖ to_lock}.
func EncodeWithdrawalValueV1(configure, state byte, characteristic []byte, toLock []byte) (Value32, error) {
	info, err := HoldInfo(configure, state, characteristic)
	if err != nil {
		return Value32{}, err
	}
	return hash.Hash(info, toLock), nil
}
