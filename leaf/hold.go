// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leaf

// Hold holds the decoded contents of a Hold leaf: the NFT identified by
// (cota_id, token_index) together with its mutable configure/state/
// characteristic fields.
type Hold struct {
	CotaID         [cotaIDLen]byte
	TokenIndex     uint32
	Configure      byte
	State          byte
	Characteristic [charLen]byte
}

// EncodeHoldKey builds the key for a Hold leaf: tag ‖ cota_id ‖
// token_index, zero-padded to 32 bytes.
func EncodeHoldKey(cotaID []byte, tokenIndex uint32) (Key32, error) {
	if err := checkLen("cota_id", cotaID, cotaIDLen); err != nil {
		return Key32{}, err
	}
	body := make([]byte, 0, cotaIDLen+tokenIndexLen)
	body = append(body, cotaID...)
	body = append(body, beUint32(tokenIndex)...)
	return packTagged(TagHold, body), nil
}

// EncodeHoldValue builds the value for a Hold leaf: configure ‖ state ‖
// characteristic, zero-padded to 32 bytes. Any byte pattern for
// characteristic is accepted provided it is exactly 20 bytes.
func EncodeHoldValue(configure, state byte, characteristic []byte) (Value32, error) {
	if err := checkLen("characteristic", characteristic, charLen); err != nil {
		return Value32{}, err
	}
	var out Value32
	out[0] = configure
	out[1] = state
	copy(out[2:2+charLen], characteristic)
	return out, nil
}

// HoldInfo returns the 22-byte "cota_info" preimage (configure ‖ state ‖
// characteristic) embedded in a Hold value, unpadded. Withdrawal leaves
// hash this preimage alongside the out_point and receiver lock script.
func HoldInfo(configure, state byte, characteristic []byte) ([]byte, error) {
	if err := checkLen("characteristic", characteristic, charLen); err != nil {
		return nil, err
	}
	info := make([]byte, 0, 2+charLen)
	info = append(info, configure, state)
	info = append(info, characteristic...)
	return info, nil
}

// DecodeHoldValue parses a Hold leaf value back into its fields.
func DecodeHoldValue(value Value32) (configure, state byte, characteristic [charLen]byte) {
	configure = value[0]
	state = value[1]
	copy(characteristic[:], value[2:2+charLen])
	return
}

// ZeroHoldValue is the value written at a Hold key to clear it (spec
// invariant 2: a move between Hold and Withdrawal must clear one half of
// the pair within the same update batch).
var ZeroHoldValue = Value32{}
