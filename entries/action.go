// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entries

import (
	"encoding/binary"
	"fmt"
)

// defineAction builds the literal ASCII action annotation for Define
// (spec §4.7.1): "Create a new NFT collection with " + ("unlimited" or
// the 4-byte big-endian total) + " edition".
func defineAction(total uint32) string {
	if total == 0 {
		return "Create a new NFT collection with unlimited edition"
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], total)
	return fmt.Sprintf("Create a new NFT collection with %s edition", string(b[:]))
}

// mintAction builds the single-withdrawal action annotation for Mint
// (spec §4.7.2): only populated when exactly one withdrawal is minted.
func mintAction(cotaID [20]byte, tokenIndex uint32, toLockScript []byte, count int) string {
	if count != 1 {
		return ""
	}
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], tokenIndex)
	return fmt.Sprintf("Mint the NFT %s%s to %s", cotaID[:], idx[:], toLockScript)
}
