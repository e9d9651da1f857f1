// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// hexBytes decodes a 0x-prefixed (or bare) hex string into a byte slice.
func hexBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}

// hexArray20 decodes s into a 20-byte array, erroring on length mismatch.
func hexArray20(s string) ([20]byte, error) {
	var out [20]byte
	b, err := hexBytes(s)
	if err != nil {
		return out, err
	}
	if len(b) != 20 {
		return out, fmt.Errorf("expected 20 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func hexArray24(s string) ([24]byte, error) {
	var out [24]byte
	b, err := hexBytes(s)
	if err != nil {
		return out, err
	}
	if len(b) != 24 {
		return out, fmt.Errorf("expected 24 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func toHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// parseUint accepts decimal string, 0x-prefixed hex, or a bare number,
// per spec §6's "integer fields accept decimal string, 0x-prefixed hex,
// or raw number".
func parseUint(s string, bitSize int) (uint64, error) {
	if strings.HasPrefix(s, "0x") {
		return strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, bitSize)
	}
	return strconv.ParseUint(s, 10, bitSize)
}
