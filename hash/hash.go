// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package hash provides the domain-separated Blake2b-256 hashing primitives
// shared by every leaf encoding, lock-hash derivation, and sparse Merkle tree
// node combination in the CoTA aggregator.
package hash

import (
	"golang.org/x/crypto/blake2b"
)

// Personalization is the 16-byte Blake2b personalization string used across
// the whole protocol: lock-hash derivation, leaf key/value hashing, and SMT
// inner-node hashing all share it so that a digest computed here can never
// collide with a digest computed by an unrelated Blake2b consumer.
var Personalization = []byte("ckb-default-hash")

// Size is the output length, in bytes, of Hash.
const Size = 32

// Hash256 is a 32-byte Blake2b digest, aliased so call sites can use it as a
// map key and compare with ==.
type Hash256 [Size]byte

// Hash160 is the first 20 bytes of a Hash256, used for lock hashes truncated
// into fixed-width key fields (e.g. CotaId, batch-lock master args).
type Hash160 [20]byte

// Hash computes the domain-separated Blake2b-256 digest of the concatenation
// of all supplied byte spans. It never errors: Blake2b-256 with a
// fixed-length personalization and no key is a total function of its input.
func Hash(spans ...[]byte) Hash256 {
	cfg := &blake2b.Config{
		Size:   Size,
		Person: Personalization,
	}
	hasher, err := blake2b.New(cfg)
	if err != nil {
		panic(err)
	}
	for _, s := range spans {
		_, _ = hasher.Write(s)
	}
	var out Hash256
	copy(out[:], hasher.Sum(nil))
	return out
}

// Hash160Of returns the first 20 bytes of Hash(spans...).
func Hash160Of(spans ...[]byte) Hash160 {
	full := Hash(spans...)
	var out Hash160
	copy(out[:], full[:20])
	return out
}

// Bytes returns the digest as a freshly allocated byte slice.
func (h Hash256) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, h[:])
	return out
}

// IsZero reports whether h is the all-zero digest, the SMT's default leaf
// and empty-tree root value.
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}

// Bytes returns the hash160 as a freshly allocated byte slice.
func (h Hash160) Bytes() []byte {
	out := make([]byte, 20)
	copy(out, h[:])
	return out
}
