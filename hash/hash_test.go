// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	a := Hash([]byte("foo"), []byte("bar"))
	b := Hash([]byte("foo"), []byte("bar"))
	require.Equal(t, a, b)

	c := Hash([]byte("foobar"))
	require.Equal(t, a, c, "Hash concatenates its spans before hashing")
}

func TestHashDiffersOnInput(t *testing.T) {
	a := Hash([]byte("foo"))
	b := Hash([]byte("bar"))
	require.NotEqual(t, a, b)
}

func TestHash160IsPrefixOfHash(t *testing.T) {
	full := Hash([]byte("lock-script-bytes"))
	short := Hash160Of([]byte("lock-script-bytes"))
	require.Equal(t, full[:20], short[:])
}

func TestZeroHash(t *testing.T) {
	var z Hash256
	require.True(t, z.IsZero())

	nz := Hash([]byte{0x00})
	require.False(t, nz.IsZero())
}
