// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package smt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSubProofExtraction is scenario S6: given a compiled proof covering
// three leaves, extracting a sub-proof for one of them must still verify
// against the same root with only that one leaf.
func TestSubProofExtraction(t *testing.T) {
	tree := New(NewMemStore())

	leaves := []KV{
		{Key: randKeyFixed(1), Value: randValueFixed(1)},
		{Key: randKeyFixed(2), Value: randValueFixed(2)},
		{Key: randKeyFixed(3), Value: randValueFixed(3)},
	}
	require.NoError(t, tree.UpdateAll(leaves))

	keys := []Key32{leaves[0].Key, leaves[1].Key, leaves[2].Key}
	proof, err := tree.MerkleProof(keys)
	require.NoError(t, err)
	fullCompiled, err := proof.Compile(leaves)
	require.NoError(t, err)
	require.True(t, Verify(tree.Root(), leaves, fullCompiled))

	target := leaves[1]
	subCompiled, err := ExtractSubProof(leaves, fullCompiled, []Key32{target.Key})
	require.NoError(t, err)
	require.True(t, Verify(tree.Root(), []KV{target}, subCompiled))

	// The sub-proof must not validate an unrelated leaf.
	require.False(t, Verify(tree.Root(), []KV{leaves[0]}, subCompiled))
}

func TestExtractSubProofErrorsOnMissingKey(t *testing.T) {
	tree := New(NewMemStore())
	leaves := []KV{{Key: randKeyFixed(1), Value: randValueFixed(1)}}
	require.NoError(t, tree.UpdateAll(leaves))

	proof, err := tree.MerkleProof([]Key32{leaves[0].Key})
	require.NoError(t, err)
	compiled, err := proof.Compile(leaves)
	require.NoError(t, err)

	_, err = ExtractSubProof(leaves, compiled, []Key32{randKeyFixed(99)})
	require.Error(t, err)
}

func TestVerifyRejectsTruncatedProof(t *testing.T) {
	tree := New(NewMemStore())
	leaves := []KV{{Key: randKeyFixed(5), Value: randValueFixed(5)}}
	require.NoError(t, tree.UpdateAll(leaves))

	proof, err := tree.MerkleProof([]Key32{leaves[0].Key})
	require.NoError(t, err)
	compiled, err := proof.Compile(leaves)
	require.NoError(t, err)

	truncated := compiled[:len(compiled)-1]
	require.False(t, Verify(tree.Root(), leaves, truncated))
}
