// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package smt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func randKey(rt *rapid.T, label string) Key32 {
	b := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(rt, label)
	var k Key32
	copy(k[:], b)
	return k
}

func randValue(rt *rapid.T, label string) Value32 {
	// Avoid generating the all-zero value, which is indistinguishable
	// from "absent" and would make P2/P3 assertions about distinct
	// leaves ambiguous.
	b := rapid.SliceOfN(rapid.Byte(), 32, 32).Filter(func(b []byte) bool {
		for _, x := range b {
			if x != 0 {
				return true
			}
		}
		return false
	}).Draw(rt, label)
	var v Value32
	copy(v[:], b)
	return v
}

func TestEmptyTreeRootIsZero(t *testing.T) {
	tr := New(NewMemStore())
	require.Equal(t, Zero, tr.Root())
}

// TestTreeDeterminism is property P2: for any set of leaves and any two
// permutations, the final root is the same.
func TestTreeDeterminism(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		keys := make(map[Key32]Value32, n)
		for len(keys) < n {
			k := randKey(rt, "key")
			v := randValue(rt, "value")
			keys[k] = v
		}
		updates := make([]KV, 0, len(keys))
		for k, v := range keys {
			updates = append(updates, KV{Key: k, Value: v})
		}

		tree1 := New(NewMemStore())
		require.NoError(rt, tree1.UpdateAll(updates))

		perm := make([]KV, len(updates))
		copy(perm, updates)
		rand.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		tree2 := New(NewMemStore())
		require.NoError(rt, tree2.UpdateAll(perm))

		require.Equal(rt, tree1.Root(), tree2.Root())
	})
}

// TestProofSoundness is property P3.
func TestProofSoundness(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		all := make(map[Key32]Value32, n)
		for len(all) < n {
			all[randKey(rt, "key")] = randValue(rt, "value")
		}
		updates := make([]KV, 0, len(all))
		for k, v := range all {
			updates = append(updates, KV{Key: k, Value: v})
		}
		tree := New(NewMemStore())
		require.NoError(rt, tree.UpdateAll(updates))

		// T subseteq S: pick a random non-empty subset.
		subsetSize := rapid.IntRange(1, len(updates)).Draw(rt, "subsetSize")
		subset := updates[:subsetSize]

		keys := make([]Key32, len(subset))
		for i, kv := range subset {
			keys[i] = kv.Key
		}
		proof, err := tree.MerkleProof(keys)
		require.NoError(rt, err)
		compiled, err := proof.Compile(subset)
		require.NoError(rt, err)

		require.True(rt, Verify(tree.Root(), subset, compiled))
	})
}

// TestProofNonForgeability is property P4.
func TestProofNonForgeability(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		key := randKey(rt, "key")
		value := randValue(rt, "value")
		forged := randValue(rt, "forged")
		if forged == value {
			forged[0] ^= 0xFF
		}

		tree := New(NewMemStore())
		require.NoError(rt, tree.Update(key, value))

		proof, err := tree.MerkleProof([]Key32{key})
		require.NoError(rt, err)
		compiled, err := proof.Compile([]KV{{Key: key, Value: value}})
		require.NoError(rt, err)

		require.False(rt, Verify(tree.Root(), []KV{{Key: key, Value: forged}}, compiled))
	})
}

// TestOwnerIsolation is property P5, expressed here at the store level:
// two independent trees sharing nothing never observe each other's writes.
func TestOwnerIsolation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		treeA := New(NewMemStore())
		treeB := New(NewMemStore())

		key := randKey(rt, "key")
		value := randValue(rt, "value")

		rootBBefore := treeB.Root()
		require.NoError(rt, treeA.Update(key, value))
		require.Equal(rt, rootBBefore, treeB.Root())
	})
}

func TestUpdateAllLaterDuplicateWins(t *testing.T) {
	tree := New(NewMemStore())
	key := randKeyFixed(1)
	v1 := randValueFixed(1)
	v2 := randValueFixed(2)
	require.NoError(t, tree.UpdateAll([]KV{{Key: key, Value: v1}, {Key: key, Value: v2}}))

	tree2 := New(NewMemStore())
	require.NoError(t, tree2.Update(key, v2))
	require.Equal(t, tree2.Root(), tree.Root())
}

func TestDeletingALeafRestoresDefault(t *testing.T) {
	tree := New(NewMemStore())
	key := randKeyFixed(7)
	value := randValueFixed(7)
	require.NoError(t, tree.Update(key, value))
	require.NotEqual(t, Zero, tree.Root())

	require.NoError(t, tree.Update(key, Zero))
	require.Equal(t, Zero, tree.Root())
}

func randKeyFixed(seed byte) Key32 {
	var k Key32
	for i := range k {
		k[i] = seed
	}
	return k
}

func randValueFixed(seed byte) Value32 {
	var v Value32
	for i := range v {
		v[i] = seed + 1
	}
	return v
}
