// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leaf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// TestDefineUnlimitedKnownAnswer exercises scenario S1 from the spec: an
// unlimited Define (total=0) must produce the key
// 0x8100 ‖ cota_id ‖ 10 zero bytes and a value that is the zero-padded
// encoding of (total ‖ issued ‖ configure).
func TestDefineUnlimitedKnownAnswer(t *testing.T) {
	cotaID := repeat(0xf1, 20)
	cotaID[0] = 0xf1
	copy(cotaID, []byte{0xf1, 0x4a, 0xca, 0x18, 0xaa, 0xe9, 0xdf, 0x75, 0x3a, 0xf3, 0x04, 0x46, 0x9d, 0x8f, 0x4e, 0xbb, 0xc1, 0x74, 0xa9, 0x38})

	key, err := EncodeDefineKey(cotaID)
	require.NoError(t, err)
	require.Equal(t, byte(0x81), key[0])
	require.Equal(t, byte(0x00), key[1])
	require.True(t, bytes.Equal(key[2:22], cotaID))
	require.True(t, bytes.Equal(key[22:], make([]byte, 10)))

	value := EncodeDefineValue(0, 0, 0x00)
	require.True(t, bytes.Equal(value[:], make([]byte, 32)))

	total, issued, configure := DecodeDefineValue(value)
	require.Zero(t, total)
	require.Zero(t, issued)
	require.Zero(t, configure)
}

func TestDefineKeyRejectsBadCotaIDLength(t *testing.T) {
	_, err := EncodeDefineKey(make([]byte, 19))
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "cota_id", ce.Field)
}

func TestHoldKeyRejectsBadCotaIDLength(t *testing.T) {
	// token_index is typed uint32 at the API boundary; the length
	// rejection applies to the raw cota_id/out_point byte inputs instead.
	_, err := EncodeHoldKey(make([]byte, 21), 1)
	require.Error(t, err)
}

func TestWithdrawalValueRejectsBadOutPointLength(t *testing.T) {
	cotaID := make([]byte, 20)
	characteristic := make([]byte, 20)
	_, err := EncodeWithdrawalValueV0(0, 0, characteristic, make([]byte, 23), []byte("to-lock"))
	require.Error(t, err)

	_, err = EncodeWithdrawalKeyV1(cotaID, 1, make([]byte, 25))
	require.Error(t, err)
}

func TestClaimValueEncodesVersionWithFFPadding(t *testing.T) {
	v0 := EncodeClaimValue(0)
	require.Equal(t, byte(0x00), v0[0])
	v1 := EncodeClaimValue(1)
	require.Equal(t, byte(0x01), v1[0])
	for _, v := range [][32]byte{v0, v1} {
		for i := 1; i < 32; i++ {
			require.Equal(t, byte(0xFF), v[i])
		}
		require.True(t, IsWellFormedClaimValue(v))
	}
}

// TestHoldValueRoundTrip is property P1 restricted to the Hold class:
// encode then decode recovers the original structurally-valid input.
func TestHoldValueRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		configure := byte(rapid.IntRange(0, 255).Draw(rt, "configure"))
		state := byte(rapid.IntRange(0, 255).Draw(rt, "state"))
		characteristic := rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(rt, "characteristic")

		value, err := EncodeHoldValue(configure, state, characteristic)
		require.NoError(rt, err)

		gotConfigure, gotState, gotChar := DecodeHoldValue(value)
		require.Equal(rt, configure, gotConfigure)
		require.Equal(rt, state, gotState)
		require.True(rt, bytes.Equal(gotChar[:], characteristic))
	})
}

// TestDefineValueRoundTrip is property P1 restricted to the Define class.
func TestDefineValueRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		total := uint32(rapid.IntRange(0, 1<<31).Draw(rt, "total"))
		issued := uint32(rapid.IntRange(0, 1<<31).Draw(rt, "issued"))
		configure := byte(rapid.IntRange(0, 255).Draw(rt, "configure"))

		value := EncodeDefineValue(total, issued, configure)
		gotTotal, gotIssued, gotConfigure := DecodeDefineValue(value)
		require.Equal(rt, total, gotTotal)
		require.Equal(rt, issued, gotIssued)
		require.Equal(rt, configure, gotConfigure)
	})
}

// TestWithdrawalKeyVersionsDiffer ensures a v0 and v1 key for the same
// logical (cota_id, token_index) never collide, since v1 additionally
// folds in the out_point.
func TestWithdrawalKeyVersionsDiffer(t *testing.T) {
	cotaID := make([]byte, 20)
	outPoint := repeat(0xAA, 24)

	keyV0, err := EncodeWithdrawalKeyV0(cotaID, 1)
	require.NoError(t, err)
	keyV1, err := EncodeWithdrawalKeyV1(cotaID, 1, outPoint)
	require.NoError(t, err)
	require.NotEqual(t, keyV0, keyV1)
}

func TestClaimKeySharesPreimageShapeWithWithdrawalV1(t *testing.T) {
	cotaID := make([]byte, 20)
	outPoint := repeat(0xAA, 24)

	withdrawalKey, err := EncodeWithdrawalKeyV1(cotaID, 1, outPoint)
	require.NoError(t, err)
	claimKey, err := EncodeClaimKey(cotaID, 1, outPoint)
	require.NoError(t, err)
	require.NotEqual(t, withdrawalKey, claimKey, "different tags must yield different digests")
}

func TestSubkeyRoundTripKeyIsDeterministic(t *testing.T) {
	pubkeyHash := repeat(0xBB, 20)
	k1, err := EncodeSubkeyKey(1, 0, pubkeyHash)
	require.NoError(t, err)
	k2, err := EncodeSubkeyKey(1, 0, pubkeyHash)
	require.NoError(t, err)
	require.Equal(t, k1, k2)

	_, err = EncodeSubkeyKey(1, 0, make([]byte, 19))
	require.Error(t, err)
}

func TestSocialKeyChangesWithSigners(t *testing.T) {
	a := EncodeSocialKey(0, 2, 3, [][]byte{repeat(1, 20), repeat(2, 20), repeat(3, 20)})
	b := EncodeSocialKey(0, 2, 3, [][]byte{repeat(1, 20), repeat(2, 20), repeat(4, 20)})
	require.NotEqual(t, a, b)
}
