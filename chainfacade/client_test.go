// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainfacade

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nervina-labs/cota-aggregator-go/hash"
)

func rpcServer(t *testing.T, result interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := json.Marshal(result)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + string(raw) + `}`))
	}))
}

func TestGetCotaSmtRootNoRootSentinel(t *testing.T) {
	srv := rpcServer(t, []byte{0x00})
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, hash.Hash256{})
	_, ok, err := c.GetCotaSmtRoot(context.Background(), []byte{0x01})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetCotaSmtRootPresent(t *testing.T) {
	cellData := make([]byte, 33)
	cellData[0] = 0x01
	for i := range 32 {
		cellData[1+i] = byte(i)
	}
	srv := rpcServer(t, cellData)
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, hash.Hash256{})
	root, ok, err := c.GetCotaSmtRoot(context.Background(), []byte{0x01})
	require.NoError(t, err)
	require.True(t, ok)
	for i := range 32 {
		require.Equal(t, byte(i), root[i])
	}
}

func TestGetCotaSmtRootBadLengthIsFatal(t *testing.T) {
	srv := rpcServer(t, []byte{0x01, 0x02, 0x03})
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, hash.Hash256{})
	_, _, err := c.GetCotaSmtRoot(context.Background(), []byte{0x01})
	require.Error(t, err)
}

func TestGetIndexerTipBlockNumber(t *testing.T) {
	srv := rpcServer(t, 12345)
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, hash.Hash256{})
	tip, err := c.GetIndexerTipBlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(12345), tip)
}

func TestCallRetriesThenFails(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "http://127.0.0.1:1", hash.Hash256{})
	_, err := c.GetIndexerTipBlockNumber(context.Background())
	require.Error(t, err)
}

func TestGetWithdrawInfoIsCachedAcrossCalls(t *testing.T) {
	srv := rpcServer(t, WithdrawInfo{OutputIndex: 7})
	c := NewClient(srv.URL, srv.URL, hash.Hash256{})

	first, err := c.GetWithdrawInfo(context.Background(), 100, hash.Hash256{0x01})
	require.NoError(t, err)
	require.Equal(t, uint32(7), first.OutputIndex)

	// A second call for the same (block, lock hash) must not hit the
	// network: closing the server would turn any further RPC round
	// trip into an error.
	srv.Close()
	second, err := c.GetWithdrawInfo(context.Background(), 100, hash.Hash256{0x01})
	require.NoError(t, err)
	require.Equal(t, first, second)
}
