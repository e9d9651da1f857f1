// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainfacade implements the external chain facade (component
// C9): a JSON-RPC client for the CKB node and indexer that the history
// loader and chained-transfer builders consult for on-chain state.
package chainfacade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/decred/dcrd/lru"

	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/hash"
)

// withdrawInfoCacheSize bounds the number of historical get_withdraw_info
// results the client keeps around. Unlike the current SMT root, a
// withdraw-info result at a given (block, lock hash) never changes once
// the transaction that produced it confirms, so it is safe to cache
// indefinitely up to this capacity.
const withdrawInfoCacheSize = 4096

// log is a logger that is initialized with no output filters. The
// package will not perform any logging by default until the caller
// requests it.
var log btclog.Logger

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}

// maxRetries bounds the implicit retry the transport wrapper performs
// on ChainRPCError/IndexerError, per spec §7.
const maxRetries = 3

// WithdrawInfo is the full structure C9's get_withdraw_info assembles
// for embedding in a chained-transfer entries blob.
type WithdrawInfo struct {
	RawTx       []byte
	TxProof     []byte
	BlockHash   hash.Hash256
	Witnesses   [][]byte
	OutputIndex uint32
}

// Client is a facade over one CKB node endpoint and one indexer
// endpoint, both spoken as JSON-RPC 2.0 over HTTP.
type Client struct {
	httpClient   *http.Client
	nodeURL      string
	indexerURL   string
	typeCodeHash hash.Hash256
	withdrawInfo *lru.Map[string, WithdrawInfo]
}

// NewClient builds a Client against the given node/indexer URLs. The
// CoTA type-script code-hash is network-specific (spec §6) and supplied
// by the caller (see internal/config for the mainnet/testnet constants).
func NewClient(nodeURL, indexerURL string, typeCodeHash hash.Hash256) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		nodeURL:      nodeURL,
		indexerURL:   indexerURL,
		typeCodeHash: typeCodeHash,
		withdrawInfo: lru.NewMap[string, WithdrawInfo](withdrawInfoCacheSize),
	}
}

func withdrawInfoCacheKey(blockNumber uint64, withdrawLockHash hash.Hash256) string {
	return fmt.Sprintf("%d:%x", blockNumber, withdrawLockHash)
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call performs one JSON-RPC round trip, making up to maxRetries attempts
// in all, on any failure of the previous one and with no delay between
// attempts (spec §7's "retried implicitly
// by the transport wrapper with bounded attempts").
func (c *Client) call(ctx context.Context, url, method string, params []interface{}, out interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := c.callOnce(ctx, url, method, params, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if log != nil {
			log.Debugf("chainfacade: %s attempt %d/%d failed: %v", method, attempt, maxRetries, err)
		}
	}
	return errortypes.NewChainRPCError(fmt.Sprintf("%s failed after %d attempts", method, maxRetries), lastErr)
}

func (c *Client) callOnce(ctx context.Context, url, method string, params []interface{}, out interface{}) error {
	reqBody, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return err
	}
	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}

// GetCotaSmtRoot queries the indexer for lockScript's most recent
// SMT-root commitment cell. Returns (root, false, nil) when no such
// cell exists (the decoded cell data has length 1, the "no root"
// sentinel-only form).
func (c *Client) GetCotaSmtRoot(ctx context.Context, lockScript []byte) (hash.Hash256, bool, error) {
	var cellData []byte
	if err := c.call(ctx, c.indexerURL, "get_cells", cotaCellSearchParams(lockScript, c.typeCodeHash), &cellData); err != nil {
		return hash.Hash256{}, false, err
	}
	switch len(cellData) {
	case 1:
		return hash.Hash256{}, false, nil
	case 33:
		var root hash.Hash256
		copy(root[:], cellData[1:33])
		return root, true, nil
	default:
		return hash.Hash256{}, false, errortypes.NewChainRPCError(
			fmt.Sprintf("unexpected cota smt root cell length %d", len(cellData)), nil)
	}
}

// GetIndexerTipBlockNumber returns the indexer's current tip height.
func (c *Client) GetIndexerTipBlockNumber(ctx context.Context) (uint64, error) {
	var tip uint64
	if err := c.call(ctx, c.indexerURL, "get_tip_block_number", nil, &tip); err != nil {
		return 0, err
	}
	return tip, nil
}

// GetWithdrawInfo locates the transaction that produced the given
// withdrawal owner's most recent Withdrawal cell as of blockNumber, and
// returns the full inclusion-proof structure for embedding in a
// chained-transfer entries blob.
func (c *Client) GetWithdrawInfo(ctx context.Context, blockNumber uint64, withdrawLockHash hash.Hash256) (WithdrawInfo, error) {
	key := withdrawInfoCacheKey(blockNumber, withdrawLockHash)
	if cached, ok := c.withdrawInfo.Lookup(key); ok {
		return cached, nil
	}

	var info WithdrawInfo
	params := []interface{}{blockNumber, fmt.Sprintf("0x%x", withdrawLockHash[:])}
	if err := c.call(ctx, c.nodeURL, "get_withdraw_info", params, &info); err != nil {
		return WithdrawInfo{}, err
	}
	c.withdrawInfo.Add(key, info)
	return info, nil
}

func cotaCellSearchParams(lockScript []byte, typeCodeHash hash.Hash256) []interface{} {
	return []interface{}{
		map[string]interface{}{
			"script":      fmt.Sprintf("0x%x", lockScript),
			"script_type": "lock",
			"filter": map[string]interface{}{
				"script": map[string]interface{}{
					"code_hash": fmt.Sprintf("0x%x", typeCodeHash[:]),
					"hash_type": "type",
					"args":      "0x",
				},
			},
		},
	}
}
