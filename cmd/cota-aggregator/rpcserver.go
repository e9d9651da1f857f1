// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nervina-labs/cota-aggregator-go/entries"
	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/internal/app"
)

// rpcRequest is one JSON-RPC 2.0 call envelope (spec §6).
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// methodResult is the common envelope spec §6 prescribes: the resulting
// SMT root plus the hex-encoded entries blob.
type methodResult struct {
	SmtRootHash string `json:"smt_root_hash"`
	Entries     string `json:"entries"`
}

// methodFunc decodes raw params, drives one operation builder against
// env, and returns the response payload. Parameter validation and
// encoding live entirely in the per-method handler; this file's job is
// strictly dispatch, per spec §1's "deliberately thin" non-goal.
type methodFunc func(ctx context.Context, env *entries.Env, params json.RawMessage) (interface{}, error)

var methodTable = map[string]methodFunc{
	"generate_define_cota_smt":          handleDefine,
	"generate_mint_cota_smt":            handleMint,
	"generate_withdrawal_cota_smt":      handleWithdraw,
	"generate_claim_cota_smt":           handleClaim,
	"generate_update_cota_smt":          handleUpdate,
	"generate_transfer_cota_smt":        handleTransfer,
	"generate_claim_update_cota_smt":    handleClaimUpdate,
	"generate_transfer_update_cota_smt": handleTransferUpdate,
	"generate_extension_subkey_smt":     handleSubkey,
	"generate_extension_social_smt":     handleSocial,
}

// server adapts App into an http.Handler exposing the one JSON-RPC 2.0
// endpoint spec §6 describes.
type server struct {
	app *app.App
}

func newServer(a *app.App) *server {
	return &server{app: a}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, -32700, "parse error: "+err.Error())
		return
	}

	fn, ok := methodTable[req.Method]
	if !ok {
		writeError(w, req.ID, -32601, "method not found: "+req.Method)
		return
	}

	result, err := fn(r.Context(), s.app.Env, req.Params)
	if err != nil {
		code, msg := rpcErrorFor(err)
		log.Warnf("rpcserver: %s failed: %v", req.Method, err)
		writeError(w, req.ID, code, msg)
		return
	}

	writeResult(w, req.ID, result)
}

// rpcErrorFor maps a typed protocol error (spec §7) to a JSON-RPC error
// code, distinguishing caller mistakes from internal failures.
func rpcErrorFor(err error) (int, string) {
	var paramErr *errortypes.RequestParamInvalid
	var preconditionErr *errortypes.PreconditionMissing
	switch {
	case errors.As(err, &paramErr):
		return -32602, err.Error()
	case errors.As(err, &preconditionErr):
		return -32000, err.Error()
	default:
		return -32603, err.Error()
	}
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func writeError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}
