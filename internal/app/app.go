// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package app wires the process-wide singletons (component A1): the
// persistent SMT store, the owner-lock serializer, the relational index
// source, and the chain facade, into one Env ready for the RPC
// dispatcher to drive.
//
// The relational schema and the synchronizer that populates it from
// chain events are out of scope (spec §1 non-goals); App is handed an
// already-constructed index.Source rather than opening DATABASE_URL
// itself.
package app

import (
	"github.com/btcsuite/btclog"

	"github.com/nervina-labs/cota-aggregator-go/chainfacade"
	"github.com/nervina-labs/cota-aggregator-go/entries"
	"github.com/nervina-labs/cota-aggregator-go/history"
	"github.com/nervina-labs/cota-aggregator-go/index"
	"github.com/nervina-labs/cota-aggregator-go/internal/config"
	"github.com/nervina-labs/cota-aggregator-go/ownerlock"
	"github.com/nervina-labs/cota-aggregator-go/smtstore"
)

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

// App bundles the fully-wired process state the RPC dispatcher (A2)
// drives every request through.
type App struct {
	Config *config.Config
	Env    *entries.Env
	Chain  chainfacade.Facade

	store *smtstore.Store
}

// New opens the leveldb-backed store at cfg.StoreDir, builds the chain
// facade against cfg's node/indexer endpoints, and assembles an Env
// around the caller-supplied index.Source.
func New(cfg *config.Config, source index.Source) (*App, error) {
	store, err := smtstore.Open(cfg.StoreDir)
	if err != nil {
		return nil, err
	}

	chain := chainfacade.NewClient(cfg.CKBNode, cfg.CKBIndexer, cfg.CotaTypeCodeHash())
	loader := history.NewLoader(source, chain)
	lock := ownerlock.NewSerializer()
	env := entries.NewEnv(store, lock, source, loader)

	log.Infof("app: bootstrapped against store %s, mainnet=%v", cfg.StoreDir, cfg.IsMainnet)

	return &App{
		Config: cfg,
		Env:    env,
		Chain:  chain,
		store:  store,
	}, nil
}

// Close releases the underlying store handle.
func (a *App) Close() error {
	return a.store.Close()
}
