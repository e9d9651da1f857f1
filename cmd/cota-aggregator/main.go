// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command cota-aggregator is the JSON-RPC 2.0 front end for the CoTA
// aggregator: it parses configuration, wires the process-wide store,
// owner-lock set, and chain facade into one App, and serves the ten
// generate_*_cota_smt methods over HTTP. Per spec §1's non-goal, this
// binary stays a thin decode-dispatch-encode shell around the entries
// package's operation builders.
package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"

	"github.com/nervina-labs/cota-aggregator-go/index"
	"github.com/nervina-labs/cota-aggregator-go/internal/app"
	"github.com/nervina-labs/cota-aggregator-go/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		return 1
	}

	initLogRotator(filepath.Join(cfg.StoreDir, "logs", "cota-aggregator.log"))
	setLogLevels(btclog.LevelInfo)

	// The relational schema and its synchronizer are out of scope (spec
	// §1 non-goals); index.NewInMemorySource stands in for the
	// synchronizer-populated store until one is wired in.
	source := index.NewInMemorySource()

	a, err := app.New(cfg, source)
	if err != nil {
		log.Errorf("failed to bootstrap app: %v", err)
		return 1
	}
	defer a.Close()

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: newServer(a),
	}

	log.Infof("listening on %s", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("server exited: %v", err)
		return 1
	}
	return 0
}
