// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config parses the process's environment and command-line flags
// into a Config, following the flat go-flags options struct the teacher's
// mining/randomx config lays out, extended here with the env-var sourced
// fields spec §6 requires (DATABASE_URL, CKB_NODE, CKB_INDEXER,
// IS_MAINNET).
package config

import (
	"fmt"

	"github.com/jessevdk/go-flags"

	"github.com/nervina-labs/cota-aggregator-go/witness"
)

// Config holds every externally-supplied knob the aggregator needs to
// bootstrap: where to persist the SMT store, how to reach the chain and
// its indexer, and which network's constants apply.
type Config struct {
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" description:"DSN for the relational index (synchronizer-populated Define/Hold/Withdrawal/Claim rows)"`
	CKBNode     string `long:"ckb-node" env:"CKB_NODE" description:"CKB full node JSON-RPC endpoint"`
	CKBIndexer  string `long:"ckb-indexer" env:"CKB_INDEXER" description:"CKB indexer JSON-RPC endpoint, used to resolve the live on-chain SMT root cell"`
	IsMainnet   bool   `long:"mainnet" env:"IS_MAINNET" description:"selects mainnet constants (PADDING_HEIGHT, CoTA type code-hash); defaults to testnet"`
	StoreDir    string `long:"store-dir" env:"STORE_DIR" default:"./data/smt" description:"directory backing the leveldb-based SMT store"`
	Listen      string `long:"listen" env:"LISTEN" default:"127.0.0.1:8090" description:"address the JSON-RPC server listens on"`
}

// Network reports which of the two protocol constant sets this config
// selects.
func (c *Config) Network() witness.Network {
	if c.IsMainnet {
		return witness.Mainnet
	}
	return witness.Testnet
}

// CotaTypeCodeHash returns the fixed CoTA registry type-script code-hash
// for this config's network, per spec §6.
func (c *Config) CotaTypeCodeHash() [32]byte {
	if c.IsMainnet {
		return mainnetCotaTypeCodeHash
	}
	return testnetCotaTypeCodeHash
}

// Real protocol constants per original_source/src/indexer/index.rs's
// MAINNET_COTA_CODE_HASH / TESTNET_COTA_CODE_HASH.
var (
	mainnetCotaTypeCodeHash = mustHash32("1122a4fb54697cf2e6e3a96c9d80fd398a936559b90954c6e88eb7ba0cf652df")
	testnetCotaTypeCodeHash = mustHash32("89cd8003a0eaf8e65e0c31525b7d1d5c1becefd2ea75bb4cff87810ae37764d8")
)

func mustHash32(hexStr string) [32]byte {
	var out [32]byte
	n := 0
	for i := 0; i < len(hexStr); i += 2 {
		var b byte
		if _, err := fmt.Sscanf(hexStr[i:i+2], "%02x", &b); err != nil {
			panic(err)
		}
		out[n] = b
		n++
	}
	return out
}

// Load parses Config from the environment and command-line flags,
// os.Args[1:] style. Flags take precedence over their matching
// environment variable, matching the default go-flags precedence.
func Load(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.CKBNode == "" {
		return nil, fmt.Errorf("config: CKB_NODE is required")
	}
	if cfg.CKBIndexer == "" {
		return nil, fmt.Errorf("config: CKB_INDEXER is required")
	}
	return &cfg, nil
}
