// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entries

import (
	"github.com/nervina-labs/cota-aggregator-go/history"
	"github.com/nervina-labs/cota-aggregator-go/index"
	"github.com/nervina-labs/cota-aggregator-go/ownerlock"
	"github.com/nervina-labs/cota-aggregator-go/smtstore"
)

// Env bundles the process-wide collaborators every operation builder
// needs: the persistent store (C3), the owner-lock serializer (C6), the
// relational index (used directly for the "validate & fetch" phase),
// and the history loader (C5) that the critical section consults before
// applying new leaves.
type Env struct {
	Store  *smtstore.Store
	Lock   *ownerlock.Serializer
	Source index.Source
	Loader *history.Loader
}

// NewEnv wires the four collaborators into an Env.
func NewEnv(store *smtstore.Store, lock *ownerlock.Serializer, source index.Source, loader *history.Loader) *Env {
	return &Env{Store: store, Lock: lock, Source: source, Loader: loader}
}
