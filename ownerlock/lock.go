// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ownerlock implements the per-owner mutual-exclusion serializer
// (component C6): a process-wide set of currently locked owner hashes,
// so that mutation of one owner's tree is strictly serialized while
// distinct owners proceed fully in parallel (spec §5).
package ownerlock

import (
	"context"
	"sync"

	"github.com/nervina-labs/cota-aggregator-go/hash"
)

// Serializer is the process-wide lock set. The zero value is not usable;
// construct via NewSerializer. A Serializer is safe for concurrent use.
type Serializer struct {
	mu     sync.Mutex
	tokens map[hash.Hash256]chan struct{}
}

// NewSerializer returns an empty Serializer.
func NewSerializer() *Serializer {
	return &Serializer{tokens: make(map[hash.Hash256]chan struct{})}
}

// tokenFor returns the single-slot semaphore channel for lockHash,
// creating it on first use. The map itself is guarded by mu; the returned
// channel is then used lock-free by callers to acquire/release.
func (s *Serializer) tokenFor(lockHash hash.Hash256) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.tokens[lockHash]
	if !ok {
		ch = make(chan struct{}, 1)
		ch <- struct{}{}
		s.tokens[lockHash] = ch
	}
	return ch
}

// WithLock runs fn while holding exclusive access to lockHash. Concurrent
// callers for the same owner block until the previous holder's fn
// returns; callers for distinct owners never block each other. The lock
// is released even if fn panics (scoped acquisition, spec §4.6).
func (s *Serializer) WithLock(lockHash hash.Hash256, fn func() error) error {
	token := s.tokenFor(lockHash)
	<-token
	defer func() { token <- struct{}{} }()
	return fn()
}

// WithLockContext is WithLock, but a caller still waiting for the lock
// abandons the attempt if ctx is cancelled first (spec §5: "if a request
// is cancelled while waiting for the lock, it is dropped before
// acquisition"). Once acquired, fn always runs to completion regardless
// of ctx — in-flight cancellation after acquisition is ignored until the
// commit inside fn returns, per spec §5.
func (s *Serializer) WithLockContext(ctx context.Context, lockHash hash.Hash256, fn func() error) error {
	token := s.tokenFor(lockHash)
	select {
	case <-token:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { token <- struct{}{} }()
	return fn()
}
