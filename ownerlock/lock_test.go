// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ownerlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nervina-labs/cota-aggregator-go/hash"
)

// TestMutualExclusionSameOwner verifies property P6: two concurrent
// critical sections for the same owner never overlap.
func TestMutualExclusionSameOwner(t *testing.T) {
	s := NewSerializer()
	owner := hash.Hash256{0x01}

	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithLock(owner, func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					old := atomic.LoadInt32(&maxActive)
					if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), maxActive, "critical sections for one owner must never overlap")
}

// TestDistinctOwnersRunConcurrently is scenario S5: ten workers touching
// ten distinct owners proceed without waiting on each other.
func TestDistinctOwnersRunConcurrently(t *testing.T) {
	s := NewSerializer()

	const workers = 10
	release := make(chan struct{})
	entered := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		owner := hash.Hash256{byte(i)}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithLock(owner, func() error {
				entered <- struct{}{}
				<-release
				return nil
			})
		}()
	}

	for i := 0; i < workers; i++ {
		select {
		case <-entered:
		case <-time.After(time.Second):
			t.Fatal("distinct owners should not serialize against each other")
		}
	}
	close(release)
	wg.Wait()
}

// TestLockReleasedOnPanic ensures a panicking critical section still
// releases the lock (scoped acquisition, spec §4.6).
func TestLockReleasedOnPanic(t *testing.T) {
	s := NewSerializer()
	owner := hash.Hash256{0x02}

	func() {
		defer func() { _ = recover() }()
		_ = s.WithLock(owner, func() error {
			panic("boom")
		})
	}()

	acquired := make(chan struct{})
	go func() {
		_ = s.WithLock(owner, func() error {
			close(acquired)
			return nil
		})
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was not released after a panicking critical section")
	}
}

// TestContextCancelledWhileWaiting is spec §5's "cancelled while waiting
// for the lock is dropped before acquisition" — a waiter that never gets
// the token returns ctx.Err() instead of blocking forever.
func TestContextCancelledWhileWaiting(t *testing.T) {
	s := NewSerializer()
	owner := hash.Hash256{0x03}

	holding := make(chan struct{})
	releaseHolder := make(chan struct{})
	go func() {
		_ = s.WithLock(owner, func() error {
			close(holding)
			<-releaseHolder
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.WithLockContext(ctx, owner, func() error {
		t.Fatal("fn must not run when context is cancelled before acquisition")
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(releaseHolder)
}

// TestWithLockContextIgnoresCancellationOnceAcquired: once fn is running,
// a later ctx cancellation does not abort or interrupt it.
func TestWithLockContextIgnoresCancellationOnceAcquired(t *testing.T) {
	s := NewSerializer()
	owner := hash.Hash256{0x04}

	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	err := s.WithLockContext(ctx, owner, func() error {
		cancel()
		time.Sleep(5 * time.Millisecond)
		ran = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran)
}
