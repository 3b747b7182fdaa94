package detect

import (
	"context"
	"sync"
)

// barrier is a counting completion barrier for work whose fan-out size
// is discovered at runtime. A probe that expects to deliver K results
// reserves K slots up front and releases one per result (or per
// "nothing found"); the barrier completes when the outstanding count
// returns to zero. Reservations made while another slot is still
// outstanding keep the barrier open, so probes may register sub-lookups
// they discover mid-flight.
type barrier struct {
	mu          sync.Mutex
	outstanding int
	waitCh      chan struct{}
}

func newBarrier() *barrier {
	return &barrier{}
}

// Reserve registers n outstanding completion slots
func (b *barrier) Reserve(n int) {
	if n <= 0 {
		return
	}
	b.mu.Lock()
	b.outstanding += n
	b.mu.Unlock()
}

// Release consumes one slot. Releasing more slots than were reserved is
// a programming error.
func (b *barrier) Release() {
	b.mu.Lock()
	b.outstanding--
	if b.outstanding < 0 {
		b.mu.Unlock()
		panic("detect: barrier released below zero")
	}
	if b.outstanding == 0 && b.waitCh != nil {
		close(b.waitCh)
		b.waitCh = nil
	}
	b.mu.Unlock()
}

// Idle is the barrier's completion predicate: no reservations are
// outstanding.
func (b *barrier) Idle() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding == 0
}

// Wait blocks until every reserved slot has been released or the
// context ends.
func (b *barrier) Wait(ctx context.Context) error {
	b.mu.Lock()
	if b.outstanding == 0 {
		b.mu.Unlock()
		return nil
	}
	if b.waitCh == nil {
		b.waitCh = make(chan struct{})
	}
	ch := b.waitCh
	b.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
