package detect

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestBarrierReserveRelease(t *testing.T) {
	t.Parallel()
	b := newBarrier()

	if !b.Idle() {
		t.Fatal("new barrier should be idle")
	}

	b.Reserve(2)
	if b.Idle() {
		t.Fatal("barrier with outstanding slots reported idle")
	}

	b.Release()
	if b.Idle() {
		t.Fatal("barrier reported idle with one slot outstanding")
	}

	b.Release()
	if !b.Idle() {
		t.Fatal("barrier should be idle after all slots released")
	}

	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() on idle barrier error = %v", err)
	}
}

func TestBarrierReserveNonPositive(t *testing.T) {
	t.Parallel()
	b := newBarrier()
	b.Reserve(0)
	b.Reserve(-3)
	if !b.Idle() {
		t.Fatal("non-positive reservations must not open the barrier")
	}
}

func TestBarrierDynamicReservation(t *testing.T) {
	t.Parallel()
	b := newBarrier()

	// A worker that discovers more work mid-flight reserves before it
	// releases its own slot, so the barrier never closes early.
	b.Reserve(1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Reserve(2)
		b.Release()

		go func() {
			b.Release()
			b.Release()
		}()
	}()
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !b.Idle() {
		t.Fatal("barrier should be idle after all releases")
	}
}

func TestBarrierWaitBlocksUntilDone(t *testing.T) {
	t.Parallel()
	b := newBarrier()
	b.Reserve(1)

	done := make(chan error, 1)
	go func() {
		done <- b.Wait(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("Wait() returned before the slot was released")
	case <-time.After(20 * time.Millisecond):
	}

	b.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait() did not return after release")
	}
}

func TestBarrierWaitContextCanceled(t *testing.T) {
	t.Parallel()
	b := newBarrier()
	b.Reserve(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Wait(ctx); err == nil {
		t.Fatal("Wait() with canceled context should return an error")
	}
}

func TestBarrierReleaseBelowZeroPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("Release() below zero should panic")
		}
	}()
	b := newBarrier()
	b.Release()
}
