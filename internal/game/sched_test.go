package game

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
)

func TestSchedulerFires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := quartz.NewMock(t)
	s := NewScheduler(clock)

	var fired atomic.Int32
	s.Schedule(5*time.Second, func() { fired.Add(1) })

	clock.Advance(5 * time.Second).MustWait(ctx)
	if fired.Load() != 1 {
		t.Fatalf("expected callback to fire once, fired %d", fired.Load())
	}
}

func TestSchedulerCancel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := quartz.NewMock(t)
	s := NewScheduler(clock)

	var fired atomic.Int32
	h := s.Schedule(5*time.Second, func() { fired.Add(1) })
	s.Cancel(h)

	clock.Advance(10 * time.Second).MustWait(ctx)
	if fired.Load() != 0 {
		t.Fatalf("cancelled callback fired %d times", fired.Load())
	}
	if s.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", s.Pending())
	}
}

func TestSchedulerStopAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := quartz.NewMock(t)
	s := NewScheduler(clock)

	var fired atomic.Int32
	s.Schedule(time.Second, func() { fired.Add(1) })
	s.Schedule(2*time.Second, func() { fired.Add(1) })
	s.Schedule(3*time.Second, func() { fired.Add(1) })

	s.StopAll()
	clock.Advance(10 * time.Second).MustWait(ctx)

	if fired.Load() != 0 {
		t.Fatalf("callbacks fired after StopAll: %d", fired.Load())
	}

	// A stopped scheduler refuses new work.
	if h := s.Schedule(time.Second, func() { fired.Add(1) }); h != 0 {
		t.Errorf("expected zero handle from stopped scheduler, got %d", h)
	}
}
