package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunContinuesAfterTickFailure(t *testing.T) {
	sched := New(Options{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks int32
	err := sched.Run(ctx, func(ctx context.Context, at time.Time) error {
		if atomic.AddInt32(&ticks, 1) >= 3 {
			cancel()
		}
		return errors.New("tick failed")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("run should stop only on cancellation, got %v", err)
	}
	if atomic.LoadInt32(&ticks) < 3 {
		t.Fatalf("failing ticks must not stop the loop, got %d ticks", ticks)
	}
}

func TestRunStopsOnCancelBeforeFirstTick(t *testing.T) {
	sched := New(Options{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sched.Run(ctx, func(ctx context.Context, at time.Time) error {
		t.Fatal("tick must not run after cancellation")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNextTickAligned(t *testing.T) {
	sched := New(Options{Interval: time.Hour, AlignToStart: true}, zerolog.Nop())

	now := time.Date(2024, 12, 3, 9, 10, 0, 0, time.UTC)
	next := sched.nextTick(now)
	if !next.Equal(time.Date(2024, 12, 3, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("tick not aligned to interval boundary: %s", next)
	}
}
