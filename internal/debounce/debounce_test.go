package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleCoalescesBurst(t *testing.T) {
	s := New(150 * time.Millisecond)

	var calls atomic.Int32
	var last atomic.Int32
	done := make(chan struct{}, 10)
	for i := 1; i <= 5; i++ {
		n := int32(i)
		s.Schedule(func() {
			calls.Add(1)
			last.Store(n)
			done <- struct{}{}
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduled task never ran")
	}
	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
	if got := last.Load(); got != 5 {
		t.Fatalf("ran task %d, want the last one (5)", got)
	}
	if s.Pending() {
		t.Fatalf("scheduler still pending after run")
	}
}

func TestScheduleAfterQuietPeriodRunsAgain(t *testing.T) {
	s := New(10 * time.Millisecond)

	ran := make(chan struct{}, 2)
	s.Schedule(func() { ran <- struct{}{} })
	<-ran
	s.Schedule(func() { ran <- struct{}{} })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("second task never ran")
	}
}

func TestCancelDropsPendingTask(t *testing.T) {
	s := New(20 * time.Millisecond)

	var calls atomic.Int32
	s.Schedule(func() { calls.Add(1) })
	if !s.Cancel() {
		t.Fatalf("Cancel reported nothing pending")
	}
	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Fatalf("cancelled task ran %d times", got)
	}
	if s.Cancel() {
		t.Fatalf("second Cancel reported a pending task")
	}
}

func TestNewDefaultsDelay(t *testing.T) {
	if got := New(0).Delay(); got != DefaultDelay {
		t.Fatalf("Delay() = %v, want %v", got, DefaultDelay)
	}
	if DefaultDelay != 300*time.Millisecond {
		t.Fatalf("DefaultDelay = %v", DefaultDelay)
	}
}
