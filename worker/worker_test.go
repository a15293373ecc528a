package worker

import (
	"fmt"
	"sync"
	"testing"
)

func TestJobsWithSameKeyRunInOrder(t *testing.T) {
	p := NewPool(4, 128)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 50; i++ {
		i := i
		if !p.Submit("session-1", func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}) {
			t.Fatalf("submit %d rejected", i)
		}
	}
	p.Shutdown()

	if len(order) != 50 {
		t.Fatalf("ran %d jobs, want 50", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("job %d ran at position %d", v, i)
		}
	}
}

func TestSubmitAfterShutdownIsRejected(t *testing.T) {
	p := NewPool(1, 1)
	p.Shutdown()

	if p.Submit("k", func() {}) {
		t.Error("submit after shutdown should be rejected")
	}
	if got := p.Stats().Dropped; got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}
}

func TestPanickingJobDoesNotKillPartition(t *testing.T) {
	p := NewPool(1, 8)

	done := make(chan struct{})
	p.Submit("k", func() { panic("boom") })
	p.Submit("k", func() { close(done) })
	p.Shutdown()

	select {
	case <-done:
	default:
		t.Error("job after panic never ran")
	}
}

func TestStatsCounters(t *testing.T) {
	p := NewPool(2, 16)
	for i := 0; i < 10; i++ {
		p.Submit(fmt.Sprintf("key-%d", i), func() {})
	}
	p.Shutdown()

	s := p.Stats()
	if s.Submitted != 10 {
		t.Errorf("submitted = %d, want 10", s.Submitted)
	}
	if s.Completed != 10 {
		t.Errorf("completed = %d, want 10", s.Completed)
	}
}
