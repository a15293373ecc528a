package sse

import (
	"testing"

	"interview-copilot/api/transcript"
)

func TestPublishReachesAllObservers(t *testing.T) {
	a := Subscribe("sess-pub")
	b := Subscribe("sess-pub")
	defer Unsubscribe(a)
	defer Unsubscribe(b)

	snap := transcript.Snapshot{Committed: "hello", Seq: 1}
	Publish("sess-pub", snap)

	for _, o := range []*Observer{a, b} {
		select {
		case got := <-o.Events():
			if got.Committed != "hello" {
				t.Errorf("committed = %q, want %q", got.Committed, "hello")
			}
		default:
			t.Error("observer did not receive the snapshot")
		}
	}
}

func TestLateSubscriberGetsLatestSnapshot(t *testing.T) {
	early := Subscribe("sess-late")
	Publish("sess-late", transcript.Snapshot{Committed: "first", Seq: 1})
	Publish("sess-late", transcript.Snapshot{Committed: "first second", Seq: 2})

	late := Subscribe("sess-late")
	defer Unsubscribe(early)
	defer Unsubscribe(late)

	select {
	case got := <-late.Events():
		if got.Seq != 2 {
			t.Errorf("seeded seq = %d, want 2", got.Seq)
		}
	default:
		t.Error("late subscriber was not seeded with the latest snapshot")
	}

	CloseSession("sess-late")
}

func TestPublishWithoutObserversDoesNotBlock(t *testing.T) {
	Publish("sess-empty", transcript.Snapshot{Committed: "x"})
	CloseSession("sess-empty")
}

func TestCloseSessionClosesChannels(t *testing.T) {
	o := Subscribe("sess-close")
	CloseSession("sess-close")

	if _, ok := <-o.Events(); ok {
		t.Error("channel should be closed after CloseSession")
	}
}

func TestSlowObserverDropsSnapshots(t *testing.T) {
	o := Subscribe("sess-slow")
	defer Unsubscribe(o)

	for i := 0; i < observerBuffer+10; i++ {
		Publish("sess-slow", transcript.Snapshot{Seq: uint64(i)})
	}
	if n := len(o.Events()); n != observerBuffer {
		t.Errorf("buffered = %d, want %d", n, observerBuffer)
	}

	CloseSession("sess-slow")
}
