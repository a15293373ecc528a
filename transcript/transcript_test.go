package transcript

import "testing"

func TestFinalsAppendInOrder(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: KindFinal, Text: "hello"})
	got := r.Apply(Event{Kind: KindFinal, Text: "world"})

	if got.Committed != "hello world" {
		t.Errorf("committed = %q, want %q", got.Committed, "hello world")
	}
	if got.Partial != "" {
		t.Errorf("partial = %q, want empty", got.Partial)
	}
}

func TestPartialReplacesPreviousPartial(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: KindPartial, Text: "he"})
	r.Apply(Event{Kind: KindPartial, Text: "hell"})
	got := r.Apply(Event{Kind: KindPartial, Text: "hello"})

	if got.Partial != "hello" {
		t.Errorf("partial = %q, want %q", got.Partial, "hello")
	}
	if got.Committed != "" {
		t.Errorf("committed = %q, want empty", got.Committed)
	}
	if got.Display != "hello" {
		t.Errorf("display = %q, want %q", got.Display, "hello")
	}
}

func TestFinalClearsPartial(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: KindPartial, Text: "hel"})
	got := r.Apply(Event{Kind: KindFinal, Text: "hello"})

	if got.Committed != "hello" {
		t.Errorf("committed = %q, want %q", got.Committed, "hello")
	}
	if got.Partial != "" {
		t.Errorf("partial = %q, want empty", got.Partial)
	}
}

func TestUtteranceEndCommitsPartialOnce(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: KindFinal, Text: "hello"})
	r.Apply(Event{Kind: KindPartial, Text: "world"})
	got := r.Apply(Event{Kind: KindUtteranceEnd})

	if got.Committed != "hello world" {
		t.Errorf("committed = %q, want %q", got.Committed, "hello world")
	}

	// A second utterance end must not duplicate the segment.
	got = r.Apply(Event{Kind: KindUtteranceEnd})
	if got.Committed != "hello world" {
		t.Errorf("committed after second utterance end = %q, want %q", got.Committed, "hello world")
	}
}

func TestUtteranceEndWithoutPartialIsNoop(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: KindFinal, Text: "hello"})
	got := r.Apply(Event{Kind: KindUtteranceEnd})

	if got.Committed != "hello" {
		t.Errorf("committed = %q, want %q", got.Committed, "hello")
	}
}

func TestFlushCommitsOutstandingPartial(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: KindFinal, Text: "so far"})
	r.Apply(Event{Kind: KindPartial, Text: "trailing words"})
	got := r.Flush()

	if got.Committed != "so far trailing words" {
		t.Errorf("committed = %q, want %q", got.Committed, "so far trailing words")
	}
	if got.Partial != "" {
		t.Errorf("partial = %q, want empty", got.Partial)
	}
}

func TestFlushWithoutPartialKeepsSeq(t *testing.T) {
	r := New()
	before := r.Apply(Event{Kind: KindFinal, Text: "done"})
	after := r.Flush()

	if after.Seq != before.Seq {
		t.Errorf("seq advanced on empty flush: %d -> %d", before.Seq, after.Seq)
	}
}

func TestEmptyAndWhitespaceFinalsAreDropped(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: KindFinal, Text: "hello"})
	r.Apply(Event{Kind: KindFinal, Text: ""})
	got := r.Apply(Event{Kind: KindFinal, Text: "   "})

	if got.Committed != "hello" {
		t.Errorf("committed = %q, want %q", got.Committed, "hello")
	}
}

func TestEditingLatchFreezesDisplay(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: KindFinal, Text: "hello"})
	frozen := r.SetEditing(true)

	r.Apply(Event{Kind: KindFinal, Text: "world"})
	during := r.Snapshot()
	if during.Committed != frozen.Committed {
		t.Errorf("committed while editing = %q, want frozen %q", during.Committed, frozen.Committed)
	}

	released := r.SetEditing(false)
	if released.Committed != "hello world" {
		t.Errorf("committed after release = %q, want %q", released.Committed, "hello world")
	}
}

func TestEditingLatchDoesNotDropEvents(t *testing.T) {
	r := New()
	r.SetEditing(true)
	r.Apply(Event{Kind: KindPartial, Text: "in progress"})
	r.Apply(Event{Kind: KindUtteranceEnd})
	got := r.SetEditing(false)

	if got.Committed != "in progress" {
		t.Errorf("committed = %q, want %q", got.Committed, "in progress")
	}
}

func TestSeqIncreasesPerEvent(t *testing.T) {
	r := New()
	a := r.Apply(Event{Kind: KindPartial, Text: "a"})
	b := r.Apply(Event{Kind: KindPartial, Text: "ab"})

	if b.Seq <= a.Seq {
		t.Errorf("seq not monotonic: %d then %d", a.Seq, b.Seq)
	}
}

func TestDeterministicReplay(t *testing.T) {
	events := []Event{
		{Kind: KindPartial, Text: "tell"},
		{Kind: KindPartial, Text: "tell me about"},
		{Kind: KindFinal, Text: "tell me about yourself"},
		{Kind: KindPartial, Text: "and your"},
		{Kind: KindUtteranceEnd},
		{Kind: KindFinal, Text: "last project"},
	}

	run := func() Snapshot {
		r := New()
		var last Snapshot
		for _, ev := range events {
			last = r.Apply(ev)
		}
		return last
	}

	first, second := run(), run()
	if first != second {
		t.Errorf("replay diverged: %+v vs %+v", first, second)
	}
	want := "tell me about yourself and your last project"
	if first.Committed != want {
		t.Errorf("committed = %q, want %q", first.Committed, want)
	}
}
