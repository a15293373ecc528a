// Package transcript reassembles interim and final recognition results into
// a stable running transcript. The reducer is deterministic: given the same
// event sequence it always produces the same committed text.
package transcript

import (
	"strings"
	"sync"
)

// Kind classifies a recognition event.
type Kind string

const (
	// KindPartial is an interim hypothesis that replaces the previous one.
	KindPartial Kind = "partial"
	// KindFinal is a finalized segment appended to the committed text.
	KindFinal Kind = "final"
	// KindUtteranceEnd marks the end of speech; it commits any outstanding
	// partial exactly once.
	KindUtteranceEnd Kind = "utterance_end"
)

// Event is one recognition result from the speech vendor.
type Event struct {
	Kind Kind
	Text string
}

// Snapshot is an immutable view of the transcript at a point in time.
type Snapshot struct {
	Committed string `json:"committed"`
	Partial   string `json:"partial"`
	Display   string `json:"display"`
	Seq       uint64 `json:"seq"`
}

// Reducer folds recognition events into a transcript. Safe for concurrent
// use; events applied from a single goroutine preserve receipt order.
type Reducer struct {
	mu       sync.Mutex
	segments []string
	partial  string
	seq      uint64

	editing bool
	frozen  Snapshot
}

func New() *Reducer {
	return &Reducer{}
}

// Apply folds one event and returns the resulting snapshot.
func (r *Reducer) Apply(ev Event) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case KindFinal:
		if text := strings.TrimSpace(ev.Text); text != "" {
			r.segments = append(r.segments, text)
		}
		r.partial = ""
	case KindPartial:
		r.partial = strings.TrimSpace(ev.Text)
	case KindUtteranceEnd:
		r.commitPartialLocked()
	}
	r.seq++
	return r.snapshotLocked()
}

// Flush commits any outstanding partial. Called when the capture stops or
// the vendor connection closes, so trailing speech is never dropped.
func (r *Reducer) Flush() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.partial != "" {
		r.commitPartialLocked()
		r.seq++
	}
	return r.snapshotLocked()
}

// SetEditing latches the display while the user edits the transcript text.
// While latched, snapshots keep returning the view from the moment editing
// began; the reducer keeps folding events underneath. Releasing the latch
// makes the accumulated state visible again.
func (r *Reducer) SetEditing(editing bool) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if editing && !r.editing {
		r.frozen = r.currentLocked()
	}
	r.editing = editing
	return r.snapshotLocked()
}

// Snapshot returns the current view without applying an event.
func (r *Reducer) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Reducer) commitPartialLocked() {
	if r.partial != "" {
		r.segments = append(r.segments, r.partial)
		r.partial = ""
	}
}

func (r *Reducer) snapshotLocked() Snapshot {
	if r.editing {
		return r.frozen
	}
	return r.currentLocked()
}

func (r *Reducer) currentLocked() Snapshot {
	committed := strings.Join(r.segments, " ")
	display := committed
	if r.partial != "" {
		if display != "" {
			display += " "
		}
		display += r.partial
	}
	return Snapshot{
		Committed: committed,
		Partial:   r.partial,
		Display:   display,
		Seq:       r.seq,
	}
}
