// Package sse fans caption snapshots out to server-sent-event observers.
// Any number of observers may watch one capture session; a slow observer
// drops intermediate snapshots instead of stalling the relay.
package sse

import (
	"sync"

	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/transcript"
)

const observerBuffer = 16

// Observer receives caption snapshots for one session.
type Observer struct {
	sessionID string
	ch        chan transcript.Snapshot
	once      sync.Once
}

// Events is the snapshot stream. Closed when the session ends or the
// observer is removed.
func (o *Observer) Events() <-chan transcript.Snapshot {
	return o.ch
}

func (o *Observer) close() {
	o.once.Do(func() { close(o.ch) })
}

var (
	mu       sync.RWMutex
	sessions = make(map[string]map[*Observer]struct{})
	latest   = make(map[string]transcript.Snapshot)
)

// Subscribe registers an observer for sessionID and seeds it with the
// session's latest snapshot so a late joiner starts from the current text.
// The caller must call Unsubscribe when done.
func Subscribe(sessionID string) *Observer {
	o := &Observer{
		sessionID: sessionID,
		ch:        make(chan transcript.Snapshot, observerBuffer),
	}

	mu.Lock()
	obs, ok := sessions[sessionID]
	if !ok {
		obs = make(map[*Observer]struct{})
		sessions[sessionID] = obs
	}
	obs[o] = struct{}{}
	count := len(obs)
	if snap, ok := latest[sessionID]; ok {
		o.ch <- snap
	}
	mu.Unlock()

	logger.Get().Debug("SSE observer subscribed",
		zap.String("session_id", sessionID),
		zap.Int("observers", count))
	return o
}

// Unsubscribe removes the observer and closes its channel.
func Unsubscribe(o *Observer) {
	if o == nil {
		return
	}

	mu.Lock()
	if obs, ok := sessions[o.sessionID]; ok {
		delete(obs, o)
		if len(obs) == 0 {
			delete(sessions, o.sessionID)
		}
	}
	mu.Unlock()

	o.close()
}

// Publish sends a snapshot to every observer of sessionID. Observers whose
// buffers are full miss this snapshot; they catch up on the next one since
// snapshots are cumulative.
func Publish(sessionID string, snap transcript.Snapshot) {
	mu.Lock()
	defer mu.Unlock()

	latest[sessionID] = snap
	for o := range sessions[sessionID] {
		select {
		case o.ch <- snap:
		default:
		}
	}
}

// CloseSession closes all observer channels for a finished session.
func CloseSession(sessionID string) {
	mu.Lock()
	obs := sessions[sessionID]
	delete(sessions, sessionID)
	delete(latest, sessionID)
	mu.Unlock()

	for o := range obs {
		o.close()
	}
}
