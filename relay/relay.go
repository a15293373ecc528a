// Package relay bridges a browser capture socket to the speech vendor's live
// transcription socket. Audio frames flow browser -> vendor; recognition
// events flow vendor -> reducer -> browser, with caption observers fed over
// server-sent events.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/pcm"
	"interview-copilot/api/speech"
	"interview-copilot/api/sse"
	"interview-copilot/api/transcript"
)

// State is the capture session lifecycle. Transitions only move forward:
// idle -> connecting -> streaming -> finalizing -> closed.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateStreaming  State = "streaming"
	StateFinalizing State = "finalizing"
	StateClosed     State = "closed"
)

// closeGrace bounds how long we wait for the vendor to flush trailing
// results after CloseStream before forcing the socket shut.
const closeGrace = 1500 * time.Millisecond

// Supported client codecs.
const (
	CodecOpus    = "opus"
	CodecLinear  = "linear16"
	CodecFloat32 = "float32"
)

// StartFrame is the first message a client sends on the capture socket. It
// declares the session and the audio format of every binary frame after it.
type StartFrame struct {
	Type       string `json:"type"`
	SessionID  string `json:"sessionId"`
	Codec      string `json:"codec"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
	Language   string `json:"language"`
}

// Validate checks the frame before any vendor connection is opened.
func (f *StartFrame) Validate() error {
	if f.Type != "start" {
		return fmt.Errorf("first frame must have type \"start\", got %q", f.Type)
	}
	if f.SessionID == "" {
		return fmt.Errorf("sessionId is required")
	}
	switch f.Codec {
	case CodecOpus:
	case CodecLinear, CodecFloat32:
		if f.SampleRate <= 0 {
			return fmt.Errorf("sampleRate is required for codec %q", f.Codec)
		}
	default:
		return fmt.Errorf("unsupported codec %q", f.Codec)
	}
	if f.Channels < 0 || f.Channels > 2 {
		return fmt.Errorf("unsupported channel count %d", f.Channels)
	}
	return nil
}

// liveOptions maps the client codec to vendor socket parameters. Float32 is
// converted server-side, so the vendor always sees linear16 for raw PCM.
func (f *StartFrame) liveOptions() speech.LiveOptions {
	opts := speech.LiveOptions{
		SampleRate: f.SampleRate,
		Channels:   f.Channels,
		Language:   f.Language,
	}
	if f.Codec != CodecOpus {
		opts.Encoding = "linear16"
	}
	return opts
}

// clientControl is a non-audio message from the browser after start.
type clientControl struct {
	Type    string `json:"type"`
	Editing bool   `json:"editing"`
}

type serverMessage struct {
	Type      string               `json:"type"`
	State     State                `json:"state,omitempty"`
	Snapshot  *transcript.Snapshot `json:"snapshot,omitempty"`
	ElapsedMs int64                `json:"elapsedMs,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// Result summarises a finished capture for billing and persistence.
type Result struct {
	SessionID string
	Elapsed   time.Duration
	Final     transcript.Snapshot
}

// Session relays one capture. Create with New and drive with Run.
type Session struct {
	id      string
	userID  string
	client  *websocket.Conn
	vendor  *websocket.Conn
	frame   StartFrame
	reducer *transcript.Reducer

	writeMu  sync.Mutex
	vendorMu sync.Mutex
	state    State
	stateMu  sync.Mutex

	stopOnce sync.Once
	stopped  chan struct{}
}

func New(client *websocket.Conn, userID string) *Session {
	return &Session{
		client:  client,
		userID:  userID,
		reducer: transcript.New(),
		state:   StateIdle,
		stopped: make(chan struct{}),
	}
}

func (s *Session) setState(next State) {
	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()
	s.writeClient(serverMessage{Type: "state", State: next})
}

func (s *Session) writeClient(msg serverMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.client.WriteJSON(msg); err != nil {
		logger.Get().Debug("Client write failed", zap.String("session_id", s.id), zap.Error(err))
	}
}

// Run drives the relay until the client stops, either side disconnects, or
// ctx is cancelled. It always returns a Result with the elapsed capture time
// so the caller can bill even on abnormal teardown.
func (s *Session) Run(ctx context.Context) (Result, error) {
	frame, err := s.readStartFrame()
	if err != nil {
		s.writeClient(serverMessage{Type: "error", Error: err.Error()})
		return Result{}, err
	}
	s.frame = *frame
	s.id = frame.SessionID

	s.setState(StateConnecting)

	header, err := speech.AuthHeader()
	if err != nil {
		s.writeClient(serverMessage{Type: "error", Error: "speech vendor is not configured"})
		return Result{SessionID: s.id}, err
	}

	vendorConn, _, err := websocket.DefaultDialer.DialContext(ctx, speech.LiveURL(frame.liveOptions()), header)
	if err != nil {
		s.writeClient(serverMessage{Type: "error", Error: "failed to reach speech vendor"})
		return Result{SessionID: s.id}, fmt.Errorf("vendor dial failed: %w", err)
	}
	s.vendor = vendorConn

	s.setState(StateStreaming)
	startedAt := time.Now()

	logger.Get().Info("Capture session started",
		zap.String("session_id", s.id),
		zap.String("user_id", s.userID),
		zap.String("codec", frame.Codec))

	vendorDone := make(chan struct{})
	go func() {
		defer close(vendorDone)
		s.vendorLoop()
	}()

	clientDone := make(chan struct{})
	go func() {
		defer close(clientDone)
		s.clientLoop()
	}()

	select {
	case <-ctx.Done():
		s.initiateStop()
	case <-s.stopped:
	case <-clientDone:
		// Client vanished without a stop frame; flush what the vendor has.
		s.initiateStop()
	case <-vendorDone:
	}

	s.setState(StateFinalizing)

	// Give the vendor a bounded window to deliver trailing finals.
	select {
	case <-vendorDone:
	case <-time.After(closeGrace):
		logger.Get().Warn("Vendor close grace expired", zap.String("session_id", s.id))
	}
	s.vendor.Close()
	<-vendorDone

	elapsed := time.Since(startedAt)
	final := s.reducer.Flush()
	sse.Publish(s.id, final)
	sse.CloseSession(s.id)

	s.writeClient(serverMessage{
		Type:      "closed",
		State:     StateClosed,
		Snapshot:  &final,
		ElapsedMs: elapsed.Milliseconds(),
	})

	logger.Get().Info("Capture session closed",
		zap.String("session_id", s.id),
		zap.Duration("elapsed", elapsed),
		zap.Int("committed_chars", len(final.Committed)))

	return Result{SessionID: s.id, Elapsed: elapsed, Final: final}, nil
}

func (s *Session) readStartFrame() (*StartFrame, error) {
	s.client.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer s.client.SetReadDeadline(time.Time{})

	msgType, data, err := s.client.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read start frame: %w", err)
	}
	if msgType != websocket.TextMessage {
		return nil, fmt.Errorf("first frame must be a text start frame")
	}

	var frame StartFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("malformed start frame: %w", err)
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return &frame, nil
}

// Stop ends the capture from the server side, e.g. when the minute balance
// runs out mid-session. The vendor still gets its close handshake so trailing
// finals are flushed and the elapsed time is billed as usual.
func (s *Session) Stop() {
	s.initiateStop()
}

// initiateStop tells the vendor to finish the stream. Safe to call more
// than once.
func (s *Session) initiateStop() {
	s.stopOnce.Do(func() {
		msg, _ := json.Marshal(map[string]string{"type": "CloseStream"})
		s.writeVendor(websocket.TextMessage, msg)
		close(s.stopped)
	})
}

func (s *Session) writeVendor(msgType int, data []byte) {
	s.vendorMu.Lock()
	defer s.vendorMu.Unlock()
	if s.vendor == nil {
		return
	}
	if err := s.vendor.WriteMessage(msgType, data); err != nil {
		logger.Get().Debug("Vendor write failed", zap.String("session_id", s.id), zap.Error(err))
	}
}

// clientLoop forwards audio frames to the vendor and handles control frames.
func (s *Session) clientLoop() {
	for {
		msgType, data, err := s.client.ReadMessage()
		if err != nil {
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			payload := data
			if s.frame.Codec == CodecFloat32 {
				converted, cerr := pcm.Float32ToInt16(data)
				if cerr != nil {
					logger.Get().Warn("Dropping malformed audio frame",
						zap.String("session_id", s.id), zap.Error(cerr))
					continue
				}
				payload = converted
			}
			s.writeVendor(websocket.BinaryMessage, payload)
		case websocket.TextMessage:
			var ctl clientControl
			if err := json.Unmarshal(data, &ctl); err != nil {
				continue
			}
			switch ctl.Type {
			case "stop":
				s.initiateStop()
				return
			case "editing":
				snap := s.reducer.SetEditing(ctl.Editing)
				s.publish(snap)
			}
		}
	}
}

// vendorLoop decodes recognition events and folds them into the reducer.
func (s *Session) vendorLoop() {
	for {
		_, data, err := s.vendor.ReadMessage()
		if err != nil {
			return
		}
		ev, ok := decodeVendorEvent(data)
		if !ok {
			continue
		}
		snap := s.reducer.Apply(ev)
		s.publish(snap)
	}
}

func (s *Session) publish(snap transcript.Snapshot) {
	s.writeClient(serverMessage{Type: "transcript", Snapshot: &snap})
	sse.Publish(s.id, snap)
}

type vendorEvent struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// decodeVendorEvent maps a vendor message to a reducer event. Returns false
// for messages that carry no transcript change (metadata, speech started).
func decodeVendorEvent(data []byte) (transcript.Event, bool) {
	var ev vendorEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return transcript.Event{}, false
	}

	switch ev.Type {
	case "UtteranceEnd":
		return transcript.Event{Kind: transcript.KindUtteranceEnd}, true
	case "Results":
		if len(ev.Channel.Alternatives) == 0 {
			return transcript.Event{}, false
		}
		text := ev.Channel.Alternatives[0].Transcript
		kind := transcript.KindPartial
		if ev.IsFinal {
			kind = transcript.KindFinal
		}
		if text == "" && !ev.IsFinal {
			return transcript.Event{}, false
		}
		return transcript.Event{Kind: kind, Text: text}, true
	default:
		return transcript.Event{}, false
	}
}
