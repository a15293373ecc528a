package relay

import (
	"testing"

	"interview-copilot/api/transcript"
)

func TestStartFrameValidate(t *testing.T) {
	tests := []struct {
		name    string
		frame   StartFrame
		wantErr bool
	}{
		{
			name:  "opus needs no sample rate",
			frame: StartFrame{Type: "start", SessionID: "s1", Codec: CodecOpus},
		},
		{
			name:  "linear16 with sample rate",
			frame: StartFrame{Type: "start", SessionID: "s1", Codec: CodecLinear, SampleRate: 16000},
		},
		{
			name:  "float32 with sample rate",
			frame: StartFrame{Type: "start", SessionID: "s1", Codec: CodecFloat32, SampleRate: 48000, Channels: 1},
		},
		{
			name:    "linear16 without sample rate",
			frame:   StartFrame{Type: "start", SessionID: "s1", Codec: CodecLinear},
			wantErr: true,
		},
		{
			name:    "missing session id",
			frame:   StartFrame{Type: "start", Codec: CodecOpus},
			wantErr: true,
		},
		{
			name:    "wrong type",
			frame:   StartFrame{Type: "audio", SessionID: "s1", Codec: CodecOpus},
			wantErr: true,
		},
		{
			name:    "unknown codec",
			frame:   StartFrame{Type: "start", SessionID: "s1", Codec: "flac"},
			wantErr: true,
		},
		{
			name:    "too many channels",
			frame:   StartFrame{Type: "start", SessionID: "s1", Codec: CodecOpus, Channels: 6},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLiveOptionsMapping(t *testing.T) {
	opus := StartFrame{Type: "start", SessionID: "s1", Codec: CodecOpus}
	if got := opus.liveOptions(); got.Encoding != "" {
		t.Errorf("opus encoding = %q, want empty (vendor autodetects)", got.Encoding)
	}

	f32 := StartFrame{Type: "start", SessionID: "s1", Codec: CodecFloat32, SampleRate: 48000}
	got := f32.liveOptions()
	if got.Encoding != "linear16" {
		t.Errorf("float32 encoding = %q, want linear16", got.Encoding)
	}
	if got.SampleRate != 48000 {
		t.Errorf("sample rate = %d, want 48000", got.SampleRate)
	}
}

func TestDecodeVendorEvent(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind transcript.Kind
		wantText string
		wantOK   bool
	}{
		{
			name:     "interim result",
			payload:  `{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"hel"}]}}`,
			wantKind: transcript.KindPartial,
			wantText: "hel",
			wantOK:   true,
		},
		{
			name:     "final result",
			payload:  `{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"hello"}]}}`,
			wantKind: transcript.KindFinal,
			wantText: "hello",
			wantOK:   true,
		},
		{
			name:     "empty final still commits partial clear",
			payload:  `{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":""}]}}`,
			wantKind: transcript.KindFinal,
			wantOK:   true,
		},
		{
			name:    "empty interim skipped",
			payload: `{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":""}]}}`,
		},
		{
			name:     "utterance end",
			payload:  `{"type":"UtteranceEnd"}`,
			wantKind: transcript.KindUtteranceEnd,
			wantOK:   true,
		},
		{
			name:    "metadata skipped",
			payload: `{"type":"Metadata"}`,
		},
		{
			name:    "speech started skipped",
			payload: `{"type":"SpeechStarted"}`,
		},
		{
			name:    "malformed json skipped",
			payload: `{not json`,
		},
		{
			name:    "results without alternatives skipped",
			payload: `{"type":"Results","channel":{"alternatives":[]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := decodeVendorEvent([]byte(tt.payload))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ev.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", ev.Kind, tt.wantKind)
			}
			if ev.Text != tt.wantText {
				t.Errorf("text = %q, want %q", ev.Text, tt.wantText)
			}
		})
	}
}

func TestStopSignalsSession(t *testing.T) {
	s := New(nil, "user-1")

	s.Stop()

	select {
	case <-s.stopped:
	default:
		t.Fatal("Stop did not signal the session")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := New(nil, "user-1")

	// A server-side stop can race a client stop frame; both paths must be
	// safe to run.
	s.Stop()
	s.Stop()
	s.initiateStop()

	select {
	case <-s.stopped:
	default:
		t.Fatal("session not stopped")
	}
}
