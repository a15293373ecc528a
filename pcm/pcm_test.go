package pcm

import (
	"encoding/binary"
	"math"
	"testing"
)

func encodeFloats(samples ...float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

func decodeInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func TestFloat32ToInt16(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []int16
	}{
		{"silence", []float32{0}, []int16{0}},
		{"full negative", []float32{-1}, []int16{-32768}},
		{"full positive", []float32{1}, []int16{32767}},
		{"half positive", []float32{0.5}, []int16{16383}},
		{"half negative", []float32{-0.5}, []int16{-16384}},
		{"clamps above one", []float32{1.5}, []int16{32767}},
		{"clamps below minus one", []float32{-2}, []int16{-32768}},
		{"mixed frame", []float32{0, -1, 1, 0.25}, []int16{0, -32768, 32767, 8191}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Float32ToInt16(encodeFloats(tt.in...))
			if err != nil {
				t.Fatalf("Float32ToInt16: %v", err)
			}
			got := decodeInt16(out)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d samples, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sample %d = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFloat32ToInt16RejectsRaggedInput(t *testing.T) {
	if _, err := Float32ToInt16(make([]byte, 6)); err == nil {
		t.Error("expected error for payload not divisible by 4")
	}
}

func TestFloat32ToInt16EmptyInput(t *testing.T) {
	out, err := Float32ToInt16(nil)
	if err != nil {
		t.Fatalf("Float32ToInt16: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d bytes, want 0", len(out))
	}
}
