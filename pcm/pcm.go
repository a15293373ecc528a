// Package pcm converts browser audio frames into the linear16 format the
// speech vendor expects.
package pcm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Float32ToInt16 converts little-endian float32 samples in [-1, 1] into
// little-endian signed 16-bit samples. Out-of-range samples are clamped.
// The asymmetric scale (0x8000 negative, 0x7fff positive) keeps -1.0
// representable without overflow.
func Float32ToInt16(in []byte) ([]byte, error) {
	if len(in)%4 != 0 {
		return nil, fmt.Errorf("float32 payload length %d is not a multiple of 4", len(in))
	}

	out := make([]byte, len(in)/2)
	for i := 0; i < len(in); i += 4 {
		bits := binary.LittleEndian.Uint32(in[i:])
		s := math.Float32frombits(bits)

		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}

		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7fff)
		}
		binary.LittleEndian.PutUint16(out[i/2:], uint16(v))
	}
	return out, nil
}
