package media

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func s16le(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func f32le(samples ...float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

func TestPcmFromS16(t *testing.T) {
	in := s16le(1, 2, 3, 4, 99, 99) // padded beyond the reported samples
	got := pcmFromS16(in, 2, 2)
	if want := s16le(1, 2, 3, 4); !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPcmFromS16Planar(t *testing.T) {
	left := s16le(1, 3, 5)
	right := s16le(2, 4, 6)
	got := pcmFromS16Planar([][]byte{left, right}, 3, 2)
	if want := s16le(1, 2, 3, 4, 5, 6); !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPcmFromF32Planar(t *testing.T) {
	left := f32le(0, 0.5, 1.0)
	right := f32le(0, -0.5, -1.0)
	got := pcmFromF32Planar([][]byte{left, right}, 3, 2)

	want := s16le(0, 0, 16383, -16383, 32767, -32767)
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPcmFromF32PlanarClamps(t *testing.T) {
	got := pcmFromF32Planar([][]byte{f32le(2.0, -2.0)}, 2, 1)
	if want := s16le(32767, -32767); !bytes.Equal(got, want) {
		t.Errorf("out-of-range floats must clamp: got %v, want %v", got, want)
	}
}
