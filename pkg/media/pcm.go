package media

import (
	"encoding/binary"
	"math"
)

// The sink consumes a single layout: interleaved signed 16-bit LE PCM.
// These converters cover the sample formats the supported codecs
// actually emit; anything else becomes silence upstream.

// pcmFromS16 trims an already interleaved S16 buffer to the reported
// sample count.
func pcmFromS16(data []byte, samples, channels int) []byte {
	need := samples * channels * 2
	if need > len(data) {
		need = len(data)
	}
	out := make([]byte, need)
	copy(out, data[:need])
	return out
}

// pcmFromF32Planar interleaves planar 32-bit float samples, clamping to
// [-1, 1] before scaling to the S16 range.
func pcmFromF32Planar(planes [][]byte, samples, channels int) []byte {
	out := make([]byte, samples*channels*2)
	for ch := 0; ch < channels; ch++ {
		plane := planes[ch]
		for i := 0; i < samples; i++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(plane[i*4:]))
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			s := int16(v * 32767)
			binary.LittleEndian.PutUint16(out[(i*channels+ch)*2:], uint16(s))
		}
	}
	return out
}

// pcmFromS16Planar interleaves planar 16-bit samples.
func pcmFromS16Planar(planes [][]byte, samples, channels int) []byte {
	out := make([]byte, samples*channels*2)
	for ch := 0; ch < channels; ch++ {
		plane := planes[ch]
		for i := 0; i < samples; i++ {
			copy(out[(i*channels+ch)*2:(i*channels+ch)*2+2], plane[i*2:i*2+2])
		}
	}
	return out
}
