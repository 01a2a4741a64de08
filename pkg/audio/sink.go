// Package audio provides the PCM output sink for the player's audio
// pipeline. The sink is the single authority for audible volume and
// mute, so buffered audio reacts to toggles immediately.
package audio

import "errors"

// ErrSinkUnavailable is returned when the output device or stream can't
// be created. Audio is then disabled for the loaded media; video is
// unaffected.
var ErrSinkUnavailable = errors.New("audio sink unavailable")

// Sink accepts interleaved 16-bit little-endian PCM.
type Sink interface {
	// CreateStream opens an output stream for the given layout.
	CreateStream(sampleRate, channels int) error
	// Write queues one buffer, best effort: a failed or dropped write is
	// not retried.
	Write(pcm []byte) error
	SetVolume(volume int) // 0-100
	SetMuted(muted bool)
	DestroyStream()
}

// scaleS16 applies a linear volume [0,100] to interleaved S16LE samples
// in place.
func scaleS16(pcm []byte, volume int) {
	if volume >= 100 {
		return
	}
	if volume < 0 {
		volume = 0
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		s = int16(int(s) * volume / 100)
		pcm[i] = byte(uint16(s))
		pcm[i+1] = byte(uint16(s) >> 8)
	}
}

// Null is a no-op sink used when audio output is disabled.
type Null struct{}

func (Null) CreateStream(int, int) error { return nil }
func (Null) Write([]byte) error          { return nil }
func (Null) SetVolume(int)               {}
func (Null) SetMuted(bool)               {}
func (Null) DestroyStream()              {}
