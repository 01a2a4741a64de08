package audio

import (
	"fmt"
	"sync/atomic"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/wallplay/wallplay/pkg/logger"
)

// Queueing more than a second of PCM only adds latency on mute/volume
// changes, so writes beyond the cap are dropped.
const maxQueuedBytes = 1 << 18

// SDL is an audio sink backed by the SDL2 queue-audio API.
// Volume and mute are set from the control side while Write runs on the
// pipeline goroutine, hence the atomics.
type SDL struct {
	log    *logger.Logger
	dev    sdl.AudioDeviceID
	open   bool
	volume atomic.Int32
	muted  atomic.Bool
}

func NewSDL(log *logger.Logger) *SDL {
	s := &SDL{log: log.Extend(log.With().Str("m", "audio"))}
	s.volume.Store(100)
	return s
}

func (s *SDL) CreateStream(sampleRate, channels int) error {
	if s.open {
		s.DestroyStream()
	}
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	want := sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_S16LSB,
		Channels: uint8(channels),
		Samples:  4096,
	}
	dev, err := sdl.OpenAudioDevice("", false, &want, nil, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	s.dev = dev
	s.open = true
	sdl.PauseAudioDevice(s.dev, false)
	s.log.Info().Int("rate", sampleRate).Int("ch", channels).Msg("audio stream created")
	return nil
}

func (s *SDL) Write(pcm []byte) error {
	if !s.open {
		return ErrSinkUnavailable
	}
	if s.muted.Load() {
		return nil
	}
	if sdl.GetQueuedAudioSize(s.dev) > maxQueuedBytes {
		return nil // best effort, drop instead of blocking the pipeline
	}
	scaleS16(pcm, int(s.volume.Load()))
	if err := sdl.QueueAudio(s.dev, pcm); err != nil {
		return fmt.Errorf("audio write failed: %w", err)
	}
	return nil
}

func (s *SDL) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	s.volume.Store(int32(volume))
}

func (s *SDL) SetMuted(muted bool) {
	s.muted.Store(muted)
	if muted && s.open {
		// Drop what's already queued so mute is instant.
		sdl.ClearQueuedAudio(s.dev)
	}
}

func (s *SDL) DestroyStream() {
	if !s.open {
		return
	}
	sdl.ClearQueuedAudio(s.dev)
	sdl.CloseAudioDevice(s.dev)
	s.open = false
	s.log.Info().Msg("audio stream destroyed")
}
